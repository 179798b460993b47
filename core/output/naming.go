package output

import "strings"

// fallbackBaseName is used when a URL contains no alphanumeric characters.
const fallbackBaseName = "page"

// BaseName maps a URL to a filesystem-safe artifact name: every run of
// non-alphanumeric characters becomes a single underscore and separators are
// trimmed from both ends. Distinct URLs may collide; that is accepted.
// Example: https://example.com/docs?id=1 → https_example_com_docs_id_1
func BaseName(rawURL string) string {
	name := strings.Trim(sanitize(rawURL), "_")
	if name == "" {
		return fallbackBaseName
	}
	return name
}

// sanitize replaces each run of non-alphanumeric characters with one underscore.
func sanitize(s string) string {
	var b strings.Builder
	lastSep := false
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
			lastSep = false
			continue
		}
		if !lastSep {
			b.WriteRune('_')
			lastSep = true
		}
	}
	return b.String()
}
