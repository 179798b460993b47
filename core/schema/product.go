// Package schema defines the product records the extraction step must
// produce and the flat rows that flow into the summary table.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NotAvailable is the placeholder for any field the page did not provide.
const NotAvailable = "n/a"

// ProductRecord is one product extracted from a listing page.
// Every field is best-effort: missing or null values decode to defaults.
type ProductRecord struct {
	ProductName string   `json:"product_name"`
	ProductLink string   `json:"product_link"`
	Brand       string   `json:"brand"`
	Flavors     []string `json:"Flavors"`
	URL         string   `json:"url,omitempty"`
}

// Listing is the complete structured result for one source page.
type Listing struct {
	Items []ProductRecord `json:"items"`
}

// NewProductRecord returns a record with every field set to its default.
func NewProductRecord() ProductRecord {
	return ProductRecord{
		ProductName: NotAvailable,
		ProductLink: NotAvailable,
		Brand:       NotAvailable,
		Flavors:     []string{NotAvailable},
	}
}

// fieldKeys lists the accepted JSON keys per field: canonical name first,
// then the human-facing alias the prompt schema advertises.
var fieldKeys = struct {
	name, link, brand, flavors []string
}{
	name:    []string{"product_name", "Product Description"},
	link:    []string{"product_link", "Product Link"},
	brand:   []string{"brand", "Brand"},
	flavors: []string{"Flavors", "flavors"},
}

// UnmarshalJSON decodes a record, accepting either canonical keys or aliases
// and filling absent fields with defaults. Wrongly typed values are an error.
func (r *ProductRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("product record: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("product record: expected object, got null")
	}

	rec := NewProductRecord()
	if err := decodeString(raw, fieldKeys.name, &rec.ProductName); err != nil {
		return err
	}
	if err := decodeString(raw, fieldKeys.link, &rec.ProductLink); err != nil {
		return err
	}
	if err := decodeString(raw, fieldKeys.brand, &rec.Brand); err != nil {
		return err
	}
	if err := decodeStrings(raw, fieldKeys.flavors, &rec.Flavors); err != nil {
		return err
	}
	// url is stamped by the pipeline, so a malformed one is ignored.
	if v, ok := lookup(raw, []string{"url"}); ok {
		var url string
		if json.Unmarshal(v, &url) == nil {
			rec.URL = url
		}
	}

	*r = rec
	return nil
}

// UnmarshalJSON requires an "items" array; each element decodes as a ProductRecord.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("listing: %w", err)
	}
	items, ok := lookup(raw, []string{"items"})
	if !ok {
		return fmt.Errorf("listing: field \"items\" is required")
	}

	var records []ProductRecord
	if err := json.Unmarshal(items, &records); err != nil {
		return fmt.Errorf("listing items: %w", err)
	}
	if records == nil {
		records = []ProductRecord{}
	}
	l.Items = records
	return nil
}

// StampURL records the source page on every item.
func (l *Listing) StampURL(url string) {
	for i := range l.Items {
		l.Items[i].URL = url
	}
}

// lookup returns the first present, non-null value among keys.
func lookup(raw map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		return v, true
	}
	return nil, false
}

func decodeString(raw map[string]json.RawMessage, keys []string, dst *string) error {
	v, ok := lookup(raw, keys)
	if !ok {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %s: %w", keys[0], err)
	}
	return nil
}

func decodeStrings(raw map[string]json.RawMessage, keys []string, dst *[]string) error {
	v, ok := lookup(raw, keys)
	if !ok {
		return nil
	}
	var out []string
	if err := json.Unmarshal(v, &out); err != nil {
		return fmt.Errorf("field %s: %w", keys[0], err)
	}
	if out == nil {
		out = []string{}
	}
	*dst = out
	return nil
}
