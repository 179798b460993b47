// Package render provides the per-URL artifact renderers and the summary
// writers for the shelfpipe pipeline.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// JSONRenderer writes a listing as indented JSON. This artifact is the
// structured-data cache and is read back on later runs.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the listing with canonical field names.
func (r *JSONRenderer) Render(listing *schema.Listing) ([]byte, error) {
	data, err := json.MarshalIndent(listing, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
