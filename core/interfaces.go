// Package core defines the pipeline interfaces for shelfpipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"

	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// FetchResult holds what a scraping backend returned for one URL.
// HTML is empty for backends that only hand back markdown.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
	Markdown   string
}

// Fetcher turns a URL into a markdown rendering of the page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of an LLM conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatModel sends a conversation to an LLM and returns the raw reply text.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Store is a write-once artifact store keyed by file name.
// Presence of a key is the only cache-hit signal.
type Store interface {
	Has(key string) bool
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

// Renderer converts a listing into one per-URL artifact.
type Renderer interface {
	Render(listing *schema.Listing) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".json", ".xlsx").
	Extension() string
}

// SummaryWriter persists the consolidated row set of a batch run.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, rows []schema.Row) error
}
