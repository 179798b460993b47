// Package llm provides ChatModel clients for the hosted Groq API and for a
// local Ollama server.
package llm

import (
	"fmt"
	"time"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

// Provider names accepted by New.
const (
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)

const defaultChatTimeout = 120 * time.Second

// Options selects and configures a chat backend.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// New builds the ChatModel named by opts.Provider.
func New(opts Options) (core.ChatModel, error) {
	switch opts.Provider {
	case ProviderGroq, "":
		return NewGroq(opts), nil
	case ProviderOllama:
		return NewOllama(opts), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want %s or %s)", opts.Provider, ProviderGroq, ProviderOllama)
	}
}
