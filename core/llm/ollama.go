package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "qwen2.5:14b"
)

// OllamaClient calls a local Ollama server's chat API.
type OllamaClient struct {
	client      *http.Client
	baseURL     string
	model       string
	temperature float64
}

// NewOllama creates an OllamaClient, filling unset options with defaults.
func NewOllama(opts Options) *OllamaClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOllamaURL
	}
	if opts.Model == "" {
		opts.Model = DefaultOllamaModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultChatTimeout
	}
	return &OllamaClient{
		client:      &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		model:       opts.Model,
		temperature: opts.Temperature,
	}
}

// ollamaRequest is the request body for the Ollama chat API.
type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []core.Message `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// ollamaResponse is the non-streaming response body from the Ollama chat API.
type ollamaResponse struct {
	Message core.Message `json:"message"`
	Error   string       `json:"error,omitempty"`
}

// Complete sends messages with streaming disabled and returns the reply text.
func (c *OllamaClient) Complete(ctx context.Context, messages []core.Message) (string, error) {
	bodyBytes, err := json.Marshal(ollamaRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options:  map[string]any{"temperature": c.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama API returned %d: %s", resp.StatusCode, string(body))
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("decoding Ollama response: %w", err)
	}
	if ollamaResp.Error != "" {
		return "", fmt.Errorf("Ollama API error: %s", ollamaResp.Error)
	}

	return strings.TrimSpace(ollamaResp.Message.Content), nil
}
