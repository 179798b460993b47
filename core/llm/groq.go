package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

const (
	DefaultGroqURL   = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "qwen-qwq-32b"
)

// GroqClient calls Groq's OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	client      *openai.Client
	baseURL     string
	model       string
	temperature float32
}

// NewGroq creates a GroqClient, filling unset options with defaults.
func NewGroq(opts Options) *GroqClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGroqURL
	}
	if opts.Model == "" {
		opts.Model = DefaultGroqModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultChatTimeout
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	return &GroqClient{
		client:      openai.NewClientWithConfig(cfg),
		baseURL:     cfg.BaseURL,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
	}
}

// Complete sends messages and returns the first choice's content, trimmed.
func (c *GroqClient) Complete(ctx context.Context, messages []core.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: c.temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("calling Groq API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("Groq response contained no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
