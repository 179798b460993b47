package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

var conversation = []core.Message{
	{Role: core.RoleSystem, Content: "You are a text extraction assistant."},
	{Role: core.RoleUser, Content: "Extract the fields."},
}

func TestNew_Providers(t *testing.T) {
	m, err := New(Options{Provider: ProviderGroq})
	require.NoError(t, err)
	assert.IsType(t, &GroqClient{}, m)

	m, err = New(Options{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, m)

	_, err = New(Options{Provider: "openai"})
	assert.Error(t, err)
}

func TestNewGroq_Defaults(t *testing.T) {
	c := NewGroq(Options{})
	assert.Equal(t, DefaultGroqURL, c.baseURL)
	assert.Equal(t, DefaultGroqModel, c.model)
}

func TestGroqComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string         `json:"model"`
			Messages []core.Message `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, conversation, req.Messages)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "  {\"items\": []}\n"}}]}`))
	}))
	defer server.Close()

	c := NewGroq(Options{APIKey: "gsk-test", BaseURL: server.URL, Model: "test-model", Timeout: time.Second})
	out, err := c.Complete(context.Background(), conversation)

	require.NoError(t, err)
	assert.Equal(t, `{"items": []}`, out)
}

func TestGroqComplete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error": {"message": "Invalid API Key"}}`, "Invalid API Key"},
		{"no choices", http.StatusOK, `{"choices": []}`, "no choices"},
		{"bad json", http.StatusOK, `not json`, "calling Groq API"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewGroq(Options{BaseURL: server.URL}).Complete(context.Background(), conversation)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOllamaComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "llama3", req.Model)

		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": "{\"items\": []}"}, "done": true}`))
	}))
	defer server.Close()

	out, err := NewOllama(Options{BaseURL: server.URL, Model: "llama3"}).Complete(context.Background(), conversation)
	require.NoError(t, err)
	assert.Equal(t, `{"items": []}`, out)
}

func TestOllamaComplete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer server.Close()

	_, err := NewOllama(Options{BaseURL: server.URL}).Complete(context.Background(), conversation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}
