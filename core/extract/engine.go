// Package extract turns page text into a product Listing by prompting an LLM.
// A reply that does not parse gets exactly one repair call; if that fails too
// the caller receives an ExtractionError.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/core"
	"github.com/gaurav-prasanna/shelfpipe/core/chunk"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// Engine extracts listings with a ChatModel.
type Engine struct {
	model   core.ChatModel
	logger  *zap.Logger
	chunker *chunk.Chunker
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxInputWords cuts page text to its first n words before prompting.
// n <= 0 sends the full text.
func WithMaxInputWords(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunker = chunk.New(n)
		}
	}
}

// New creates an Engine.
func New(model core.ChatModel, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{model: model, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract prompts the model once and parses its reply. On a parse failure it
// runs the repair pass on the full reply. Errors from the first model call
// are returned wrapped, not as an ExtractionError.
func (e *Engine) Extract(ctx context.Context, text string) (*schema.Listing, error) {
	text = e.budget(text)

	raw, err := e.model.Complete(ctx, extractionMessages(text))
	if err != nil {
		return nil, fmt.Errorf("calling LLM: %w", err)
	}
	raw = strings.TrimSpace(raw)

	first := Parse(raw)
	if first.Parsed() {
		return first.Listing, nil
	}

	e.logger.Warn("initial parse failed, attempting repair", zap.Error(first.Failure))
	listing, repairErr := e.repair(ctx, raw, first.Failure)
	if repairErr != nil {
		return nil, &ExtractionError{Parse: first.Failure, Repair: repairErr, Raw: raw}
	}
	e.logger.Info("repair succeeded", zap.Int("items", len(listing.Items)))
	return listing, nil
}

// repair feeds the whole first reply and the parse failure back to the model.
func (e *Engine) repair(ctx context.Context, raw string, failure *ParseError) (*schema.Listing, *RepairError) {
	fixed, err := e.model.Complete(ctx, repairMessages(raw, failure))
	if err != nil {
		return nil, &RepairError{Err: fmt.Errorf("calling LLM: %w", err)}
	}

	result := Parse(fixed)
	if !result.Parsed() {
		return nil, &RepairError{Err: result.Failure.Err, Output: fixed}
	}
	return result.Listing, nil
}

func (e *Engine) budget(text string) string {
	if e.chunker == nil {
		return text
	}
	head, cut := e.chunker.Head(text)
	if cut {
		e.logger.Debug("page text truncated for prompt", zap.Int("max_words", e.chunker.ChunkSize))
	}
	return head
}
