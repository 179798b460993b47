package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/core"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// URLProcessor runs the full pipeline for one URL.
type URLProcessor interface {
	Process(ctx context.Context, url string) Result
}

// Report summarises a finished batch.
type Report struct {
	Rows      []schema.Row
	Total     int
	Succeeded int
	Failed    int
}

// Runner processes a URL list sequentially and writes one consolidated summary.
type Runner struct {
	processor URLProcessor
	summary   core.SummaryWriter
	sinks     []core.SummaryWriter
	logger    *zap.Logger
	out       io.Writer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSink adds a secondary summary destination. Its failures are logged only.
func WithSink(s core.SummaryWriter) RunnerOption {
	return func(r *Runner) { r.sinks = append(r.sinks, s) }
}

// WithProgress redirects the per-URL progress lines (default os.Stdout).
func WithProgress(w io.Writer) RunnerOption {
	return func(r *Runner) { r.out = w }
}

// NewRunner creates a Runner that writes its summary through summary.
func NewRunner(processor URLProcessor, summary core.SummaryWriter, logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		processor: processor,
		summary:   summary,
		logger:    logger,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes urls in order. A failing URL contributes one error row and
// never stops the batch; the summary is written even if every URL failed.
// Only a failure to write the primary summary is returned.
func (r *Runner) Run(ctx context.Context, urls []string) (*Report, error) {
	report := &Report{Total: len(urls), Rows: []schema.Row{}}
	fmt.Fprintf(r.out, "Processing %d URLs...\n", len(urls))

	for i, url := range urls {
		fmt.Fprintf(r.out, "[%d/%d] Processing %s\n", i+1, len(urls), url)

		res := r.processor.Process(ctx, url)
		if res.Err != nil {
			report.Failed++
			fmt.Fprintf(r.out, "  ✗ Error: %v\n", res.Err)
			r.logger.Error("url failed", zap.String("url", url), zap.Error(res.Err))
		} else {
			report.Succeeded++
			fmt.Fprintf(r.out, "  ✓ %d products\n", len(res.Rows))
			r.logger.Info("url processed", zap.String("url", url), zap.Int("rows", len(res.Rows)))
		}
		report.Rows = append(report.Rows, res.Flatten()...)
	}

	if err := r.summary.WriteSummary(ctx, report.Rows); err != nil {
		return report, fmt.Errorf("writing summary: %w", err)
	}
	for _, s := range r.sinks {
		if err := s.WriteSummary(ctx, report.Rows); err != nil {
			r.logger.Warn("secondary summary sink failed", zap.Error(err))
		}
	}

	r.logger.Info("batch complete",
		zap.Int("total", report.Total),
		zap.Int("failed", report.Failed),
		zap.Int("rows", len(report.Rows)))
	return report, nil
}
