// Package pipeline runs the per-URL fetch → extract → reduce stages and the
// sequential batch over a URL list.
//
// Each URL's raw markdown and structured JSON are write-through cached in a
// core.Store; an existing artifact is always read instead of recomputed.
package pipeline

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/core"
	"github.com/gaurav-prasanna/shelfpipe/core/output"
	"github.com/gaurav-prasanna/shelfpipe/core/render"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

const (
	rawExt        = ".md"
	structuredExt = ".json"
)

// Extractor turns page text into a listing.
type Extractor interface {
	Extract(ctx context.Context, text string) (*schema.Listing, error)
}

// Result is the outcome for one URL: its rows, or the error that replaced them.
type Result struct {
	URL  string
	Rows []schema.Row
	Err  error
}

// Flatten returns the rows this URL contributes to the summary: its product
// rows, or exactly one error row.
func (r Result) Flatten() []schema.Row {
	if r.Err != nil {
		return []schema.Row{schema.ErrorRow(r.URL, r.Err)}
	}
	return r.Rows
}

// Processor runs the pipeline for single URLs.
type Processor struct {
	store     core.Store
	fetcher   core.Fetcher
	extractor Extractor
	cache     core.Renderer
	exports   []core.Renderer
	logger    *zap.Logger
}

// NewProcessor creates a Processor. exports are extra per-URL artifacts
// written after a fresh extraction; their failures are logged, not returned.
func NewProcessor(store core.Store, fetcher core.Fetcher, extractor Extractor, logger *zap.Logger, exports ...core.Renderer) *Processor {
	return &Processor{
		store:     store,
		fetcher:   fetcher,
		extractor: extractor,
		cache:     render.NewJSONRenderer(),
		exports:   exports,
		logger:    logger,
	}
}

// Process runs every stage for url. Failures do not escape; they are carried
// in Result.Err as a *PipelineError.
func (p *Processor) Process(ctx context.Context, url string) Result {
	base := output.BaseName(url)
	log := p.logger.With(zap.String("url", url), zap.String("artifact", base))

	raw, err := p.rawText(ctx, url, base, log)
	if err != nil {
		return Result{URL: url, Err: err}
	}

	listing, err := p.structured(ctx, url, base, raw, log)
	if err != nil {
		return Result{URL: url, Err: err}
	}

	rows, err := reduce(url, listing)
	if err != nil {
		return Result{URL: url, Err: err}
	}
	return Result{URL: url, Rows: rows}
}

// rawText returns the cached markdown for url, fetching and caching it on a miss.
func (p *Processor) rawText(ctx context.Context, url, base string, log *zap.Logger) (string, error) {
	key := base + rawExt
	if p.store.Has(key) {
		data, err := p.store.Read(key)
		if err != nil {
			return "", &PipelineError{URL: url, Stage: StageLoad, Err: err}
		}
		log.Debug("raw text cache hit")
		return string(data), nil
	}

	res, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", &PipelineError{URL: url, Stage: StageFetch, Err: err}
	}
	if err := p.store.Write(key, []byte(res.Markdown)); err != nil {
		return "", &PipelineError{URL: url, Stage: StagePersist, Err: err}
	}
	log.Info("raw text fetched", zap.Int("bytes", len(res.Markdown)))
	return res.Markdown, nil
}

// structured returns the cached listing for url, extracting and caching it on a miss.
func (p *Processor) structured(ctx context.Context, url, base, raw string, log *zap.Logger) (*schema.Listing, error) {
	key := base + structuredExt
	if p.store.Has(key) {
		data, err := p.store.Read(key)
		if err != nil {
			return nil, &PipelineError{URL: url, Stage: StageLoad, Err: err}
		}
		var listing schema.Listing
		if err := json.Unmarshal(data, &listing); err != nil {
			return nil, &PipelineError{URL: url, Stage: StageLoad, Err: err}
		}
		log.Debug("structured data cache hit", zap.Int("items", len(listing.Items)))
		return &listing, nil
	}

	listing, err := p.extractor.Extract(ctx, raw)
	if err != nil {
		return nil, &PipelineError{URL: url, Stage: StageExtract, Err: err}
	}
	listing.StampURL(url)

	data, err := p.cache.Render(listing)
	if err != nil {
		return nil, &PipelineError{URL: url, Stage: StagePersist, Err: err}
	}
	if err := p.store.Write(key, data); err != nil {
		return nil, &PipelineError{URL: url, Stage: StagePersist, Err: err}
	}
	log.Info("structured data extracted", zap.Int("items", len(listing.Items)))

	p.export(base, listing, log)
	return listing, nil
}

// export writes the presentation artifacts; nothing reads them back.
func (p *Processor) export(base string, listing *schema.Listing, log *zap.Logger) {
	for _, r := range p.exports {
		key := base + r.Extension()
		data, err := r.Render(listing)
		if err == nil {
			err = p.store.Write(key, data)
		}
		switch {
		case output.IsExists(err):
			log.Debug("export already present", zap.String("key", key))
		case err != nil:
			log.Warn("export failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// reduce maps every listing item to its summary row.
func reduce(url string, listing *schema.Listing) ([]schema.Row, error) {
	if len(listing.Items) == 0 {
		return nil, &PipelineError{URL: url, Stage: StageReduce, Err: ErrNoProducts}
	}
	rows := make([]schema.Row, 0, len(listing.Items))
	for _, item := range listing.Items {
		rows = append(rows, schema.EnrichedRow(item, url))
	}
	return rows, nil
}
