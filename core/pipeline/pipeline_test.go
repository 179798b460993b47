package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/core"
	"github.com/gaurav-prasanna/shelfpipe/core/extract"
	"github.com/gaurav-prasanna/shelfpipe/core/fetch"
	"github.com/gaurav-prasanna/shelfpipe/core/output"
	"github.com/gaurav-prasanna/shelfpipe/core/render"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

type fakeFetcher struct {
	pages map[string]string
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*core.FetchResult, error) {
	f.calls++
	md, ok := f.pages[url]
	if !ok || md == "" {
		return nil, &fetch.NoContentError{URL: url}
	}
	return &core.FetchResult{URL: url, StatusCode: 200, Markdown: md}, nil
}

type fakeExtractor struct {
	listings map[string]*schema.Listing
	err      error
	calls    int
}

func (e *fakeExtractor) Extract(_ context.Context, text string) (*schema.Listing, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	l, ok := e.listings[text]
	if !ok {
		return nil, errors.New("no listing for text")
	}
	items := make([]schema.ProductRecord, len(l.Items))
	copy(items, l.Items)
	return &schema.Listing{Items: items}, nil
}

type memSummary struct {
	rows []schema.Row
	err  error
}

func (m *memSummary) WriteSummary(_ context.Context, rows []schema.Row) error {
	m.rows = rows
	return m.err
}

func record(name, link string) schema.ProductRecord {
	r := schema.NewProductRecord()
	r.ProductName = name
	r.ProductLink = link
	return r
}

func newTestProcessor(t *testing.T, dir string, f core.Fetcher, e Extractor) *Processor {
	t.Helper()
	store, err := output.NewDirStore(dir)
	require.NoError(t, err)
	return NewProcessor(store, f, e, zap.NewNop(), render.NewXLSXRenderer())
}

func TestProcess_FreshRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	url := "https://shop.example/c/disposables"
	f := &fakeFetcher{pages: map[string]string{url: "# Disposables"}}
	e := &fakeExtractor{listings: map[string]*schema.Listing{
		"# Disposables": {Items: []schema.ProductRecord{record("Cloud Bar", "https://shop.example/p/cloud")}},
	}}

	res := newTestProcessor(t, dir, f, e).Process(context.Background(), url)
	require.NoError(t, res.Err)
	assert.Equal(t, []schema.Row{{
		URL:                url,
		ProductDescription: "Cloud Bar",
		ProductLink:        "https://shop.example/p/cloud",
	}}, res.Rows)

	base := output.BaseName(url)
	md, err := os.ReadFile(filepath.Join(dir, base+".md"))
	require.NoError(t, err)
	assert.Equal(t, "# Disposables", string(md))

	data, err := os.ReadFile(filepath.Join(dir, base+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"url": "`+url+`"`)
	assert.FileExists(t, filepath.Join(dir, base+".xlsx"))
}

func TestProcess_CacheHitSkipsFetchAndExtract(t *testing.T) {
	dir := t.TempDir()
	url := "https://shop.example/c/pods"
	f := &fakeFetcher{pages: map[string]string{url: "pods page"}}
	e := &fakeExtractor{listings: map[string]*schema.Listing{
		"pods page": {Items: []schema.ProductRecord{record("Pod A", "n/a"), record("Pod B", "n/a")}},
	}}

	first := newTestProcessor(t, dir, f, e).Process(context.Background(), url)
	require.NoError(t, first.Err)
	jsonPath := filepath.Join(dir, output.BaseName(url)+".json")
	before, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	second := newTestProcessor(t, dir, f, e).Process(context.Background(), url)
	require.NoError(t, second.Err)

	after, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 1, e.calls)
	assert.True(t, bytes.Equal(before, after))
	assert.Equal(t, first.Rows, second.Rows)
}

func TestProcess_RawCacheHitStillExtracts(t *testing.T) {
	dir := t.TempDir()
	url := "https://shop.example/c/new"
	require.NoError(t, os.WriteFile(filepath.Join(dir, output.BaseName(url)+".md"), []byte("cached text"), 0644))

	f := &fakeFetcher{}
	e := &fakeExtractor{listings: map[string]*schema.Listing{
		"cached text": {Items: []schema.ProductRecord{record("X", "n/a")}},
	}}

	res := newTestProcessor(t, dir, f, e).Process(context.Background(), url)
	require.NoError(t, res.Err)
	assert.Zero(t, f.calls)
	assert.Equal(t, 1, e.calls)
}

func TestProcess_CachedRecordWithoutURLUsesSource(t *testing.T) {
	dir := t.TempDir()
	url := "https://shop.example/legacy"
	base := output.BaseName(url)
	require.NoError(t, os.WriteFile(filepath.Join(dir, base+".md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, base+".json"),
		[]byte(`{"items": [{"product_name": "Old", "product_link": "https://l"}]}`), 0644))

	res := newTestProcessor(t, dir, &fakeFetcher{}, &fakeExtractor{}).Process(context.Background(), url)
	require.NoError(t, res.Err)
	assert.Equal(t, []schema.Row{{URL: url, ProductDescription: "Old", ProductLink: "https://l"}}, res.Rows)
}

func TestProcess_Failures(t *testing.T) {
	url := "https://shop.example/broken"

	tests := []struct {
		name      string
		fetcher   *fakeFetcher
		extractor *fakeExtractor
		stage     Stage
	}{
		{
			name:      "no content",
			fetcher:   &fakeFetcher{},
			extractor: &fakeExtractor{},
			stage:     StageFetch,
		},
		{
			name:      "extraction fails",
			fetcher:   &fakeFetcher{pages: map[string]string{url: "text"}},
			extractor: &fakeExtractor{err: errors.New("model unreachable")},
			stage:     StageExtract,
		},
		{
			name:    "empty listing",
			fetcher: &fakeFetcher{pages: map[string]string{url: "text"}},
			extractor: &fakeExtractor{listings: map[string]*schema.Listing{
				"text": {Items: []schema.ProductRecord{}},
			}},
			stage: StageReduce,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestProcessor(t, t.TempDir(), tt.fetcher, tt.extractor).Process(context.Background(), url)
			require.Error(t, res.Err)

			var pe *PipelineError
			require.ErrorAs(t, res.Err, &pe)
			assert.Equal(t, tt.stage, pe.Stage)
			assert.Equal(t, url, pe.URL)

			rows := res.Flatten()
			require.Len(t, rows, 1)
			assert.True(t, rows[0].IsError())
			assert.Equal(t, url, rows[0].URL)
		})
	}
}

func TestProcess_NoContentLeavesNoArtifacts(t *testing.T) {
	dir := t.TempDir()
	url := "https://shop.example/empty"

	res := newTestProcessor(t, dir, &fakeFetcher{}, &fakeExtractor{}).Process(context.Background(), url)
	var nc *fetch.NoContentError
	require.ErrorAs(t, res.Err, &nc)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunner_MixedBatch(t *testing.T) {
	dir := t.TempDir()
	urlA := "https://a.example/list"
	urlB := "https://b.example/list"
	f := &fakeFetcher{pages: map[string]string{urlA: "page a"}}
	e := &fakeExtractor{listings: map[string]*schema.Listing{
		"page a": {Items: []schema.ProductRecord{
			record("Item 1", "https://a.example/1"),
			record("Item 2", "https://a.example/2"),
		}},
	}}
	summary := &memSummary{}
	secondary := &memSummary{err: errors.New("db down")}
	var progress bytes.Buffer

	runner := NewRunner(newTestProcessor(t, dir, f, e), summary, zap.NewNop(),
		WithSink(secondary), WithProgress(&progress))
	report, err := runner.Run(context.Background(), []string{urlA, urlB})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, summary.rows, 3)
	assert.Equal(t, schema.Row{URL: urlA, ProductDescription: "Item 1", ProductLink: "https://a.example/1"}, summary.rows[0])
	assert.Equal(t, schema.Row{URL: urlA, ProductDescription: "Item 2", ProductLink: "https://a.example/2"}, summary.rows[1])
	assert.Equal(t, urlB, summary.rows[2].URL)
	assert.Equal(t, schema.ErrorDescription, summary.rows[2].ProductDescription)
	assert.Contains(t, summary.rows[2].ProductLink, "no markdown found")
	assert.Len(t, secondary.rows, 3)

	out := progress.String()
	assert.Contains(t, out, "[1/2] Processing "+urlA)
	assert.Contains(t, out, "[2/2] Processing "+urlB)
	assert.Equal(t, 1, strings.Count(out, "✓"))
	assert.Equal(t, 1, strings.Count(out, "✗"))
}

func TestRunner_EmptyURLListWritesEmptySummary(t *testing.T) {
	summary := &memSummary{}
	runner := NewRunner(newTestProcessor(t, t.TempDir(), &fakeFetcher{}, &fakeExtractor{}),
		summary, zap.NewNop(), WithProgress(&bytes.Buffer{}))

	report, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.NotNil(t, summary.rows)
	assert.Empty(t, summary.rows)
}

func TestRunner_SummaryFailureIsReturned(t *testing.T) {
	summary := &memSummary{err: errors.New("disk full")}
	runner := NewRunner(newTestProcessor(t, t.TempDir(), &fakeFetcher{}, &fakeExtractor{}),
		summary, zap.NewNop(), WithProgress(&bytes.Buffer{}))

	_, err := runner.Run(context.Background(), []string{"https://x.example/"})
	assert.ErrorContains(t, err, "writing summary")
}

// replayModel answers each Complete call with the next scripted reply.
type replayModel struct {
	replies []string
	calls   int
}

func (m *replayModel) Complete(_ context.Context, _ []core.Message) (string, error) {
	if m.calls >= len(m.replies) {
		return "", errors.New("unexpected model call")
	}
	reply := m.replies[m.calls]
	m.calls++
	return reply, nil
}

func TestRunner_UnrepairableOutputBecomesOneErrorRow(t *testing.T) {
	urlA := "https://a.example/list"
	urlB := "https://b.example/list"
	f := &fakeFetcher{pages: map[string]string{urlA: "page a", urlB: "page b"}}
	model := &replayModel{replies: []string{
		"I could not find any products on this page.",
		"Sorry, still nothing to report.",
		`{"items": [{"product_name": "Pod", "product_link": "https://b.example/pod"}]}`,
	}}
	engine := extract.New(model, zap.NewNop())
	summary := &memSummary{}

	runner := NewRunner(newTestProcessor(t, t.TempDir(), f, engine), summary, zap.NewNop(),
		WithProgress(&bytes.Buffer{}))
	report, err := runner.Run(context.Background(), []string{urlA, urlB})
	require.NoError(t, err)

	assert.Equal(t, 3, model.calls)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, summary.rows, 2)

	errRow := summary.rows[0]
	assert.Equal(t, urlA, errRow.URL)
	assert.True(t, errRow.IsError())
	assert.Contains(t, errRow.ProductLink, "Raw Output:")
	assert.Contains(t, errRow.ProductLink, "I could not find any products")

	assert.Equal(t, schema.Row{URL: urlB, ProductDescription: "Pod", ProductLink: "https://b.example/pod"}, summary.rows[1])
}
