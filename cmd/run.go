package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/shelfpipe/config"
	"github.com/gaurav-prasanna/shelfpipe/core"
	"github.com/gaurav-prasanna/shelfpipe/core/extract"
	"github.com/gaurav-prasanna/shelfpipe/core/fetch"
	"github.com/gaurav-prasanna/shelfpipe/core/llm"
	"github.com/gaurav-prasanna/shelfpipe/core/normalize"
	"github.com/gaurav-prasanna/shelfpipe/core/output"
	"github.com/gaurav-prasanna/shelfpipe/core/pipeline"
	"github.com/gaurav-prasanna/shelfpipe/core/render"
)

// Flag variables.
var (
	flagURLsFile      string
	flagOutputDir     string
	flagSummaryPath   string
	flagBackend       string
	flagProvider      string
	flagModel         string
	flagMaxInputWords int
)

var runCmd = &cobra.Command{
	Use:   "run [url...]",
	Short: "Extract products from listing pages into one summary table",
	Long: `Run fetches every URL as Markdown, asks the LLM for the products on the page,
and writes <name>.md, <name>.json and <name>.xlsx per URL into the output directory.
Existing artifacts are reused, so re-running only does the work that is missing.
All rows end up in one summary file; a failed URL contributes a single ERROR row.

Examples:
  shelfpipe run https://shop.example/collections/disposables
  shelfpipe run --urls_file urls.txt --summary_path output/summary.csv
  shelfpipe run https://shop.example/shop --backend browser --provider ollama`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&flagURLsFile, "urls_file", "", "File with one URL per line (# starts a comment)")

	runCmd.Flags().StringVar(&flagOutputDir, "output_dir", "output", "Directory for per-URL artifacts")
	runCmd.Flags().StringVar(&flagSummaryPath, "summary_path", "output/summary.xlsx", "Summary file (.xlsx, .csv or .pdf)")

	runCmd.Flags().StringVar(&flagBackend, "backend", config.BackendFirecrawl, "Scraping backend: firecrawl, http or browser")
	runCmd.Flags().StringVar(&flagProvider, "provider", llm.ProviderGroq, "LLM provider: groq or ollama")
	runCmd.Flags().StringVar(&flagModel, "model", "", "LLM model (default depends on provider)")
	runCmd.Flags().IntVar(&flagMaxInputWords, "max_input_words", 0, "Send at most this many words of page text to the LLM (0 = all)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig, cmd.Flags())
	if err != nil {
		return err
	}

	urls, err := collectURLs(args, flagURLsFile, cfg.URLs)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given: pass them as arguments, with --urls_file, or under urls in the config file")
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	ctx := cmd.Context()

	// Initialize pipeline components.
	fetcher, err := newFetcher(cfg.Fetch, logger)
	if err != nil {
		return err
	}

	model, err := llm.New(llm.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return err
	}
	engine := extract.New(model, logger, extract.WithMaxInputWords(cfg.LLM.MaxInputWords))

	store, err := output.NewDirStore(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("initializing output store: %w", err)
	}
	summary, err := render.NewSummaryWriter(cfg.Output.SummaryPath)
	if err != nil {
		return err
	}

	var opts []pipeline.RunnerOption
	if cfg.Postgres.DSN != "" {
		sink, err := output.NewPostgresSink(ctx, cfg.Postgres.DSN, cfg.Postgres.Table, runID)
		if err != nil {
			logger.Warn("postgres mirror disabled", zap.Error(err))
		} else {
			defer sink.Close()
			opts = append(opts, pipeline.WithSink(sink))
		}
	}

	processor := pipeline.NewProcessor(store, fetcher, engine, logger, render.NewXLSXRenderer())
	report, err := pipeline.NewRunner(processor, summary, logger, opts...).Run(ctx, urls)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nSummary saved to %s (%d rows)\n", cfg.Output.SummaryPath, len(report.Rows))
	if report.Failed > 0 {
		fmt.Fprintf(os.Stderr, "%d/%d URLs failed\n", report.Failed, report.Total)
	}
	return nil
}

// newFetcher builds the scraping backend named in cfg.
func newFetcher(cfg config.FetchConfig, logger *zap.Logger) (core.Fetcher, error) {
	switch cfg.Backend {
	case config.BackendFirecrawl:
		return fetch.NewFirecrawl(cfg.FirecrawlAPIKey, cfg.FirecrawlBaseURL, logger), nil
	case config.BackendHTTP:
		return fetch.NewHTTP(normalize.New(), cfg.UserAgent, cfg.Timeout), nil
	case config.BackendBrowser:
		return fetch.NewBrowser(normalize.New(), cfg.ChromeBin, cfg.UserAgent, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown fetch backend %q", cfg.Backend)
	}
}

// collectURLs concatenates positional arguments, the URL file and the
// configured list, in that order.
func collectURLs(args []string, urlsFile string, configured []string) ([]string, error) {
	urls := append([]string{}, args...)
	if urlsFile != "" {
		fromFile, err := readURLsFile(urlsFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	return append(urls, configured...), nil
}

// readURLsFile reads one URL per line, skipping blank lines and # comments.
func readURLsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL file: %w", err)
	}
	return urls, nil
}
