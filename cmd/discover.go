package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/shelfpipe/config"
	"github.com/gaurav-prasanna/shelfpipe/core/fetch"
	"github.com/gaurav-prasanna/shelfpipe/crawl"
)

var flagMaxPages int

var discoverCmd = &cobra.Command{
	Use:   "discover <url>",
	Short: "List the product-listing pages of a storefront",
	Long: `Discover reads the site's sitemap.xml (falling back to a same-domain link crawl)
and prints every collection or category page it finds, one per line, ready
to be used as a --urls_file for the run command.

Examples:
  shelfpipe discover https://shop.example > urls.txt
  shelfpipe discover https://shop.example --max_pages 300`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().IntVar(&flagMaxPages, "max_pages", 100, "Maximum pages to visit when crawling links")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fmt.Fprintf(os.Stderr, "Discovering listing pages from %s...\n", args[0])

	fetcher := fetch.NewHTTP(nil, cfg.Fetch.UserAgent, cfg.Fetch.Timeout)
	urls, err := crawl.NewDiscoverer(fetcher, flagMaxPages, logger).DiscoverListings(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}

	for _, u := range urls {
		fmt.Fprintln(os.Stdout, u)
	}
	fmt.Fprintf(os.Stderr, "Found %d listing pages\n", len(urls))
	return nil
}
