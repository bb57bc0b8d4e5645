package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/feedlooker/internal/config"
	"github.com/nao1215/feedlooker/internal/crawler"
	"github.com/nao1215/feedlooker/internal/database"
	"github.com/nao1215/feedlooker/internal/log"
	"github.com/nao1215/feedlooker/internal/model"
	"github.com/nao1215/feedlooker/internal/report"
	"github.com/spf13/cobra"
)

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [url]...",
		Short: "Discover RSS/Atom feeds for one or more websites",
		Long: `Discover crawls each given site and reports the syndication feeds it finds.

For every site it:
- Fetches pages breadth-first up to the configured depth
- Inspects <link>, <a>, and <meta> tags for feed references
- Probes common feed paths (/rss, /feed, /atom.xml, ...)
- Reads the sitemap for additional pages and feeds
- Asks the site root for a feed via content negotiation

Examples:
  # Discover feeds for a single site
  feedlooker discover https://example.com

  # Discover feeds for several sites concurrently
  feedlooker discover https://a.example https://b.example https://c.example

  # Shallow, fast check of just the front page
  feedlooker discover --depth 0 https://example.com

  # Output a Markdown report to a file
  feedlooker discover --markdown -o report.md https://example.com

  # Save the run to the history database
  feedlooker discover --save https://example.com

Configuration file (.feedlooker) example:
  sites:
    blog.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
    news.example.org:
      depth: 3
      ignorePatterns:
        - "/archive/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runDiscoverCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each page fetch")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link-follow depth (0 = seed page only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per site")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent page fetches per site")
	cmd.Flags().Duration("run-timeout", config.DefaultRunTimeout,
		"Overall wall-clock budget per site (0 disables)")
	cmd.Flags().Duration("probe-timeout", config.DefaultProbeTimeout,
		"Timeout for common-path and sitemap probes")
	cmd.Flags().Duration("delay", 0,
		"Politeness delay before each page fetch")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for HTTP requests")
	cmd.Flags().Bool("no-sitemap", false,
		"Disable sitemap probing")
	cmd.Flags().Bool("no-common-paths", false,
		"Disable common feed path probing and content negotiation")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites discovered concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .feedlooker in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().BoolP("save", "s", false,
		"Save the run to the history database")

	return cmd
}

// runDiscoverCmd executes the discover command.
func runDiscoverCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking; per-site configs
	// may carry cookies and auth headers.
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runDiscovery(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.RunTimeout, err = cmd.Flags().GetDuration("run-timeout")
	if err != nil {
		return nil, err
	}

	cfg.ProbeTimeout, err = cmd.Flags().GetDuration("probe-timeout")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.NoSitemap, err = cmd.Flags().GetBool("no-sitemap")
	if err != nil {
		return nil, err
	}

	cfg.NoCommonPaths, err = cmd.Flags().GetBool("no-common-paths")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If the user explicitly specified a config file path, error if not
	// found. If no path specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}
	if cfg.SaveToDB {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the seed URLs
	cfg.Seeds = args

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runDiscovery executes the discovery runs.
func runDiscovery(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting discovery",
		"seeds", len(cfg.Seeds),
		"depth", cfg.MaxDepth,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open the history database only when saving is enabled; by default a
	// run persists nothing.
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // Best effort cleanup
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	// One HTTP client shared by all runs so connections are pooled.
	client := &http.Client{}

	var reports []*model.DiscoveryReport
	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		reports = runBatchDiscovery(ctx, cfg, client, db, logger)
	} else {
		reports = runSequentialDiscovery(ctx, cfg, client, db, logger)
	}

	return outputReports(cfg, reports)
}

// runSequentialDiscovery discovers seeds one at a time, applying each
// seed's site-specific configuration.
func runSequentialDiscovery(ctx context.Context, cfg *config.Config, client *http.Client, db *database.HistoryDB, logger *slog.Logger) []*model.DiscoveryReport {
	reports := make([]*model.DiscoveryReport, 0, len(cfg.Seeds))
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return reports
		default:
		}

		siteConfig := getSiteConfig(cfg, seed)
		d := newDiscovererForSite(client, logger, cfg, siteConfig)

		fmt.Printf("Discovering feeds for %s...\n", seed)
		startTime := time.Now()

		runReport, err := d.Discover(ctx, seed)
		if err != nil {
			logger.Error("discovery failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Discovery error for %s: %v\n", seed, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Found %d feed(s) in %s\n\n", runReport.FeedCount(), elapsed.Round(time.Millisecond))

		saveRun(ctx, db, runReport, logger)
		reports = append(reports, runReport)
	}
	return reports
}

// runBatchDiscovery discovers multiple seeds concurrently.
// Batch mode uses the default site config for every seed; per-site
// settings require sequential mode because all seeds share one engine.
func runBatchDiscovery(ctx context.Context, cfg *config.Config, client *http.Client, db *database.HistoryDB, logger *slog.Logger) []*model.DiscoveryReport {
	fmt.Printf("Starting batch discovery of %d sites (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch mode uses default site config only; site-specific configs are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use --batch 1 to apply per-site settings.\n\n")
	}

	var siteConfig config.SiteConfig
	if cfg.SiteConfigs != nil {
		siteConfig = cfg.SiteConfigs.Defaults
	}
	d := newDiscovererForSite(client, logger, cfg, siteConfig)

	batch := crawler.NewBatchDiscoverer(d,
		crawler.WithBatchConcurrency(cfg.BatchSize),
		crawler.WithBatchLogger(logger),
	)

	startTime := time.Now()

	var mu sync.Mutex
	reports := batch.Discover(ctx, cfg.Seeds, func(runReport *model.DiscoveryReport, err error, index int) {
		mu.Lock()
		defer mu.Unlock()

		if err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Discovery error for %s: %v\n", index+1, len(cfg.Seeds), cfg.Seeds[index], err)
			return
		}

		fmt.Printf("[%d/%d] %s: %d feed(s)\n", index+1, len(cfg.Seeds), runReport.RootURL, runReport.FeedCount())
		saveRun(ctx, db, runReport, logger)
	})

	fmt.Printf("\nBatch discovery completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

	return reports
}

// getSiteConfig returns the site-specific configuration for a seed URL.
// Falls back to defaults when no site-specific config exists.
func getSiteConfig(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	u, err := url.Parse(seed)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// newDiscovererForSite creates a discovery engine with the given
// configuration applied.
func newDiscovererForSite(client *http.Client, logger *slog.Logger, cfg *config.Config, siteConfig config.SiteConfig) *crawler.Discoverer {
	// Site-specific depth overrides the global one
	maxDepth := cfg.MaxDepth
	if siteConfig.Depth > 0 {
		maxDepth = siteConfig.Depth
	}

	fetcherOpts := []crawler.FetcherOption{
		crawler.WithFetchTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
	}
	if cfg.MaxBodySize > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithMaxBodySize(cfg.MaxBodySize))
	}
	if siteConfig.Cookie != "" {
		fetcherOpts = append(fetcherOpts, crawler.WithCookie(siteConfig.Cookie))
	}
	if len(siteConfig.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithHeaders(siteConfig.Headers))
	}

	opts := []crawler.Option{
		crawler.WithMaxDepth(maxDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithRunTimeout(cfg.RunTimeout),
		crawler.WithProbeTimeout(cfg.ProbeTimeout),
		crawler.WithDelay(cfg.Delay),
		crawler.WithSitemapProbing(!cfg.NoSitemap),
		crawler.WithCommonPathProbing(!cfg.NoCommonPaths),
		crawler.WithDiscovererLogger(logger),
		crawler.WithFetcherOptions(fetcherOpts...),
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		opts = append(opts, crawler.WithIgnorePatterns(siteConfig.IgnorePatterns))
	}

	return crawler.NewDiscoverer(client, opts...)
}

// outputReports writes the reports in the requested format.
func outputReports(cfg *config.Config, reports []*model.DiscoveryReport) error {
	if len(reports) == 0 {
		return nil
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// 0600: reports may carry URLs from authenticated crawls
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Best effort cleanup
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if len(reports) == 1 {
		_, err := writer.Write(reports[0])
		return err
	}
	_, err := writer.WriteAll(reports)
	return err
}

// saveRun saves the run to the history database if enabled.
// If db is nil, this function is a no-op.
func saveRun(ctx context.Context, db *database.HistoryDB, runReport *model.DiscoveryReport, logger *slog.Logger) {
	if db == nil {
		return
	}

	if err := db.SaveRun(ctx, runReport); err != nil {
		logger.Error("failed to save run", "site", runReport.RootURL, "error", err)
		return
	}
	logger.Info("run saved", "site", runReport.RootURL, "runID", runReport.RunID)
}
