package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the crawl engine defaults so that the CLI and the library
// behave identically when a flag is left unset.
const (
	// DefaultTimeout is the per-page HTTP timeout. 20 seconds covers slow
	// origin servers and shared hosting without stalling a whole run on a
	// single unresponsive page.
	DefaultTimeout = 20 * time.Second

	// DefaultMaxDepth of 2 reaches the typical "blog index behind an about
	// page" layout. Feeds are almost always referenced within two hops of
	// the front page; deeper crawls mostly re-find the same feeds.
	DefaultMaxDepth = 2

	// DefaultMaxPages caps pages fetched per run. This prevents runaway
	// crawling on large or infinitely-generating sites.
	DefaultMaxPages = 100

	// DefaultWorkers is the concurrent fetch limit within a run.
	// Ten connections saturate most sites without tripping rate limits.
	DefaultWorkers = 10

	// DefaultRunTimeout is the overall wall-clock budget per seed.
	DefaultRunTimeout = 2 * time.Minute

	// DefaultProbeTimeout is the short timeout used when probing common
	// feed paths and sitemaps. Probes are existence checks and should fail
	// fast; the page timeout would make a host with many missing paths slow.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultBatchSize of 3 concurrent seeds balances throughput with
	// resource usage when discovering feeds for a list of sites.
	DefaultBatchSize = 3

	// AppName is the application name used for XDG directory paths.
	AppName = "feedlooker"

	// DefaultUserAgent identifies feedlooker in HTTP requests.
	// A descriptive User-Agent lets site operators identify the traffic.
	DefaultUserAgent = "feedlooker/1.0 (+https://github.com/nao1215/feedlooker)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for feedlooker.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Timeout is the HTTP timeout for each page fetch.
	// This applies to individual requests, not the overall run duration.
	Timeout time.Duration

	// MaxDepth is the maximum link-follow depth from each seed URL.
	// Depth 0 means only fetch the seed page (host probing still runs).
	MaxDepth int

	// MaxPages is the maximum number of pages to fetch per seed.
	// Hitting the cap ends the run orderly with the feeds found so far.
	MaxPages int

	// Workers is the number of concurrent page fetches within one run.
	Workers int

	// RunTimeout is the overall wall-clock budget per seed.
	// Zero disables the per-run deadline.
	RunTimeout time.Duration

	// ProbeTimeout is the timeout for common-path and sitemap probes.
	ProbeTimeout time.Duration

	// Delay is a politeness pause before each page fetch.
	// Zero (the default) disables it; probes are unaffected.
	Delay time.Duration

	// NoSitemap disables sitemap probing.
	NoSitemap bool

	// NoCommonPaths disables common feed path probing and root content
	// negotiation.
	NoCommonPaths bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of seeds discovered concurrently when more
	// than one seed is given.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .feedlooker in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host configurations loaded from the config file.
	// This is populated by LoadConfigFile and consulted per seed.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Seeds is the list of site URLs to discover feeds for.
	// Must contain at least one absolute http(s) URL.
	Seeds []string

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/feedlooker on
	// Linux) when SaveToDB is set without an explicit directory.
	DBDir string

	// SaveToDB indicates whether to save run results to the history
	// database. When false (the default), nothing is persisted between runs.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Set to 0 for the default.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, depth).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		MaxDepth:     DefaultMaxDepth,
		MaxPages:     DefaultMaxPages,
		Workers:      DefaultWorkers,
		RunTimeout:   DefaultRunTimeout,
		ProbeTimeout: DefaultProbeTimeout,
		BatchSize:    DefaultBatchSize,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for feedlooker.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/feedlooker
// On macOS: ~/Library/Application Support/feedlooker
// On Windows: %LOCALAPPDATA%\feedlooker
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for feedlooker.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/feedlooker
// On macOS: ~/Library/Application Support/feedlooker
// On Windows: %APPDATA%\feedlooker
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any discovery begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one seed to discover feeds for
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// MaxDepth must be non-negative; -1 has no hop-count meaning
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}

	// Workers must be positive; zero would mean no fetching at all
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// BatchSize must be positive; zero would mean no runs
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// Delay must be non-negative
	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
