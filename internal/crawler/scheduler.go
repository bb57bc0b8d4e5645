package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nao1215/feedlooker/internal/model"
	"golang.org/x/sync/errgroup"
)

// Discoverer crawls a website from a seed URL and collects syndication
// feed URLs. It manages a depth-bounded, breadth-first frontier and runs
// host-level probers once per host.
//
// A Discoverer is safe to reuse for sequential runs; all per-run state
// (visited set, result set, prober bookkeeping) is created inside Discover
// and discarded when it returns. Nothing is shared across runs.
type Discoverer struct {
	// fetcher retrieves pages with the full page timeout.
	fetcher *Fetcher

	// probeTimeout is the shorter timeout used for prober requests.
	probeTimeout time.Duration

	// maxDepth limits page-follow hops from the seed. The seed is depth 0;
	// depth 0 restricts the crawl to the seed page plus host probing.
	maxDepth int

	// maxPages caps the total number of pages fetched for link extraction.
	// Reaching the cap is an orderly completion, not an error.
	maxPages int

	// workers bounds concurrent fetches within a frontier layer.
	workers int

	// runTimeout is the overall wall-clock budget for one run.
	// Zero means no overall deadline beyond the caller's context.
	runTimeout time.Duration

	// delay is an optional politeness pause each worker takes before a
	// page fetch.
	delay time.Duration

	// ignorePatterns are glob patterns excluding URL paths from the crawl.
	ignorePatterns []string

	// probeSitemaps toggles the sitemap prober.
	probeSitemaps bool

	// probeCommonPaths toggles the common-path prober and root content
	// negotiation.
	probeCommonPaths bool

	// logger receives per-URL failures at debug level.
	logger *slog.Logger
}

// Default engine settings. The worker count follows the crawl's shape:
// fetches are the only suspension points and layers are typically small,
// so a small double-digit pool saturates most sites without hammering them.
const (
	// DefaultMaxDepth matches the original feed discoverer's default.
	DefaultMaxDepth = 2

	// DefaultMaxPages bounds runaway crawls on large sites.
	DefaultMaxPages = 100

	// DefaultWorkers is the bounded worker pool size.
	DefaultWorkers = 10

	// DefaultRunTimeout is the overall budget for one discovery run.
	DefaultRunTimeout = 2 * time.Minute

	// DefaultProbeTimeout is the short timeout for existence probes.
	DefaultProbeTimeout = 5 * time.Second
)

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed page, 1 = seed page plus linked pages, etc.
func WithMaxDepth(depth int) Option {
	return func(d *Discoverer) {
		d.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to fetch per run.
func WithMaxPages(maxPages int) Option {
	return func(d *Discoverer) {
		d.maxPages = maxPages
	}
}

// WithWorkers sets the bounded worker pool size for concurrent fetches.
func WithWorkers(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithRunTimeout sets the overall wall-clock budget for one run.
// When the budget is exhausted the run completes orderly with the feeds
// accumulated so far.
func WithRunTimeout(t time.Duration) Option {
	return func(d *Discoverer) {
		d.runTimeout = t
	}
}

// WithProbeTimeout sets the timeout for sitemap and common-path probes.
func WithProbeTimeout(t time.Duration) Option {
	return func(d *Discoverer) {
		d.probeTimeout = t
	}
}

// WithDelay sets a politeness delay before each page fetch.
func WithDelay(delay time.Duration) Option {
	return func(d *Discoverer) {
		d.delay = delay
	}
}

// WithIgnorePatterns sets URL path patterns to exclude from the crawl.
// Patterns use glob syntax (e.g., "/archive/*", "*.cgi").
func WithIgnorePatterns(patterns []string) Option {
	return func(d *Discoverer) {
		d.ignorePatterns = patterns
	}
}

// WithSitemapProbing toggles the sitemap prober. Enabled by default.
func WithSitemapProbing(enabled bool) Option {
	return func(d *Discoverer) {
		d.probeSitemaps = enabled
	}
}

// WithCommonPathProbing toggles the common-path prober and root content
// negotiation. Enabled by default.
func WithCommonPathProbing(enabled bool) Option {
	return func(d *Discoverer) {
		d.probeCommonPaths = enabled
	}
}

// WithDiscovererLogger sets the logger for per-URL diagnostics.
func WithDiscovererLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// WithFetcherOptions forwards options to the underlying page fetcher
// (timeout, User-Agent, headers, cookie, body size limit).
func WithFetcherOptions(opts ...FetcherOption) Option {
	return func(d *Discoverer) {
		for _, opt := range opts {
			opt(d.fetcher)
		}
	}
}

// NewDiscoverer creates a Discoverer on the given HTTP client.
//
// Design decision: We require an external client because:
//  1. Redirect and proxy policy belong to the caller
//  2. Connection pooling can be shared across runs
//  3. Tests can inject httptest clients
func NewDiscoverer(client *http.Client, opts ...Option) *Discoverer {
	d := &Discoverer{
		fetcher:          NewFetcher(client),
		probeTimeout:     DefaultProbeTimeout,
		maxDepth:         DefaultMaxDepth,
		maxPages:         DefaultMaxPages,
		workers:          DefaultWorkers,
		runTimeout:       DefaultRunTimeout,
		probeSitemaps:    true,
		probeCommonPaths: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// frontierEntry is a discovered-but-not-yet-processed URL tagged with its
// hop depth from the seed.
type frontierEntry struct {
	url   string
	depth int
}

// layerResult holds what one worker produced for one frontier entry.
// Slots are merged in enqueue order after the layer drains, which keeps
// the output order deterministic regardless of fetch completion order.
type layerResult struct {
	fetched    bool
	finalURL   string
	candidates []Candidate
}

// Discover runs a blocking discovery from rootURL and returns the report.
//
// The only errors it returns are input errors (ErrInvalidSeedURL,
// ErrNegativeDepth) detected before any fetch. Per-URL fetch and parse
// failures are recovered locally, and hitting the page cap or the run
// deadline is an orderly completion: the report carries the feeds found so
// far with TimedOut set.
func (d *Discoverer) Discover(ctx context.Context, rootURL string) (*model.DiscoveryReport, error) {
	return d.run(ctx, rootURL, nil)
}

// DiscoverAsync runs a discovery in a new goroutine and streams each feed
// on the returned channel as it is found, in the same order Discover would
// report it. The report channel receives the final report (or the input
// error) exactly once after the feed channel is closed.
func (d *Discoverer) DiscoverAsync(ctx context.Context, rootURL string) (<-chan model.Feed, <-chan AsyncResult) {
	feeds := make(chan model.Feed)
	done := make(chan AsyncResult, 1)

	go func() {
		defer close(feeds)
		defer close(done)

		report, err := d.run(ctx, rootURL, func(f model.Feed) {
			select {
			case feeds <- f:
			case <-ctx.Done():
			}
		})
		done <- AsyncResult{Report: report, Err: err}
	}()

	return feeds, done
}

// AsyncResult is the terminal value of DiscoverAsync.
type AsyncResult struct {
	// Report is the final discovery report. Nil only when Err is an input
	// error that prevented the run from starting.
	Report *model.DiscoveryReport

	// Err is an input validation error, or nil.
	Err error
}

// run is the engine shared by the blocking and streaming forms.
// emit, when non-nil, is called once for every newly discovered feed.
func (d *Discoverer) run(ctx context.Context, rootURL string, emit func(model.Feed)) (*model.DiscoveryReport, error) {
	if d.maxDepth < 0 {
		return nil, ErrNegativeDepth
	}
	seed, err := url.Parse(rootURL)
	if err != nil || !seed.IsAbs() || seed.Host == "" ||
		(seed.Scheme != "http" && seed.Scheme != "https") {
		return nil, ErrInvalidSeedURL
	}

	normalizedRoot := NormalizeURL(rootURL)
	report := model.NewDiscoveryReport(normalizedRoot)
	start := time.Now()

	runCtx := ctx
	var cancel context.CancelFunc
	if d.runTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, d.runTimeout)
		defer cancel()
	}

	state := &runState{
		visited:     newVisitedSet(),
		results:     newResultSet(),
		probedHosts: make(map[string]bool),
		emit:        emit,
	}

	pathProber := NewPathProber(probeFetcher(d.fetcher, d.probeTimeout), d.logger)
	sitemapProber := NewSitemapProber(probeFetcher(d.fetcher, d.probeTimeout), d.logger)

	baseHost := strings.ToLower(seed.Host)
	layer := []frontierEntry{{url: normalizedRoot, depth: 0}}
	state.visited.tryVisit(normalizedRoot)

	for len(layer) > 0 {
		if runCtx.Err() != nil {
			report.TimedOut = true
			break
		}

		slots := d.processLayer(runCtx, layer, state)

		// Merge in enqueue order: feeds into the result set, pages into
		// the next layer, and new hosts into the prober queue.
		var next []frontierEntry
		var newHosts []string
		for i, slot := range slots {
			if !slot.fetched {
				continue
			}
			report.PagesCrawled++

			if host := hostFromURL(slot.finalURL); host != "" && !state.probedHosts[host] {
				state.probedHosts[host] = true
				newHosts = append(newHosts, HostRoot(slot.finalURL))
			}

			next = append(next, d.mergeCandidates(slot.candidates, baseHost, layer[i].depth, state)...)
		}

		// Host-level probers run between the layer that discovered the
		// host and the next one, so prober hits precede deeper-page finds
		// in the output, matching the documented result ordering.
		for _, hostRoot := range newHosts {
			next = append(next, d.probeHost(runCtx, hostRoot, pathProber, sitemapProber, baseHost, state)...)
		}

		if state.capped.Load() || runCtx.Err() != nil {
			report.TimedOut = true
			break
		}

		layer = next
	}

	report.Feeds = state.results.list()
	report.Duration = time.Since(start)
	return report, nil
}

// runState is the shared mutable state of one run: the visited set, the
// result set, and per-host prober bookkeeping. probedHosts is only touched
// from the merge phase, which is single-threaded, so it needs no lock.
type runState struct {
	visited     *visitedSet
	results     *resultSet
	probedHosts map[string]bool
	pagesDone   atomic.Int64
	capped      atomic.Bool
	emit        func(model.Feed)
}

// addFeed inserts a feed and streams it when it is new.
func (s *runState) addFeed(feed model.Feed) {
	if s.results.add(feed) && s.emit != nil {
		s.emit(feed)
	}
}

// processLayer fetches and parses all entries of one frontier layer with a
// bounded worker pool. A layer is always drained completely before the next
// one starts, and every entry carries its own depth: layers are depth-
// homogeneous except for prober-injected sitemap entries, so the maxDepth
// bound is enforced per entry, not per layer.
func (d *Discoverer) processLayer(ctx context.Context, layer []frontierEntry, state *runState) []layerResult {
	slots := make([]layerResult, len(layer))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, entry := range layer {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if int(state.pagesDone.Add(1)) > d.maxPages {
				state.pagesDone.Add(-1)
				state.capped.Store(true)
				return nil
			}

			if d.delay > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(d.delay):
				}
			}

			result, err := d.fetcher.FetchPage(ctx, entry.url)
			if err != nil {
				// Fetch failures are non-fatal; the URL is dropped.
				state.pagesDone.Add(-1)
				d.logger.Debug("fetch skipped", "url", entry.url, "error", err)
				return nil
			}

			// Redirected pages count under their final URL, so a later
			// link straight to the target is not fetched twice.
			state.visited.tryVisit(result.URL)

			parser, err := NewParser(result.URL)
			if err != nil {
				return nil
			}
			candidates, err := parser.Parse(bytes.NewReader(result.Body))
			if err != nil {
				// Treated as "no candidates extracted from this page".
				d.logger.Debug("parse skipped", "url", result.URL, "error", err)
				candidates = nil
			}

			slots[i] = layerResult{fetched: true, finalURL: result.URL, candidates: candidates}
			return nil
		})
	}
	// Workers always return nil; Wait is for synchronization only.
	_ = g.Wait() //nolint:errcheck // Per-URL failures never abort the run

	return slots
}

// mergeCandidates classifies one page's candidates and returns the new
// frontier entries they produce. Feed candidates enter the result set;
// page candidates within the depth bound are enqueued once.
func (d *Discoverer) mergeCandidates(candidates []Candidate, baseHost string, depth int, state *runState) []frontierEntry {
	var next []frontierEntry
	for _, c := range candidates {
		switch Classify(c, baseHost, d.ignorePatterns) {
		case ClassFeed:
			state.addFeed(model.Feed{
				URL:    c.URL,
				Title:  c.Text,
				Source: feedSourceOf(c.Source),
				Host:   hostFromURL(c.URL),
			})
		case ClassPage:
			if depth+1 > d.maxDepth {
				continue
			}
			if state.visited.tryVisit(c.URL) {
				next = append(next, frontierEntry{url: NormalizeURL(c.URL), depth: depth + 1})
			}
		case ClassExcluded:
			// Terminal: dropped before frontier and result insertion.
		}
	}
	return next
}

// probeHost runs the common-path and sitemap probers for a newly
// encountered host. Prober order is fixed (common paths, sitemap, content
// negotiation) so that output stays deterministic. Sitemap page entries
// join the frontier at depth 1, one hop from the host's metadata, no
// matter how deep the crawl was when the host appeared. The next layer can
// therefore hold mixed depths; the per-entry depth in frontierEntry keeps
// the maxDepth bound exact.
func (d *Discoverer) probeHost(ctx context.Context, hostRoot string, paths *PathProber, sitemaps *SitemapProber, baseHost string, state *runState) []frontierEntry {
	if hostRoot == "" {
		return nil
	}

	var next []frontierEntry

	if d.probeCommonPaths {
		for _, feed := range paths.Probe(ctx, hostRoot) {
			state.addFeed(feed)
		}
	}

	if d.probeSitemaps {
		candidates := sitemapProbe(ctx, sitemaps, hostRoot)
		next = d.mergeCandidates(candidates, baseHost, 0, state)
	}

	if d.probeCommonPaths {
		if feed, ok := paths.Negotiate(ctx, hostRoot); ok {
			state.addFeed(feed)
		}
	}

	return next
}

// sitemapProbe isolates the prober call so a panic-free nil prober path is
// trivial to test.
func sitemapProbe(ctx context.Context, p *SitemapProber, hostRoot string) []Candidate {
	if p == nil {
		return nil
	}
	return p.Probe(ctx, hostRoot)
}

// feedSourceOf maps a candidate source to the report-level feed source.
func feedSourceOf(s CandidateSource) model.FeedSource {
	switch s {
	case SourceLinkElement:
		return model.SourceLinkTag
	case SourceMetaTag:
		return model.SourceMeta
	case SourceSitemapEntry:
		return model.SourceSitemap
	default:
		return model.SourceAnchor
	}
}
