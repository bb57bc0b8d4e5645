package crawler

import (
	"bytes"
	"context"
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/feedlooker/internal/model"
	"golang.org/x/sync/errgroup"
)

// commonFeedPaths are well-known paths conventionally used to host a feed.
// They are probed directly against each host root, independent of what the
// pages link to.
var commonFeedPaths = []string{"/rss", "/feed", "/feeds", "/atom.xml", "/rss.xml"}

// feedAcceptHeader asks a server to serve its feed representation via
// content negotiation.
const feedAcceptHeader = "application/rss+xml, application/atom+xml;q=0.9, application/xml;q=0.8"

// PathProber issues direct probes against well-known feed paths relative
// to a host root. It runs at most once per host in a crawl.
//
// Design decision: A successful probe bypasses the keyword classifier
// because the path alone is the signal; the prober only verifies that the
// endpoint answers with something XML-shaped, to avoid recording soft-404
// HTML pages as feeds.
type PathProber struct {
	// fetcher performs the probe requests with a short timeout.
	fetcher *Fetcher

	// logger records skipped probes at debug level.
	logger *slog.Logger
}

// NewPathProber creates a PathProber using the given fetcher.
// The fetcher should be configured with the probe timeout, which is
// typically much shorter than the page fetch timeout.
func NewPathProber(fetcher *Fetcher, logger *slog.Logger) *PathProber {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathProber{fetcher: fetcher, logger: logger}
}

// Probe checks every common feed path under hostRoot concurrently and
// returns the ones that respond with XML, in the fixed path order so that
// output is deterministic. Failures are silent: a missing path is simply
// not a feed.
func (p *PathProber) Probe(ctx context.Context, hostRoot string) []model.Feed {
	root := strings.TrimSuffix(hostRoot, "/")
	results := make([]*model.Feed, len(commonFeedPaths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range commonFeedPaths {
		feedURL := root + path
		g.Go(func() error {
			result, err := p.fetcher.Fetch(ctx, feedURL, feedAcceptHeader)
			if err != nil {
				p.logger.Debug("common path probe failed", "url", feedURL, "error", err)
				return nil
			}
			if !looksLikeXML(result) {
				p.logger.Debug("common path is not a feed", "url", feedURL, "contentType", result.ContentType)
				return nil
			}
			results[i] = &model.Feed{
				URL:    result.URL,
				Source: model.SourceCommonPath,
				Host:   hostFromURL(result.URL),
			}
			return nil
		})
	}
	// Workers only ever return nil; Wait is for synchronization.
	_ = g.Wait() //nolint:errcheck // Probe failures are silent

	feeds := make([]model.Feed, 0, len(results))
	for _, f := range results {
		if f != nil {
			feeds = append(feeds, *f)
		}
	}
	return feeds
}

// Negotiate asks the host root itself for a feed representation.
// Some sites serve their feed directly at the root when the client sends
// an RSS Accept header. An XML answer means the root URL is a feed.
func (p *PathProber) Negotiate(ctx context.Context, hostRoot string) (model.Feed, bool) {
	result, err := p.fetcher.Fetch(ctx, hostRoot, feedAcceptHeader)
	if err != nil {
		p.logger.Debug("content negotiation failed", "url", hostRoot, "error", err)
		return model.Feed{}, false
	}
	if !looksLikeXML(result) {
		return model.Feed{}, false
	}
	return model.Feed{
		URL:    result.URL,
		Source: model.SourceNegotiation,
		Host:   hostFromURL(result.URL),
	}, true
}

// looksLikeXML reports whether a response is plausibly a syndication
// document: an XML content type, or a body that parses as XML when the
// server mislabels it. Full feed validation is out of scope; this check
// only filters out HTML masquerading behind a 200.
func looksLikeXML(result *FetchResult) bool {
	if result.IsHTML() {
		return false
	}
	if result.IsXML() {
		return true
	}

	decoder := xml.NewDecoder(bytes.NewReader(result.Body))
	for {
		token, err := decoder.Token()
		if err != nil {
			return false
		}
		if _, ok := token.(xml.StartElement); ok {
			return true
		}
	}
}

// hostFromURL extracts the lower-cased host of a URL for report grouping.
func hostFromURL(rawURL string) string {
	root := HostRoot(rawURL)
	if root == "" {
		return ""
	}
	trimmed := strings.TrimSuffix(root, "/")
	if _, host, ok := strings.Cut(trimmed, "://"); ok {
		return host
	}
	return ""
}

// probeFetcher derives a fetcher tuned for probing from base settings.
// Probes use a short timeout and a small body limit because only the
// document prologue matters.
func probeFetcher(f *Fetcher, timeout time.Duration) *Fetcher {
	return NewFetcher(f.client,
		WithFetchTimeout(timeout),
		WithUserAgent(f.userAgent),
		WithMaxBodySize(256*1024),
		WithHeaders(f.headers),
		WithCookie(f.cookie),
	)
}
