package crawler

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"strings"

	"github.com/temoto/robotstxt"
)

// SitemapProber fetches a host's sitemaps and returns their URL entries as
// raw candidates. It runs at most once per host in a crawl, regardless of
// how many pages are crawled under that host.
//
// Sitemap locations are taken from the host's robots.txt "Sitemap:"
// declarations, with {hostRoot}/sitemap.xml as the fallback when robots.txt
// declares none.
//
// Design decision: We use github.com/temoto/robotstxt to read the Sitemap
// declarations rather than scanning lines ourselves because the format
// allows comments, mixed case, and interleaving with agent groups that a
// naive line scan gets wrong.
type SitemapProber struct {
	// fetcher performs the sitemap requests with the probe timeout.
	fetcher *Fetcher

	// maxEntries caps how many URL entries a single probe returns, to keep
	// huge sitemaps from flooding the frontier.
	maxEntries int

	// logger records parse problems at debug level.
	logger *slog.Logger
}

// defaultMaxSitemapEntries bounds sitemap output per host. Large sites
// publish sitemaps with millions of entries; the crawl's page cap would
// stop processing anyway, so collecting more is wasted work.
const defaultMaxSitemapEntries = 500

// NewSitemapProber creates a SitemapProber using the given fetcher.
func NewSitemapProber(fetcher *Fetcher, logger *slog.Logger) *SitemapProber {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapProber{
		fetcher:    fetcher,
		maxEntries: defaultMaxSitemapEntries,
		logger:     logger,
	}
}

// Probe returns the URL entries of the host's sitemaps as candidates with
// SourceSitemapEntry context. The caller classifies them exactly like
// page-extracted links. A missing or malformed sitemap yields an empty
// result; failure is silent and does not affect other discovery paths.
func (p *SitemapProber) Probe(ctx context.Context, hostRoot string) []Candidate {
	root := strings.TrimSuffix(hostRoot, "/")

	locations := p.sitemapLocations(ctx, root)
	if len(locations) == 0 {
		locations = []string{root + "/sitemap.xml"}
	}

	candidates := make([]Candidate, 0)
	for _, loc := range locations {
		if len(candidates) >= p.maxEntries {
			break
		}
		candidates = p.collect(ctx, loc, candidates, true)
	}
	return candidates
}

// sitemapLocations reads robots.txt Sitemap declarations for the host.
func (p *SitemapProber) sitemapLocations(ctx context.Context, root string) []string {
	result, err := p.fetcher.Fetch(ctx, root+"/robots.txt", "text/plain, */*")
	if err != nil {
		p.logger.Debug("robots.txt not available", "host", root, "error", err)
		return nil
	}

	robots, err := robotstxt.FromBytes(result.Body)
	if err != nil {
		p.logger.Debug("robots.txt parse failed", "host", root, "error", err)
		return nil
	}
	return robots.Sitemaps
}

// collect streams one sitemap document and appends its <url><loc> entries
// to candidates. A <sitemap><loc> entry (sitemap index) is followed one
// level deep; deeper nesting is ignored to bound the probe.
func (p *SitemapProber) collect(ctx context.Context, sitemapURL string, candidates []Candidate, followIndex bool) []Candidate {
	result, err := p.fetcher.Fetch(ctx, sitemapURL, "application/xml, text/xml;q=0.9, */*;q=0.5")
	if err != nil {
		p.logger.Debug("sitemap fetch failed", "url", sitemapURL, "error", err)
		return candidates
	}

	decoder := xml.NewDecoder(bytes.NewReader(result.Body))
	for len(candidates) < p.maxEntries {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.logger.Debug("sitemap parse failed", "url", sitemapURL, "error", err)
			break
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "url":
			var entry sitemapEntry
			if err := decoder.DecodeElement(&entry, &start); err != nil {
				continue
			}
			if loc := strings.TrimSpace(entry.Loc); loc != "" {
				candidates = append(candidates, Candidate{URL: loc, Source: SourceSitemapEntry})
			}
		case "sitemap":
			var entry sitemapEntry
			if err := decoder.DecodeElement(&entry, &start); err != nil {
				continue
			}
			if loc := strings.TrimSpace(entry.Loc); loc != "" && followIndex {
				candidates = p.collect(ctx, loc, candidates, false)
			}
		}
	}

	return candidates
}

// sitemapEntry is a <url> or <sitemap> element; only <loc> matters here.
type sitemapEntry struct {
	Loc string `xml:"loc"`
}
