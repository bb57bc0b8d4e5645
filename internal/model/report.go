package model

import "time"

// DiscoveryReport is the complete result of one discovery run.
// It is created by the crawler when a run finishes (or is cut short by a
// cap) and consumed by the report writers and the history database.
type DiscoveryReport struct {
	// RunID uniquely identifies this run. Assigned when the report is
	// persisted; empty for runs that are not saved.
	RunID string `json:"run_id,omitempty"`

	// RootURL is the normalized seed URL the crawl started from.
	RootURL string `json:"root_url"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time the run took.
	Duration time.Duration `json:"duration"`

	// PagesCrawled is the number of pages fetched for link extraction.
	// Prober requests (sitemap, common paths) are not counted here.
	PagesCrawled int `json:"pages_crawled"`

	// Feeds holds the discovered feeds in discovery order, deduplicated
	// by normalized URL.
	Feeds []Feed `json:"feeds"`

	// TimedOut reports whether the run was cut short by the run deadline
	// or the page cap. Partial results are still valid results.
	TimedOut bool `json:"timed_out,omitempty"`
}

// NewDiscoveryReport creates a report for the given seed URL with the
// start time set to now.
func NewDiscoveryReport(rootURL string) *DiscoveryReport {
	return &DiscoveryReport{
		RootURL:   rootURL,
		StartedAt: time.Now(),
		Feeds:     make([]Feed, 0),
	}
}

// FeedURLs returns just the feed URLs in discovery order.
// This is the caller-facing contract: an ordered, deduplicated sequence.
func (r *DiscoveryReport) FeedURLs() []string {
	urls := make([]string, len(r.Feeds))
	for i, f := range r.Feeds {
		urls[i] = f.URL
	}
	return urls
}

// FeedCount returns the number of discovered feeds.
func (r *DiscoveryReport) FeedCount() int {
	return len(r.Feeds)
}
