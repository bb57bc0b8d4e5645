package model

// FeedSource describes how a feed URL was discovered.
// It is recorded for reporting and for ordering diagnostics; two discovery
// runs against an unchanged site produce the same sources in the same order.
type FeedSource string

// Feed discovery sources, in rough order of reliability.
const (
	// SourceLinkTag means the feed was declared by a <link> element with an
	// RSS or Atom MIME type. This is the most reliable signal a site can give.
	SourceLinkTag FeedSource = "link-tag"

	// SourceAnchor means an <a> element's href or visible text contained a
	// feed keyword (rss, feed, atom).
	SourceAnchor FeedSource = "anchor"

	// SourceMeta means a <meta name="rss-feed"> element pointed at the feed.
	SourceMeta FeedSource = "meta"

	// SourceCommonPath means a well-known feed path (/rss, /feed, ...) on the
	// host answered a direct probe with XML content.
	SourceCommonPath FeedSource = "common-path"

	// SourceSitemap means the URL came from the host's sitemap and its path
	// matched feed patterns.
	SourceSitemap FeedSource = "sitemap"

	// SourceNegotiation means the host root itself served XML when asked for
	// application/rss+xml via content negotiation.
	SourceNegotiation FeedSource = "negotiation"
)

// Feed represents a single discovered RSS or Atom feed.
//
// Design decision: We carry the title and source alongside the URL rather
// than returning bare strings because:
//  1. Reports are far more useful with the <link title> or anchor text
//  2. The source lets users judge how trustworthy the discovery is
//  3. Callers that only want URLs can ignore the extra fields
type Feed struct {
	// URL is the absolute, normalized feed URL.
	URL string `json:"url"`

	// Title is the human-readable name taken from the declaring element
	// (<link title>, anchor text, ...). Empty when no title was available.
	Title string `json:"title,omitempty"`

	// Source records which discovery path found this feed.
	Source FeedSource `json:"source"`

	// Host is the host component of URL, kept for grouping in reports.
	Host string `json:"host,omitempty"`
}
