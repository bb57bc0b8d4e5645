package crawler

import (
	"net/url"
	"path"
	"strings"
)

// Classification is the classifier's verdict on a candidate link.
type Classification int

// Classifier verdicts.
const (
	// ClassExcluded means the URL is dropped entirely: it enters neither
	// the frontier nor the result set. Exclusion is terminal.
	ClassExcluded Classification = iota

	// ClassFeed means the URL is recorded as a discovered feed.
	ClassFeed

	// ClassPage means the URL is a followable page on the seed's host.
	ClassPage
)

// String returns a readable name for logging.
func (c Classification) String() string {
	switch c {
	case ClassFeed:
		return "feed"
	case ClassPage:
		return "page"
	default:
		return "excluded"
	}
}

// CandidateSource identifies the HTML construct (or prober) a candidate
// link came from. The classifier weighs tag context differently from path
// heuristics.
type CandidateSource int

// Candidate sources.
const (
	// SourceAnchorTag is an <a href> element.
	SourceAnchorTag CandidateSource = iota

	// SourceLinkElement is a <link href> element from the document head.
	SourceLinkElement

	// SourceMetaTag is a <meta name="rss-feed" content> element.
	SourceMetaTag

	// SourceSitemapEntry is a <loc> entry from a sitemap.
	SourceSitemapEntry
)

// Candidate is a raw extracted link with its source-tag context, produced
// by the Parser (or the sitemap prober) and consumed by Classify.
type Candidate struct {
	// URL is the absolute URL, already resolved against the page base.
	URL string

	// Raw is an anchor's href attribute as written in the document, before
	// resolution. Keyword matching runs on this value so the page's host
	// never participates in the match. Empty for non-anchor sources.
	Raw string

	// Source is the construct the link was extracted from.
	Source CandidateSource

	// Type is the type attribute of a <link> element, if any
	// (e.g. "application/rss+xml").
	Type string

	// Rel is the rel attribute of a <link> element, if any.
	Rel string

	// Text is the visible text of an anchor, or the title attribute of a
	// <link> element. Used both as a feed-keyword context and as the
	// discovered feed's title.
	Text string
}

// feedMIMETypes are the <link> type attribute values that explicitly
// declare a syndication feed.
var feedMIMETypes = map[string]bool{
	"application/rss+xml":  true,
	"application/atom+xml": true,
}

// feedKeywords are matched case-insensitively as substrings of an anchor's
// href or visible text.
var feedKeywords = []string{"rss", "feed", "atom"}

// feedPathSuffixes are well-known feed path endings.
var feedPathSuffixes = []string{"/rss", "/feed", "/feeds", "/atom.xml", "/rss.xml", "/feed.xml", "/index.xml"}

// skippedExtensions are file extensions that can never be an HTML page or
// a feed. Checked after lower-casing, without the leading dot.
var skippedExtensions = map[string]bool{
	"pdf": true, "jpg": true, "jpeg": true, "png": true, "gif": true,
	"webp": true, "svg": true, "ico": true, "css": true, "js": true,
	"zip": true, "gz": true, "tar": true, "rar": true, "7z": true,
	"mp3": true, "mp4": true, "avi": true, "mov": true, "wav": true,
	"doc": true, "docx": true, "xls": true, "xlsx": true, "ppt": true,
	"pptx": true, "exe": true, "dmg": true, "woff": true, "woff2": true,
}

// Classify decides whether a candidate link is a feed, a followable page,
// or excluded. baseHost is the host of the seed URL; cross-host links are
// never classified as pages, but they are accepted as feeds because feeds
// are commonly hosted on CDNs or subdomains.
//
// ignorePatterns are glob patterns (per-host configuration) matched against
// the URL path; a match excludes the URL outright.
//
// The candidate URL must already be absolute. Exclusion rules run first so
// that, for example, report.pdf is dropped even when a feed keyword appears
// elsewhere in the URL.
func Classify(c Candidate, baseHost string, ignorePatterns []string) Classification {
	u, err := url.Parse(c.URL)
	if err != nil {
		return ClassExcluded
	}

	// Only http and https are crawlable; mailto:, javascript:, tel:, data:
	// and friends are dropped here.
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ClassExcluded
	}

	// File-type rule: known non-HTML extensions are terminal, keyword or not.
	if ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), ".")); skippedExtensions[ext] {
		return ClassExcluded
	}

	urlPath := u.Path
	if urlPath == "" {
		urlPath = "/"
	}
	for _, pattern := range ignorePatterns {
		if matchPattern(pattern, urlPath) {
			return ClassExcluded
		}
	}

	if isFeedCandidate(c, u) {
		return ClassFeed
	}

	// Pages are only followed on the seed's own host.
	if strings.EqualFold(u.Host, baseHost) {
		return ClassPage
	}

	return ClassExcluded
}

// isFeedCandidate applies the feed heuristics in order of reliability.
func isFeedCandidate(c Candidate, u *url.URL) bool {
	// <link type="application/rss+xml"> and friends.
	if c.Source == SourceLinkElement {
		if feedMIMETypes[strings.ToLower(c.Type)] {
			return true
		}
		// <link rel="alternate" type=...> handled above; a bare feed rel
		// such as rel="feed" is also accepted.
		if strings.EqualFold(c.Rel, "feed") {
			return true
		}
	}

	// <meta name="rss-feed"> is an explicit declaration.
	if c.Source == SourceMetaTag {
		return true
	}

	// Anchor href or visible text containing a feed keyword. The match
	// runs on the href as the document wrote it, never on the resolved
	// URL: a hostname like feeds.example.com would otherwise turn every
	// internal link into a feed.
	if c.Source == SourceAnchorTag {
		href := strings.ToLower(c.Raw)
		if href == "" {
			// Candidate built without the raw href; match on the
			// host-free part of the resolved URL.
			href = strings.ToLower(u.RequestURI())
		}
		text := strings.ToLower(c.Text)
		for _, kw := range feedKeywords {
			if strings.Contains(href, kw) || strings.Contains(text, kw) {
				return true
			}
		}
	}

	// Well-known feed path shapes, for any source. Sitemap entries rely
	// entirely on this rule.
	return matchesFeedPath(u.Path)
}

// matchesFeedPath reports whether a URL path looks like a feed endpoint:
// either it ends in a well-known suffix or it lives under /feeds/.
func matchesFeedPath(urlPath string) bool {
	p := strings.ToLower(strings.TrimSuffix(urlPath, "/"))
	for _, suffix := range feedPathSuffixes {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return strings.Contains(p, "/feeds/")
}
