package crawler

import "errors"

// Input validation errors.
// These are the only errors a discovery run surfaces to the caller; every
// per-URL failure after the run starts is recovered locally.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each call site. This allows callers to
// use errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrInvalidSeedURL is returned when the seed URL cannot be parsed or
	// is not an absolute http/https URL. The crawl never starts.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be an absolute http or https URL")

	// ErrNegativeDepth is returned when the configured maximum depth is
	// negative. Depth 0 is valid and restricts the crawl to the seed page
	// plus host-level probing.
	ErrNegativeDepth = errors.New("invalid depth: must be non-negative")
)

// Fetch failure reasons. These never abort a run; they are logged and the
// offending URL is dropped.
var (
	// errBadStatus marks a non-2xx HTTP response.
	errBadStatus = errors.New("non-2xx status")

	// errNotHTML marks a page fetch whose Content-Type is not HTML.
	errNotHTML = errors.New("content type is not text/html")
)
