package crawler

import (
	"sync"

	"github.com/nao1215/feedlooker/internal/model"
)

// resultSet is the insertion-ordered, deduplicated collection of discovered
// feeds. It is one of the two pieces of shared mutable state in a run (the
// other is the visited set) and is safe for concurrent insert.
type resultSet struct {
	mu    sync.Mutex
	seen  map[string]bool
	feeds []model.Feed
}

func newResultSet() *resultSet {
	return &resultSet{
		seen:  make(map[string]bool),
		feeds: make([]model.Feed, 0),
	}
}

// add inserts a feed keyed by its normalized URL. Second and later
// insertions of the same URL are no-ops, so insertion order equals
// first-discovery order. Reports whether the feed was newly added.
func (rs *resultSet) add(feed model.Feed) bool {
	normalized := NormalizeURL(feed.URL)

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.seen[normalized] {
		return false
	}
	rs.seen[normalized] = true

	feed.URL = normalized
	rs.feeds = append(rs.feeds, feed)
	return true
}

// list returns a copy of the feeds in discovery order.
func (rs *resultSet) list() []model.Feed {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	out := make([]model.Feed, len(rs.feeds))
	copy(out, rs.feeds)
	return out
}

// visitedSet tracks normalized URLs already fetched or enqueued in the
// current run. It prevents re-fetching and infinite loops on cyclic links.
// Scoped to one run and discarded at run end; never process-wide.
type visitedSet struct {
	mu   sync.Mutex
	urls map[string]bool
}

func newVisitedSet() *visitedSet {
	return &visitedSet{urls: make(map[string]bool)}
}

// tryVisit atomically checks and marks a URL. It returns false when the
// URL was already visited, guaranteeing that two workers never process the
// same URL.
func (vs *visitedSet) tryVisit(rawURL string) bool {
	normalized := NormalizeURL(rawURL)

	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.urls[normalized] {
		return false
	}
	vs.urls[normalized] = true
	return true
}

// contains reports whether a URL has been visited or enqueued.
func (vs *visitedSet) contains(rawURL string) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.urls[NormalizeURL(rawURL)]
}

// size returns the number of unique URLs seen.
func (vs *visitedSet) size() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.urls)
}
