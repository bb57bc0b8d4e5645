package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nao1215/feedlooker/internal/model"
)

// TestBatchDiscoverer tests multi-seed discovery.
func TestBatchDiscoverer(t *testing.T) {
	t.Parallel()

	t.Run("reports come back in seed order", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/one", htmlHandler(`<html><body><a href="/one/feed">feed</a></body></html>`))
		mux.HandleFunc("/two", htmlHandler(`<html><body></body></html>`))
		server := httptest.NewServer(mux)
		defer server.Close()

		batch := NewBatchDiscoverer(newTestDiscoverer(server, WithMaxDepth(0)))
		seeds := []string{server.URL + "/one", server.URL + "/two"}
		reports := batch.Discover(context.Background(), seeds, nil)

		if len(reports) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(reports))
		}
		if reports[0].RootURL != seeds[0] || reports[1].RootURL != seeds[1] {
			t.Errorf("reports out of seed order: %q, %q", reports[0].RootURL, reports[1].RootURL)
		}
		if reports[0].FeedCount() != 1 {
			t.Errorf("expected 1 feed for the first seed, got %v", reports[0].FeedURLs())
		}
		if reports[1].FeedCount() != 0 {
			t.Errorf("expected no feeds for the second seed, got %v", reports[1].FeedURLs())
		}
	})

	t.Run("invalid seed does not abort the batch", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(`<html><body><a href="/rss">feed</a></body></html>`))
		defer server.Close()

		batch := NewBatchDiscoverer(newTestDiscoverer(server, WithMaxDepth(0)))

		var mu sync.Mutex
		errsByIndex := make(map[int]error)
		reports := batch.Discover(context.Background(),
			[]string{"not-a-url", server.URL},
			func(report *model.DiscoveryReport, err error, index int) {
				mu.Lock()
				errsByIndex[index] = err
				mu.Unlock()
			})

		if len(reports) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(reports))
		}
		if !errors.Is(errsByIndex[0], ErrInvalidSeedURL) {
			t.Errorf("expected ErrInvalidSeedURL for seed 0, got %v", errsByIndex[0])
		}
		if errsByIndex[1] != nil {
			t.Errorf("expected no error for seed 1, got %v", errsByIndex[1])
		}
		if reports[0].RootURL != "not-a-url" || reports[0].FeedCount() != 0 {
			t.Errorf("expected an empty placeholder report for the invalid seed, got %+v", reports[0])
		}
		if reports[1].FeedCount() != 1 {
			t.Errorf("expected 1 feed for the valid seed, got %v", reports[1].FeedURLs())
		}
	})
}
