package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestSitemapProber tests sitemap-assisted discovery.
func TestSitemapProber(t *testing.T) {
	t.Parallel()

	t.Run("falls back to /sitemap.xml without robots.txt", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, `<?xml version="1.0"?>
				<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
					<url><loc>https://example.com/blog/rss.xml</loc></url>
					<url><loc>https://example.com/about</loc></url>
				</urlset>`)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		prober := NewSitemapProber(NewFetcher(server.Client()), nil)
		candidates := prober.Probe(context.Background(), server.URL)

		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d: %v", len(candidates), candidates)
		}
		for _, c := range candidates {
			if c.Source != SourceSitemapEntry {
				t.Errorf("expected sitemap source, got %v", c.Source)
			}
		}
		if candidates[0].URL != "https://example.com/blog/rss.xml" {
			t.Errorf("unexpected first entry: %q", candidates[0].URL)
		}
	})

	t.Run("uses robots.txt sitemap declarations", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		var serverURL string
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprintf(w, "User-agent: *\nDisallow: /private/\nSitemap: %s/maps/news.xml\n", serverURL)
		})
		mux.HandleFunc("/maps/news.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, `<urlset><url><loc>https://example.com/news/feed</loc></url></urlset>`)
		})
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			t.Error("fallback sitemap should not be fetched when robots.txt declares one")
		})
		server := httptest.NewServer(mux)
		defer server.Close()
		serverURL = server.URL

		prober := NewSitemapProber(NewFetcher(server.Client()), nil)
		candidates := prober.Probe(context.Background(), server.URL)

		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d: %v", len(candidates), candidates)
		}
		if candidates[0].URL != "https://example.com/news/feed" {
			t.Errorf("unexpected entry: %q", candidates[0].URL)
		}
	})

	t.Run("follows a sitemap index one level deep", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		var serverURL string
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, `<sitemapindex>
				<sitemap><loc>%s/sitemap-posts.xml</loc></sitemap>
			</sitemapindex>`, serverURL)
		})
		mux.HandleFunc("/sitemap-posts.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, `<urlset>
				<url><loc>https://example.com/posts/1</loc></url>
				<url><loc>https://example.com/posts/feed.xml</loc></url>
			</urlset>`)
		})
		server := httptest.NewServer(mux)
		defer server.Close()
		serverURL = server.URL

		prober := NewSitemapProber(NewFetcher(server.Client()), nil)
		candidates := prober.Probe(context.Background(), server.URL)

		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates from the nested sitemap, got %d: %v", len(candidates), candidates)
		}
	})

	t.Run("missing sitemap is silent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(http.NotFound))
		defer server.Close()

		prober := NewSitemapProber(NewFetcher(server.Client()), nil)
		if candidates := prober.Probe(context.Background(), server.URL); len(candidates) != 0 {
			t.Errorf("expected no candidates, got %v", candidates)
		}
	})

	t.Run("entry count is capped", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, "<urlset>")
			for i := 0; i < 50; i++ {
				fmt.Fprintf(w, "<url><loc>https://example.com/p/%d</loc></url>", i)
			}
			fmt.Fprint(w, "</urlset>")
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		prober := NewSitemapProber(NewFetcher(server.Client()), nil)
		prober.maxEntries = 10
		candidates := prober.Probe(context.Background(), server.URL)
		if len(candidates) != 10 {
			t.Errorf("expected cap of 10 entries, got %d", len(candidates))
		}
	})
}
