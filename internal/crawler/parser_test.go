package crawler

import (
	"strings"
	"testing"
)

// TestParser tests HTML candidate extraction.
func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts link element with type and title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<link rel="alternate" type="application/rss+xml" title="Site News" href="/feed.xml">
		</head><body></body></html>`

		parser, err := NewParser("https://example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		candidates, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		c := candidates[0]
		if c.URL != "https://example.com/feed.xml" {
			t.Errorf("expected resolved URL, got %q", c.URL)
		}
		if c.Source != SourceLinkElement {
			t.Errorf("expected link element source, got %v", c.Source)
		}
		if c.Type != "application/rss+xml" {
			t.Errorf("expected type attribute, got %q", c.Type)
		}
		if c.Text != "Site News" {
			t.Errorf("expected title as text, got %q", c.Text)
		}
	})

	t.Run("extracts anchors with visible text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/about">About <b>us</b></a>
			<a href="https://example.com/blog">Blog</a>
		</body></html>`

		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		candidates, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].URL != "https://example.com/about" {
			t.Errorf("expected relative href resolved, got %q", candidates[0].URL)
		}
		if candidates[0].Raw != "/about" {
			t.Errorf("expected the href as written, got %q", candidates[0].Raw)
		}
		if candidates[0].Text != "About us" {
			t.Errorf("expected nested text collected, got %q", candidates[0].Text)
		}
	})

	t.Run("extracts meta rss-feed content", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta name="rss-feed" content="/meta-feed.xml">
			<meta name="description" content="not a feed pointer">
		</head></html>`

		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		candidates, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		if candidates[0].Source != SourceMetaTag {
			t.Errorf("expected meta source, got %v", candidates[0].Source)
		}
		if candidates[0].URL != "https://example.com/meta-feed.xml" {
			t.Errorf("expected resolved content URL, got %q", candidates[0].URL)
		}
	})

	t.Run("skips non-navigational hrefs", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="javascript:void(0)">JS</a>
			<a href="mailto:info@example.com">Mail</a>
			<a href="#">Top</a>
			<a href="tel:+123456">Call</a>
		</body></html>`

		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		candidates, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(candidates) != 0 {
			t.Errorf("expected no candidates, got %d: %v", len(candidates), candidates)
		}
	})

	t.Run("tolerates malformed HTML", func(t *testing.T) {
		t.Parallel()

		// Unclosed tags and stray brackets; x/net/html repairs these.
		html := `<html><body><a href="/ok">ok<div><p><a href="/also-ok">also`

		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		candidates, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("expected malformed HTML to parse, got %v", err)
		}

		if len(candidates) != 2 {
			t.Errorf("expected 2 candidates from malformed HTML, got %d", len(candidates))
		}
	})

	t.Run("candidates appear in document order", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<link type="application/rss+xml" href="/first.xml">
		</head><body>
			<a href="/second">second</a>
			<a href="/third">third</a>
		</body></html>`

		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		candidates, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		want := []string{
			"https://example.com/first.xml",
			"https://example.com/second",
			"https://example.com/third",
		}
		if len(candidates) != len(want) {
			t.Fatalf("expected %d candidates, got %d", len(want), len(candidates))
		}
		for i, w := range want {
			if candidates[i].URL != w {
				t.Errorf("candidate %d: expected %q, got %q", i, w, candidates[i].URL)
			}
		}
	})
}
