package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/feedlooker/internal/model"
)

func testReport() *model.DiscoveryReport {
	return &model.DiscoveryReport{
		RootURL:      "https://example.com/",
		StartedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Duration:     2300 * time.Millisecond,
		PagesCrawled: 5,
		Feeds: []model.Feed{
			{URL: "https://example.com/feed.xml", Title: "Site News", Source: model.SourceLinkTag, Host: "example.com"},
			{URL: "https://example.com/rss", Source: model.SourceCommonPath, Host: "example.com"},
			{URL: "https://example.com/blog/atom.xml", Source: model.SourceSitemap, Host: "example.com"},
		},
	}
}

func emptyReport() *model.DiscoveryReport {
	return &model.DiscoveryReport{
		RootURL:   "https://empty.example.com/",
		StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Feeds:     []model.Feed{},
	}
}

// TestSimpleWriter tests human-readable output.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes feeds grouped by source", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"FEED DISCOVERY REPORT",
			"https://example.com/",
			"Pages Crawled: 5",
			"Feeds Found:   3",
			"HTML <link> tags",
			"https://example.com/feed.xml",
			"Title: Site News",
			"Common feed paths",
			"Sitemap entries",
			"Status:        Complete",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		if _, err := w.Write(emptyReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No feeds found") {
			t.Errorf("expected empty-result marker:\n%s", buf.String())
		}
	})

	t.Run("limit-reached status", func(t *testing.T) {
		t.Parallel()

		report := testReport()
		report.TimedOut = true

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "LIMIT REACHED") {
			t.Errorf("expected limit-reached status:\n%s", buf.String())
		}
	})

	t.Run("verbose includes run ID and host", func(t *testing.T) {
		t.Parallel()

		report := testReport()
		report.RunID = "run-123"

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "run-123") {
			t.Errorf("expected run ID in verbose output:\n%s", buf.String())
		}
		if !strings.Contains(buf.String(), "Host:  example.com") {
			t.Errorf("expected host in verbose output:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("single report round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.DiscoveryReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.RootURL != "https://example.com/" || len(got.Feeds) != 3 {
			t.Errorf("unexpected decoded report: %+v", got)
		}
	})

	t.Run("WriteAll emits an array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())
		if _, err := w.WriteAll([]*model.DiscoveryReport{testReport(), emptyReport()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []model.DiscoveryReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not a valid JSON array: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 reports, got %d", len(got))
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")
		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Version != "1.2.3" || len(got.Reports) != 1 {
			t.Errorf("unexpected wrapper: %+v", got)
		}
	})
}

// TestMarkdownWriter tests Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Feed Discovery Report",
			"## https://example.com/",
			"| Feed URL | Title | Source |",
			"`https://example.com/feed.xml`",
			"link-tag",
			"mermaid",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty result gets a note, no table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		if _, err := w.Write(emptyReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "No syndication feeds") {
			t.Errorf("expected empty-result note:\n%s", out)
		}
		if strings.Contains(out, "| Feed URL |") {
			t.Errorf("expected no feed table for an empty result:\n%s", out)
		}
	})

	t.Run("WriteAll emits one section per seed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		if _, err := w.WriteAll([]*model.DiscoveryReport{testReport(), emptyReport()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "## https://example.com/") ||
			!strings.Contains(out, "## https://empty.example.com/") {
			t.Errorf("expected a section per seed:\n%s", out)
		}
	})
}

// failingWriter always returns an error, for MultiWriter error propagation.
type failingWriter struct{}

var errBoom = errors.New("boom")

func (failingWriter) Write(*model.DiscoveryReport) (int, error)      { return 0, errBoom }
func (failingWriter) WriteAll([]*model.DiscoveryReport) (int, error) { return 0, errBoom }

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
		if _, err := mw.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&after))
		if _, err := mw.Write(testReport()); !errors.Is(err, errBoom) {
			t.Errorf("expected errBoom, got %v", err)
		}
		if after.Len() != 0 {
			t.Error("expected no output after the failing writer")
		}
	})
}
