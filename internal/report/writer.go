package report

import (
	"io"
	"time"

	"github.com/nao1215/feedlooker/internal/model"
)

// timeRounding keeps displayed durations readable; microsecond noise in a
// multi-second crawl carries no information.
const timeRounding = 10 * time.Millisecond

// Writer defines the interface for report output.
// Implementations write discovery results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs one discovery report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.DiscoveryReport) (int, error)

	// WriteAll outputs the reports of a multi-seed run.
	// Implementations may add per-format framing (e.g., a JSON array).
	WriteAll(reports []*model.DiscoveryReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.DiscoveryReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll outputs the reports to all configured Writers.
func (m *MultiWriter) WriteAll(reports []*model.DiscoveryReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAll(reports)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// sourceOrder is the fixed display order for feed sources. It follows the
// discovery pipeline: page-extracted sources first, then probers.
var sourceOrder = []model.FeedSource{
	model.SourceLinkTag,
	model.SourceAnchor,
	model.SourceMeta,
	model.SourceCommonPath,
	model.SourceSitemap,
	model.SourceNegotiation,
}

// sourceLabel is the human-readable name for each feed source.
var sourceLabel = map[model.FeedSource]string{
	model.SourceLinkTag:     "HTML <link> tags",
	model.SourceAnchor:      "Anchor links",
	model.SourceMeta:        "Meta tags",
	model.SourceCommonPath:  "Common feed paths",
	model.SourceSitemap:     "Sitemap entries",
	model.SourceNegotiation: "Content negotiation",
}

// feedsBySource groups a report's feeds by their discovery source,
// preserving discovery order within each group.
func feedsBySource(report *model.DiscoveryReport) map[model.FeedSource][]model.Feed {
	grouped := make(map[model.FeedSource][]model.Feed)
	for _, f := range report.Feeds {
		grouped[f.Source] = append(grouped[f.Source], f)
	}
	return grouped
}
