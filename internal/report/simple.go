package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/feedlooker/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether source groups with no feeds are shown.
	showEmpty bool

	// verbose enables additional detail (run ID, per-feed host) in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty source groups.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one discovery report in human-readable format.
func (w *SimpleWriter) Write(report *model.DiscoveryReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeFeeds(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteAll outputs the reports of a multi-seed run, one section per seed.
func (w *SimpleWriter) WriteAll(reports []*model.DiscoveryReport) (int, error) {
	var total int
	for _, report := range reports {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.DiscoveryReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      FEED DISCOVERY REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site:          %s\n", report.RootURL))
	sb.WriteString(fmt.Sprintf("Started:       %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:      %s\n", report.Duration.Round(timeRounding)))
	sb.WriteString(fmt.Sprintf("Pages Crawled: %d\n", report.PagesCrawled))
	sb.WriteString(fmt.Sprintf("Feeds Found:   %d\n", report.FeedCount()))

	if report.TimedOut {
		sb.WriteString("Status:        LIMIT REACHED (partial results)\n")
	} else {
		sb.WriteString("Status:        Complete\n")
	}

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Run ID:        %s\n", report.RunID))
	}

	sb.WriteString("\n")
}

// writeFeeds writes all discovered feeds grouped by source.
func (w *SimpleWriter) writeFeeds(sb *strings.Builder, report *model.DiscoveryReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DISCOVERED FEEDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.FeedCount() == 0 {
		sb.WriteString("  No feeds found\n\n")
		return
	}

	grouped := feedsBySource(report)
	for _, source := range sourceOrder {
		feeds := grouped[source]
		if len(feeds) == 0 && !w.showEmpty {
			continue
		}

		sb.WriteString(fmt.Sprintf("[%s]\n", sourceLabel[source]))
		if len(feeds) == 0 {
			sb.WriteString("  No feeds\n\n")
			continue
		}

		for _, feed := range feeds {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", feed.URL))
			if feed.Title != "" {
				sb.WriteString(fmt.Sprintf("      Title: %s\n", feed.Title))
			}
			if w.verbose && feed.Host != "" {
				sb.WriteString(fmt.Sprintf("      Host:  %s\n", feed.Host))
			}
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by feedlooker\n")
	sb.WriteString("https://github.com/nao1215/feedlooker\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
