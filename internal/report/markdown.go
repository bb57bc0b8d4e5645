package report

import (
	"io"
	"strconv"

	"github.com/nao1215/feedlooker/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one discovery report in Markdown format.
func (w *MarkdownWriter) Write(report *model.DiscoveryReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Feed Discovery Report")
	md.PlainText("")

	w.writeReport(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAll outputs the reports of a multi-seed run as one document with a
// section per seed.
func (w *MarkdownWriter) WriteAll(reports []*model.DiscoveryReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Feed Discovery Report")
	md.PlainText("")

	for _, report := range reports {
		w.writeReport(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeReport writes one seed's section: run info, alert, source chart,
// and the feed table.
func (w *MarkdownWriter) writeReport(md *markdown.Markdown, report *model.DiscoveryReport) {
	md.H2(report.RootURL)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.RootURL + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(timeRounding).String()},
			{"Pages Crawled", strconv.Itoa(report.PagesCrawled)},
			{"Feeds Found", strconv.Itoa(report.FeedCount())},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)

	if report.FeedCount() == 0 {
		return
	}

	w.writeSourceChart(md, report)
	w.writeFeedTable(md, report)
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.DiscoveryReport) string {
	if report.TimedOut {
		return "⚠️ Limit Reached (partial results)"
	}
	return "✅ Complete"
}

// writeAlert writes an appropriate alert based on the result.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.DiscoveryReport) {
	switch {
	case report.TimedOut:
		md.Warningf(
			"The crawl hit its page or time limit. %d feed(s) were found before stopping; more may exist.",
			report.FeedCount(),
		)
	case report.FeedCount() == 0:
		md.Note("No syndication feeds were found on this site.")
	default:
		md.Tipf("Found %d feed(s) across %d crawled page(s).", report.FeedCount(), report.PagesCrawled)
	}
	md.PlainText("")
}

// writeSourceChart writes a mermaid pie chart of the source distribution.
func (w *MarkdownWriter) writeSourceChart(md *markdown.Markdown, report *model.DiscoveryReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Feed Source Distribution"),
		piechart.WithShowData(true),
	)

	grouped := feedsBySource(report)
	for _, source := range sourceOrder {
		if n := len(grouped[source]); n > 0 {
			chart.LabelAndIntValue(sourceLabel[source], uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFeedTable writes the discovered feeds as a table in discovery order.
func (w *MarkdownWriter) writeFeedTable(md *markdown.Markdown, report *model.DiscoveryReport) {
	rows := make([][]string, len(report.Feeds))
	for i, f := range report.Feeds {
		title := f.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			"`" + f.URL + "`",
			truncateString(title, 50),
			string(f.Source),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Feed URL", "Title", "Source"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [feedlooker](https://github.com/nao1215/feedlooker)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
