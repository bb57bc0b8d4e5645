// Package report provides output formatting for feed discovery results.
// It supports three formats: human-readable text for terminal display,
// JSON for tool integration, and GitHub-flavored Markdown for sharing.
//
// All writers implement the Writer interface, so the CLI can select a
// format at runtime and optionally tee output to a file with MultiWriter.
package report
