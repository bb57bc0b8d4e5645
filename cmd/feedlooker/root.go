// Package main provides the entry point for the feedlooker CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for feedlooker.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedlooker",
		Short: "Discover RSS/Atom feeds for websites",
		Long: `feedlooker discovers syndication feeds (RSS, Atom) for websites.

It crawls each site within configurable depth and page bounds, inspects
HTML link and anchor tags, probes common feed paths and sitemaps, and
reports every feed URL it finds.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
