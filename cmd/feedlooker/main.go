// Package main provides the entry point for the feedlooker CLI.
//
// feedlooker discovers RSS/Atom feeds for websites. Given one or more
// site URLs, it crawls each site within configurable bounds and reports
// every syndication feed it can find.
//
// Usage:
//
//	feedlooker discover <url>
//	feedlooker discover <url1> <url2> <url3>
//
// See --help for all available options.
package main

// main is the entry point for feedlooker.
func main() {
	Execute()
}
