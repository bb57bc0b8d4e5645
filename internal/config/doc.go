// Package config provides configuration structures and utilities for
// feedlooker. It defines the main options for feed discovery runs, crawl
// limits, per-site overrides, and report generation preferences.
package config
