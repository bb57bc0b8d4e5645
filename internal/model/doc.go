// Package model defines the core data structures shared across feedlooker.
//
// The central types are Feed, a single discovered syndication feed, and
// DiscoveryReport, the complete result of one discovery run. These types
// are produced by the crawler, rendered by the report package, and
// persisted by the database package.
//
// Design decision: We keep model as a leaf package with no internal
// dependencies because:
//  1. Every other package imports it, so it must not import them back
//  2. Pure data types are trivial to test and reason about
//  3. It mirrors the separation between engine and presentation
package model
