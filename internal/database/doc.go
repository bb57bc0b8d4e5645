// Package database provides SQLite-based storage for feed discovery
// history. Persistence is opt-in: nothing is written unless the user
// enables saving, and a discovery run never depends on prior state.
//
// The database stores one row per run plus the feeds it found, so past
// results can be listed and compared without re-crawling.
package database
