// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// Feed discovery runs can carry per-site credentials (cookies and
// authentication headers from the config file), and crawl diagnostics log
// request details at debug level. The SecureHandler masks those values so
// verbose logs stay safe to share:
//   - HTTP headers (Authorization, Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, JWTs)
//   - Session identifiers and authentication tokens
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("request sent",
//	    "cookie", "session=abc123", // masked in output
//	    "url", "https://example.com",
//	)
package log
