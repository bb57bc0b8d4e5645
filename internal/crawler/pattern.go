package crawler

import (
	"path/filepath"
	"strings"
)

// matchPattern checks if a URL path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/archive/*" matches "/archive/2024", "/archive/old"
//   - "*.cgi" matches "/cgi-bin/search.cgi"
//   - "/tag/?" matches "/tag/a", "/tag/b"
func matchPattern(pattern, urlPath string) bool {
	// Prefix patterns like "/archive/*" should match the whole subtree,
	// not just one segment.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(urlPath, prefix+"/") || urlPath == prefix {
			return true
		}
	}

	// Extension patterns like "*.cgi" match on the suffix anywhere in the path.
	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(urlPath, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, urlPath)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Bare filename patterns are also tried against the last path segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(urlPath))
		return err == nil && matched
	}

	return false
}
