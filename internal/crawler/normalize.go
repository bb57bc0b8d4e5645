package crawler

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters that never change the identity of a
// page. They are stripped during normalization so that the same resource
// reached through different campaigns deduplicates to one URL.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
	"mc_cid":       true,
	"mc_eid":       true,
	"ref_src":      true,
	"igshid":       true,
}

// NormalizeURL canonicalizes a URL string so that equivalent URLs compare
// equal. It is applied before every visited-set or result-set membership
// check; nearly every correctness property of the crawl depends on it.
//
// Normalization rules:
//   - scheme and host are lower-cased
//   - default ports are stripped (:80 for http, :443 for https)
//   - the fragment is removed
//   - an empty path becomes "/" (http://example.com == http://example.com/)
//   - known tracking query parameters are removed; remaining parameters are
//     re-encoded in sorted key order
//
// Trailing slash policy: paths other than the root keep their trailing
// slash as-is, because /blog and /blog/ may legitimately be different
// resources.
//
// Unparsable input is returned unchanged; the classifier rejects it later.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Strip default ports
	host, port, ok := strings.Cut(u.Host, ":")
	if ok {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			u.Host = host
		}
	}

	if u.Path == "" {
		u.Path = "/"
	}

	// Drop tracking parameters. url.Values.Encode sorts keys, which also
	// makes parameter order irrelevant for deduplication.
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if trackingParams[strings.ToLower(key)] {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// SameHost reports whether two URLs share a host, ignoring case.
// Used to restrict page-following to the seed's site.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host)
}

// HostRoot returns the scheme://host/ root of a URL, or an empty string
// when the URL cannot be parsed. Host-level probers operate on this root.
func HostRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	root := url.URL{Scheme: strings.ToLower(u.Scheme), Host: strings.ToLower(u.Host), Path: "/"}
	return root.String()
}
