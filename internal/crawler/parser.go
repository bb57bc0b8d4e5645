package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts candidate links from HTML content.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving
	// relative URLs.
	baseURL *url.URL
}

// NewParser creates a new HTML parser with the given base URL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse walks the document once and returns the raw candidate links found
// in it, with their source-tag context, in document order. Classification
// happens later; the parser only collects.
//
// Collected constructs:
//   - <a href> with the anchor's visible text
//   - <link href> with its type, rel, and title attributes
//   - <meta name="rss-feed" content>
//
// A parse failure is treated by the caller as "no candidates on this page"
// and never aborts the run.
func (p *Parser) Parse(content io.Reader) ([]Candidate, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if c, ok := p.candidateFromElement(n); ok {
				candidates = append(candidates, c)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return candidates, nil
}

// candidateFromElement converts a single element node into a candidate,
// when the element is one of the collected constructs.
func (p *Parser) candidateFromElement(n *html.Node) (Candidate, bool) {
	switch n.Data {
	case "a":
		raw := strings.TrimSpace(getAttr(n, "href"))
		href := p.resolveURL(raw)
		if href == "" {
			return Candidate{}, false
		}
		return Candidate{
			URL:    href,
			Raw:    raw,
			Source: SourceAnchorTag,
			Text:   strings.TrimSpace(innerText(n)),
		}, true

	case "link":
		href := p.resolveURL(getAttr(n, "href"))
		if href == "" {
			return Candidate{}, false
		}
		return Candidate{
			URL:    href,
			Source: SourceLinkElement,
			Type:   getAttr(n, "type"),
			Rel:    getAttr(n, "rel"),
			Text:   strings.TrimSpace(getAttr(n, "title")),
		}, true

	case "meta":
		// Only the explicit feed-indicator meta tag qualifies.
		if !strings.EqualFold(getAttr(n, "name"), "rss-feed") {
			return Candidate{}, false
		}
		target := p.resolveURL(getAttr(n, "content"))
		if target == "" {
			return Candidate{}, false
		}
		return Candidate{
			URL:    target,
			Source: SourceMetaTag,
		}, true
	}

	return Candidate{}, false
}

// resolveURL resolves a possibly-relative URL against the page base.
// Non-navigational schemes are rejected early; the classifier would drop
// them anyway, but there is no point resolving them.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return p.baseURL.ResolveReference(u).String()
}

// innerText collects the text content of a node's subtree.
func innerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
