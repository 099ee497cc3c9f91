// Package linkverify checks the links in rendered pages: internal links
// against the output tree, external links optionally over HTTP.
package linkverify

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link is one extracted link from rendered HTML.
type Link struct {
	URL        string
	Tag        string // a, img, script, link
	Attribute  string // href or src
	IsInternal bool
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string, baseURL string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", htmlPath, err)
	}
	defer file.Close()

	return ExtractLinksFromReader(file, baseURL)
}

// ExtractLinksFromReader extracts all links from an HTML reader.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if link, ok := elementLink(n, base); ok {
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

var linkAttrs = map[string]string{
	"a":      "href",
	"img":    "src",
	"script": "src",
	"link":   "href",
}

func elementLink(n *html.Node, base *url.URL) (Link, bool) {
	attrName, ok := linkAttrs[n.Data]
	if !ok {
		return Link{}, false
	}
	for _, attr := range n.Attr {
		if attr.Key != attrName || attr.Val == "" {
			continue
		}
		return Link{
			URL:        attr.Val,
			Tag:        n.Data,
			Attribute:  attr.Key,
			IsInternal: isInternal(attr.Val, base),
		}, true
	}
	return Link{}, false
}

func isInternal(raw string, base *url.URL) bool {
	if strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return true
	}
	return u.Host == base.Host
}
