package scraper

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Placeholder is the literal marker inside template text that stands in for
// the real data in the corresponding live element.
const Placeholder = "FFF"

// parseTemplate assembles the ordered template lines into an HTML fragment
// and returns, in document order, every element whose subtree text contains
// the placeholder marker. Only those elements participate in matching.
func parseTemplate(templateLines []string) ([]*html.Node, error) {
	templateHTML := strings.Join(templateLines, "\n")

	// Repair templates that were copied starting at the attribute list.
	trimmed := strings.TrimSpace(templateHTML)
	if strings.HasPrefix(trimmed, "class=") || strings.HasPrefix(trimmed, "data-") {
		templateHTML = "<a " + templateHTML
	}

	root, err := html.Parse(strings.NewReader(templateHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %v", err)
	}

	var elements []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && !isDocumentWrapper(n) {
			if strings.Contains(flattenText(n, flattenOptions{}), Placeholder) {
				elements = append(elements, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return elements, nil
}

// isDocumentWrapper reports whether n is one of the html/head/body elements
// the parser synthesizes around a fragment.
func isDocumentWrapper(n *html.Node) bool {
	switch n.Data {
	case "html", "head", "body":
		return true
	}
	return false
}

// hasElementChildren reports whether the template element contains nested
// elements, which makes it a complex template.
func hasElementChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// attrValue returns the value of the named attribute and whether it exists.
func attrValue(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
