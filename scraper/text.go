package scraper

import (
	"strings"

	"golang.org/x/net/html"
)

type flattenOptions struct {
	// strip trims each text node before concatenation, matching the way
	// fragmented prices collapse ("19" + "99" -> "1999").
	strip bool
	// skipStruck excludes subtrees flagged as superseded prices. The live
	// document is never mutated; struck nodes are skipped while reading.
	skipStruck bool
}

// flattenText returns the concatenated text of a subtree. The struck-price
// filter applies to descendants only, never to the node itself.
func flattenText(n *html.Node, opts flattenOptions) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	if n.Type == html.TextNode {
		writeTextNode(n, opts, &b)
	} else {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			flattenInto(c, opts, &b)
		}
	}
	return b.String()
}

func flattenInto(n *html.Node, opts flattenOptions, b *strings.Builder) {
	if n.Type == html.TextNode {
		writeTextNode(n, opts, b)
		return
	}
	if n.Type == html.ElementNode && opts.skipStruck && isStruck(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenInto(c, opts, b)
	}
}

func writeTextNode(n *html.Node, opts flattenOptions, b *strings.Builder) {
	if opts.strip {
		b.WriteString(strings.TrimSpace(n.Data))
	} else {
		b.WriteString(n.Data)
	}
}

// collapseWhitespace reduces all whitespace runs to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isDescendant reports whether n is a strict descendant of ancestor.
func isDescendant(n, ancestor *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// overlaps reports whether n is the same node as, a descendant of, or an
// ancestor of any already accepted node. Overlapping matches would count
// the same price twice.
func overlaps(n *html.Node, accepted []*html.Node) bool {
	for _, a := range accepted {
		if n == a || isDescendant(n, a) || isDescendant(a, n) {
			return true
		}
	}
	return false
}
