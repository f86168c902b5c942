package scraper

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// findMatchingElement locates the live element corresponding to a template
// element: same tag name, template attributes present on the candidate
// (class as a subset, other attributes exact), and candidate text containing
// the template's pre-placeholder prefix case-insensitively. The first
// qualifying candidate wins; an empty prefix accepts the first attribute
// match.
func findMatchingElement(doc *goquery.Document, tmplElem *html.Node) *html.Node {
	tagName := tmplElem.Data

	tmplText := strings.TrimSpace(flattenText(tmplElem, flattenOptions{}))
	prefix := strings.TrimSpace(strings.SplitN(tmplText, Placeholder, 2)[0])
	lowerPrefix := strings.ToLower(prefix)

	var match *html.Node
	doc.Find(tagName).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		candidate := s.Get(0)
		if !matchAttributes(candidate, tmplElem.Attr) {
			return true
		}
		if prefix == "" {
			match = candidate
			return false
		}
		candidateText := flattenText(candidate, flattenOptions{strip: true})
		if strings.Contains(strings.ToLower(candidateText), lowerPrefix) {
			match = candidate
			return false
		}
		return true
	})

	if match == nil {
		log.Printf("No matching element found for <%s>", tagName)
	}
	return match
}

// matchAttributes applies the template attribute rules to a candidate. The
// candidate may carry additional attributes not present in the template.
func matchAttributes(candidate *html.Node, required []html.Attribute) bool {
	for _, attr := range required {
		if attr.Key == "class" {
			if !classSubset(attr.Val, candidate) {
				return false
			}
			continue
		}
		val, ok := attrValue(candidate, attr.Key)
		if !ok || val != attr.Val {
			return false
		}
	}
	return true
}

// classSubset reports whether every class token required by the template is
// present in the candidate's class list.
func classSubset(requiredClasses string, candidate *html.Node) bool {
	candidateVal, _ := attrValue(candidate, "class")
	have := make(map[string]bool)
	for _, c := range strings.Fields(candidateVal) {
		have[c] = true
	}
	for _, c := range strings.Fields(requiredClasses) {
		if !have[c] {
			return false
		}
	}
	return true
}
