package scraper

import (
	"strings"

	"golang.org/x/net/html"
)

// Class-name fragments that retailers commonly use for superseded prices.
var struckMarkers = []string{
	"line-through",
	"line_through",
	"old",
	"strike",
	"strike-through",
	"product-price__old",
	"price--old",
	"text-decoration-line-through",
}

// isStruck reports whether a node represents a struck-through former price,
// by class naming convention or inline style.
func isStruck(n *html.Node) bool {
	if class, ok := attrValue(n, "class"); ok {
		lower := strings.ToLower(class)
		for _, marker := range struckMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	if style, ok := attrValue(n, "style"); ok {
		if strings.Contains(style, "line-through") {
			return true
		}
	}
	return false
}
