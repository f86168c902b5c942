package scraper

import (
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var nonDigitRe = regexp.MustCompile(`\D`)

// ExtractFromTemplate runs the full extraction pipeline for one template
// (title or price) against a live document: match each marked template
// element, read its text with struck prices filtered out, suppress
// overlapping matches and assemble the surviving fragments into a single
// value. An empty result means extraction failed for this field.
func ExtractFromTemplate(templateLines []string, doc *goquery.Document) string {
	tmplElems, err := parseTemplate(templateLines)
	if err != nil {
		log.Printf("Failed to parse template: %v", err)
		return ""
	}

	var fragments []string
	var accepted []*html.Node

	for _, tmplElem := range tmplElems {
		matched := findMatchingElement(doc, tmplElem)
		if matched == nil {
			continue
		}
		if overlaps(matched, accepted) {
			continue
		}

		var text string
		if hasElementChildren(tmplElem) {
			// Complex nested template: take the whole subtree text.
			text = collapseWhitespace(flattenText(matched, flattenOptions{strip: true, skipStruck: true}))
		} else {
			text = extractSimple(matched, tmplElem)
		}

		if text != "" {
			fragments = append(fragments, text)
			accepted = append(accepted, matched)
		}
	}

	return AssembleFragments(dedupFragments(fragments))
}

// extractSimple pulls the placeholder span out of a matched element for a
// template with no nested marked sub-elements. The span sits strictly after
// the first case-insensitive occurrence of the template prefix and strictly
// before the first occurrence of the suffix searched from there. A present
// but unlocatable prefix is an expected heuristic miss, not an error.
func extractSimple(matched, tmplElem *html.Node) string {
	tmplText := flattenText(tmplElem, flattenOptions{})
	count := strings.Count(tmplText, Placeholder)
	if count == 0 {
		return ""
	}

	elemText := flattenText(matched, flattenOptions{strip: true, skipStruck: true})
	if count > 1 {
		// Complex shape expressed in one element: fall back to full text.
		return elemText
	}

	parts := strings.SplitN(tmplText, Placeholder, 2)
	prefix := strings.TrimSpace(parts[0])
	suffix := strings.TrimSpace(parts[1])

	lowerText := strings.ToLower(elemText)
	start := 0
	if prefix != "" {
		lowerPrefix := strings.ToLower(prefix)
		pos := strings.Index(lowerText, lowerPrefix)
		if pos < 0 {
			return ""
		}
		start = pos + len(lowerPrefix)
	}

	end := len(elemText)
	if suffix != "" {
		lowerSuffix := strings.ToLower(suffix)
		if pos := strings.Index(lowerText[start:], lowerSuffix); pos >= 0 {
			end = start + pos
		}
	}

	return strings.TrimSpace(elemText[start:end])
}

// dedupFragments removes duplicated string values, preserving first-seen
// order.
func dedupFragments(fragments []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range fragments {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// AssembleFragments reconstructs a single coherent value from the ordered,
// de-duplicated fragments of one extraction. Prices often arrive split into
// integer, decimal and currency pieces across sibling elements.
func AssembleFragments(fragments []string) string {
	switch {
	case len(fragments) == 3 && isDigits(fragments[0]) && isDigits(fragments[1]):
		// ["19", "99", "€"] -> "19.99 €"
		return fragments[0] + "." + fragments[1] + " " + fragments[2]

	case len(fragments) == 2 && isDigits(fragments[0]) && isDigits(fragments[1]):
		return fragments[0] + "." + fragments[1]

	case len(fragments) >= 2:
		num1 := nonDigitRe.ReplaceAllString(fragments[0], "")
		num2 := nonDigitRe.ReplaceAllString(fragments[1], "")
		if num1 != "" && len(num2) == 2 {
			joined := trimLeadingZeros(num1) + "." + num2
			if len(fragments) > 2 {
				return joined + strings.Join(fragments[2:], "")
			}
			return joined
		}
		return strings.Join(fragments, " ")

	case len(fragments) == 1:
		// Single numeric block with implicit decimal: a digit run longer
		// than 3 not ending in "00" reads as cents-last, e.g. 2290 -> 22.90.
		// Known trade-off: a genuine 4-digit whole price is misread.
		num := nonDigitRe.ReplaceAllString(fragments[0], "")
		if len(num) > 3 && !strings.HasSuffix(num, "00") {
			formatted := trimLeadingZeros(num[:len(num)-2]) + "." + num[len(num)-2:]
			return strings.ReplaceAll(fragments[0], num, formatted)
		}
		return fragments[0]

	default:
		return ""
	}
}

// isDigits reports whether s is a non-empty string of decimal digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// trimLeadingZeros normalizes a digit run the way integer parsing would,
// without overflowing on long runs.
func trimLeadingZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}
