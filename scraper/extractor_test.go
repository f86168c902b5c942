package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestAssembleFragments(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      string
	}{
		{"integer decimal currency triple", []string{"19", "99", "€"}, "19.99 €"},
		{"integer decimal pair", []string{"22", "90"}, "22.90"},
		{"noisy pair with 2-digit cents", []string{"22,", "90 kr"}, "22.90"},
		{"noisy triple with 2-digit cents", []string{"22,", "90", "€"}, "22.90€"},
		{"pair without 2-digit cents", []string{"Bread", "White"}, "Bread White"},
		{"single digit run reinterpreted", []string{"2290"}, "22.90"},
		{"single digit run ending 00 unchanged", []string{"1500"}, "1500"},
		{"three digits unchanged", []string{"100"}, "100"},
		{"boundary: exactly 3 digits", []string{"999"}, "999"},
		{"boundary: exactly 4 digits", []string{"9991"}, "99.91"},
		{"single non-numeric unchanged", []string{"Milk 1 l"}, "Milk 1 l"},
		{"no fragments", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AssembleFragments(tt.fragments))
		})
	}
}

func TestExtractFromTemplateSimple(t *testing.T) {
	page := `<html><body>
		<div class="product">
			<h1 class="title">Whole Milk 1 l</h1>
			<span class="price">Price: 19,99 € per unit</span>
		</div>
	</body></html>`
	doc := parseDoc(t, page)

	got := ExtractFromTemplate([]string{`<span class="price">Price: FFF per unit</span>`}, doc)
	require.Equal(t, "19,99 €", got)

	got = ExtractFromTemplate([]string{`<h1 class="title">FFF</h1>`}, doc)
	require.Equal(t, "Whole Milk 1 l", got)
}

func TestExtractFromTemplatePrefixMiss(t *testing.T) {
	page := `<html><body><span class="price">19,99 €</span></body></html>`
	doc := parseDoc(t, page)

	// The attribute match succeeds but the prefix never occurs in the text,
	// so no candidate qualifies and the extraction yields nothing.
	got := ExtractFromTemplate([]string{`<span class="price">Now only FFF</span>`}, doc)
	require.Equal(t, "", got)
}

func TestExtractFromTemplateFragmentedPrice(t *testing.T) {
	page := `<html><body>
		<div class="price-box">
			<span class="price-int">19</span>
			<span class="price-dec">99</span>
			<span class="price-cur">€</span>
		</div>
	</body></html>`
	doc := parseDoc(t, page)

	template := []string{
		`<span class="price-int">FFF</span>`,
		`<span class="price-dec">FFF</span>`,
		`<span class="price-cur">FFF</span>`,
	}
	require.Equal(t, "19.99 €", ExtractFromTemplate(template, doc))
}

func TestExtractFromTemplateStruckPricesSkipped(t *testing.T) {
	page := `<html><body>
		<div class="price">
			<span class="old-price">24,99 €</span>
			<span style="text-decoration: line-through">23,99 €</span>
			19,99 €
		</div>
	</body></html>`
	doc := parseDoc(t, page)

	got := ExtractFromTemplate([]string{`<div class="price">FFF</div>`}, doc)
	require.Equal(t, "19,99 €", got)
}

func TestExtractFromTemplateComplexTemplate(t *testing.T) {
	page := `<html><body>
		<div class="price-wrap">
			<span class="whole">22</span><span class="cents">90</span>
			<span class="currency old-currency-strike">kr</span>
		</div>
	</body></html>`
	doc := parseDoc(t, page)

	// Nested marked sub-elements make this a complex template: the whole
	// stripped subtree text is taken, whitespace collapsed, and the single
	// resulting digit run is reinterpreted with an implicit decimal.
	template := []string{
		`<div class="price-wrap">`,
		`<span class="whole">FFF</span><span class="cents">FFF</span>`,
		`</div>`,
	}
	got := ExtractFromTemplate(template, doc)
	require.Equal(t, "22.90", got)
}

func TestExtractFromTemplateOverlapSuppression(t *testing.T) {
	page := `<html><body>
		<div class="price-box"><span class="amount">19,99</span></div>
	</body></html>`
	doc := parseDoc(t, page)

	// Both template elements match, but the second matched element is a
	// descendant of the first accepted one and must not contribute again.
	template := []string{
		`<div class="price-box">FFF</div>`,
		`<span class="amount">FFF</span>`,
	}
	require.Equal(t, "19,99", ExtractFromTemplate(template, doc))
}

func TestExtractFromTemplateDuplicateValuesDropped(t *testing.T) {
	page := `<html><body>
		<p class="note">In stock</p>
		<p class="badge">In stock</p>
	</body></html>`
	doc := parseDoc(t, page)

	template := []string{
		`<p class="note">FFF</p>`,
		`<p class="badge">FFF</p>`,
	}
	require.Equal(t, "In stock", ExtractFromTemplate(template, doc))
}

func TestExtractFromTemplateRepairsAttributeOnlyTemplate(t *testing.T) {
	page := `<html><body><a class="product-link" href="/p/1">Rye Bread 700 g</a></body></html>`
	doc := parseDoc(t, page)

	// A template copied starting at the attribute list gets an opening
	// anchor tag prepended.
	got := ExtractFromTemplate([]string{`class="product-link" href="/p/1">FFF</a>`}, doc)
	require.Equal(t, "Rye Bread 700 g", got)
}
