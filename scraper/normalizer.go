package scraper

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"inflatrack/models"
)

var nonPriceCharsRe = regexp.MustCompile(`[^0-9.,]`)

// Package size patterns: a quantity immediately followed by a recognized
// unit token. Longer tokens come first so "fl oz" beats "oz" and "kg" beats
// "g". The trailing group rejects partial-word matches like "500grit".
var packagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*(fl oz|oz|lb|kg|кг|ml|мл|г|л|шт|ea|pieces|pcs|piece|pc|g|l)(?:[^\p{L}\p{N}]|$)`),
	regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*(ounce|pound|gram|kilogram|litre|liter)(?:[^\p{L}\p{N}]|$)`),
}

// Synonymous unit spellings canonicalized to the fixed unit vocabulary.
var unitSynonyms = map[string]string{
	"ounce":    "oz",
	"pound":    "lb",
	"gram":     "g",
	"kilogram": "kg",
	"liter":    "l",
	"litre":    "l",
	"кг":       "kg",
	"pieces":   "piece",
	"pcs":      "pc",
}

// UnitTable maps package units to their standard unit and conversion
// factor. It is built once at startup and passed in explicitly.
type UnitTable struct {
	Factors map[string]float64
	Base    map[string]string
}

// DefaultUnitTable returns the conversion table covering metric mass and
// volume in Latin and Cyrillic spellings plus discrete-count units.
func DefaultUnitTable() UnitTable {
	return UnitTable{
		Factors: map[string]float64{
			"oz":     0.0283495,
			"fl oz":  0.0295735,
			"lb":     0.453592,
			"kg":     1.0,
			"кг":     1.0,
			"g":      0.001,
			"l":      1.0,
			"ml":     0.001,
			"г":      0.001,
			"мл":     0.001,
			"л":      1.0,
			"шт":     1.0,
			"ea":     1.0,
			"piece":  1.0,
			"pieces": 1.0,
			"pcs":    1.0,
			"pc":     1.0,
		},
		Base: map[string]string{
			"oz":     "kg",
			"lb":     "kg",
			"g":      "kg",
			"kg":     "kg",
			"ml":     "l",
			"l":      "l",
			"fl oz":  "l",
			"г":      "kg",
			"кг":     "kg",
			"л":      "l",
			"мл":     "l",
			"шт":     "one piece",
			"ea":     "one piece",
			"piece":  "one piece",
			"pieces": "one piece",
			"pcs":    "one piece",
			"pc":     "one piece",
		},
	}
}

// ExtractPriceInfo converts an assembled price string into a numeric value
// and the currency code from the store's symbol map. Separator roles are
// inferred: with both present the rightmost is the decimal point; a lone
// comma with a 2-digit tail is decimal, otherwise thousands; a lone period
// with a tail of 3+ digits is thousands. Non-parseable input yields 0.0.
func ExtractPriceInfo(raw string, currencyMap models.CurrencyMap) (float64, string) {
	if raw == "" {
		return 0.0, ""
	}

	currency := currencyMap.FirstCode()

	clean := nonPriceCharsRe.ReplaceAllString(raw, "")

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.390,80 -> thousands '.' and decimal ','
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			// 2,499.99 -> thousands ',' and decimal '.'
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		parts := strings.Split(clean, ",")
		if len(parts[len(parts)-1]) == 2 {
			// Decimal comma: 1390,80 -> 1390.80
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			// Thousands comma: 1,390 -> 1390
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastDot >= 0:
		parts := strings.Split(clean, ".")
		if len(parts[len(parts)-1]) >= 3 {
			// Thousands dot: 1.390 -> 1390
			clean = strings.ReplaceAll(clean, ".", "")
		}
		// else leave as is (13.90)
	}

	price, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		price = 0.0
	}
	return price, currency
}

// ExtractPackageInfo scans a product title for a package size and unit,
// such as "24 oz", "2L" or "500г". It returns the formatted package string,
// the numeric size and the canonical unit, or empty values when no
// recognized quantity is present.
func ExtractPackageInfo(title string) (string, float64, string) {
	if title == "" {
		return "", 0.0, ""
	}

	for _, pattern := range packagePatterns {
		m := pattern.FindStringSubmatch(title)
		if m == nil {
			continue
		}

		sizeStr := strings.ReplaceAll(m[1], ",", ".")
		size, err := strconv.ParseFloat(sizeStr, 64)
		if err != nil {
			continue
		}

		unit := strings.ToLower(m[2])
		if canonical, ok := unitSynonyms[unit]; ok {
			unit = canonical
		}

		packageString := formatSize(size) + " " + unit
		return packageString, size, unit
	}

	return "", 0.0, ""
}

// CalculatePricePerUnit converts a package price into the price per
// standard unit (kilogram, liter or one piece), rounded to 2 decimals.
// A zero size or unrecognized unit yields an empty result.
func CalculatePricePerUnit(price, size float64, unit, currency string, units UnitTable) (string, float64) {
	if size == 0 || unit == "" {
		return "", 0.0
	}

	factor, ok := units.Factors[unit]
	if !ok {
		return "", 0.0
	}
	standardUnit := units.Base[unit]

	standardSize := size * factor
	if standardSize == 0 {
		return "", 0.0
	}

	perUnit := math.Round(price/standardSize*100) / 100
	return fmt.Sprintf("%.2f %s/%s", perUnit, currency, standardUnit), perUnit
}

// CalculateInflationRate returns the percentage change against the prior
// observation, rounded to 3 decimals. hasPrevious distinguishes a genuinely
// flat price from a first-ever observation; without a usable prior the rate
// is 0.0.
func CalculateInflationRate(current, previous float64, hasPrevious bool) float64 {
	if !hasPrevious || previous == 0 {
		return 0.0
	}
	return math.Round(((current-previous)/previous)*100*1000) / 1000
}

func formatSize(size float64) string {
	return strconv.FormatFloat(size, 'f', -1, 64)
}
