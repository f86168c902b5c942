package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"inflatrack/models"
)

// ErrConfigNotFound is returned when the store configuration file is absent
// or unreadable. This is fatal for a scrape run; malformed entries are not.
var ErrConfigNotFound = errors.New("store config file not found")

var currencyPairRe = regexp.MustCompile(`"([^"]+)":\s*"([^"]+)"`)

// ParseStoreConfigs reads the line-oriented store configuration file and
// returns one StoreConfig per well-formed STORE block. Malformed entries are
// logged and skipped; a malformed currency map line leaves the map partial.
func ParseStoreConfigs(path string) ([]models.StoreConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	// Tolerate a UTF-8 BOM at the start of the file.
	text := strings.TrimPrefix(string(data), "\ufeff")

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line != "" {
			lines = append(lines, line)
		}
	}

	var configs []models.StoreConfig
	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], "STORE") {
			i++
			continue
		}
		entry, next := parseEntry(lines, i)
		i = next
		if entry == nil {
			continue
		}
		configs = append(configs, *entry)
	}
	return configs, nil
}

// parseEntry parses one STORE block starting at lines[start]. It returns the
// parsed entry (nil if the block is malformed) and the index of the first
// line after the block.
func parseEntry(lines []string, start int) (*models.StoreConfig, int) {
	entry := models.StoreConfig{
		URLs: make(map[string]string),
	}
	entry.StoreName = scalarValue(lines[start])

	i := start + 1
	for i < len(lines) && !strings.HasPrefix(lines[i], "STORE") {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "COUNTRY"):
			entry.Country = scalarValue(line)
			i++
		case strings.HasPrefix(line, "PRODUCT"):
			entry.ProductType = scalarValue(line)
			i++
		case strings.HasPrefix(line, "TITLE"):
			entry.TitleTemplate, i = readSection(lines, i+1)
		case strings.HasPrefix(line, "PRICE"):
			entry.PriceTemplate, i = readSection(lines, i+1)
		case strings.HasPrefix(line, "CURRENCY_MAP"):
			entry.CurrencyMap = parseCurrencyMap(line, entry.StoreName)
			i++
		case strings.HasPrefix(line, "URLS"):
			var urlLines []string
			urlLines, i = readSection(lines, i+1)
			for _, ul := range urlLines {
				if strings.HasPrefix(ul, models.VariantCheapest+":") {
					entry.URLs[models.VariantCheapest] = strings.TrimSpace(strings.SplitN(ul, ":", 2)[1])
				} else if strings.HasPrefix(ul, models.VariantMostExpensive+":") {
					entry.URLs[models.VariantMostExpensive] = strings.TrimSpace(strings.SplitN(ul, ":", 2)[1])
				}
			}
		default:
			i++
		}
	}

	if entry.StoreName == "" || entry.Country == "" || entry.ProductType == "" {
		log.Printf("Skipping config entry %q: missing store/country/product", entry.StoreName)
		return nil, i
	}
	if len(entry.TitleTemplate) == 0 || len(entry.PriceTemplate) == 0 {
		log.Printf("Skipping config entry %q: missing TITLE or PRICE template", entry.StoreName)
		return nil, i
	}
	hasURL := false
	for _, variant := range models.Variants {
		if _, ok := entry.URLFor(variant); ok {
			hasURL = true
		}
	}
	if !hasURL {
		log.Printf("Skipping config entry %q: no variant URLs", entry.StoreName)
		return nil, i
	}
	return &entry, i
}

// scalarValue extracts the value of a "KEY = value" line.
func scalarValue(line string) string {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// readSection collects lines until the closing "]" and returns them along
// with the index of the first line after the section.
func readSection(lines []string, i int) ([]string, int) {
	var section []string
	for i < len(lines) && !strings.HasPrefix(lines[i], "]") {
		section = append(section, lines[i])
		i++
	}
	if i < len(lines) {
		i++ // skip "]"
	}
	return section, i
}

// parseCurrencyMap parses a single-line currency map such as
// CURRENCY_MAP = ["$": "USD", "€": "EUR"]. Entry order is preserved;
// a malformed line yields a partial (possibly empty) map.
func parseCurrencyMap(line, storeName string) models.CurrencyMap {
	start := strings.Index(line, "[")
	end := strings.Index(line, "]")
	if start == -1 || end == -1 || end < start {
		log.Printf("Warning: could not parse currency map for %s", storeName)
		return nil
	}
	var pairs models.CurrencyMap
	for _, m := range currencyPairRe.FindAllStringSubmatch(line[start+1:end], -1) {
		pairs = append(pairs, models.CurrencyPair{Symbol: m[1], Code: m[2]})
	}
	if len(pairs) == 0 {
		log.Printf("Warning: could not parse currency map for %s", storeName)
	}
	return pairs
}
