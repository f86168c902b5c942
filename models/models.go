package models

import (
	"fmt"
	"time"
)

// Variant identifies one of the two competing observations per store/product.
const (
	VariantCheapest      = "cheapest"
	VariantMostExpensive = "most_expensive"
)

// Variants lists the variants in processing order.
var Variants = []string{VariantCheapest, VariantMostExpensive}

// CurrencyPair maps a display symbol to an ISO currency code.
type CurrencyPair struct {
	Symbol string `json:"symbol"`
	Code   string `json:"code"`
}

// CurrencyMap is an ordered symbol-to-code mapping. Order matters: the first
// entry's code is the currency attached to extracted prices.
type CurrencyMap []CurrencyPair

// FirstCode returns the ISO code of the first entry, or "" for an empty map.
func (m CurrencyMap) FirstCode() string {
	if len(m) == 0 {
		return ""
	}
	return m[0].Code
}

// StoreConfig is one store entry from the declarative scrape configuration.
// Immutable once loaded; lives for a single scrape cycle.
type StoreConfig struct {
	StoreName     string
	Country       string
	ProductType   string
	TitleTemplate []string
	PriceTemplate []string
	CurrencyMap   CurrencyMap
	URLs          map[string]string // variant -> URL
}

// URLFor returns the URL configured for the given variant, if any.
func (c *StoreConfig) URLFor(variant string) (string, bool) {
	url, ok := c.URLs[variant]
	return url, ok && url != ""
}

// Store is a dimension row, get-or-create by name.
type Store struct {
	StoreID int    `json:"store_id" db:"store_id"`
	Name    string `json:"name" db:"name"`
	Country string `json:"country" db:"country"`
}

// ProductType is a dimension row, get-or-create by name.
type ProductType struct {
	ProductTypeID int    `json:"product_type_id" db:"product_type_id"`
	Name          string `json:"name" db:"name"`
}

// Observation is one raw extraction result for a (store, variant) pair,
// before normalization and validation.
type Observation struct {
	StoreName       string
	Country         string
	ProductType     string
	Variant         string
	FullName        string
	FullPriceString string
	CurrencyMap     CurrencyMap
}

// Context returns the store/product/variant triple for log messages.
func (o *Observation) Context() string {
	return fmt.Sprintf("%s - %s (%s)", o.StoreName, o.ProductType, o.Variant)
}

// PriceSample is the persisted unit of observation. Unique on
// (store_id, product_type_id, date, variant); a re-run on the same day
// overwrites rather than duplicates.
type PriceSample struct {
	SampleID           int     `json:"sample_id" db:"sample_id"`
	StoreID            int     `json:"store_id" db:"store_id"`
	ProductTypeID      int     `json:"product_type_id" db:"product_type_id"`
	Date               string  `json:"date" db:"date"`
	Variant            string  `json:"variant" db:"variant"`
	FullName           string  `json:"full_name" db:"full_name"`
	FullPriceString    string  `json:"full_price_string" db:"full_price_string"`
	PriceNumber        float64 `json:"price_number" db:"price_number"`
	PriceCurrency      string  `json:"price_currency" db:"price_currency"`
	PackageSizeString  string  `json:"package_size_string" db:"package_size_string"`
	PackageSizeNumber  float64 `json:"package_size_number" db:"package_size_number"`
	PackageUnit        string  `json:"package_unit" db:"package_unit"`
	PricePerUnitString string  `json:"price_per_unit_string" db:"price_per_unit_string"`
	PricePerUnitNumber float64 `json:"price_per_unit_number" db:"price_per_unit_number"`
	InflationRate      float64 `json:"inflation_rate" db:"inflation_rate"`
}

// ExportRecord is the flat read-only projection of a price sample joined
// with its dimension rows, for downstream consumption.
type ExportRecord struct {
	Date               string `json:"date"`
	Variant            string `json:"variant"`
	ProductTypeName    string `json:"product_type_name"`
	StoreName          string `json:"store_name"`
	StoreCountry       string `json:"store_country"`
	PricePerUnitString string `json:"price_per_unit_string"`
}

// RunStats aggregates the outcome of one scrape cycle.
type RunStats struct {
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	TotalProcessed int       `json:"total_processed"`
	Created        int       `json:"created"`
	Updated        int       `json:"updated"`
	Errors         int       `json:"errors"`
}

// CurrentDateString returns the day-granularity date key used by the
// price sample series.
func CurrentDateString() string {
	return time.Now().Format("2006-01-02")
}
