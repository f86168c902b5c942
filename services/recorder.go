package services

import (
	"fmt"
	"log"
	"strings"

	"inflatrack/models"
	"inflatrack/repository"
	"inflatrack/scraper"
)

// Outcome classifies the result of recording one observation.
type Outcome int

const (
	// OutcomeRejected means validation discarded the observation; nothing
	// was written.
	OutcomeRejected Outcome = iota
	// OutcomeCreated means a new sample row was inserted.
	OutcomeCreated
	// OutcomeUpdated means a same-day sample was overwritten.
	OutcomeUpdated
)

// Recorder normalizes raw observations and persists them as price samples
// with inflation computed against the prior observation.
type Recorder struct {
	samples *repository.SampleRepository
	units   scraper.UnitTable
}

func NewRecorder(samples *repository.SampleRepository, units scraper.UnitTable) *Recorder {
	return &Recorder{samples: samples, units: units}
}

// Save validates, normalizes and persists one observation. A rejected
// observation is logged and discarded without error; an error indicates a
// storage failure. No failure here concerns more than this observation.
func (r *Recorder) Save(obs *models.Observation) (Outcome, error) {
	if strings.TrimSpace(obs.FullName) == "" {
		log.Printf("Skipping save: product title is empty for %s", obs.Context())
		return OutcomeRejected, nil
	}
	if strings.TrimSpace(obs.FullPriceString) == "" {
		log.Printf("Skipping save: product price is empty for %s", obs.Context())
		return OutcomeRejected, nil
	}

	priceNumber, priceCurrency := scraper.ExtractPriceInfo(obs.FullPriceString, obs.CurrencyMap)
	packageString, packageSize, packageUnit := scraper.ExtractPackageInfo(obs.FullName)
	perUnitString, perUnitNumber := scraper.CalculatePricePerUnit(
		priceNumber, packageSize, packageUnit, priceCurrency, r.units)

	if strings.TrimSpace(packageString) == "" ||
		strings.TrimSpace(perUnitString) == "" ||
		priceNumber <= 0 ||
		packageSize <= 0 ||
		perUnitNumber <= 0 ||
		strings.TrimSpace(packageUnit) == "" {
		log.Printf("Skipping save: invalid or incomplete data for %s", obs.Context())
		return OutcomeRejected, nil
	}

	date := models.CurrentDateString()

	tx, err := r.samples.Begin()
	if err != nil {
		return OutcomeRejected, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	storeID, err := r.samples.GetOrCreateStore(tx, obs.StoreName, obs.Country)
	if err != nil {
		return OutcomeRejected, err
	}
	productTypeID, err := r.samples.GetOrCreateProductType(tx, obs.ProductType)
	if err != nil {
		return OutcomeRejected, err
	}

	previous, hasPrevious, err := r.samples.PreviousPrice(tx, storeID, productTypeID, obs.Variant, date)
	if err != nil {
		return OutcomeRejected, err
	}
	inflationRate := scraper.CalculateInflationRate(priceNumber, previous, hasPrevious)

	exists, err := r.samples.SampleExists(tx, storeID, productTypeID, date, obs.Variant)
	if err != nil {
		return OutcomeRejected, err
	}

	err = r.samples.UpsertSample(tx, &models.PriceSample{
		StoreID:            storeID,
		ProductTypeID:      productTypeID,
		Date:               date,
		Variant:            obs.Variant,
		FullName:           obs.FullName,
		FullPriceString:    obs.FullPriceString,
		PriceNumber:        priceNumber,
		PriceCurrency:      priceCurrency,
		PackageSizeString:  packageString,
		PackageSizeNumber:  packageSize,
		PackageUnit:        packageUnit,
		PricePerUnitString: perUnitString,
		PricePerUnitNumber: perUnitNumber,
		InflationRate:      inflationRate,
	})
	if err != nil {
		return OutcomeRejected, err
	}

	if err := tx.Commit(); err != nil {
		return OutcomeRejected, fmt.Errorf("failed to commit sample: %v", err)
	}

	log.Printf("Saved to database: %s on %s", obs.Context(), date)
	if exists {
		return OutcomeUpdated, nil
	}
	return OutcomeCreated, nil
}
