package repository

import (
	"database/sql"
	"fmt"

	"inflatrack/models"
)

// SampleRepository persists price samples and their dimension rows.
type SampleRepository struct {
	db *sql.DB
}

func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Begin starts a transaction. Each dimension-lookup-or-create plus sample
// upsert runs inside one transaction so concurrent writers for the same
// store never create duplicate dimension rows.
func (r *SampleRepository) Begin() (*sql.Tx, error) {
	return r.db.Begin()
}

// GetOrCreateStore returns the surrogate key for a store name, creating the
// dimension row if needed.
func (r *SampleRepository) GetOrCreateStore(tx *sql.Tx, name, country string) (int, error) {
	var storeID int
	err := tx.QueryRow(`SELECT store_id FROM Store WHERE name = ?`, name).Scan(&storeID)
	if err == nil {
		return storeID, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up store: %v", err)
	}

	res, err := tx.Exec(`INSERT INTO Store (name, country) VALUES (?, ?)`, name, country)
	if err != nil {
		return 0, fmt.Errorf("failed to create store: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get store id: %v", err)
	}
	return int(id), nil
}

// GetOrCreateProductType returns the surrogate key for a product type name,
// creating the dimension row if needed.
func (r *SampleRepository) GetOrCreateProductType(tx *sql.Tx, name string) (int, error) {
	var productTypeID int
	err := tx.QueryRow(`SELECT product_type_id FROM ProductType WHERE name = ?`, name).Scan(&productTypeID)
	if err == nil {
		return productTypeID, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up product type: %v", err)
	}

	res, err := tx.Exec(`INSERT INTO ProductType (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create product type: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get product type id: %v", err)
	}
	return int(id), nil
}

// PreviousPrice returns the most recent price strictly before the given
// date for the same (store, product, variant). Excluding the same-day row
// keeps a re-run idempotent: it recomputes the same inflation rate instead
// of comparing today's price against itself. The boolean distinguishes
// "no prior observation" from a prior price of zero.
func (r *SampleRepository) PreviousPrice(tx *sql.Tx, storeID, productTypeID int, variant, beforeDate string) (float64, bool, error) {
	var price float64
	err := tx.QueryRow(`
		SELECT price_number FROM PriceSample
		WHERE store_id = ? AND product_type_id = ? AND variant = ? AND date < ?
		ORDER BY date DESC LIMIT 1
	`, storeID, productTypeID, variant, beforeDate).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get previous price: %v", err)
	}
	return price, true, nil
}

// SampleExists reports whether a sample already exists for the upsert key.
func (r *SampleRepository) SampleExists(tx *sql.Tx, storeID, productTypeID int, date, variant string) (bool, error) {
	var one int
	err := tx.QueryRow(`
		SELECT 1 FROM PriceSample
		WHERE store_id = ? AND product_type_id = ? AND date = ? AND variant = ?
	`, storeID, productTypeID, date, variant).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for existing sample: %v", err)
	}
	return true, nil
}

// UpsertSample inserts a price sample, replacing any existing row with the
// same (store_id, product_type_id, date, variant).
func (r *SampleRepository) UpsertSample(tx *sql.Tx, sample *models.PriceSample) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO PriceSample (
			store_id, product_type_id, date, variant, full_name,
			full_price_string, price_number, price_currency,
			package_size_string, package_size_number, package_unit,
			price_per_unit_string, price_per_unit_number, inflation_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sample.StoreID, sample.ProductTypeID, sample.Date, sample.Variant,
		sample.FullName, sample.FullPriceString, sample.PriceNumber,
		sample.PriceCurrency, sample.PackageSizeString, sample.PackageSizeNumber,
		sample.PackageUnit, sample.PricePerUnitString, sample.PricePerUnitNumber,
		sample.InflationRate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price sample: %v", err)
	}
	return nil
}

// CountSamples returns the number of persisted samples.
func (r *SampleRepository) CountSamples() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM PriceSample`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count samples: %v", err)
	}
	return count, nil
}

// ExportRecords returns the flat read-only projection joining the sample
// series with its dimension tables, for downstream consumption.
func (r *SampleRepository) ExportRecords() ([]models.ExportRecord, error) {
	rows, err := r.db.Query(`
		SELECT
			ps.date,
			ps.variant,
			pt.name AS product_type_name,
			s.name AS store_name,
			s.country AS store_country,
			ps.price_per_unit_string
		FROM PriceSample ps
		JOIN ProductType pt ON ps.product_type_id = pt.product_type_id
		JOIN Store s ON ps.store_id = s.store_id
		ORDER BY ps.date, s.name, pt.name, ps.variant
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query export records: %v", err)
	}
	defer rows.Close()

	var records []models.ExportRecord
	for rows.Next() {
		var rec models.ExportRecord
		var country sql.NullString
		var perUnit sql.NullString
		err := rows.Scan(&rec.Date, &rec.Variant, &rec.ProductTypeName, &rec.StoreName, &country, &perUnit)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export record: %v", err)
		}
		rec.StoreCountry = country.String
		rec.PricePerUnitString = perUnit.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
