package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"inflatrack/database"
	"inflatrack/models"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestRepo(t *testing.T) *SampleRepository {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTablesOn(db))
	return NewSampleRepository(db)
}

func insertSample(t *testing.T, repo *SampleRepository, store, product, date, variant string, price float64) {
	t.Helper()
	tx, err := repo.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	storeID, err := repo.GetOrCreateStore(tx, store, "Ukraine")
	require.NoError(t, err)
	productTypeID, err := repo.GetOrCreateProductType(tx, product)
	require.NoError(t, err)

	require.NoError(t, repo.UpsertSample(tx, &models.PriceSample{
		StoreID:            storeID,
		ProductTypeID:      productTypeID,
		Date:               date,
		Variant:            variant,
		FullName:           "Milk 1l",
		FullPriceString:    "19,99 грн",
		PriceNumber:        price,
		PriceCurrency:      "UAH",
		PackageSizeString:  "1 l",
		PackageSizeNumber:  1,
		PackageUnit:        "l",
		PricePerUnitString: "19.99 UAH/l",
		PricePerUnitNumber: price,
	}))
	require.NoError(t, tx.Commit())
}

func TestGetOrCreateStoreReusesRow(t *testing.T) {
	repo := newTestRepo(t)

	tx, err := repo.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	first, err := repo.GetOrCreateStore(tx, "Auchan", "Ukraine")
	require.NoError(t, err)
	second, err := repo.GetOrCreateStore(tx, "Auchan", "Ukraine")
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := repo.GetOrCreateStore(tx, "Walmart", "USA")
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestGetOrCreateProductTypeReusesRow(t *testing.T) {
	repo := newTestRepo(t)

	tx, err := repo.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	first, err := repo.GetOrCreateProductType(tx, "Milk")
	require.NoError(t, err)
	second, err := repo.GetOrCreateProductType(tx, "Milk")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUpsertSampleReplacesSameKey(t *testing.T) {
	repo := newTestRepo(t)

	insertSample(t, repo, "Auchan", "Milk", "2026-08-30", models.VariantCheapest, 19.99)
	insertSample(t, repo, "Auchan", "Milk", "2026-08-30", models.VariantCheapest, 21.50)

	count, err := repo.CountSamples()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	records, err := repo.ExportRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestUpsertSampleKeepsDistinctVariants(t *testing.T) {
	repo := newTestRepo(t)

	insertSample(t, repo, "Auchan", "Milk", "2026-08-30", models.VariantCheapest, 19.99)
	insertSample(t, repo, "Auchan", "Milk", "2026-08-30", models.VariantMostExpensive, 54.00)

	count, err := repo.CountSamples()
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestPreviousPriceExcludesSameDay(t *testing.T) {
	repo := newTestRepo(t)

	insertSample(t, repo, "Auchan", "Milk", "2026-08-28", models.VariantCheapest, 18.00)
	insertSample(t, repo, "Auchan", "Milk", "2026-08-30", models.VariantCheapest, 19.99)

	tx, err := repo.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	storeID, err := repo.GetOrCreateStore(tx, "Auchan", "Ukraine")
	require.NoError(t, err)
	productTypeID, err := repo.GetOrCreateProductType(tx, "Milk")
	require.NoError(t, err)

	// Re-running on 2026-08-30 must compare against the 28th, not today's
	// own row.
	price, ok, err := repo.PreviousPrice(tx, storeID, productTypeID, models.VariantCheapest, "2026-08-30")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 18.00, price)
}

func TestPreviousPriceNoPriorObservation(t *testing.T) {
	repo := newTestRepo(t)

	insertSample(t, repo, "Auchan", "Milk", "2026-08-30", models.VariantCheapest, 19.99)

	tx, err := repo.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	storeID, err := repo.GetOrCreateStore(tx, "Auchan", "Ukraine")
	require.NoError(t, err)
	productTypeID, err := repo.GetOrCreateProductType(tx, "Milk")
	require.NoError(t, err)

	_, ok, err := repo.PreviousPrice(tx, storeID, productTypeID, models.VariantCheapest, "2026-08-30")
	require.NoError(t, err)
	require.False(t, ok)

	// Another variant has no history either.
	_, ok, err = repo.PreviousPrice(tx, storeID, productTypeID, models.VariantMostExpensive, "2026-08-31")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSampleExists(t *testing.T) {
	repo := newTestRepo(t)

	insertSample(t, repo, "Auchan", "Milk", "2026-08-30", models.VariantCheapest, 19.99)

	tx, err := repo.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	storeID, err := repo.GetOrCreateStore(tx, "Auchan", "Ukraine")
	require.NoError(t, err)
	productTypeID, err := repo.GetOrCreateProductType(tx, "Milk")
	require.NoError(t, err)

	exists, err := repo.SampleExists(tx, storeID, productTypeID, "2026-08-30", models.VariantCheapest)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.SampleExists(tx, storeID, productTypeID, "2026-08-31", models.VariantCheapest)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestExportRecordsProjection(t *testing.T) {
	repo := newTestRepo(t)

	insertSample(t, repo, "Auchan", "Milk", "2026-08-30", models.VariantCheapest, 19.99)
	insertSample(t, repo, "Auchan", "Bread", "2026-08-29", models.VariantCheapest, 12.50)

	records, err := repo.ExportRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Ordered by date first.
	require.Equal(t, "2026-08-29", records[0].Date)
	require.Equal(t, "Bread", records[0].ProductTypeName)
	require.Equal(t, "2026-08-30", records[1].Date)
	require.Equal(t, "Milk", records[1].ProductTypeName)

	for _, rec := range records {
		require.Equal(t, "Auchan", rec.StoreName)
		require.Equal(t, "Ukraine", rec.StoreCountry)
		require.NotEmpty(t, rec.PricePerUnitString)
	}
}
