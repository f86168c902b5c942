package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"inflatrack/database"
	"inflatrack/models"
	"inflatrack/repository"
	"inflatrack/scraper"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestRecorder(t *testing.T) (*Recorder, *repository.SampleRepository) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTablesOn(db))

	samples := repository.NewSampleRepository(db)
	return NewRecorder(samples, scraper.DefaultUnitTable()), samples
}

func milkObservation() *models.Observation {
	return &models.Observation{
		StoreName:       "Auchan",
		Country:         "Ukraine",
		ProductType:     "Milk",
		Variant:         models.VariantCheapest,
		FullName:        "Молоко 1 л",
		FullPriceString: "39,99 грн",
		CurrencyMap: models.CurrencyMap{
			{Symbol: "грн", Code: "UAH"},
		},
	}
}

func TestSaveCreatesSample(t *testing.T) {
	recorder, samples := newTestRecorder(t)

	outcome, err := recorder.Save(milkObservation())
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	count, err := samples.CountSamples()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	records, err := samples.ExportRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Auchan", records[0].StoreName)
	require.Equal(t, "Milk", records[0].ProductTypeName)
	require.Equal(t, "39.99 UAH/l", records[0].PricePerUnitString)
}

func TestSaveSameDayTwiceKeepsOneRow(t *testing.T) {
	recorder, samples := newTestRecorder(t)

	outcome, err := recorder.Save(milkObservation())
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	// A second run on the same day overwrites the row instead of adding a
	// duplicate.
	obs := milkObservation()
	obs.FullPriceString = "41,50 грн"
	outcome, err = recorder.Save(obs)
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, outcome)

	count, err := samples.CountSamples()
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestSaveRejectsEmptyTitle(t *testing.T) {
	recorder, samples := newTestRecorder(t)

	obs := milkObservation()
	obs.FullName = "   "
	outcome, err := recorder.Save(obs)
	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, outcome)

	count, err := samples.CountSamples()
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestSaveRejectsEmptyPrice(t *testing.T) {
	recorder, samples := newTestRecorder(t)

	obs := milkObservation()
	obs.FullPriceString = ""
	outcome, err := recorder.Save(obs)
	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, outcome)

	count, err := samples.CountSamples()
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestSaveRejectsTitleWithoutPackageSize(t *testing.T) {
	recorder, samples := newTestRecorder(t)

	obs := milkObservation()
	obs.FullName = "Fresh Milk"
	outcome, err := recorder.Save(obs)
	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, outcome)

	count, err := samples.CountSamples()
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestSaveRejectsUnparsablePrice(t *testing.T) {
	recorder, samples := newTestRecorder(t)

	obs := milkObservation()
	obs.FullPriceString = "call for price"
	outcome, err := recorder.Save(obs)
	require.NoError(t, err)
	require.Equal(t, OutcomeRejected, outcome)

	count, err := samples.CountSamples()
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
