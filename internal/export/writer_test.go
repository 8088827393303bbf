package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aakulov/divcast/internal/contracts"
)

func sampleRecords() []contracts.PaymentRecord {
	return []contracts.PaymentRecord{
		{
			Ticker:           "sber",
			Name:             "Сбербанк",
			RecordDate:       time.Date(2023, 5, 11, 0, 0, 0, 0, time.UTC),
			RecordDateStr:    "11.05.2023",
			AnnouncementDate: contracts.NoData,
			DividendValue:    25.0,
			Period:           "Q2 2023",
			Source:           contracts.SourceActual,
			Year:             2023,
			Quarter:          2,
			Month:            5,
			Strategy:         contracts.TagActual,
		},
		{
			Ticker:           "sber",
			Name:             "Сбербанк",
			RecordDateStr:    "15.06.2025",
			AnnouncementDate: contracts.NoData,
			DividendValue:    27.5,
			Period:           "Q2 2025",
			Source:           contracts.SourceDerivedForecast,
			Year:             2025,
			Quarter:          2,
			Month:            6,
			Strategy:         contracts.TagQuarterlyHistory,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, zerolog.Nop())

	path, err := w.WriteCSV(sampleRecords(), "test")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "sber", rows[1][0])
	assert.Equal(t, "11.05.2023", rows[1][2])
	assert.Equal(t, "25", rows[1][4])
	assert.Equal(t, "actual", rows[1][6])
	assert.Equal(t, "QUARTERLY_HISTORY", rows[2][9])
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, zerolog.Nop())

	path, err := w.WriteJSON(sampleRecords(), "test")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []jsonRecord
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 2)

	assert.Equal(t, "sber", out[0].Ticker)
	assert.Equal(t, 25.0, out[0].DividendValue)
	assert.Equal(t, "actual", out[0].Source)
	assert.Equal(t, "derived forecast", out[1].Source)
	assert.Equal(t, "QUARTERLY_HISTORY", out[1].Strategy)
}

func TestWriteCSV_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir, zerolog.Nop())

	_, err := w.WriteCSV(sampleRecords(), "test")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "test.csv"))
	assert.NoError(t, err)
}

func TestTimestamped(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "forecasts_2026-01-15", Timestamped("forecasts", now))
}
