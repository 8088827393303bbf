// Package export writes payment records to CSV and JSON files for
// downstream consumption.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aakulov/divcast/internal/contracts"
)

// Writer exports payment records into a target directory.
type Writer struct {
	dir string
	log zerolog.Logger
}

// NewWriter creates an export writer. The directory is created on first use.
func NewWriter(dir string, log zerolog.Logger) *Writer {
	return &Writer{
		dir: dir,
		log: log.With().Str("component", "export").Logger(),
	}
}

var csvHeader = []string{
	"ticker", "name", "record_date", "announcement_date",
	"dividend_value", "period", "source", "year", "quarter", "strategy",
}

// WriteCSV writes records to a CSV file and returns its path.
func (w *Writer) WriteCSV(records []contracts.PaymentRecord, name string) (string, error) {
	path, err := w.preparePath(name, ".csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Ticker,
			rec.Name,
			rec.RecordDateStr,
			rec.AnnouncementDate,
			strconv.FormatFloat(rec.DividendValue, 'f', -1, 64),
			rec.Period,
			rec.Source.String(),
			strconv.Itoa(rec.Year),
			strconv.Itoa(rec.Quarter),
			string(rec.Strategy),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	w.log.Info().Str("path", path).Int("records", len(records)).Msg("csv export written")

	return path, nil
}

// jsonRecord is the export shape of one payment record.
type jsonRecord struct {
	Ticker           string  `json:"ticker"`
	Name             string  `json:"name"`
	RecordDate       string  `json:"record_date"`
	AnnouncementDate string  `json:"announcement_date"`
	DividendValue    float64 `json:"dividend_value"`
	Period           string  `json:"period"`
	Source           string  `json:"source"`
	Year             int     `json:"year"`
	Quarter          int     `json:"quarter"`
	Strategy         string  `json:"strategy"`
}

// WriteJSON writes records to a JSON file and returns its path.
func (w *Writer) WriteJSON(records []contracts.PaymentRecord, name string) (string, error) {
	path, err := w.preparePath(name, ".json")
	if err != nil {
		return "", err
	}

	out := make([]jsonRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, jsonRecord{
			Ticker:           rec.Ticker,
			Name:             rec.Name,
			RecordDate:       rec.RecordDateStr,
			AnnouncementDate: rec.AnnouncementDate,
			DividendValue:    rec.DividendValue,
			Period:           rec.Period,
			Source:           rec.Source.String(),
			Year:             rec.Year,
			Quarter:          rec.Quarter,
			Strategy:         string(rec.Strategy),
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}

	w.log.Info().Str("path", path).Int("records", len(records)).Msg("json export written")

	return path, nil
}

// Timestamped returns a file base name carrying the current date,
// e.g. "forecasts_2026-01-15".
func Timestamped(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s", prefix, now.Format("2006-01-02"))
}

func (w *Writer) preparePath(name, ext string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	return filepath.Join(w.dir, name+ext), nil
}
