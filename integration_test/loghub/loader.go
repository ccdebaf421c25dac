// Package loghub loads datasets from the Loghub benchmark
// (https://github.com/logpai/loghub).
package loghub

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-errors/errors"
)

// Entry is one row of a Loghub structured CSV file.
type Entry struct {
	LineID  int
	Content string
	EventID string
}

// RawPath returns the path of a dataset's raw 2k log.
func RawPath(base, dataset string) string {
	return filepath.Join(base, dataset, dataset+"_2k.log")
}

// StructuredPath returns the path of a dataset's corrected structured CSV.
func StructuredPath(base, dataset string) string {
	return filepath.Join(base, dataset, dataset+"_2k.log_structured_corrected.csv")
}

// LoadStructured reads a Loghub structured CSV file. Column indices are
// determined from the header row; rows too short for them are skipped.
func LoadStructured(csvPath string) ([]Entry, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, errors.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.Errorf("csv has fewer than 2 rows (header + data)")
	}

	cols := map[string]int{"LineId": -1, "Content": -1, "EventId": -1}
	for i, name := range records[0] {
		if _, ok := cols[name]; ok {
			cols[name] = i
		}
	}
	for name, i := range cols {
		if i == -1 {
			return nil, errors.Errorf("missing required column: %s", name)
		}
	}
	width := max(cols["LineId"], cols["Content"], cols["EventId"])

	entries := make([]Entry, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) <= width {
			continue
		}
		id, err := strconv.Atoi(row[cols["LineId"]])
		if err != nil {
			return nil, errors.Errorf("line id %q: %w", row[cols["LineId"]], err)
		}
		entries = append(entries, Entry{
			LineID:  id,
			Content: row[cols["Content"]],
			EventID: row[cols["EventId"]],
		})
	}
	return entries, nil
}
