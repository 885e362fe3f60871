package storage

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	apperrors "github.com/ayushthakur13/cross-platform-job-analytics/errors"
	"github.com/ayushthakur13/cross-platform-job-analytics/models"
)

const utf8BOM = "\ufeff"

// ReadRawCSV loads a raw listing table. Each row becomes one RawJob keyed by
// the header; empty cells are left out. A missing file is a NotFound error,
// anything else that stops the table from being read is InvalidInput.
func ReadRawCSV(path string) (*models.RawTable, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	table := &models.RawTable{Columns: header, Records: make([]models.RawJob, 0, len(rows))}
	for _, row := range rows {
		table.Records = append(table.Records, rowToRecord(header, row))
	}
	return table, nil
}

// ReadCleanedCSV loads a table previously written by CSVWriter.WriteCleaned.
func ReadCleanedCSV(path string) (*models.CleanedTable, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	derived := make(map[string]struct{}, len(cleanedColumns))
	for _, c := range cleanedColumns {
		derived[c] = struct{}{}
	}
	if !containsColumn(header, colListingID) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s: not a cleaned table (no %s column)", path, colListingID), nil)
	}

	table := &models.CleanedTable{Records: make([]*models.CleanedJob, 0, len(rows))}
	for _, h := range header {
		if _, ok := derived[h]; !ok {
			table.Columns = append(table.Columns, h)
		}
	}
	table.Winsorized = containsColumn(header, colAvgSalaryINRCapped)

	for i, row := range rows {
		job, err := decodeCleaned(rowToRecord(header, row), table.Columns)
		if err != nil {
			// +2: header line and 1-based numbering
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s: line %d", path, i+2), err)
		}
		table.Records = append(table.Records, job)
	}
	return table, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil, apperrors.NotFound(fmt.Sprintf("input table %q does not exist", path), err)
		}
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("open %q", path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("%s: empty table", path), nil)
	}
	if err != nil {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("%s: read header", path), err)
	}
	header, err = normalizeHeader(header)
	if err != nil {
		return nil, nil, apperrors.InvalidInput(path, err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("%s: read rows", path), err)
	}
	return header, rows, nil
}

func normalizeHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[h] = struct{}{}
		out[i] = h
	}
	return out, nil
}

func rowToRecord(header, row []string) models.RawJob {
	rec := make(models.RawJob, len(header))
	for i, h := range header {
		if i < len(row) && row[i] != "" {
			rec[h] = row[i]
		}
	}
	return rec
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
