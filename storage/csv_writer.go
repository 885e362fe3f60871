package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	apperrors "github.com/ayushthakur13/cross-platform-job-analytics/errors"
	"github.com/ayushthakur13/cross-platform-job-analytics/models"
)

// CSVWriter writes one cleaned or feature table to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.Internal(fmt.Sprintf("csv: create output dir for %q", path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, apperrors.Internal(fmt.Sprintf("csv: create file %q", path), err)
	}

	return &CSVWriter{path: path, file: f, writer: csv.NewWriter(f)}, nil
}

// WriteCleaned writes the header and one row per cleaned record.
func (c *CSVWriter) WriteCleaned(table *models.CleanedTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	header := CleanedHeader(table)
	if err := c.writer.Write(header); err != nil {
		return c.wrap("write header", err)
	}

	row := make([]string, len(header))
	for _, j := range table.Records {
		cells := encodeCleaned(j)
		for i, col := range header {
			row[i] = cells[col]
		}
		if err := c.writer.Write(row); err != nil {
			return c.wrap("write row", err)
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return c.wrap("flush", err)
	}
	return nil
}

// WriteFeatures writes identifier columns followed by feature columns.
// Absent feature values are written as empty cells.
func (c *CSVWriter) WriteFeatures(table *models.FeatureTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(table.Columns()); err != nil {
		return c.wrap("write header", err)
	}

	row := make([]string, 0, len(table.IdentifierColumns)+len(table.FeatureColumns))
	for _, r := range table.Records {
		row = row[:0]
		for _, col := range table.IdentifierColumns {
			row = append(row, r.Identifiers[col])
		}
		for _, col := range table.FeatureColumns {
			v, ok := r.Values[col]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := c.writer.Write(row); err != nil {
			return c.wrap("write row", err)
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return c.wrap("flush", err)
	}
	return nil
}

func (c *CSVWriter) wrap(op string, err error) error {
	return apperrors.Internal(fmt.Sprintf("csv: %s %q", op, c.path), err)
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}
