package main

import (
	"io"
	"time"

	apperrors "github.com/ayushthakur13/cross-platform-job-analytics/errors"
	"github.com/ayushthakur13/cross-platform-job-analytics/models"
	"github.com/ayushthakur13/cross-platform-job-analytics/normalize"
	"github.com/ayushthakur13/cross-platform-job-analytics/services"
	"github.com/ayushthakur13/cross-platform-job-analytics/storage"
)

// Flags shared by more than one command. Only one command runs per process.
var (
	inFlag        string
	outFlag       string
	refFlag       string
	topSkillsFlag int
	storeFlag     bool
)

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func newCleaner() (*services.Cleaner, error) {
	tables, err := normalize.LoadTables(cfg.TablesPath)
	if err != nil {
		return nil, apperrors.InvalidInput("lookup tables", err)
	}
	return services.NewCleaner(logger, normalize.NewCategorizer(tables), services.CleanerConfig{
		Workers:     cfg.Workers,
		WinsorLower: cfg.WinsorLower,
		WinsorUpper: cfg.WinsorUpper,
	}), nil
}

// cleanRaw runs the record cleaner over raw with the configured reference
// instant.
func cleanRaw(raw *models.RawTable) (*models.CleanedTable, error) {
	ref, err := cfg.Reference(time.Now())
	if err != nil {
		return nil, err
	}
	cleaner, err := newCleaner()
	if err != nil {
		return nil, err
	}
	logger.Info("Resolving relative posting dates against %s", ref.Format(time.RFC3339))
	return cleaner.Clean(raw, ref), nil
}

// writeCleaned hands table to every sink and then closes them all. The first
// error wins.
func writeCleaned(table *models.CleanedTable, sinks ...storage.CleanedWriter) error {
	var firstErr error
	for _, s := range sinks {
		if err := s.WriteCleaned(table); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, s := range sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func writeFeatures(table *models.FeatureTable, w storage.FeatureWriter) error {
	if err := w.WriteFeatures(table); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func printReport(out io.Writer, raw *models.RawTable, cleaned *models.CleanedTable) {
	svc := services.NewInsightService(logger)
	svc.SetOutput(out)
	svc.Print(svc.Generate(raw, cleaned))
}
