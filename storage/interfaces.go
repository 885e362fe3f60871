package storage

import "github.com/ayushthakur13/cross-platform-job-analytics/models"

// CleanedWriter is the interface any sink for cleaned records must satisfy.
type CleanedWriter interface {
	WriteCleaned(table *models.CleanedTable) error
	Close() error
}

// FeatureWriter persists a feature table.
type FeatureWriter interface {
	WriteFeatures(table *models.FeatureTable) error
	Close() error
}
