package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	apperrors "github.com/ayushthakur13/cross-platform-job-analytics/errors"
	"github.com/ayushthakur13/cross-platform-job-analytics/models"
	"github.com/ayushthakur13/cross-platform-job-analytics/utils"
)

const insertBatchSize = 50

// cleanedJobColumns is the insert column order used by buildInsert.
var cleanedJobColumns = []string{
	"listing_id", "source", "job_url", "title", "company", "city", "category", "job_type", "skills",
	"min_salary_inr", "max_salary_inr", "avg_salary_inr", "avg_salary_inr_capped",
	"exp_min_years", "exp_max_years", "experience_level",
	"posting_date", "location_tier", "salary_band", "is_remote",
}

// PostgresWriter persists cleaned job records to PostgreSQL.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens a connection to PostgreSQL, waits for it to accept
// connections, runs schema migrations, and returns a ready-to-use writer.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, apperrors.InvalidInput("postgres: open", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 6, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, apperrors.Unavailable("postgres: database not reachable", err)
	}

	pw := &PostgresWriter{db: db, logger: logger}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, apperrors.Internal("postgres: migrate", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS cleaned_jobs (
			listing_id            TEXT          PRIMARY KEY,
			source                TEXT          NOT NULL DEFAULT '',
			job_url               TEXT          NOT NULL DEFAULT '',
			title                 TEXT          NOT NULL DEFAULT '',
			company               TEXT          NOT NULL DEFAULT '',
			city                  TEXT          NOT NULL DEFAULT '',
			category              TEXT          NOT NULL DEFAULT '',
			job_type              TEXT          NOT NULL DEFAULT '',
			skills                TEXT          NOT NULL DEFAULT '',
			min_salary_inr        BIGINT,
			max_salary_inr        BIGINT,
			avg_salary_inr        BIGINT,
			avg_salary_inr_capped NUMERIC(14,2),
			exp_min_years         NUMERIC(5,2),
			exp_max_years         NUMERIC(5,2),
			experience_level      TEXT          NOT NULL DEFAULT '',
			posting_date          DATE,
			location_tier         TEXT          NOT NULL DEFAULT '',
			salary_band           TEXT          NOT NULL DEFAULT '',
			is_remote             BOOLEAN       NOT NULL DEFAULT FALSE,
			created_at            TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_cleaned_jobs_city     ON cleaned_jobs(city);
		CREATE INDEX IF NOT EXISTS idx_cleaned_jobs_category ON cleaned_jobs(category);
		CREATE INDEX IF NOT EXISTS idx_cleaned_jobs_level    ON cleaned_jobs(experience_level);
		CREATE INDEX IF NOT EXISTS idx_cleaned_jobs_salary   ON cleaned_jobs(avg_salary_inr);
	`)
	return err
}

// WriteCleaned replaces the stored records with table, in batches, inside one
// transaction. On any failure the previous contents are left untouched.
func (pw *PostgresWriter) WriteCleaned(table *models.CleanedTable) error {
	if len(table.Records) == 0 {
		return nil
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return apperrors.Unavailable("postgres: begin", err)
	}
	if err := replaceRows(tx, table.Records); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Internal("postgres: commit", err)
	}

	n, err := pw.Count()
	if err != nil {
		return err
	}
	pw.logger.Info("[postgres] Stored %d cleaned records (cleaned_jobs now holds %d)", len(table.Records), n)
	return nil
}

// execer is the part of *sql.Tx that replaceRows needs.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// replaceRows clears cleaned_jobs and inserts records in batches. Callers
// run it inside a transaction.
func replaceRows(ex execer, records []*models.CleanedJob) error {
	if _, err := ex.Exec("DELETE FROM cleaned_jobs"); err != nil {
		return apperrors.Internal("postgres: clear", err)
	}
	for i := 0; i < len(records); i += insertBatchSize {
		end := min(i+insertBatchSize, len(records))
		query, args := buildInsert(records[i:end])
		if _, err := ex.Exec(query, args...); err != nil {
			return apperrors.Internal(fmt.Sprintf("postgres: insert rows %d-%d", i, end-1), err)
		}
	}
	return nil
}

// buildInsert renders one multi-row INSERT for batch. Nil pointers are sent
// as SQL NULL.
func buildInsert(batch []*models.CleanedJob) (string, []any) {
	n := len(cleanedJobColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*n)

	for idx, j := range batch {
		placeholders := make([]string, n)
		for k := range placeholders {
			placeholders[k] = fmt.Sprintf("$%d", idx*n+k+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			j.ListingID, j.Raw.Get(models.FieldSource), j.Raw.Get(models.FieldJobURL),
			j.TitleClean, j.CompanyNorm, j.CityNorm, j.CategoryNorm, j.JobTypeNorm,
			strings.Join(j.Skills, ", "),
			j.MinSalaryINR, j.MaxSalaryINR, j.AvgSalaryINR, j.AvgSalaryINRCapped,
			j.ExpMinYears, j.ExpMaxYears, j.ExperienceLevel,
			j.PostingDate, j.LocationTier, j.SalaryBand, j.IsRemote,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO cleaned_jobs (%s)
		VALUES %s
		ON CONFLICT (listing_id) DO NOTHING
	`, strings.Join(cleanedJobColumns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

// Count returns the number of stored records.
func (pw *PostgresWriter) Count() (int, error) {
	var n int
	if err := pw.db.QueryRow("SELECT COUNT(*) FROM cleaned_jobs").Scan(&n); err != nil {
		return 0, apperrors.Internal("postgres: count", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
