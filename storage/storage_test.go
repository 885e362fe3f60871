package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ayushthakur13/cross-platform-job-analytics/errors"
	"github.com/ayushthakur13/cross-platform-job-analytics/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRawCSV(t *testing.T) {
	path := writeFile(t, "raw.csv", "\ufefftitle, company ,salary_text\n"+
		"Data Scientist,Foo Pvt Ltd,6-8 LPA\n"+
		"\"Dev, Backend\",,\n")

	table, err := ReadRawCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "company", "salary_text"}, table.Columns)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "6-8 LPA", table.Records[0].Get(models.FieldSalaryText))
	assert.Equal(t, "Dev, Backend", table.Records[1].Get(models.FieldTitle))
	assert.False(t, table.Records[1].Has(models.FieldCompany), "empty cells are absent")
	assert.NotContains(t, table.Records[1], models.FieldCompany)
}

func TestReadRawCSVErrors(t *testing.T) {
	_, err := ReadRawCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"duplicate column", "title,title\na,b\n"},
		{"blank column", "title,,company\na,b,c\n"},
		{"ragged row", "title,company\na,b,c\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRawCSV(writeFile(t, "bad.csv", tt.content))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidInput), err.Error())
		})
	}
}

func sampleCleaned() *models.CleanedTable {
	minINR, maxINR, avgINR := int64(600000), int64(800000), int64(700000)
	minLPA, maxLPA, avgLPA := 6.0, 8.0, 7.0
	capped, cappedLPA := 650000.5, 6.505005
	expMin, expMax := 2.0, 4.0
	posted := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)

	return &models.CleanedTable{
		Columns:    []string{"title", "company", "skills"},
		Winsorized: true,
		Records: []*models.CleanedJob{
			{
				Raw:       models.RawJob{"title": "Data Scientist", "company": "Foo Pvt Ltd", "skills": "python, ml"},
				ListingID: "1", TitleClean: "Data Scientist", CompanyClean: "Foo Pvt Ltd", CompanyNorm: "Foo",
				CityClean: "Bengaluru", CityNorm: "Bangalore", JobTypeNorm: "Full-time",
				Skills:       []string{"Python", "Machine Learning"},
				MinSalaryINR: &minINR, MaxSalaryINR: &maxINR, AvgSalaryINR: &avgINR,
				MinSalaryLPA: &minLPA, MaxSalaryLPA: &maxLPA, AvgSalaryLPA: &avgLPA,
				AvgSalaryINRCapped: &capped, AvgSalaryLPACapped: &cappedLPA,
				SalaryBand: "6-10 LPA", ExpMinYears: &expMin, ExpMaxYears: &expMax, ExperienceLevel: "Mid",
				PostingDate: &posted, LocationTier: "Tier 1", IsRemote: false,
				HasSalaryText: true, HasSkills: true, HasExperienceText: true,
			},
			{
				Raw:       models.RawJob{"title": "Intern"},
				ListingID: "2", TitleClean: "Intern",
			},
		},
	}
}

func TestCleanedCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaned.csv")
	in := sampleCleaned()

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteCleaned(in))
	require.NoError(t, w.Close())

	out, err := ReadCleanedCSV(path)
	require.NoError(t, err)

	assert.Equal(t, in.Columns, out.Columns)
	assert.True(t, out.Winsorized)
	require.Len(t, out.Records, 2)
	assert.Equal(t, in.Records[0], out.Records[0])
	assert.Equal(t, "2", out.Records[1].ListingID)
	assert.Nil(t, out.Records[1].AvgSalaryINR)
	assert.Nil(t, out.Records[1].PostingDate)
	assert.Nil(t, out.Records[1].Skills)
}

func TestCleanedHeaderOmitsCapsWhenNotWinsorized(t *testing.T) {
	table := sampleCleaned()
	table.Winsorized = false

	header := CleanedHeader(table)
	assert.Equal(t, []string{"title", "company", "skills", "listing_id"}, header[:4])
	assert.NotContains(t, header, "avg_salary_inr_capped")
	assert.Contains(t, header, "avg_salary_inr")
}

func TestReadCleanedCSVRejectsRawTable(t *testing.T) {
	_, err := ReadCleanedCSV(writeFile(t, "raw.csv", "title\nDev\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidInput))

	_, err = ReadCleanedCSV(writeFile(t, "bad.csv", "listing_id,avg_salary_inr\n1,lots\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteFeatures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.csv")
	ft := &models.FeatureTable{
		IdentifierColumns: []string{"job_id", "title_clean"},
		FeatureColumns:    []string{"avg_salary_inr", "log_avg_salary", "skill_python"},
		Records: []models.FeatureRecord{
			{Identifiers: map[string]string{"job_id": "1", "title_clean": "Dev"}, Values: map[string]float64{"avg_salary_inr": 700000, "log_avg_salary": 13.458837, "skill_python": 1}},
			{Identifiers: map[string]string{"job_id": "2", "title_clean": "QA"}, Values: map[string]float64{"skill_python": 0}},
		},
	}

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteFeatures(ft))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		"job_id,title_clean,avg_salary_inr,log_avg_salary,skill_python",
		"1,Dev,700000,13.458837,1",
		"2,QA,,,0",
	}, lines)
}

func TestBuildInsert(t *testing.T) {
	table := sampleCleaned()
	query, args := buildInsert(table.Records)

	assert.Len(t, args, 2*len(cleanedJobColumns))
	assert.Contains(t, query, "INSERT INTO cleaned_jobs (listing_id, source, job_url")
	assert.Contains(t, query, "ON CONFLICT (listing_id) DO NOTHING")
	assert.Contains(t, query, "($1,$2,")
	assert.Contains(t, query, "$40)")
	assert.NotContains(t, query, "$41")

	assert.Equal(t, "1", args[0])
	assert.Equal(t, "Foo", args[4])
	assert.Equal(t, "Python, Machine Learning", args[8])
	second := args[len(cleanedJobColumns):]
	assert.Equal(t, "2", second[0])
	assert.Nil(t, second[11].(*int64), "absent salary is sent as a nil pointer")
}

type recordingExecer struct {
	queries []string
	failOn  int
}

func (r *recordingExecer) Exec(query string, _ ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	if len(r.queries) == r.failOn {
		return nil, errors.New("connection reset")
	}
	return driver.RowsAffected(1), nil
}

func TestReplaceRowsClearsThenInsertsInBatches(t *testing.T) {
	records := make([]*models.CleanedJob, insertBatchSize+1)
	for i := range records {
		records[i] = &models.CleanedJob{ListingID: strconv.Itoa(i)}
	}

	ex := &recordingExecer{}
	require.NoError(t, replaceRows(ex, records))
	require.Len(t, ex.queries, 3)
	assert.Equal(t, "DELETE FROM cleaned_jobs", ex.queries[0])
	assert.Contains(t, ex.queries[1], "INSERT INTO cleaned_jobs")
	assert.Contains(t, ex.queries[2], "INSERT INTO cleaned_jobs")
}

func TestReplaceRowsStopsAtFailedBatch(t *testing.T) {
	records := make([]*models.CleanedJob, 2*insertBatchSize+1)
	for i := range records {
		records[i] = &models.CleanedJob{ListingID: strconv.Itoa(i)}
	}

	ex := &recordingExecer{failOn: 2}
	err := replaceRows(ex, records)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInternal))
	assert.Contains(t, err.Error(), "insert rows 0-49")
	assert.Len(t, ex.queries, 2, "no batch runs after a failure")
}
