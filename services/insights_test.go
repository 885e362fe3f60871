package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushthakur13/cross-platform-job-analytics/models"
	"github.com/ayushthakur13/cross-platform-job-analytics/utils"
)

func sampleRawTable() *models.RawTable {
	return rawTable(
		models.RawJob{"title": "Dev", "company": "Acme", "job_url": "https://x/1", "city": "Pune", "salary_text": "5 LPA", "skills": "Go, SQL", "description": "..."},
		models.RawJob{"title": "Dev", "company": "Acme", "job_url": "https://x/1", "city": "Pune", "salary_text": "5 LPA"},
		models.RawJob{"title": "QA", "company": "Globex", "city": "Pune", "salary_text": "Not Disclosed", "skills": "sql"},
		models.RawJob{"title": "QA", "company": "Globex", "city": "Delhi"},
		models.RawJob{"title": "Ops", "company": "Initech", "source": "Naukri"},
	)
}

func TestInsightRawCounts(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleRawTable(), nil)

	assert.Equal(t, 5, r.TotalRows)
	assert.Equal(t, 8, r.TotalColumns)
	assert.Equal(t, 2, r.DuplicateRows)
	assert.False(t, r.Cleaned)
	assert.Empty(t, r.Derived)
}

func TestInsightDuplicatesNeedAKnownIdentity(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(rawTable(
		models.RawJob{"salary_text": "5 LPA"},
		models.RawJob{"salary_text": "9 LPA"},
		models.RawJob{"title": "Dev", "salary_text": "9 LPA"},
		models.RawJob{"title": "Dev", "company": "Acme"},
		models.RawJob{"title": " Dev ", "company": "Acme", "city": "Pune"},
	), nil)

	assert.Equal(t, 1, r.DuplicateRows, "only the title+company pair repeats")
}

func TestInsightMissingValues(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleRawTable(), nil)

	byField := make(map[string]models.FieldCoverage)
	for _, m := range r.Missing {
		byField[m.Field] = m
	}
	assert.Equal(t, 5, byField[models.FieldTitle].Present)
	assert.Equal(t, 3, byField[models.FieldSalaryText].Present)
	assert.Equal(t, 0, byField[models.FieldJobType].Present)
	assert.InDelta(t, 60.0, byField[models.FieldSalaryText].Percent(), 1e-9)
}

func TestInsightDistributions(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleRawTable(), nil)

	assert.Equal(t, []models.ValueCount{{Value: "Pune", Count: 3}, {Value: "Delhi", Count: 1}}, r.Distributions[models.FieldCity])
	assert.Equal(t, []models.ValueCount{{Value: "5 LPA", Count: 2}, {Value: "Not Disclosed", Count: 1}}, r.Distributions[models.FieldSalaryText])
	assert.NotContains(t, r.Distributions, models.FieldJobType)
}

func TestInsightCleanedMetrics(t *testing.T) {
	raw := sampleRawTable()
	cleaned := newTestCleaner().Clean(raw, refTime)

	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(raw, cleaned)

	require.True(t, r.Cleaned)
	assert.Equal(t, len(cleaned.Records), r.CleanedRows)
	assert.Equal(t, 1, r.CompleteListings)
	require.NotEmpty(t, r.TopSkills)
	// the QA duplicate that survives is the Delhi row, which has no skills
	assert.Equal(t, []models.ValueCount{{Value: "Go", Count: 1}, {Value: "SQL", Count: 1}}, r.TopSkills)
	require.NotNil(t, r.Summary)
	assert.Equal(t, 5, r.Summary.Input)

	for _, d := range r.Derived {
		if d.Field == "avg_salary_inr" {
			assert.Equal(t, 1, d.Present)
		}
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(&models.RawTable{}, nil)

	assert.Zero(t, r.TotalRows)
	assert.Zero(t, r.DuplicateRows)
	assert.Empty(t, r.Distributions)
}

func TestInsightPrint(t *testing.T) {
	raw := sampleRawTable()
	svc := NewInsightService(utils.NewNopLogger())
	var buf bytes.Buffer
	svc.SetOutput(&buf)

	svc.Print(svc.Generate(raw, newTestCleaner().Clean(raw, refTime)))

	out := buf.String()
	assert.Contains(t, out, "JOB LISTINGS DATA QUALITY")
	assert.Contains(t, out, "Derived Field Coverage")
	assert.Contains(t, out, "Top values: city")
	assert.Contains(t, out, "SQL")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "abc  ", pad("abc", 5))
	assert.Equal(t, "ab...", pad("abcdefgh", 5))
	assert.Equal(t, "日本 ", pad("日本", 5))
}
