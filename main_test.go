package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ayushthakur13/cross-platform-job-analytics/errors"
	"github.com/ayushthakur13/cross-platform-job-analytics/storage"
)

const rawFixture = "job_id,source,title,company,job_url,city,salary_text,experience_text,posting_date_text,skills\n" +
	"1,Naukri,Data Scientist,Foo Pvt Ltd,https://x/1,Bengaluru,6-8 LPA,2-4 years,2 days ago,\"python, ml\"\n" +
	"1,Naukri,Data Scientist,Foo Pvt Ltd,https://x/1,Bengaluru,6-8 LPA,2-4 years,2 days ago,\"python, ml\"\n" +
	"2,Indeed,Backend Engineer,Bar Technologies,https://x/2,Gurugram,₹50000/month,Fresher,Today,\"Go, SQL\"\n" +
	"3,Naukri,QA Analyst,Baz Ltd,https://x/3,Kochi,Not Disclosed,5-7 Yrs,30+ days ago,\n"

// resetFlags clears values and Changed marks left by a previous Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeRaw(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(rawFixture), 0o644))
	return dir, path
}

func TestCleanThenFeaturize(t *testing.T) {
	dir, raw := writeRaw(t)
	cleanedPath := filepath.Join(dir, "out", "cleaned.csv")
	featuresPath := filepath.Join(dir, "out", "features.csv")

	_, err := execute(t, "clean", "--in", raw, "--out", cleanedPath, "--ref", "2024-03-15T10:00:00Z")
	require.NoError(t, err)

	cleaned, err := storage.ReadCleanedCSV(cleanedPath)
	require.NoError(t, err)
	require.Len(t, cleaned.Records, 3)
	assert.Equal(t, "Foo", cleaned.Records[0].CompanyNorm)
	require.NotNil(t, cleaned.Records[0].PostingDate)
	assert.Equal(t, "2024-03-13", cleaned.Records[0].PostingDate.Format("2006-01-02"))
	require.NotNil(t, cleaned.Records[1].AvgSalaryINR)
	assert.Equal(t, int64(600000), *cleaned.Records[1].AvgSalaryINR, "monthly pay is annualized")

	_, err = execute(t, "featurize", "--in", cleanedPath, "--out", featuresPath, "--top-skills", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(featuresPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	header := strings.Split(lines[0], ",")
	assert.Equal(t, "job_id", header[0])
	assert.Contains(t, header, "avg_salary_inr")
	assert.Contains(t, header, "experience_level_code")

	skillCols := 0
	for _, h := range header {
		if strings.HasPrefix(h, "skill_") {
			skillCols++
		}
	}
	assert.Equal(t, 2, skillCols)
}

func TestRunWritesBothTablesAndReport(t *testing.T) {
	dir, raw := writeRaw(t)
	cleanedPath := filepath.Join(dir, "cleaned.csv")
	featuresPath := filepath.Join(dir, "features.csv")

	out, err := execute(t, "run", "--in", raw,
		"--cleaned-out", cleanedPath, "--features-out", featuresPath,
		"--ref", "2024-03-15T10:00:00Z")
	require.NoError(t, err)

	assert.FileExists(t, cleanedPath)
	assert.FileExists(t, featuresPath)
	assert.Contains(t, out, "JOB LISTINGS DATA QUALITY")
	assert.Contains(t, out, "Derived Field Coverage")
	assert.Contains(t, out, featuresPath)
}

func TestReportRawOnly(t *testing.T) {
	_, raw := writeRaw(t)

	out, err := execute(t, "report", "--in", raw)
	require.NoError(t, err)
	assert.Contains(t, out, "Top values: salary_text")
	assert.NotContains(t, out, "Derived Field Coverage")
}

func TestMissingInputAbortsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	cleanedPath := filepath.Join(dir, "cleaned.csv")

	_, err := execute(t, "clean", "--in", filepath.Join(dir, "nope.csv"), "--out", cleanedPath)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.NoFileExists(t, cleanedPath)
}

func TestInvalidFlagsFailValidation(t *testing.T) {
	dir, raw := writeRaw(t)

	_, err := execute(t, "featurize", "--in", raw, "--out", filepath.Join(dir, "f.csv"), "--top-skills", "0")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidInput))

	_, err = execute(t, "clean", "--in", raw, "--out", filepath.Join(dir, "c.csv"), "--ref", "last tuesday")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidInput))
}
