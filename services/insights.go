package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ayushthakur13/cross-platform-job-analytics/models"
	"github.com/ayushthakur13/cross-platform-job-analytics/utils"
)

const (
	distributionLimit = 15
	topSkillLimit     = 15
)

// keyFields are checked for missing values in the raw batch.
var keyFields = []string{
	models.FieldTitle,
	models.FieldCompany,
	models.FieldJobURL,
	models.FieldCity,
	models.FieldLocationFull,
	models.FieldSalaryText,
	models.FieldExperienceText,
	models.FieldSkills,
	models.FieldDescription,
	models.FieldPostingDateText,
	models.FieldJobType,
}

// distributionFields get a top-N value distribution in the report.
var distributionFields = []string{
	models.FieldSalaryText,
	models.FieldExperienceText,
	models.FieldJobType,
	models.FieldCity,
	models.FieldCategorySearched,
	models.FieldSource,
}

type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, out: os.Stdout}
}

// SetOutput redirects Print.
func (s *InsightService) SetOutput(w io.Writer) {
	s.out = w
}

// Generate computes data-quality metrics for raw. cleaned may be nil, in
// which case only the raw metrics are filled in.
func (s *InsightService) Generate(raw *models.RawTable, cleaned *models.CleanedTable) *models.QualityReport {
	report := &models.QualityReport{
		Distributions: make(map[string][]models.ValueCount),
	}
	if raw != nil {
		s.rawMetrics(raw, report)
	}
	if cleaned != nil {
		s.cleanedMetrics(cleaned, report)
	}
	return report
}

func (s *InsightService) rawMetrics(raw *models.RawTable, report *models.QualityReport) {
	report.TotalRows = len(raw.Records)
	report.TotalColumns = len(raw.Columns)

	seen := make(map[string]struct{}, len(raw.Records))
	present := make(map[string]int, len(keyFields))
	values := make(map[string]map[string]int, len(distributionFields))
	for _, f := range distributionFields {
		values[f] = make(map[string]int)
	}

	for _, r := range raw.Records {
		t := trimRecord(r)
		k := identityKey(t)
		if _, dup := seen[k]; dup {
			report.DuplicateRows++
		} else {
			seen[k] = struct{}{}
		}
		for _, f := range keyFields {
			if t.Has(f) {
				present[f]++
			}
		}
		for _, f := range distributionFields {
			if v := t.Get(f); v != "" {
				values[f][v]++
			}
		}
	}

	for _, f := range keyFields {
		report.Missing = append(report.Missing, models.FieldCoverage{
			Field: f, Present: present[f], Total: report.TotalRows,
		})
	}
	for _, f := range distributionFields {
		if len(values[f]) > 0 {
			report.Distributions[f] = topValues(values[f], distributionLimit)
		}
	}
	s.logger.Debug("[insights] Raw batch: %d rows, %d duplicates", report.TotalRows, report.DuplicateRows)
}

func (s *InsightService) cleanedMetrics(cleaned *models.CleanedTable, report *models.QualityReport) {
	jobs := cleaned.Records
	report.Cleaned = true
	report.CleanedRows = len(jobs)
	summary := cleaned.Summary
	report.Summary = &summary

	derived := []struct {
		field string
		has   func(*models.CleanedJob) bool
	}{
		{"company_norm", func(j *models.CleanedJob) bool { return j.CompanyNorm != "" }},
		{"city_norm", func(j *models.CleanedJob) bool { return j.CityNorm != "" }},
		{"job_type_norm", func(j *models.CleanedJob) bool { return j.JobTypeNorm != "" }},
		{"category_norm", func(j *models.CleanedJob) bool { return j.CategoryNorm != "" }},
		{"skills_norm", func(j *models.CleanedJob) bool { return len(j.Skills) > 0 }},
		{"avg_salary_inr", func(j *models.CleanedJob) bool { return j.AvgSalaryINR != nil }},
		{"exp_min_years", func(j *models.CleanedJob) bool { return j.ExpMinYears != nil }},
		{"experience_level", func(j *models.CleanedJob) bool { return j.ExperienceLevel != "" }},
		{"posting_date", func(j *models.CleanedJob) bool { return j.PostingDate != nil }},
		{"location_tier", func(j *models.CleanedJob) bool { return j.LocationTier != "" }},
		{"salary_band", func(j *models.CleanedJob) bool { return j.SalaryBand != "" }},
	}
	for _, d := range derived {
		cov := models.FieldCoverage{Field: d.field, Total: len(jobs)}
		for _, j := range jobs {
			if d.has(j) {
				cov.Present++
			}
		}
		report.Derived = append(report.Derived, cov)
	}

	for _, j := range jobs {
		if j.HasSalaryText && j.HasSkills && j.HasDescription {
			report.CompleteListings++
		}
	}

	report.TopSkills = SkillFrequencies(jobs)
	if len(report.TopSkills) > topSkillLimit {
		report.TopSkills = report.TopSkills[:topSkillLimit]
	}
}

// topValues orders counts descending, then by value, and keeps the first n.
func topValues(counts map[string]int, n int) []models.ValueCount {
	out := make([]models.ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, models.ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *InsightService) Print(r *models.QualityReport) {
	w := s.out
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	section := func(title string) {
		fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
		fmt.Fprintf(w, "  %s\n", thin)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 JOB LISTINGS DATA QUALITY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	section("Overview")
	fmt.Fprintf(w, "  Rows            : \033[1m%d\033[0m\n", r.TotalRows)
	fmt.Fprintf(w, "  Columns         : \033[1m%d\033[0m\n", r.TotalColumns)
	fmt.Fprintf(w, "  Duplicate rows  : \033[1m%d\033[0m\n", r.DuplicateRows)
	if r.Cleaned {
		fmt.Fprintf(w, "  Rows after clean: \033[1;32m%d\033[0m\n", r.CleanedRows)
		fmt.Fprintf(w, "  Complete rows   : \033[1;32m%d\033[0m  (salary + skills + description)\n", r.CompleteListings)
	}
	fmt.Fprintln(w)

	if len(r.Missing) > 0 {
		section("Raw Field Coverage")
		printCoverage(w, r.Missing)
		fmt.Fprintln(w)
	}

	for _, f := range distributionFields {
		dist := r.Distributions[f]
		if len(dist) == 0 {
			continue
		}
		section("Top values: " + f)
		for _, vc := range dist {
			fmt.Fprintf(w, "  %s %5d\n", pad(vc.Value, 44), vc.Count)
		}
		fmt.Fprintln(w)
	}

	if r.Cleaned {
		section("Derived Field Coverage")
		printCoverage(w, r.Derived)
		fmt.Fprintln(w)

		section("Top Skills")
		if len(r.TopSkills) == 0 {
			fmt.Fprintf(w, "  No skills found\n")
		}
		for i, sk := range r.TopSkills {
			fmt.Fprintf(w, "  \033[1m%2d.\033[0m %s \033[1;32m%d\033[0m\n", i+1, pad(sk.Value, 36), sk.Count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCoverage(w io.Writer, cov []models.FieldCoverage) {
	for _, c := range cov {
		bar := strings.Repeat("█", int(c.Percent()/5))
		fmt.Fprintf(w, "  %s %6.1f%% %s\n", pad(c.Field, 22), round2(c.Percent()), bar)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// pad truncates s to width display cells and right-pads it to exactly width.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}
