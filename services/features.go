package services

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ayushthakur13/cross-platform-job-analytics/models"
	"github.com/ayushthakur13/cross-platform-job-analytics/normalize"
	"github.com/ayushthakur13/cross-platform-job-analytics/utils"
)

// Identifier columns carried from the cleaned table into the feature table.
const (
	IDListing  = "job_id"
	IDTitle    = "title_clean"
	IDCompany  = "company_clean"
	IDCity     = "city_clean"
	IDCategory = "category_searched_clean"
)

var identifierColumns = []string{IDListing, IDTitle, IDCompany, IDCity, IDCategory}

const unknownCategory = "unknown"

var experienceCodes = map[string]float64{
	normalize.LevelEntry:  0,
	normalize.LevelJunior: 1,
	normalize.LevelMid:    2,
	normalize.LevelSenior: 3,
}

type salaryBand struct {
	label string
	slug  string
	upper float64
}

// salaryBands are half-open LPA intervals [previous upper, upper).
var salaryBands = []salaryBand{
	{"<3 LPA", "lt_3", 3},
	{"3-6 LPA", "3_6", 6},
	{"6-10 LPA", "6_10", 10},
	{"10-20 LPA", "10_20", 20},
	{">=20 LPA", "ge_20", math.Inf(1)},
}

// SalaryBand labels an average salary in lakhs per annum. It returns "" for a
// nil salary.
func SalaryBand(lpa *float64) string {
	if lpa == nil {
		return ""
	}
	for _, b := range salaryBands {
		if *lpa < b.upper {
			return b.label
		}
	}
	return salaryBands[len(salaryBands)-1].label
}

func bandSlug(label string) string {
	for _, b := range salaryBands {
		if b.label == label {
			return b.slug
		}
	}
	return unknownCategory
}

// FeatureAssembler turns a cleaned table into a flat feature table.
type FeatureAssembler struct {
	logger  *utils.Logger
	workers int
}

// NewFeatureAssembler creates a FeatureAssembler; workers <= 0 means one per CPU.
func NewFeatureAssembler(logger *utils.Logger, workers int) *FeatureAssembler {
	return &FeatureAssembler{logger: logger, workers: workers}
}

// featureLayout is everything computed once over the whole batch before any
// row is encoded. It is read-only afterwards.
type featureLayout struct {
	numeric   []string
	bands     []string
	sources   []string
	jobTypes  []string
	tiers     []string
	skills    []string
	skillCols []string
}

// Featurize builds one feature record per cleaned record. Columns depend
// only on the cleaned table and topN.
func (a *FeatureAssembler) Featurize(table *models.CleanedTable, topN int) *models.FeatureTable {
	layout := a.layout(table, topN)

	records := utils.ParallelMap(table.Records, a.workers, func(_ int, j *models.CleanedJob) models.FeatureRecord {
		return layout.encode(j)
	})

	ft := &models.FeatureTable{
		IdentifierColumns: append([]string(nil), identifierColumns...),
		FeatureColumns:    layout.columns(),
		SkillVocabulary:   layout.skills,
		Records:           records,
	}
	a.logger.Info("[features] Built %d rows × %d feature columns (%d skills)",
		len(ft.Records), len(ft.FeatureColumns), len(layout.skills))
	return ft
}

func (a *FeatureAssembler) layout(table *models.CleanedTable, topN int) *featureLayout {
	l := &featureLayout{
		numeric: []string{
			"min_salary_inr", "max_salary_inr", "avg_salary_inr",
			"min_salary_lpa", "max_salary_lpa", "avg_salary_lpa",
		},
	}
	if table.Winsorized {
		l.numeric = append(l.numeric, "avg_salary_inr_capped", "avg_salary_lpa_capped")
	}
	l.numeric = append(l.numeric, "exp_min_years", "exp_max_years", "log_avg_salary")
	if table.Winsorized {
		l.numeric = append(l.numeric, "log_avg_salary_capped")
	}
	l.numeric = append(l.numeric,
		"experience_level_code", "is_remote",
		"has_salary_text", "has_skills", "has_experience_text", "has_description",
	)

	bands := make(map[string]struct{})
	sources := make(map[string]struct{})
	jobTypes := make(map[string]struct{})
	tiers := make(map[string]struct{})
	for _, j := range table.Records {
		bands[bandSlug(SalaryBand(j.AvgSalaryLPA))] = struct{}{}
		sources[categorySlug(j.Raw.Get(models.FieldSource))] = struct{}{}
		jobTypes[categorySlug(j.JobTypeNorm)] = struct{}{}
		tiers[categorySlug(j.LocationTier)] = struct{}{}
	}

	for _, b := range salaryBands {
		if _, ok := bands[b.slug]; ok {
			l.bands = append(l.bands, b.slug)
		}
	}
	if _, ok := bands[unknownCategory]; ok {
		l.bands = append(l.bands, unknownCategory)
	}
	l.sources = sortedCategories(sources)
	l.jobTypes = sortedCategories(jobTypes)
	l.tiers = sortedCategories(tiers)

	l.skills = TopSkills(table.Records, topN)
	used := make(map[string]int, len(l.skills))
	for _, s := range l.skills {
		col := skillColumn(s)
		used[col]++
		if n := used[col]; n > 1 {
			col += "_" + strconv.Itoa(n)
		}
		l.skillCols = append(l.skillCols, col)
	}
	return l
}

func (l *featureLayout) columns() []string {
	cols := append([]string(nil), l.numeric...)
	cols = append(cols, prefixed("salary_band_", l.bands)...)
	cols = append(cols, prefixed("source_", l.sources)...)
	cols = append(cols, prefixed("job_type_", l.jobTypes)...)
	cols = append(cols, prefixed("location_tier_", l.tiers)...)
	return append(cols, l.skillCols...)
}

func (l *featureLayout) encode(j *models.CleanedJob) models.FeatureRecord {
	ids := map[string]string{
		IDListing:  j.ListingID,
		IDTitle:    j.TitleClean,
		IDCompany:  j.CompanyClean,
		IDCity:     j.CityClean,
		IDCategory: j.CategoryClean,
	}
	v := make(map[string]float64, len(l.numeric)+len(l.skillCols)+8)

	setInt := func(name string, p *int64) {
		if p != nil {
			v[name] = float64(*p)
		}
	}
	setFloat := func(name string, p *float64) {
		if p != nil {
			v[name] = *p
		}
	}
	setInt("min_salary_inr", j.MinSalaryINR)
	setInt("max_salary_inr", j.MaxSalaryINR)
	setInt("avg_salary_inr", j.AvgSalaryINR)
	setFloat("min_salary_lpa", j.MinSalaryLPA)
	setFloat("max_salary_lpa", j.MaxSalaryLPA)
	setFloat("avg_salary_lpa", j.AvgSalaryLPA)
	setFloat("exp_min_years", j.ExpMinYears)
	setFloat("exp_max_years", j.ExpMaxYears)

	if j.AvgSalaryINR != nil {
		if lv, ok := log1pPositive(float64(*j.AvgSalaryINR)); ok {
			v["log_avg_salary"] = lv
		}
	}
	if l.hasNumeric("avg_salary_inr_capped") {
		setFloat("avg_salary_inr_capped", j.AvgSalaryINRCapped)
		setFloat("avg_salary_lpa_capped", j.AvgSalaryLPACapped)
		if j.AvgSalaryINRCapped != nil {
			if lv, ok := log1pPositive(*j.AvgSalaryINRCapped); ok {
				v["log_avg_salary_capped"] = lv
			}
		}
	}

	if code, ok := experienceCodes[j.ExperienceLevel]; ok {
		v["experience_level_code"] = code
	}
	v["is_remote"] = indicator(j.IsRemote)
	v["has_salary_text"] = indicator(j.HasSalaryText)
	v["has_skills"] = indicator(j.HasSkills)
	v["has_experience_text"] = indicator(j.HasExperienceText)
	v["has_description"] = indicator(j.HasDescription)

	oneHot(v, "salary_band_", l.bands, bandSlug(SalaryBand(j.AvgSalaryLPA)))
	oneHot(v, "source_", l.sources, categorySlug(j.Raw.Get(models.FieldSource)))
	oneHot(v, "job_type_", l.jobTypes, categorySlug(j.JobTypeNorm))
	oneHot(v, "location_tier_", l.tiers, categorySlug(j.LocationTier))

	have := make(map[string]struct{}, len(j.Skills))
	for _, s := range j.Skills {
		have[strings.ToLower(s)] = struct{}{}
	}
	for i, s := range l.skills {
		_, ok := have[strings.ToLower(s)]
		v[l.skillCols[i]] = indicator(ok)
	}

	return models.FeatureRecord{Identifiers: ids, Values: v}
}

func (l *featureLayout) hasNumeric(name string) bool {
	for _, n := range l.numeric {
		if n == name {
			return true
		}
	}
	return false
}

// TopSkills returns the n most frequent skills across records, matched
// case-insensitively. Equal counts keep first-encountered order.
func TopSkills(records []*models.CleanedJob, n int) []string {
	if n <= 0 {
		return nil
	}
	counts := SkillFrequencies(records)
	if len(counts) > n {
		counts = counts[:n]
	}
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Value
	}
	return out
}

// SkillFrequencies counts every distinct skill, most frequent first. The
// first spelling seen names the skill, and ties keep first-encountered order.
func SkillFrequencies(records []*models.CleanedJob) []models.ValueCount {
	index := make(map[string]int)
	var counts []models.ValueCount
	for _, j := range records {
		for _, s := range j.Skills {
			key := strings.ToLower(s)
			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, models.ValueCount{Value: s, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

func oneHot(v map[string]float64, prefix string, categories []string, value string) {
	for _, c := range categories {
		v[prefix+c] = indicator(c == value)
	}
}

func prefixed(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return out
}

// sortedCategories orders observed slugs with "unknown" last.
func sortedCategories(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	_, hasUnknown := set[unknownCategory]
	for k := range set {
		if k != unknownCategory {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	if hasUnknown {
		out = append(out, unknownCategory)
	}
	return out
}

// categorySlug lower-cases s and joins its alphanumeric runs with '_'.
// Empty input is the unknown category.
func categorySlug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		isWord := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isWord {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return unknownCategory
	}
	return b.String()
}

func skillColumn(skill string) string {
	r := strings.NewReplacer(" ", "_", "/", "_")
	return "skill_" + r.Replace(strings.ToLower(skill))
}

func log1pPositive(x float64) (float64, bool) {
	if x <= 0 || math.IsNaN(x) {
		return 0, false
	}
	return math.Log1p(x), true
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
