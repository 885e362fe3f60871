package services

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayushthakur13/cross-platform-job-analytics/models"
	"github.com/ayushthakur13/cross-platform-job-analytics/normalize"
	"github.com/ayushthakur13/cross-platform-job-analytics/utils"
)

const (
	TierOne   = "Tier 1"
	TierOther = "Tier 2/3"
)

// placeholderTokens are the values collectors write when a field has no data.
var placeholderTokens = map[string]struct{}{
	"not specified": {},
	"n/a":           {},
	"na":            {},
	"none":          {},
	"null":          {},
	"-":             {},
	"\u2014":        {},
	"not disclosed": {},
}

var remoteMarkers = []string{"remote", "work from home"}

var locationFields = []string{
	models.FieldCity,
	models.FieldLocation,
	models.FieldLocationFull,
	models.FieldLocationSearched,
}

// listingNamespace seeds ids for listings that have neither a job id nor a URL.
var listingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:job-listing"))

// CleanerConfig tunes the record cleaner.
type CleanerConfig struct {
	// Workers bounds the per-record worker pool; <= 0 means one per CPU.
	Workers int
	// WinsorLower and WinsorUpper are the quantiles the average salary is
	// clipped to.
	WinsorLower float64
	WinsorUpper float64
}

// DefaultCleanerConfig clips at the 1st and 99th percentiles.
func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{Workers: 0, WinsorLower: 0.01, WinsorUpper: 0.99}
}

// Cleaner turns a raw listing table into a cleaned table.
type Cleaner struct {
	logger *utils.Logger
	cat    *normalize.Categorizer
	cfg    CleanerConfig
}

// NewCleaner creates a Cleaner. A nil categorizer uses the built-in tables.
func NewCleaner(logger *utils.Logger, cat *normalize.Categorizer, cfg CleanerConfig) *Cleaner {
	if cat == nil {
		cat = normalize.NewCategorizer(nil)
	}
	if cfg.WinsorUpper <= cfg.WinsorLower {
		def := DefaultCleanerConfig()
		cfg.WinsorLower, cfg.WinsorUpper = def.WinsorLower, def.WinsorUpper
	}
	return &Cleaner{logger: logger, cat: cat, cfg: cfg}
}

type keyedRecord struct {
	raw models.RawJob
	id  string
}

// Clean deduplicates and normalizes table. ref is the single reference
// instant used to resolve every relative posting date in the batch. The
// input table is never modified.
func (c *Cleaner) Clean(table *models.RawTable, ref time.Time) *models.CleanedTable {
	out := &models.CleanedTable{Columns: append([]string(nil), table.Columns...)}
	summary := models.CleaningSummary{Input: len(table.Records)}

	rows := make([]keyedRecord, 0, len(table.Records))
	for _, r := range table.Records {
		trimmed := trimRecord(r)
		rows = append(rows, keyedRecord{raw: trimmed, id: ListingID(trimmed)})
	}
	recordRank := func(r keyedRecord) string { return r.id + "\x00" + rowKey(r.raw) }

	rows, summary.ExactDuplicates = dedupBy(rows, func(r keyedRecord) string { return rowKey(r.raw) }, recordRank)
	rows, summary.KeyDuplicates = dedupBy(rows, func(r keyedRecord) string { return identityKey(r.raw) }, recordRank)

	jobs := utils.ParallelMap(rows, c.cfg.Workers, func(_ int, r keyedRecord) *models.CleanedJob {
		return c.cleanRecord(r.raw, r.id, ref)
	})

	c.winsorize(jobs, out)

	jobs, summary.NearDuplicates = dedupBy(jobs, nearDuplicateKey, func(j *models.CleanedJob) string {
		return j.ListingID + "\x00" + rowKey(j.Raw)
	})

	out.Records = jobs
	summary.Output = len(jobs)
	out.Summary = summary

	c.logger.Info("[cleaner] Cleaned %d → %d records (exact dups %d, url/title+company dups %d, near dups %d)",
		summary.Input, summary.Output, summary.ExactDuplicates, summary.KeyDuplicates, summary.NearDuplicates)
	c.logCoverage(jobs)
	return out
}

func (c *Cleaner) cleanRecord(trimmed models.RawJob, id string, ref time.Time) *models.CleanedJob {
	r := nullifyPlaceholders(trimmed)
	job := &models.CleanedJob{Raw: r, ListingID: id}

	city := r.Get(models.FieldCity)
	if city == "" {
		city = firstSegment(r.Get(models.FieldLocationFull))
	}
	if city == "" {
		city = firstSegment(r.Get(models.FieldLocation))
	}

	job.TitleClean = normalize.CollapseSpaces(r.Get(models.FieldTitle))
	job.CompanyClean = normalize.CollapseSpaces(r.Get(models.FieldCompany))
	job.CityClean = normalize.TitleCase(normalize.CollapseSpaces(city))
	job.CategoryClean = normalize.CollapseSpaces(r.Get(models.FieldCategorySearched))

	job.CompanyNorm = c.cat.Company(r.Get(models.FieldCompany))
	job.CityNorm = c.cat.City(city)
	job.JobTypeNorm = c.cat.JobType(r.Get(models.FieldJobType))
	job.CategoryNorm = c.cat.Category(r.Get(models.FieldCategorySearched))
	job.Skills = c.cat.Skills(r.Get(models.FieldSkills))

	if s := normalize.ParseSalary(r.Get(models.FieldSalaryText)); s.Valid {
		minINR, maxINR, avgINR := s.Min, s.Max, s.Avg
		job.MinSalaryINR, job.MaxSalaryINR, job.AvgSalaryINR = &minINR, &maxINR, &avgINR
		job.MinSalaryLPA = toLPA(float64(minINR))
		job.MaxSalaryLPA = toLPA(float64(maxINR))
		job.AvgSalaryLPA = toLPA(float64(avgINR))
		job.SalaryBand = SalaryBand(job.AvgSalaryLPA)
	} else if r.Has(models.FieldSalaryText) {
		c.logger.Debug("[cleaner] Unparsed salary %q for %s", r.Get(models.FieldSalaryText), id)
	}

	exp := normalize.ParseExperience(r.Get(models.FieldExperienceText))
	job.ExpMinYears, job.ExpMaxYears = exp.MinYears, exp.MaxYears
	job.ExperienceLevel = exp.Level()

	if d, ok := normalize.ParseDate(r.Get(models.FieldPostingDateText), ref); ok {
		job.PostingDate = &d
	} else if r.Has(models.FieldPostingDateText) {
		c.logger.Debug("[cleaner] Unparsed posting date %q for %s", r.Get(models.FieldPostingDateText), id)
	}

	if job.CityNorm != "" {
		job.LocationTier = TierOther
		if c.cat.Tables().IsTier1(job.CityNorm) {
			job.LocationTier = TierOne
		}
	}

	job.IsRemote = isRemote(r)

	job.HasSalaryText = r.Has(models.FieldSalaryText)
	job.HasSkills = r.Has(models.FieldSkills)
	job.HasExperienceText = r.Has(models.FieldExperienceText)
	job.HasDescription = r.Has(models.FieldDescription)
	return job
}

// winsorize clips the average salary to the configured percentiles of the
// positive salaries in the batch. With no positive salary the capped columns
// are left out.
func (c *Cleaner) winsorize(jobs []*models.CleanedJob, out *models.CleanedTable) {
	var positive []float64
	for _, j := range jobs {
		if j.AvgSalaryINR != nil && *j.AvgSalaryINR > 0 {
			positive = append(positive, float64(*j.AvgSalaryINR))
		}
	}
	if len(positive) == 0 {
		c.logger.Warn("[cleaner] No positive salaries in batch; skipping winsorized salary columns")
		return
	}

	sort.Float64s(positive)
	lo := Percentile(positive, c.cfg.WinsorLower)
	hi := Percentile(positive, c.cfg.WinsorUpper)

	for _, j := range jobs {
		if j.AvgSalaryINR == nil {
			continue
		}
		capped := min(max(float64(*j.AvgSalaryINR), lo), hi)
		j.AvgSalaryINRCapped = &capped
		j.AvgSalaryLPACapped = toLPA(capped)
	}

	out.Winsorized = true
	out.CapLower, out.CapUpper = lo, hi
	c.logger.Debug("[cleaner] Salary caps: %.0f – %.0f", lo, hi)
}

func (c *Cleaner) logCoverage(jobs []*models.CleanedJob) {
	if len(jobs) == 0 {
		return
	}
	var salary, exp, date, city int
	for _, j := range jobs {
		if j.AvgSalaryINR != nil {
			salary++
		}
		if j.ExperienceLevel != "" {
			exp++
		}
		if j.PostingDate != nil {
			date++
		}
		if j.CityNorm != "" {
			city++
		}
	}
	pct := func(n int) float64 { return float64(n) * 100 / float64(len(jobs)) }
	c.logger.Info("[cleaner] Coverage: salary %.1f%%, experience %.1f%%, posting date %.1f%%, city %.1f%%",
		pct(salary), pct(exp), pct(date), pct(city))
}

// ListingID returns the record's job_id when present. Otherwise it derives a
// stable name-based UUID from the listing URL, or failing that from the
// title, company and search context.
func ListingID(r models.RawJob) string {
	if id := strings.TrimSpace(r.Get(models.FieldJobID)); id != "" {
		return id
	}
	if u := strings.TrimSpace(r.Get(models.FieldJobURL)); u != "" {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(u)).String()
	}
	name := strings.Join([]string{
		r.Get(models.FieldTitle),
		r.Get(models.FieldCompany),
		r.Get(models.FieldCategorySearched),
		r.Get(models.FieldLocationSearched),
	}, "|")
	return uuid.NewSHA1(listingNamespace, []byte(name)).String()
}

// Percentile returns the q-quantile of sorted using linear interpolation
// between closest ranks. sorted must be ascending and non-empty.
func Percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 || q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	i := int(pos)
	frac := pos - float64(i)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// dedupBy keeps one item per key: the one with the smallest rank, so the
// survivor does not depend on input order. Items with an empty key never
// collide and always survive. Survivors keep their input order.
// The second result is the number of items dropped.
func dedupBy[T any](items []T, key func(T) string, rank func(T) string) ([]T, int) {
	best := make(map[string]int, len(items))
	keys := make([]string, len(items))
	ranks := make([]string, len(items))
	for i, it := range items {
		k := key(it)
		keys[i] = k
		if k == "" {
			continue
		}
		ranks[i] = rank(it)
		if j, ok := best[k]; !ok || ranks[i] < ranks[j] {
			best[k] = i
		}
	}

	out := make([]T, 0, len(items))
	for i, it := range items {
		if keys[i] == "" || best[keys[i]] == i {
			out = append(out, it)
		}
	}
	return out, len(items) - len(out)
}

// rowKey identifies a record by every field it carries.
func rowKey(r models.RawJob) string {
	fields := make([]string, 0, len(r))
	for k, v := range r {
		if v != "" {
			fields = append(fields, k+"="+v)
		}
	}
	sort.Strings(fields)
	return strings.Join(fields, "\x1f")
}

// identityKey is the listing URL when present, else the title and company.
// Without a URL and with either of title or company missing, the whole row
// is the identity.
func identityKey(r models.RawJob) string {
	if u := r.Get(models.FieldJobURL); u != "" {
		return "url:" + u
	}
	title, company := r.Get(models.FieldTitle), r.Get(models.FieldCompany)
	if title == "" || company == "" {
		return "row:" + rowKey(r)
	}
	return "tc:" + title + "\x1f" + company
}

// nearDuplicateKey is "" unless title, company and city are all known.
func nearDuplicateKey(j *models.CleanedJob) string {
	if j.TitleClean == "" || j.CompanyNorm == "" || j.CityNorm == "" {
		return ""
	}
	return strings.Join([]string{j.TitleClean, j.CompanyNorm, j.CityNorm}, "\x1f")
}

func trimRecord(r models.RawJob) models.RawJob {
	out := make(models.RawJob, len(r))
	for k, v := range r {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

func nullifyPlaceholders(r models.RawJob) models.RawJob {
	out := r.Clone()
	for k, v := range out {
		if IsPlaceholder(v) {
			delete(out, k)
		}
	}
	return out
}

// IsPlaceholder reports whether v is one of the "no data" tokens.
func IsPlaceholder(v string) bool {
	_, ok := placeholderTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

func isRemote(r models.RawJob) bool {
	for _, f := range locationFields {
		v := strings.ToLower(r.Get(f))
		for _, m := range remoteMarkers {
			if strings.Contains(v, m) {
				return true
			}
		}
	}
	return false
}

func firstSegment(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func toLPA(inr float64) *float64 {
	v := inr / normalize.LakhValue
	return &v
}
