package models

import "time"

// Raw field names written by the collectors. Any of them may be missing.
const (
	FieldJobID            = "job_id"
	FieldSource           = "source"
	FieldScrapeTimestamp  = "scrape_timestamp"
	FieldCategorySearched = "category_searched"
	FieldLocationSearched = "location_searched"
	FieldPageFound        = "page_found"
	FieldTitle            = "title"
	FieldCompany          = "company"
	FieldJobURL           = "job_url"
	FieldLocationFull     = "location_full"
	FieldLocation         = "location"
	FieldCity             = "city"
	FieldState            = "state"
	FieldPostingDateText  = "posting_date_text"
	FieldSalaryText       = "salary_text"
	FieldSkills           = "skills"
	FieldDescription      = "description"
	FieldExperienceText   = "experience_text"
	FieldJobType          = "job_type"
)

// RawJob is one listing exactly as collected. A missing key and an empty
// value both mean the field is absent.
type RawJob map[string]string

// Get returns the value of field, or "" when it is absent.
func (r RawJob) Get(field string) string {
	return r[field]
}

// Has reports whether field carries a non-empty value.
func (r RawJob) Has(field string) bool {
	return r[field] != ""
}

// Clone returns a copy of r that can be modified freely.
func (r RawJob) Clone() RawJob {
	out := make(RawJob, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RawTable is an ordered batch of raw listings. Columns keeps the source
// header order so that cleaned output can reproduce it.
type RawTable struct {
	Columns []string
	Records []RawJob
}

// CleanedJob is a raw listing plus its canonical and derived fields.
// Pointer fields are nil when the value could not be derived.
type CleanedJob struct {
	// Raw holds the original fields, trimmed, with placeholder tokens removed.
	Raw       RawJob
	ListingID string

	TitleClean    string
	CompanyClean  string
	CityClean     string
	CategoryClean string

	CompanyNorm  string
	CityNorm     string
	JobTypeNorm  string
	CategoryNorm string
	Skills       []string

	MinSalaryINR       *int64
	MaxSalaryINR       *int64
	AvgSalaryINR       *int64
	MinSalaryLPA       *float64
	MaxSalaryLPA       *float64
	AvgSalaryLPA       *float64
	AvgSalaryINRCapped *float64
	AvgSalaryLPACapped *float64
	SalaryBand         string

	ExpMinYears     *float64
	ExpMaxYears     *float64
	ExperienceLevel string

	PostingDate  *time.Time
	LocationTier string
	IsRemote     bool

	HasSalaryText     bool
	HasSkills         bool
	HasExperienceText bool
	HasDescription    bool
}

// CleanedTable is the output of the record cleaner.
type CleanedTable struct {
	// Columns are the raw columns in source order; derived columns follow them
	// on output.
	Columns []string
	Records []*CleanedJob

	// Winsorized is false when no record had a positive salary, in which case
	// the capped columns are not emitted.
	Winsorized bool
	CapLower   float64
	CapUpper   float64

	Summary CleaningSummary
}

// CleaningSummary counts what each cleaning pass removed.
type CleaningSummary struct {
	Input           int
	ExactDuplicates int
	KeyDuplicates   int
	NearDuplicates  int
	Output          int
}

// FeatureRecord is one row of the feature table. Identifiers are carried
// through unchanged; a feature missing from Values is absent.
type FeatureRecord struct {
	Identifiers map[string]string
	Values      map[string]float64
}

// FeatureTable is the flat table produced by the feature assembler.
type FeatureTable struct {
	IdentifierColumns []string
	FeatureColumns    []string
	SkillVocabulary   []string
	Records           []FeatureRecord
}

// Columns returns identifier columns followed by feature columns.
func (t *FeatureTable) Columns() []string {
	cols := make([]string, 0, len(t.IdentifierColumns)+len(t.FeatureColumns))
	cols = append(cols, t.IdentifierColumns...)
	return append(cols, t.FeatureColumns...)
}
