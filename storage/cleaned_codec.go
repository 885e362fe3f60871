package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ayushthakur13/cross-platform-job-analytics/models"
)

const dateLayout = "2006-01-02"

// Derived columns of a cleaned table, written after the raw columns.
const (
	colListingID          = "listing_id"
	colTitleClean         = "title_clean"
	colCompanyClean       = "company_clean"
	colCompanyNorm        = "company_norm"
	colCityClean          = "city_clean"
	colCityNorm           = "city_norm"
	colCategoryClean      = "category_searched_clean"
	colCategoryNorm       = "category_norm"
	colJobTypeNorm        = "job_type_norm"
	colSkillsNorm         = "skills_norm"
	colMinSalaryINR       = "min_salary_inr"
	colMaxSalaryINR       = "max_salary_inr"
	colAvgSalaryINR       = "avg_salary_inr"
	colMinSalaryLPA       = "min_salary_lpa"
	colMaxSalaryLPA       = "max_salary_lpa"
	colAvgSalaryLPA       = "avg_salary_lpa"
	colAvgSalaryINRCapped = "avg_salary_inr_capped"
	colAvgSalaryLPACapped = "avg_salary_lpa_capped"
	colSalaryBand         = "salary_band"
	colExpMinYears        = "exp_min_years"
	colExpMaxYears        = "exp_max_years"
	colExperienceLevel    = "experience_level"
	colPostingDate        = "posting_date"
	colLocationTier       = "location_tier"
	colIsRemote           = "is_remote"
	colHasSalaryText      = "has_salary_text"
	colHasSkills          = "has_skills"
	colHasExperienceText  = "has_experience_text"
	colHasDescription     = "has_description"
)

var cleanedColumns = []string{
	colListingID,
	colTitleClean, colCompanyClean, colCompanyNorm,
	colCityClean, colCityNorm,
	colCategoryClean, colCategoryNorm,
	colJobTypeNorm, colSkillsNorm,
	colMinSalaryINR, colMaxSalaryINR, colAvgSalaryINR,
	colMinSalaryLPA, colMaxSalaryLPA, colAvgSalaryLPA,
	colAvgSalaryINRCapped, colAvgSalaryLPACapped,
	colSalaryBand,
	colExpMinYears, colExpMaxYears, colExperienceLevel,
	colPostingDate, colLocationTier, colIsRemote,
	colHasSalaryText, colHasSkills, colHasExperienceText, colHasDescription,
}

const skillSeparator = ", "

// CleanedHeader returns the output columns of t: its raw columns followed by
// the derived ones. The capped salary columns are present only when t was
// winsorized.
func CleanedHeader(t *models.CleanedTable) []string {
	derived := make(map[string]struct{}, len(cleanedColumns))
	for _, c := range cleanedColumns {
		derived[c] = struct{}{}
	}

	header := make([]string, 0, len(t.Columns)+len(cleanedColumns))
	for _, c := range t.Columns {
		if _, clash := derived[c]; !clash {
			header = append(header, c)
		}
	}
	for _, c := range cleanedColumns {
		if !t.Winsorized && (c == colAvgSalaryINRCapped || c == colAvgSalaryLPACapped) {
			continue
		}
		header = append(header, c)
	}
	return header
}

// encodeCleaned flattens j into column -> cell text. Absent values are "".
func encodeCleaned(j *models.CleanedJob) map[string]string {
	cells := make(map[string]string, len(j.Raw)+len(cleanedColumns))
	for k, v := range j.Raw {
		cells[k] = v
	}

	cells[colListingID] = j.ListingID
	cells[colTitleClean] = j.TitleClean
	cells[colCompanyClean] = j.CompanyClean
	cells[colCompanyNorm] = j.CompanyNorm
	cells[colCityClean] = j.CityClean
	cells[colCityNorm] = j.CityNorm
	cells[colCategoryClean] = j.CategoryClean
	cells[colCategoryNorm] = j.CategoryNorm
	cells[colJobTypeNorm] = j.JobTypeNorm
	cells[colSkillsNorm] = strings.Join(j.Skills, skillSeparator)
	cells[colMinSalaryINR] = formatInt(j.MinSalaryINR)
	cells[colMaxSalaryINR] = formatInt(j.MaxSalaryINR)
	cells[colAvgSalaryINR] = formatInt(j.AvgSalaryINR)
	cells[colMinSalaryLPA] = formatFloat(j.MinSalaryLPA)
	cells[colMaxSalaryLPA] = formatFloat(j.MaxSalaryLPA)
	cells[colAvgSalaryLPA] = formatFloat(j.AvgSalaryLPA)
	cells[colAvgSalaryINRCapped] = formatFloat(j.AvgSalaryINRCapped)
	cells[colAvgSalaryLPACapped] = formatFloat(j.AvgSalaryLPACapped)
	cells[colSalaryBand] = j.SalaryBand
	cells[colExpMinYears] = formatFloat(j.ExpMinYears)
	cells[colExpMaxYears] = formatFloat(j.ExpMaxYears)
	cells[colExperienceLevel] = j.ExperienceLevel
	if j.PostingDate != nil {
		cells[colPostingDate] = j.PostingDate.Format(dateLayout)
	}
	cells[colLocationTier] = j.LocationTier
	cells[colIsRemote] = strconv.FormatBool(j.IsRemote)
	cells[colHasSalaryText] = strconv.FormatBool(j.HasSalaryText)
	cells[colHasSkills] = strconv.FormatBool(j.HasSkills)
	cells[colHasExperienceText] = strconv.FormatBool(j.HasExperienceText)
	cells[colHasDescription] = strconv.FormatBool(j.HasDescription)
	return cells
}

// decodeCleaned is the inverse of encodeCleaned. rawColumns names the cells
// that belong to the original record.
func decodeCleaned(cells models.RawJob, rawColumns []string) (*models.CleanedJob, error) {
	j := &models.CleanedJob{Raw: make(models.RawJob, len(rawColumns))}
	for _, c := range rawColumns {
		if v := cells.Get(c); v != "" {
			j.Raw[c] = v
		}
	}

	j.ListingID = cells.Get(colListingID)
	j.TitleClean = cells.Get(colTitleClean)
	j.CompanyClean = cells.Get(colCompanyClean)
	j.CompanyNorm = cells.Get(colCompanyNorm)
	j.CityClean = cells.Get(colCityClean)
	j.CityNorm = cells.Get(colCityNorm)
	j.CategoryClean = cells.Get(colCategoryClean)
	j.CategoryNorm = cells.Get(colCategoryNorm)
	j.JobTypeNorm = cells.Get(colJobTypeNorm)
	j.Skills = splitSkills(cells.Get(colSkillsNorm))
	j.SalaryBand = cells.Get(colSalaryBand)
	j.ExperienceLevel = cells.Get(colExperienceLevel)
	j.LocationTier = cells.Get(colLocationTier)

	d := decoder{cells: cells}
	j.MinSalaryINR = d.intCell(colMinSalaryINR)
	j.MaxSalaryINR = d.intCell(colMaxSalaryINR)
	j.AvgSalaryINR = d.intCell(colAvgSalaryINR)
	j.MinSalaryLPA = d.floatCell(colMinSalaryLPA)
	j.MaxSalaryLPA = d.floatCell(colMaxSalaryLPA)
	j.AvgSalaryLPA = d.floatCell(colAvgSalaryLPA)
	j.AvgSalaryINRCapped = d.floatCell(colAvgSalaryINRCapped)
	j.AvgSalaryLPACapped = d.floatCell(colAvgSalaryLPACapped)
	j.ExpMinYears = d.floatCell(colExpMinYears)
	j.ExpMaxYears = d.floatCell(colExpMaxYears)
	j.PostingDate = d.dateCell(colPostingDate)
	j.IsRemote = d.boolCell(colIsRemote)
	j.HasSalaryText = d.boolCell(colHasSalaryText)
	j.HasSkills = d.boolCell(colHasSkills)
	j.HasExperienceText = d.boolCell(colHasExperienceText)
	j.HasDescription = d.boolCell(colHasDescription)
	if d.err != nil {
		return nil, d.err
	}
	return j, nil
}

// decoder keeps the first conversion error so that the field list above can
// stay flat.
type decoder struct {
	cells models.RawJob
	err   error
}

func (d *decoder) fail(col, v string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("column %s: bad value %q: %w", col, v, err)
	}
}

func (d *decoder) intCell(col string) *int64 {
	v := d.cells.Get(col)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		d.fail(col, v, err)
		return nil
	}
	return &n
}

func (d *decoder) floatCell(col string) *float64 {
	v := d.cells.Get(col)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		d.fail(col, v, err)
		return nil
	}
	return &f
}

func (d *decoder) dateCell(col string) *time.Time {
	v := d.cells.Get(col)
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		d.fail(col, v, err)
		return nil
	}
	return &t
}

func (d *decoder) boolCell(col string) bool {
	v := d.cells.Get(col)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		d.fail(col, v, err)
	}
	return b
}

func splitSkills(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
