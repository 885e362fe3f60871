package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Experience levels, ordered from least to most experienced.
const (
	LevelEntry  = "Entry"
	LevelJunior = "Junior"
	LevelMid    = "Mid"
	LevelSenior = "Senior"
)

// Experience is a required-experience range in years. Either bound may be nil.
type Experience struct {
	MinYears *float64
	MaxYears *float64
	Rule     string
}

// Known reports whether at least one bound was parsed.
func (e Experience) Known() bool {
	return e.MinYears != nil || e.MaxYears != nil
}

// Level buckets the larger known bound: <1 Entry, <3 Junior, <6 Mid, else
// Senior. It returns "" when both bounds are absent.
func (e Experience) Level() string {
	var v float64
	switch {
	case e.MinYears != nil && e.MaxYears != nil:
		v = max(*e.MinYears, *e.MaxYears)
	case e.MaxYears != nil:
		v = *e.MaxYears
	case e.MinYears != nil:
		v = *e.MinYears
	default:
		return ""
	}

	switch {
	case v < 1:
		return LevelEntry
	case v < 3:
		return LevelJunior
	case v < 6:
		return LevelMid
	default:
		return LevelSenior
	}
}

const (
	RuleMonthRange  = "month_range"
	RuleMonthSingle = "month_single"
	RuleYearRange   = "year_range"
	RuleYearSingle  = "year_single"
	RuleFresher     = "fresher"
)

const rangeSep = `\s*(?:to|-|\x{2013}|\x{2014})\s*`

var (
	monthRangeRegexp  = regexp.MustCompile(`(\d+(?:\.\d+)?)` + rangeSep + `(\d+(?:\.\d+)?)\s*(?:months?|mos?)\b`)
	monthSingleRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\+?\s*(?:months?|mos?)\b`)
	yearRangeRegexp   = regexp.MustCompile(`(\d+(?:\.\d+)?)` + rangeSep + `(\d+(?:\.\d+)?)\s*(?:years?|yrs?)`)
	yearSingleRegexp  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)`)
	fresherRegexp     = regexp.MustCompile(`fresher|\b0\s*(?:years?|yrs?)`)
)

type experienceRule struct {
	name    string
	pattern *regexp.Regexp
	parse   func(m []string) (Experience, bool)
}

// experienceRules run in order against the lowercased text; first hit wins.
var experienceRules = []experienceRule{
	{RuleMonthRange, monthRangeRegexp, func(m []string) (Experience, bool) { return rangeYears(m[1], m[2], 12) }},
	{RuleMonthSingle, monthSingleRegexp, func(m []string) (Experience, bool) { return rangeYears(m[1], m[1], 12) }},
	{RuleYearRange, yearRangeRegexp, func(m []string) (Experience, bool) { return rangeYears(m[1], m[2], 1) }},
	{RuleYearSingle, yearSingleRegexp, func(m []string) (Experience, bool) { return rangeYears(m[1], m[1], 1) }},
	{RuleFresher, fresherRegexp, func([]string) (Experience, bool) { return rangeYears("0", "0", 1) }},
}

// ParseExperience converts text such as "2-4 years", "3+ yrs", "6 months" or
// "Fresher" into a range in years.
func ParseExperience(text string) Experience {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Experience{}
	}

	for _, rule := range experienceRules {
		m := rule.pattern.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		if e, ok := rule.parse(m); ok {
			e.Rule = rule.name
			return e
		}
	}
	return Experience{}
}

func rangeYears(loText, hiText string, divisor float64) (Experience, bool) {
	lo, err := strconv.ParseFloat(loText, 64)
	if err != nil {
		return Experience{}, false
	}
	hi, err := strconv.ParseFloat(hiText, 64)
	if err != nil {
		return Experience{}, false
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	lo, hi = lo/divisor, hi/divisor
	return Experience{MinYears: &lo, MaxYears: &hi}, true
}
