package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// LakhValue is the number of base currency units in one lakh.
const LakhValue = 100_000

// hourlyToAnnual approximates working hours per year: 8h * 22 days * 12 months.
const hourlyToAnnual = 8 * 22 * 12

// Salary is an annualized salary range in base currency units. Min, Max and
// Avg are meaningful only when Valid is true; a parse either yields all three
// or none of them.
type Salary struct {
	Min   int64
	Max   int64
	Avg   int64
	Valid bool
	// Rule names the pattern that produced the value.
	Rule string
}

const (
	RuleLakhRange      = "lakh_range"
	RuleCurrencyRange  = "currency_range"
	RuleLakhSingle     = "lakh_single"
	RuleCurrencySingle = "currency_single"
)

var (
	lakhRangeRegexp = regexp.MustCompile(
		`(?i)(?P<min>\d+(?:\.\d+)?)\s*(?:-|to|\x{2013}|\x{2014})?\s*(?P<max>\d+(?:\.\d+)?)?\s*(?:lpa|lac|lakh)s?`)
	currencyRangeRegexp = regexp.MustCompile(
		`(?i)(?:\x{20B9}|rs\.?|inr)?\s*(?P<min>\d[\d,]*(?:\.\d+)?)\s*(?:-|to|\x{2013}|\x{2014})?\s*(?P<max>\d[\d,]*(?:\.\d+)?)?\s*(?:/|per\s*)?(?P<period>month|yr|year|annum|pa|day|hour)?`)
	lakhSingleRegexp = regexp.MustCompile(
		`(?i)(?P<val>\d+(?:\.\d+)?)\s*(?:lpa|lac|lakh)s?`)
	currencySingleRegexp = regexp.MustCompile(
		`(?i)(?:\x{20B9}|rs\.?|inr)?\s*(?P<val>\d[\d,]*(?:\.\d+)?)\s*(?:/|per\s*)?(?P<period>month|yr|year|annum|pa|day|hour)?`)
)

type salaryRule struct {
	name    string
	pattern *regexp.Regexp
	parse   func(groups map[string]string) (Salary, bool)
}

// salaryRules are evaluated in order and the first rule that yields a value
// wins. Later rules are more permissive fallbacks for earlier ones.
var salaryRules = []salaryRule{
	{RuleLakhRange, lakhRangeRegexp, parseLakhRange},
	{RuleCurrencyRange, currencyRangeRegexp, parseCurrencyRange},
	{RuleLakhSingle, lakhSingleRegexp, parseLakhSingle},
	{RuleCurrencySingle, currencySingleRegexp, parseCurrencySingle},
}

// ParseSalary converts free-form salary text such as "6-8 LPA",
// "₹ 50,000 /month" or "Rs. 1,200 /day" into an annual range. Text that
// matches no rule returns an invalid Salary.
func ParseSalary(text string) Salary {
	t := strings.TrimSpace(text)
	if t == "" {
		return Salary{}
	}

	for _, rule := range salaryRules {
		groups := namedGroups(rule.pattern, t)
		if groups == nil {
			continue
		}
		if s, ok := rule.parse(groups); ok {
			s.Rule = rule.name
			return s
		}
	}
	return Salary{}
}

func parseLakhRange(g map[string]string) (Salary, bool) {
	return rangeSalary(g["min"], g["max"], LakhValue)
}

func parseCurrencyRange(g map[string]string) (Salary, bool) {
	return rangeSalary(g["min"], g["max"], periodMultiplier(g["period"]))
}

func parseLakhSingle(g map[string]string) (Salary, bool) {
	return rangeSalary(g["val"], "", LakhValue)
}

func parseCurrencySingle(g map[string]string) (Salary, bool) {
	return rangeSalary(g["val"], "", periodMultiplier(g["period"]))
}

// rangeSalary scales both bounds by mult. A missing, zero or malformed upper
// bound collapses the range to the lower bound.
func rangeSalary(minText, maxText string, mult float64) (Salary, bool) {
	lo, ok := toNumber(minText)
	if !ok {
		return Salary{}, false
	}
	hi, ok := toNumber(maxText)
	if !ok || hi == 0 {
		hi = lo
	}
	if hi < lo {
		lo, hi = hi, lo
	}

	minAnnual := roundHalfEven(lo * mult)
	maxAnnual := roundHalfEven(hi * mult)
	return Salary{
		Min:   minAnnual,
		Max:   maxAnnual,
		Avg:   roundHalfEven(float64(minAnnual+maxAnnual) / 2),
		Valid: true,
	}, true
}

func periodMultiplier(period string) float64 {
	switch strings.ToLower(period) {
	case "month":
		return 12
	case "day":
		return 365
	case "hour":
		return hourlyToAnnual
	default:
		// yr, year, annum, pa, or no period at all
		return 1
	}
}

// toNumber parses s after dropping thousands separators.
func toNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func roundHalfEven(v float64) int64 {
	return int64(math.RoundToEven(v))
}

// namedGroups returns the named submatches of the first match of re in s, or
// nil when there is no match. Unmatched optional groups map to "".
func namedGroups(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	groups := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups
}
