// Package normalize turns free-form job-listing text (salary, experience,
// posting date, company, city, job type, category, skills) into canonical
// values. Every function here is pure: malformed input yields an absent
// value, never an error.
package normalize

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Tables holds the lookup data used by the categorical canonicalizers.
// Map keys are matched lowercased and trimmed.
type Tables struct {
	CompanySuffixes []string          `yaml:"company_suffixes"`
	CityAliases     map[string]string `yaml:"city_aliases"`
	JobTypes        map[string]string `yaml:"job_types"`
	CategoryAliases map[string]string `yaml:"category_aliases"`
	SkillSynonyms   map[string]string `yaml:"skill_synonyms"`
	Acronyms        []string          `yaml:"acronyms"`
	Tier1Cities     []string          `yaml:"tier1_cities"`
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() *Tables {
	return &Tables{
		CompanySuffixes: []string{
			"private limited", "pvt", "ltd", "limited", "llp", "inc", "incorporated",
			"corp", "corporation", "gmbh", "llc", "plc", "opc", "(opc)", "co",
		},
		CityAliases: map[string]string{
			"bengaluru":      "Bangalore",
			"bangalore":      "Bangalore",
			"gurugram":       "Gurgaon",
			"gurgaon":        "Gurgaon",
			"new delhi":      "Delhi",
			"delhi ncr":      "Delhi",
			"bombay":         "Mumbai",
			"navi mumbai":    "Mumbai",
			"madras":         "Chennai",
			"calcutta":       "Kolkata",
			"trivandrum":     "Thiruvananthapuram",
			"cochin":         "Kochi",
			"greater noida":  "Noida",
			"secunderabad":   "Hyderabad",
			"work from home": "Remote",
			"wfh":            "Remote",
		},
		JobTypes: map[string]string{
			"full time":      "Full-time",
			"full-time":      "Full-time",
			"fulltime":       "Full-time",
			"part time":      "Part-time",
			"part-time":      "Part-time",
			"parttime":       "Part-time",
			"internship":     "Internship",
			"intern":         "Internship",
			"contract":       "Contract",
			"contractual":    "Contract",
			"freelance":      "Freelance",
			"freelancer":     "Freelance",
			"remote":         "Remote",
			"work from home": "Remote",
		},
		CategoryAliases: map[string]string{
			"artificial intelligence (ai)": "Artificial Intelligence",
			"ai":                           "Artificial Intelligence",
			"ml":                           "Machine Learning",
			"angular.js development":       "Angular Development",
			"ui/ux design":                 "UI/UX Design",
			"ui ux design":                 "UI/UX Design",
			"internet of things (iot)":     "Internet of Things",
			"iot":                          "Internet of Things",
		},
		SkillSynonyms: map[string]string{
			"js":         "JavaScript",
			"javascript": "JavaScript",
			"ts":         "TypeScript",
			"typescript": "TypeScript",
			"ml":         "Machine Learning",
			"dl":         "Deep Learning",
			"golang":     "Go",
			"k8s":        "Kubernetes",
			"reactjs":    "React",
			"react.js":   "React",
			"nodejs":     "Node.js",
			"node.js":    "Node.js",
			"postgres":   "PostgreSQL",
			"postgresql": "PostgreSQL",
			"mysql":      "MySQL",
			"mongodb":    "MongoDB",
		},
		Acronyms:    []string{"ML", "DL", "NLP", "AI", "SQL", "CSS", "HTML", "AWS", "GCP"},
		Tier1Cities: []string{"Delhi", "Bangalore", "Mumbai", "Pune", "Hyderabad", "Chennai", "Gurgaon", "Noida"},
	}
}

// LoadTables returns the built-in tables extended with the entries found in
// the YAML file at path. Entries from the file win on key collisions; nothing
// built-in is removed. An empty path returns the defaults.
func LoadTables(path string) (*Tables, error) {
	t := DefaultTables()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tables: read %q: %w", path, err)
	}

	var extra Tables
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("tables: parse %q: %w", path, err)
	}

	t.Merge(&extra)
	return t, nil
}

// Merge folds other into t.
func (t *Tables) Merge(other *Tables) {
	if other == nil {
		return
	}
	t.CompanySuffixes = appendUnique(t.CompanySuffixes, other.CompanySuffixes...)
	t.Acronyms = appendUnique(t.Acronyms, other.Acronyms...)
	t.Tier1Cities = appendUnique(t.Tier1Cities, other.Tier1Cities...)
	t.CityAliases = mergeMap(t.CityAliases, other.CityAliases)
	t.JobTypes = mergeMap(t.JobTypes, other.JobTypes)
	t.CategoryAliases = mergeMap(t.CategoryAliases, other.CategoryAliases)
	t.SkillSynonyms = mergeMap(t.SkillSynonyms, other.SkillSynonyms)
}

// IsTier1 reports whether city (already canonicalized) is one of the Tier-1 hubs.
func (t *Tables) IsTier1(city string) bool {
	key := lookupKey(city)
	if key == "" {
		return false
	}
	for _, c := range t.Tier1Cities {
		if lookupKey(c) == key {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, src ...string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[lookupKey(s)] = struct{}{}
	}
	for _, s := range src {
		k := lookupKey(s)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, strings.TrimSpace(s))
	}
	return dst
}

func mergeMap(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		if key := lookupKey(k); key != "" {
			dst[key] = strings.TrimSpace(v)
		}
	}
	return dst
}

// longestFirst returns the lowercased suffixes ordered so that multi-word
// suffixes are tried before the words they end with.
func longestFirst(suffixes []string) []string {
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		if k := lookupKey(s); k != "" {
			out = append(out, k)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func lookupKey(s string) string {
	return strings.ToLower(CollapseSpaces(s))
}

// CollapseSpaces trims s and collapses internal whitespace runs to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	// a Caser keeps state, so one is built per call
	return cases.Title(language.Und).String(s)
}
