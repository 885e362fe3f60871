package normalize

import (
	"regexp"
	"strings"
)

var wordRegexp = regexp.MustCompile(`\b[A-Za-z]+\b`)

// Categorizer canonicalizes company, city, job-type, category and skill text
// using a fixed set of lookup tables. It is read-only after construction and
// safe for concurrent use.
type Categorizer struct {
	tables     *Tables
	suffixes   []string
	acronyms   map[string]string
	cities     map[string]string
	jobTypes   map[string]string
	categories map[string]string
	synonyms   map[string]string
}

// NewCategorizer builds a Categorizer over t; nil means DefaultTables.
func NewCategorizer(t *Tables) *Categorizer {
	if t == nil {
		t = DefaultTables()
	}
	c := &Categorizer{
		tables:     t,
		suffixes:   longestFirst(t.CompanySuffixes),
		acronyms:   make(map[string]string, len(t.Acronyms)),
		cities:     mergeMap(nil, t.CityAliases),
		jobTypes:   mergeMap(nil, t.JobTypes),
		categories: mergeMap(nil, t.CategoryAliases),
		synonyms:   mergeMap(nil, t.SkillSynonyms),
	}
	for _, a := range t.Acronyms {
		a = strings.TrimSpace(a)
		if a != "" {
			c.acronyms[strings.ToUpper(a)] = strings.ToUpper(a)
		}
	}
	return c
}

// Tables returns the tables the Categorizer was built from.
func (c *Categorizer) Tables() *Tables {
	return c.tables
}

// Company strips legal-entity suffixes ("Pvt Ltd", "LLP", "Inc", ...) from the
// end of the name until none remain, then title-cases it.
func (c *Categorizer) Company(raw string) string {
	name := strings.ToLower(CollapseSpaces(raw))
	if name == "" {
		return ""
	}

	for {
		name = trimCompanyPunct(name)
		stripped := false
		for _, suf := range c.suffixes {
			if !strings.HasSuffix(name, suf) {
				continue
			}
			rest := name[:len(name)-len(suf)]
			if !strings.HasSuffix(rest, " ") && !strings.HasSuffix(rest, ",") {
				continue
			}
			if trimCompanyPunct(rest) == "" {
				continue
			}
			name = rest
			stripped = true
			break
		}
		if !stripped {
			break
		}
	}
	return TitleCase(CollapseSpaces(name))
}

func trimCompanyPunct(s string) string {
	return strings.TrimRight(s, " .,&-")
}

// City maps known aliases ("Bengaluru", "Gurugram") to their canonical name
// and title-cases everything else.
func (c *Categorizer) City(raw string) string {
	s := CollapseSpaces(raw)
	if s == "" {
		return ""
	}
	if alias, ok := c.cities[strings.ToLower(s)]; ok {
		return alias
	}
	return TitleCase(s)
}

// JobType maps job-type labels onto a small canonical set; unknown labels are
// title-cased.
func (c *Categorizer) JobType(raw string) string {
	s := CollapseSpaces(raw)
	if s == "" {
		return ""
	}
	if label, ok := c.jobTypes[strings.ToLower(s)]; ok {
		return label
	}
	return TitleCase(s)
}

// Category resolves known category aliases. Unknown categories keep their
// source casing and are only trimmed.
func (c *Categorizer) Category(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if alias, ok := c.categories[lookupKey(s)]; ok {
		return alias
	}
	return s
}

// Skills splits a comma-separated skill list, drops blanks and
// case-insensitive duplicates (first occurrence wins), title-cases each token
// with the acronym whitelist forced upper-case, and applies the synonym
// table. It returns nil when no skill survives.
func (c *Categorizer) Skills(raw string) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, part := range strings.Split(raw, ",") {
		token := CollapseSpaces(part)
		if token == "" {
			continue
		}
		key := strings.ToLower(token)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		skill := c.presentSkill(token)
		if syn, ok := c.synonyms[key]; ok {
			skill = syn
		}
		out = append(out, skill)
	}
	return dedupFold(out)
}

func (c *Categorizer) presentSkill(token string) string {
	return wordRegexp.ReplaceAllStringFunc(TitleCase(token), func(w string) string {
		if a, ok := c.acronyms[strings.ToUpper(w)]; ok {
			return a
		}
		return w
	})
}

// dedupFold drops case-insensitive repeats, keeping the first spelling.
func dedupFold(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		k := strings.ToLower(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
