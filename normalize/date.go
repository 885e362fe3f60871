package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// daysPerMonth approximates "N months ago"; it is not calendar-accurate.
const daysPerMonth = 30

var (
	agoRegexp      = regexp.MustCompile(`(\d+)\s*\+?\s*(hour|hr|day|week|month)s?\s*ago`)
	fewHoursRegexp = regexp.MustCompile(`\b(?:just now|few hours? ago|an? hour ago)\b`)
)

// absoluteDates is tried only after every relative form has failed.
var absoluteDates = &now.Config{
	WeekStartDay: time.Monday,
	TimeFormats: []string{
		"2006-01-02",
		"2006-1-2",
		"2006/01/02",
		"02/01/2006",
		"2/1/2006",
		"02-01-2006",
		"2 Jan 2006",
		"02 Jan 2006",
		"2 January 2006",
		"2 Jan' 06",
		"2 Jan '06",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	},
}

// ParseDate resolves posting-date text against ref. Relative forms ("today",
// "yesterday", "3 days ago", "2 weeks ago", "1 month ago") count back from
// ref's calendar date; anything else is parsed as an absolute date. The
// result is midnight in ref's location.
func ParseDate(text string, ref time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(text)
	t := strings.ToLower(raw)
	if t == "" {
		return time.Time{}, false
	}

	day := dateOf(ref)

	switch {
	case strings.Contains(t, "today"):
		return day, true
	case strings.Contains(t, "yesterday"):
		return day.AddDate(0, 0, -1), true
	case fewHoursRegexp.MatchString(t):
		return day, true
	}

	if m := agoRegexp.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		switch m[2] {
		case "hour", "hr":
			return dateOf(ref.Add(-time.Duration(n) * time.Hour)), true
		case "day":
			return day.AddDate(0, 0, -n), true
		case "week":
			return day.AddDate(0, 0, -7*n), true
		case "month":
			return day.AddDate(0, 0, -daysPerMonth*n), true
		}
	}

	parsed, err := absoluteDates.With(ref).Parse(raw)
	if err != nil {
		return time.Time{}, false
	}
	return dateOf(parsed), true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
