package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func years(v float64) *float64 { return &v }

func TestParseExperience(t *testing.T) {
	tests := []struct {
		raw      string
		min, max float64
		rule     string
		level    string
	}{
		{"2-4 years", 2, 4, RuleYearRange, LevelMid},
		{"5 to 7 Yrs", 5, 7, RuleYearRange, LevelSenior},
		{"1 - 2 yrs", 1, 2, RuleYearRange, LevelJunior},
		{"3+ years", 3, 3, RuleYearSingle, LevelMid},
		{"3.5 years", 3.5, 3.5, RuleYearSingle, LevelMid},
		{"10+ Years", 10, 10, RuleYearSingle, LevelSenior},
		{"6 months", 0.5, 0.5, RuleMonthSingle, LevelEntry},
		{"6-12 months", 0.5, 1, RuleMonthRange, LevelJunior},
		{"3 to 6 Months", 0.25, 0.5, RuleMonthRange, LevelEntry},
		{"Fresher", 0, 0, RuleFresher, LevelEntry},
		{"Freshers can apply", 0, 0, RuleFresher, LevelEntry},
		{"4-2 years", 2, 4, RuleYearRange, LevelMid},
	}

	for _, tt := range tests {
		got := ParseExperience(tt.raw)
		require.True(t, got.Known(), "ParseExperience(%q) should be known", tt.raw)
		assert.InDelta(t, tt.min, *got.MinYears, 1e-9, "min of %q", tt.raw)
		assert.InDelta(t, tt.max, *got.MaxYears, 1e-9, "max of %q", tt.raw)
		assert.Equal(t, tt.rule, got.Rule, "rule of %q", tt.raw)
		assert.Equal(t, tt.level, got.Level(), "level of %q", tt.raw)
	}
}

func TestParseExperienceAbsent(t *testing.T) {
	for _, raw := range []string{"", "  ", "Not specified", "as per industry"} {
		got := ParseExperience(raw)
		assert.False(t, got.Known(), "ParseExperience(%q)", raw)
		assert.Nil(t, got.MinYears)
		assert.Nil(t, got.MaxYears)
		assert.Empty(t, got.Level())
	}
}

func TestParseExperienceMonthsBeforeYears(t *testing.T) {
	got := ParseExperience("1 year 6 months")

	assert.Equal(t, RuleMonthSingle, got.Rule)
	assert.InDelta(t, 0.5, *got.MinYears, 1e-9)
}

func TestExperienceLevel(t *testing.T) {
	tests := []struct {
		name string
		exp  Experience
		want string
	}{
		{"both absent", Experience{}, ""},
		{"zero", Experience{MinYears: years(0), MaxYears: years(0)}, LevelEntry},
		{"just under one", Experience{MinYears: years(0.9)}, LevelEntry},
		{"one", Experience{MinYears: years(1), MaxYears: years(1)}, LevelJunior},
		{"max wins", Experience{MinYears: years(2), MaxYears: years(3)}, LevelMid},
		{"only max", Experience{MaxYears: years(5.99)}, LevelMid},
		{"six", Experience{MinYears: years(6)}, LevelSenior},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.exp.Level())
		})
	}
}
