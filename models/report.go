package models

// ValueCount is one entry of a value distribution.
type ValueCount struct {
	Value string
	Count int
}

// FieldCoverage is how many rows carry a value for one field.
type FieldCoverage struct {
	Field   string
	Present int
	Total   int
}

// Percent returns Present as a percentage of Total.
func (c FieldCoverage) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Present) * 100 / float64(c.Total)
}

// QualityReport holds data-quality metrics for a raw batch and, when the
// batch was cleaned, for the cleaned table.
type QualityReport struct {
	TotalRows     int
	TotalColumns  int
	DuplicateRows int
	Missing       []FieldCoverage
	Distributions map[string][]ValueCount

	Cleaned          bool
	CleanedRows      int
	Derived          []FieldCoverage
	CompleteListings int
	TopSkills        []ValueCount
	Summary          *CleaningSummary
}
