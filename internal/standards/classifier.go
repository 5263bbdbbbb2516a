// v1
// internal/standards/classifier.go
package standards

import (
	"math"

	"github.com/your-org/compliance/internal/compliance"
)

// EN16798 is the standard identifier that triggers category classification.
const EN16798 = "EN16798-1"

// PassThreshold is the compliance rate every test in a category must reach
// for the category to be achieved.
const PassThreshold = 95.0

// IsEN16798 matches the standard identifier and its common aliases.
func IsEN16798(standard string) bool {
	switch standard {
	case EN16798, "EN16798", "en16798-1", "en16798":
		return true
	}
	return false
}

// CategoryStats summarizes one category's test group.
type CategoryStats struct {
	TestsCount     int     `json:"testsCount"`
	CompliantTests int     `json:"compliantTests"`
	MinRate        float64 `json:"minRate"`
	MaxRate        float64 `json:"maxRate"`
	AvgRate        float64 `json:"avgRate"`
	Compliant      bool    `json:"compliant"`
}

// Classification is the room-level EN16798-1 outcome.
type Classification struct {
	Categories map[Category]CategoryStats `json:"categories"`
	Highest    Category                   `json:"highestCategory"`
	Rate       float64                    `json:"rate"` // mapped overall rate
}

// rateForCategory maps the highest achieved category to an overall rate.
// Category IV and "no category achieved" both map to 0.
func rateForCategory(c Category) float64 {
	switch c {
	case CategoryI:
		return 100
	case CategoryII:
		return 75
	case CategoryIII:
		return 50
	}
	return 0
}

// TestCategory resolves the category a result belongs to: the structured
// field when present, the legacy id token otherwise.
func TestCategory(r compliance.Result) (Category, bool) {
	if c, ok := ParseCategory(r.Category); ok {
		return c, ok
	}
	return CategoryFromToken(r.TestID)
}

// Classify groups results by target category, marks each category achieved
// only when every test in it reaches PassThreshold, and selects the highest
// achieved category walking I through IV. No-data results are left out of
// the groups entirely; achieving a stronger category is not re-verified
// against weaker ones.
func Classify(results map[string]compliance.Result) Classification {
	cls := Classification{Categories: make(map[Category]CategoryStats)}

	sums := make(map[Category]float64)
	for _, r := range results {
		if r.NoData {
			continue
		}
		cat, ok := TestCategory(r)
		if !ok {
			continue
		}
		st, seen := cls.Categories[cat]
		if !seen {
			st = CategoryStats{MinRate: math.Inf(1), MaxRate: math.Inf(-1)}
		}
		st.TestsCount++
		if r.ComplianceRate >= PassThreshold {
			st.CompliantTests++
		}
		st.MinRate = math.Min(st.MinRate, r.ComplianceRate)
		st.MaxRate = math.Max(st.MaxRate, r.ComplianceRate)
		sums[cat] += r.ComplianceRate
		cls.Categories[cat] = st
	}

	for cat, st := range cls.Categories {
		st.AvgRate = sums[cat] / float64(st.TestsCount)
		st.Compliant = st.CompliantTests == st.TestsCount
		cls.Categories[cat] = st
	}

	for _, cat := range Ordered {
		if st, ok := cls.Categories[cat]; ok && st.Compliant {
			cls.Highest = cat
			break
		}
	}
	cls.Rate = rateForCategory(cls.Highest)
	return cls
}
