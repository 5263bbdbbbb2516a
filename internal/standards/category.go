// v1
// internal/standards/category.go
package standards

import "strings"

// Category is an EN16798-1 performance tier. I is the most stringent, IV is
// outside the standard's scope.
type Category string

const (
	CategoryI    Category = "I"
	CategoryII   Category = "II"
	CategoryIII  Category = "III"
	CategoryIV   Category = "IV"
	CategoryNone Category = ""
)

// Ordered lists categories from best to worst performance.
var Ordered = []Category{CategoryI, CategoryII, CategoryIII, CategoryIV}

// Rank returns the performance index, 0 for I through 3 for IV. Unknown
// categories rank below IV.
func (c Category) Rank() int {
	switch c {
	case CategoryI:
		return 0
	case CategoryII:
		return 1
	case CategoryIII:
		return 2
	case CategoryIV:
		return 3
	}
	return 4
}

// Worse returns the lower-performing of two categories.
func Worse(a, b Category) Category {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// ParseCategory resolves a structured category value ("I".."IV", case and
// whitespace insensitive).
func ParseCategory(s string) (Category, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "I", "1":
		return CategoryI, true
	case "II", "2":
		return CategoryII, true
	case "III", "3":
		return CategoryIII, true
	case "IV", "4":
		return CategoryIV, true
	}
	return CategoryNone, false
}

// categoryTokens is ordered most-specific-first so that the literal "I"
// cannot shadow "II", "III" or "IV" inside a test id. "III" precedes "II",
// and "IV" precedes "I".
var categoryTokens = []struct {
	token string
	cat   Category
}{
	{"III", CategoryIII},
	{"IV", CategoryIV},
	{"II", CategoryII},
	{"I", CategoryI},
}

// CategoryFromToken extracts a category token embedded in a test identifier
// such as "catII_co2". It is the legacy fallback for configs that omit the
// structured category field and only matches ids carrying a "cat" marker;
// without the marker any id containing the letter I would read as a tag.
func CategoryFromToken(id string) (Category, bool) {
	up := strings.ToUpper(id)
	i := strings.Index(up, "CAT")
	if i < 0 {
		return CategoryNone, false
	}
	up = strings.TrimLeft(up[i+len("CAT"):], "_- ")
	for _, tc := range categoryTokens {
		if strings.Contains(up, tc.token) {
			return tc.cat, true
		}
	}
	return CategoryNone, false
}

// FromScore maps a continuous 0-100 score onto a category given descending
// cut points (c1 > c2 > c3).
func FromScore(score, c1, c2, c3 float64) Category {
	switch {
	case score >= c1:
		return CategoryI
	case score >= c2:
		return CategoryII
	case score >= c3:
		return CategoryIII
	default:
		return CategoryIV
	}
}
