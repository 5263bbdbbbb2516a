// v1
// internal/compliance/types.go
package compliance

import (
	"github.com/your-org/compliance/internal/series"
)

// Threshold is a one- or two-sided bound on a parameter. An absent side is
// unbounded.
type Threshold struct {
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

// Valid reports whether at least one bound is present.
func (t Threshold) Valid() bool { return t.Lower != nil || t.Upper != nil }

// Contains reports whether v satisfies the bounds (inclusive).
func (t Threshold) Contains(v float64) bool {
	if t.Lower != nil && v < *t.Lower {
		return false
	}
	if t.Upper != nil && v > *t.Upper {
		return false
	}
	return true
}

// Deviation is the distance from v to the nearest violated bound, 0 when
// compliant.
func (t Threshold) Deviation(v float64) float64 {
	if t.Lower != nil && v < *t.Lower {
		return *t.Lower - v
	}
	if t.Upper != nil && v > *t.Upper {
		return v - *t.Upper
	}
	return 0
}

// Severity classifies one contiguous violation run.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// SeverityBands maps violation runs to severities. A run is classified by
// the first band its length reaches; a peak deviation at or above
// CriticalDeviation escalates the run to critical regardless of length.
type SeverityBands struct {
	CriticalRun       int     `json:"criticalRun"`
	MajorRun          int     `json:"majorRun"`
	ModerateRun       int     `json:"moderateRun"`
	CriticalDeviation float64 `json:"criticalDeviation"`
}

// DefaultSeverityBands assumes hourly samples: half a day out of range is
// critical, a quarter day major, three hours moderate.
func DefaultSeverityBands() SeverityBands {
	return SeverityBands{CriticalRun: 12, MajorRun: 6, ModerateRun: 3, CriticalDeviation: 0}
}

func (b SeverityBands) classify(runLen int, peakDev float64) Severity {
	if b.CriticalDeviation > 0 && peakDev >= b.CriticalDeviation {
		return SeverityCritical
	}
	switch {
	case b.CriticalRun > 0 && runLen >= b.CriticalRun:
		return SeverityCritical
	case b.MajorRun > 0 && runLen >= b.MajorRun:
		return SeverityMajor
	case b.ModerateRun > 0 && runLen >= b.ModerateRun:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

// Breakdown counts violation runs per severity.
type Breakdown struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
}

// TestConfig is one threshold test as consumed from the caller's
// configuration. Category is resolved once at load time; tests missing a
// structured category fall back to token matching on the test id.
type TestConfig struct {
	TestID    string            `json:"testId"`
	Parameter string            `json:"parameter"`
	Standard  string            `json:"standard,omitempty"`
	Category  string            `json:"category,omitempty"` // I, II, III or IV
	Threshold *Threshold        `json:"threshold,omitempty"`
	Filter    series.FilterSpec `json:"filter,omitempty"`
	PassBar   float64           `json:"passBar,omitempty"` // default 100
}

// Result is the outcome of evaluating one test over one room's series.
type Result struct {
	TestID          string    `json:"testId"`
	Parameter       string    `json:"parameter"`
	Standard        string    `json:"standard,omitempty"`
	Category        string    `json:"category,omitempty"`
	ComplianceRate  float64   `json:"complianceRate"` // 0-100
	CompliantPoints int       `json:"compliantPoints"`
	TotalPoints     int       `json:"totalPoints"` // excludes missing samples
	MissingPoints   int       `json:"missingPoints"`
	ViolationCount  int       `json:"violationCount"` // violating samples
	Severity        Breakdown `json:"severityBreakdown"`
	NoData          bool      `json:"noData"`
	PassBar         float64   `json:"passBar"`
}

// IsCompliant reports whether the test met its pass bar. A no-data result is
// never compliant.
func (r Result) IsCompliant() bool {
	return !r.NoData && r.ComplianceRate >= r.PassBar
}
