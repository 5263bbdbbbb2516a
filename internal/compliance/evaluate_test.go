// v1
// internal/compliance/evaluate_test.go
package compliance

import (
	"math"
	"testing"
	"time"

	"github.com/your-org/compliance/internal/series"
)

func f(v float64) *float64 { return &v }

func mkSeries(values ...float64) series.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(series.Series, 0, len(values))
	for i, v := range values {
		s = append(s, series.Sample{Ts: start.Add(time.Duration(i) * time.Hour), Value: v})
	}
	return s
}

func TestMissingSamplesNeverCountAsViolations(t *testing.T) {
	nan := math.NaN()
	s := mkSeries(21, nan, 22, nan, 21.5, 22.5, nan, 21, 22, 21)

	cfg := TestConfig{TestID: "temp", Parameter: "temperature", Threshold: &Threshold{Lower: f(20), Upper: f(26)}}
	r := Evaluate(cfg, s, DefaultSeverityBands())

	if r.ComplianceRate != 100.0 {
		t.Fatalf("expected 100.0, got %.2f", r.ComplianceRate)
	}
	if r.TotalPoints != 7 {
		t.Fatalf("expected 7 total points, got %d", r.TotalPoints)
	}
	if r.MissingPoints != 3 {
		t.Fatalf("expected 3 missing points, got %d", r.MissingPoints)
	}
	if r.ViolationCount != 0 {
		t.Fatalf("expected no violations, got %d", r.ViolationCount)
	}
}

func TestEmptyScopeYieldsNeutralNoData(t *testing.T) {
	cfg := TestConfig{TestID: "co2", Parameter: "co2", Threshold: &Threshold{Upper: f(1000)}}
	r := Evaluate(cfg, nil, DefaultSeverityBands())

	if !r.NoData {
		t.Fatalf("expected no-data flag")
	}
	if r.ComplianceRate != 0 || r.TotalPoints != 0 {
		t.Fatalf("expected neutral result, got rate %.2f total %d", r.ComplianceRate, r.TotalPoints)
	}
	if r.IsCompliant() {
		t.Fatalf("no-data result must not be compliant")
	}
}

func TestBoundsInclusiveAndOneSided(t *testing.T) {
	cfg := TestConfig{TestID: "t", Parameter: "temperature", Threshold: &Threshold{Lower: f(20), Upper: f(26)}}
	r := Evaluate(cfg, mkSeries(20, 26), DefaultSeverityBands())
	if r.ComplianceRate != 100 {
		t.Fatalf("bounds must be inclusive, got %.2f", r.ComplianceRate)
	}

	upperOnly := TestConfig{TestID: "c", Parameter: "co2", Threshold: &Threshold{Upper: f(1000)}}
	r = Evaluate(upperOnly, mkSeries(-50, 400, 1000, 1200), DefaultSeverityBands())
	if r.CompliantPoints != 3 || r.ViolationCount != 1 {
		t.Fatalf("one-sided upper: got %d compliant, %d violations", r.CompliantPoints, r.ViolationCount)
	}
}

func TestRateWithinBounds(t *testing.T) {
	cfg := TestConfig{TestID: "t", Parameter: "temperature", Threshold: &Threshold{Lower: f(20), Upper: f(26)}}
	r := Evaluate(cfg, mkSeries(21, 30, 22, 19, 23, 24), DefaultSeverityBands())
	if r.ComplianceRate < 0 || r.ComplianceRate > 100 {
		t.Fatalf("rate out of range: %.2f", r.ComplianceRate)
	}
	if math.Abs(r.ComplianceRate-66.67) > 0.01 {
		t.Fatalf("expected 66.67, got %.2f", r.ComplianceRate)
	}
}

func TestViolationRunsSeverity(t *testing.T) {
	// One 3-sample run (moderate), one isolated violation (minor).
	values := []float64{21, 30, 30, 30, 21, 21, 30, 21}
	cfg := TestConfig{TestID: "t", Parameter: "temperature", Threshold: &Threshold{Lower: f(20), Upper: f(26)}}
	r := Evaluate(cfg, mkSeries(values...), DefaultSeverityBands())

	if r.ViolationCount != 4 {
		t.Fatalf("expected 4 violating samples, got %d", r.ViolationCount)
	}
	if r.Severity.Moderate != 1 || r.Severity.Minor != 1 {
		t.Fatalf("expected 1 moderate + 1 minor run, got %+v", r.Severity)
	}
}

func TestDeviationEscalatesRun(t *testing.T) {
	bands := SeverityBands{CriticalRun: 12, MajorRun: 6, ModerateRun: 3, CriticalDeviation: 10}
	cfg := TestConfig{TestID: "t", Parameter: "temperature", Threshold: &Threshold{Upper: f(26)}}
	r := Evaluate(cfg, mkSeries(40), bands)

	if r.Severity.Critical != 1 {
		t.Fatalf("expected deviation escalation to critical, got %+v", r.Severity)
	}
}

func TestMissingThresholdIsNoData(t *testing.T) {
	cfg := TestConfig{TestID: "t", Parameter: "temperature"}
	r := Evaluate(cfg, mkSeries(21, 22), DefaultSeverityBands())
	if !r.NoData {
		t.Fatalf("expected no-data for missing threshold")
	}
}

func TestTrailingRunIsClosed(t *testing.T) {
	cfg := TestConfig{TestID: "t", Parameter: "temperature", Threshold: &Threshold{Upper: f(26)}}
	r := Evaluate(cfg, mkSeries(21, 30, 30, 30), DefaultSeverityBands())
	if r.Severity.Moderate != 1 {
		t.Fatalf("run ending at series end must still be classified, got %+v", r.Severity)
	}
}
