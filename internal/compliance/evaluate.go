// v1
// internal/compliance/evaluate.go
package compliance

import (
	"math"

	"github.com/your-org/compliance/internal/series"
)

// Evaluate classifies every non-missing sample of the filtered series
// against the test's threshold. Missing samples are excluded from both the
// numerator and the denominator: a gap is never a violation. An empty scope
// produces a neutral no-data result instead of a division by zero.
func Evaluate(cfg TestConfig, filtered series.Series, bands SeverityBands) Result {
	r := Result{
		TestID:    cfg.TestID,
		Parameter: cfg.Parameter,
		Standard:  cfg.Standard,
		Category:  cfg.Category,
		PassBar:   cfg.PassBar,
	}
	if r.PassBar <= 0 {
		r.PassBar = 100
	}
	th := cfg.Threshold
	if th == nil || !th.Valid() {
		r.NoData = true
		return r
	}

	var runLen int
	var peakDev float64
	endRun := func() {
		if runLen == 0 {
			return
		}
		switch bands.classify(runLen, peakDev) {
		case SeverityCritical:
			r.Severity.Critical++
		case SeverityMajor:
			r.Severity.Major++
		case SeverityModerate:
			r.Severity.Moderate++
		default:
			r.Severity.Minor++
		}
		runLen = 0
		peakDev = 0
	}

	for _, p := range filtered {
		if p.Missing() {
			// Gaps are transparent: they neither count nor split a run.
			r.MissingPoints++
			continue
		}
		r.TotalPoints++
		if th.Contains(p.Value) {
			r.CompliantPoints++
			endRun()
			continue
		}
		r.ViolationCount++
		runLen++
		if d := th.Deviation(p.Value); d > peakDev {
			peakDev = d
		}
	}
	endRun()

	if r.TotalPoints == 0 {
		r.NoData = true
		r.ComplianceRate = 0
		return r
	}
	r.ComplianceRate = round2(100 * float64(r.CompliantPoints) / float64(r.TotalPoints))
	return r
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
