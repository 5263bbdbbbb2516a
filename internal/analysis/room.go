// v1
// internal/analysis/room.go
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/your-org/compliance/internal/compliance"
	"github.com/your-org/compliance/internal/standards"
)

// ParameterStats are descriptive statistics of one parameter's in-scope
// samples.
type ParameterStats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Points int     `json:"points"`
}

// Recommendation is an actionable follow-up surfaced to downstream
// reporting collaborators.
type Recommendation struct {
	Title    string `json:"title"`
	Priority string `json:"priority"` // critical, high, medium, low
	Detail   string `json:"detail,omitempty"`
}

// RoomAnalysis is the per-room compliance outcome. It is only mutated
// through AddComplianceResult, which recomputes the overall rate from the
// full current result set so insertion order never matters.
type RoomAnalysis struct {
	RoomID     string
	RoomName   string
	LevelID    string
	BuildingID string

	Results             map[string]compliance.Result // keyed by test id
	OverallRate         float64
	StandardCompliance  *standards.Classification // set for EN16798-1 rooms
	DataQualityScore    float64
	ParameterStatistics map[string]ParameterStats
	CriticalIssues      []string
	Recommendations     []Recommendation
}

func NewRoomAnalysis(roomID, roomName, levelID, buildingID string) *RoomAnalysis {
	return &RoomAnalysis{
		RoomID:              roomID,
		RoomName:            roomName,
		LevelID:             levelID,
		BuildingID:          buildingID,
		Results:             make(map[string]compliance.Result),
		ParameterStatistics: make(map[string]ParameterStats),
	}
}

// AddComplianceResult stores the result and recomputes every derived field
// from scratch. Re-adding the same test id overwrites the previous result.
func (ra *RoomAnalysis) AddComplianceResult(r compliance.Result) {
	ra.Results[r.TestID] = r
	ra.recompute()
}

// SetParameterStats records the descriptive statistics of one parameter's
// filtered series.
func (ra *RoomAnalysis) SetParameterStats(parameter string, st ParameterStats) {
	ra.ParameterStatistics[parameter] = st
}

func (ra *RoomAnalysis) recompute() {
	ra.OverallRate = ra.overallRate()
	ra.DataQualityScore = ra.dataQuality()
	ra.CriticalIssues = ra.criticalIssues()
	ra.Recommendations = ra.recommendations()
}

// overallRate is the EN16798-1 mapped rate when any stored result carries
// that standard, otherwise the arithmetic mean of all rates with data.
func (ra *RoomAnalysis) overallRate() float64 {
	en := false
	var sum float64
	var n int
	for _, r := range ra.Results {
		if standards.IsEN16798(r.Standard) {
			en = true
		}
		if r.NoData {
			continue
		}
		sum += r.ComplianceRate
		n++
	}
	if en {
		cls := standards.Classify(ra.Results)
		ra.StandardCompliance = &cls
		return cls.Rate
	}
	ra.StandardCompliance = nil
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// dataQuality is the share of in-scope samples that carried a value, across
// all tests.
func (ra *RoomAnalysis) dataQuality() float64 {
	var have, total int
	for _, r := range ra.Results {
		have += r.TotalPoints
		total += r.TotalPoints + r.MissingPoints
	}
	if total == 0 {
		return 0
	}
	return math.Round(10000*float64(have)/float64(total)) / 100
}

func (ra *RoomAnalysis) criticalIssues() []string {
	var out []string
	for _, id := range ra.sortedTestIDs() {
		r := ra.Results[id]
		if r.NoData {
			continue
		}
		if r.Severity.Critical > 0 {
			out = append(out, fmt.Sprintf("room %s: %s has %d critical violation runs", ra.RoomID, r.Parameter, r.Severity.Critical))
		}
		if r.ComplianceRate < 50 {
			out = append(out, fmt.Sprintf("room %s: %s compliance at %.1f%%", ra.RoomID, r.Parameter, r.ComplianceRate))
		}
	}
	return out
}

func (ra *RoomAnalysis) recommendations() []Recommendation {
	var out []Recommendation
	for _, id := range ra.sortedTestIDs() {
		r := ra.Results[id]
		if r.NoData || r.IsCompliant() {
			continue
		}
		prio := "medium"
		switch {
		case r.Severity.Critical > 0 || r.ComplianceRate < 50:
			prio = "critical"
		case r.Severity.Major > 0 || r.ComplianceRate < 75:
			prio = "high"
		case r.ComplianceRate >= 90:
			prio = "low"
		}
		out = append(out, Recommendation{
			Title:    fmt.Sprintf("Review %s control", r.Parameter),
			Priority: prio,
			Detail:   fmt.Sprintf("test %s at %.1f%% compliance with %d violations", r.TestID, r.ComplianceRate, r.ViolationCount),
		})
	}
	return out
}

// sortedTestIDs keeps issue and recommendation output deterministic across
// map iteration order.
func (ra *RoomAnalysis) sortedTestIDs() []string {
	ids := make([]string, 0, len(ra.Results))
	for id := range ra.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Summary returns the stable-keyed serialization consumed by report and
// export collaborators. Keys are a contract; do not rename.
func (ra *RoomAnalysis) Summary() map[string]any {
	results := make(map[string]any, len(ra.Results))
	for id, r := range ra.Results {
		results[id] = r
	}
	s := map[string]any{
		"room_id":                 ra.RoomID,
		"room_name":               ra.RoomName,
		"level_id":                ra.LevelID,
		"building_id":             ra.BuildingID,
		"compliance_results":      results,
		"overall_compliance_rate": round2(ra.OverallRate),
		"data_quality_score":      ra.DataQualityScore,
		"parameter_statistics":    ra.ParameterStatistics,
		"critical_issues":         ra.CriticalIssues,
		"recommendations":         ra.Recommendations,
	}
	if ra.StandardCompliance != nil {
		s["standard_compliance"] = ra.StandardCompliance
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
