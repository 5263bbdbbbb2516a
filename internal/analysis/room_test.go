// v1
// internal/analysis/room_test.go
package analysis

import (
	"math"
	"testing"

	"github.com/your-org/compliance/internal/compliance"
	"github.com/your-org/compliance/internal/standards"
)

func result(id, param string, rate float64) compliance.Result {
	return compliance.Result{TestID: id, Parameter: param, ComplianceRate: rate, TotalPoints: 100, PassBar: 100}
}

func TestOverallRateIsMeanWithoutStandard(t *testing.T) {
	ra := NewRoomAnalysis("r1", "Office 101", "L1", "b1")
	ra.AddComplianceResult(result("t1", "temperature", 80))
	ra.AddComplianceResult(result("t2", "co2", 100))

	if math.Abs(ra.OverallRate-90) > 1e-9 {
		t.Fatalf("expected mean 90, got %.2f", ra.OverallRate)
	}
	if ra.StandardCompliance != nil {
		t.Fatalf("no standard classification expected")
	}
}

func TestAddComplianceResultOrderIndependent(t *testing.T) {
	results := []compliance.Result{
		result("t1", "temperature", 97),
		result("t2", "co2", 42),
		result("t3", "humidity", 73),
		result("t4", "temperature", 88),
	}

	a := NewRoomAnalysis("r1", "", "", "")
	for _, r := range results {
		a.AddComplianceResult(r)
	}
	b := NewRoomAnalysis("r1", "", "", "")
	for i := len(results) - 1; i >= 0; i-- {
		b.AddComplianceResult(results[i])
	}

	if a.OverallRate != b.OverallRate {
		t.Fatalf("insertion order changed overall rate: %.4f vs %.4f", a.OverallRate, b.OverallRate)
	}
}

func TestReAddingSameTestOverwrites(t *testing.T) {
	ra := NewRoomAnalysis("r1", "", "", "")
	ra.AddComplianceResult(result("t1", "temperature", 40))
	ra.AddComplianceResult(result("t1", "temperature", 90))

	if len(ra.Results) != 1 {
		t.Fatalf("expected 1 stored result, got %d", len(ra.Results))
	}
	if ra.OverallRate != 90 {
		t.Fatalf("recomputation must use the latest result, got %.2f", ra.OverallRate)
	}
}

func TestEN16798DelegatesToClassifier(t *testing.T) {
	ra := NewRoomAnalysis("r1", "", "", "")
	en := func(id string, rate float64) compliance.Result {
		r := result(id, "temperature", rate)
		r.Standard = standards.EN16798
		return r
	}
	ra.AddComplianceResult(en("catI_temp", 96))
	ra.AddComplianceResult(en("catI_co2", 50))
	ra.AddComplianceResult(en("catII_temp", 96))
	ra.AddComplianceResult(en("catII_co2", 96))

	if ra.OverallRate != 75.0 {
		t.Fatalf("expected EN16798 mapped rate 75.0, got %.2f", ra.OverallRate)
	}
	if ra.StandardCompliance == nil || ra.StandardCompliance.Highest != standards.CategoryII {
		t.Fatalf("expected category II classification, got %+v", ra.StandardCompliance)
	}
}

func TestNoDataResultsExcludedFromMean(t *testing.T) {
	ra := NewRoomAnalysis("r1", "", "", "")
	ra.AddComplianceResult(result("t1", "temperature", 80))
	nd := compliance.Result{TestID: "t2", Parameter: "co2", NoData: true}
	ra.AddComplianceResult(nd)

	if ra.OverallRate != 80 {
		t.Fatalf("no-data result must not drag the mean, got %.2f", ra.OverallRate)
	}
}

func TestDataQualityScore(t *testing.T) {
	ra := NewRoomAnalysis("r1", "", "", "")
	r := result("t1", "temperature", 100)
	r.TotalPoints = 70
	r.MissingPoints = 30
	ra.AddComplianceResult(r)

	if ra.DataQualityScore != 70 {
		t.Fatalf("expected quality 70, got %.2f", ra.DataQualityScore)
	}
}

func TestSummaryContract(t *testing.T) {
	ra := NewRoomAnalysis("r1", "Office 101", "L1", "b1")
	ra.AddComplianceResult(result("t1", "temperature", 40))

	s := ra.Summary()
	for _, key := range []string{
		"room_id", "room_name", "level_id", "building_id", "compliance_results",
		"overall_compliance_rate", "data_quality_score", "parameter_statistics",
		"critical_issues", "recommendations",
	} {
		if _, ok := s[key]; !ok {
			t.Fatalf("summary missing key %q", key)
		}
	}
}

func TestCriticalIssuesCarryRoomPrefix(t *testing.T) {
	ra := NewRoomAnalysis("r9", "", "", "")
	ra.AddComplianceResult(result("t1", "temperature", 30))

	if len(ra.CriticalIssues) == 0 {
		t.Fatalf("expected a critical issue for 30%% compliance")
	}
	if got := ra.CriticalIssues[0]; got[:8] != "room r9:" {
		t.Fatalf("expected room prefix, got %q", got)
	}
}
