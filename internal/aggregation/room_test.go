// v1
// internal/aggregation/room_test.go
package aggregation

import (
	"math"
	"testing"

	"github.com/your-org/compliance/internal/analysis"
	"github.com/your-org/compliance/internal/compliance"
	"github.com/your-org/compliance/internal/standards"
)

func roomWith(results ...compliance.Result) *analysis.RoomAnalysis {
	ra := analysis.NewRoomAnalysis("r1", "", "", "")
	for _, r := range results {
		ra.AddComplianceResult(r)
	}
	return ra
}

func res(id, param string, rate float64) compliance.Result {
	return compliance.Result{TestID: id, Parameter: param, ComplianceRate: rate, TotalPoints: 100, PassBar: 100}
}

func TestWorstParameterOverall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParameterMethod = WorstParameter

	// temperature -> I (96), co2 -> II (80), humidity -> III (55).
	ra := roomWith(
		res("t1", "temperature", 96),
		res("t2", "co2", 80),
		res("t3", "humidity", 55),
	)
	out := AggregateRoom(cfg, ra, RoomMeta{})

	if out.OverallCat != standards.CategoryIII {
		t.Fatalf("worst of {I, II, III} must be III, got %s", out.OverallCat)
	}
	if out.IEQScore != 55 {
		t.Fatalf("worst-parameter score is the min, got %.2f", out.IEQScore)
	}
}

func TestWeightedAverageOverall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParameterMethod = WeightedAverage
	cfg.ParameterWeights = map[string]float64{"temperature": 3, "co2": 1}

	ra := roomWith(
		res("t1", "temperature", 100),
		res("t2", "co2", 60),
	)
	out := AggregateRoom(cfg, ra, RoomMeta{})

	if math.Abs(out.IEQScore-90) > 1e-9 {
		t.Fatalf("expected weighted score 90, got %.2f", out.IEQScore)
	}
	if out.OverallCat != standards.CategoryII {
		t.Fatalf("score 90 maps to II under default cut points, got %s", out.OverallCat)
	}
}

func TestZeroWeightsFallBackToUnweightedMean(t *testing.T) {
	vals := []float64{40, 60, 80}
	weights := []float64{0, 0, 0}
	got, ok := weightedMean(vals, weights)
	if !ok {
		t.Fatalf("non-empty set must produce a mean")
	}
	if math.Abs(got-60) > 1e-9 {
		t.Fatalf("expected unweighted fallback 60, got %.2f", got)
	}
}

func TestEmptyWeightedSetReportsNotOK(t *testing.T) {
	if _, ok := weightedMean(nil, nil); ok {
		t.Fatalf("empty set must report ok=false")
	}
}

func TestRoomWithoutUsableParametersIsWorstCase(t *testing.T) {
	cfg := DefaultConfig()
	ra := roomWith(compliance.Result{TestID: "t1", Parameter: "temperature", NoData: true})
	out := AggregateRoom(cfg, ra, RoomMeta{})

	if out.OverallCat != standards.CategoryIV || out.IEQScore != 0 {
		t.Fatalf("expected worst case (IV, 0), got (%s, %.2f)", out.OverallCat, out.IEQScore)
	}
}

func TestParameterInclusionPredicate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludeParameter = func(p string) bool { return p == "temperature" }

	ra := roomWith(
		res("t1", "temperature", 96),
		res("t2", "co2", 10),
	)
	out := AggregateRoom(cfg, ra, RoomMeta{})

	if _, ok := out.Parameters["co2"]; ok {
		t.Fatalf("excluded parameter must not appear")
	}
	if out.OverallCat != standards.CategoryI {
		t.Fatalf("expected I from temperature alone, got %s", out.OverallCat)
	}
}

func TestMultipleTestsPerParameterAverage(t *testing.T) {
	cfg := DefaultConfig()
	ra := roomWith(
		res("t1", "temperature", 100),
		res("t2", "temperature", 50),
	)
	out := AggregateRoom(cfg, ra, RoomMeta{})

	pr := out.Parameters["temperature"]
	if math.Abs(pr.ComplianceRate-75) > 1e-9 {
		t.Fatalf("expected parameter rate 75, got %.2f", pr.ComplianceRate)
	}
}
