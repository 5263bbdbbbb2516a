// v2
// internal/engine/engine_test.go
package engine

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/your-org/compliance/internal/aggregation"
	"github.com/your-org/compliance/internal/compliance"
	"github.com/your-org/compliance/internal/series"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f(v float64) *float64 { return &v }

func flatSeries(value float64, n int) series.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(series.Series, 0, n)
	for i := 0; i < n; i++ {
		s = append(s, series.Sample{Ts: start.Add(time.Duration(i) * time.Hour), Value: value})
	}
	return s
}

func tempTest(id string) compliance.TestConfig {
	return compliance.TestConfig{
		TestID:    id,
		Parameter: "temperature",
		Threshold: &compliance.Threshold{Lower: f(20), Upper: f(26)},
	}
}

func room(id string, value float64) RoomInput {
	return RoomInput{
		RoomID: id,
		Tests:  []compliance.TestConfig{tempTest(id + "_t")},
		Series: map[string]series.Series{"temperature": flatSeries(value, 24)},
	}
}

func newEngine() *Engine {
	return New(aggregation.DefaultConfig(), compliance.DefaultSeverityBands(), testLogger(), 4, nil)
}

func TestRunJoinsHierarchy(t *testing.T) {
	batch := BatchInput{
		PortfolioID: "pf1",
		Buildings: []BuildingInput{
			{BuildingID: "b1", Rooms: []RoomInput{room("r1", 22), room("r2", 22)}},
			{BuildingID: "b2", Rooms: []RoomInput{room("r3", 30)}},
		},
	}
	res := newEngine().Run(context.Background(), batch)

	if res.Succeeded != 3 || res.Failed != 0 {
		t.Fatalf("expected 3 succeeded, got %d/%d", res.Succeeded, res.Failed)
	}
	if len(res.Buildings) != 2 {
		t.Fatalf("expected 2 buildings, got %d", len(res.Buildings))
	}
	if res.Buildings[0].AvgComplianceRate != 100 {
		t.Fatalf("b1 fully compliant, got %.2f", res.Buildings[0].AvgComplianceRate)
	}
	if res.Buildings[1].AvgComplianceRate != 0 {
		t.Fatalf("b2 fully violating, got %.2f", res.Buildings[1].AvgComplianceRate)
	}
	// Portfolio is room-count weighted: (100*2 + 0*1) / 3.
	if math.Abs(res.Portfolio.AvgComplianceRate-200.0/3) > 0.01 {
		t.Fatalf("portfolio weighting wrong: %.2f", res.Portfolio.AvgComplianceRate)
	}
	if res.RunID == "" {
		t.Fatalf("expected a run id")
	}
}

func TestContinueOnErrorDropsOnlyBadRoom(t *testing.T) {
	bad := RoomInput{RoomID: "bad"} // no tests configured
	batch := BatchInput{
		PortfolioID: "pf1",
		Buildings:   []BuildingInput{{BuildingID: "b1", Rooms: []RoomInput{room("r1", 22), bad}}},
	}
	res := newEngine().Run(context.Background(), batch)

	if res.Succeeded != 1 || res.Failed != 1 {
		t.Fatalf("expected 1/1, got %d/%d", res.Succeeded, res.Failed)
	}
	if res.Buildings[0].RoomCount != 1 {
		t.Fatalf("failed room must be omitted from aggregation, got %d rooms", res.Buildings[0].RoomCount)
	}
	if res.Buildings[0].Status != aggregation.StatusCompleted {
		t.Fatalf("building with surviving rooms must complete, got %s", res.Buildings[0].Status)
	}
}

func TestBuildingWithNoSurvivorsIsFailed(t *testing.T) {
	batch := BatchInput{
		PortfolioID: "pf1",
		Buildings:   []BuildingInput{{BuildingID: "b1", Rooms: []RoomInput{{RoomID: ""}}}},
	}
	res := newEngine().Run(context.Background(), batch)

	if res.Buildings[0].Status != aggregation.StatusFailed {
		t.Fatalf("expected FAILED building, got %s", res.Buildings[0].Status)
	}
	if res.Portfolio.Status != aggregation.StatusCompleted {
		t.Fatalf("portfolio with members still completes, got %s", res.Portfolio.Status)
	}
}

func TestMissingThresholdSkipsTestOnly(t *testing.T) {
	r := room("r1", 22)
	r.Tests = append(r.Tests, compliance.TestConfig{TestID: "broken", Parameter: "temperature"})

	ra, err := newEngine().EvaluateRoom(r, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ra.Results["broken"]; ok {
		t.Fatalf("threshold-less test must be skipped")
	}
	if len(ra.Results) != 1 {
		t.Fatalf("expected the valid test to survive, got %d", len(ra.Results))
	}
}

func TestMissingSeriesYieldsNoDataResult(t *testing.T) {
	r := RoomInput{
		RoomID: "r1",
		Tests:  []compliance.TestConfig{{TestID: "co2_t", Parameter: "co2", Threshold: &compliance.Threshold{Upper: f(1000)}}},
	}
	ra, err := newEngine().EvaluateRoom(r, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, ok := ra.Results["co2_t"]
	if !ok || !res.NoData {
		t.Fatalf("expected a stored no-data result, got %+v", res)
	}
}

func TestRoomOutcomesPreserveInputOrder(t *testing.T) {
	var rooms []RoomInput
	for _, id := range []string{"r1", "r2", "r3", "r4", "r5", "r6"} {
		rooms = append(rooms, room(id, 22))
	}
	batch := BatchInput{
		PortfolioID: "pf1",
		Buildings:   []BuildingInput{{BuildingID: "b1", Rooms: rooms}},
	}
	res := newEngine().Run(context.Background(), batch)

	for i, o := range res.Rooms {
		if o.RoomID != rooms[i].RoomID {
			t.Fatalf("outcome %d out of order: %s", i, o.RoomID)
		}
	}
}

func TestParameterStatsRecorded(t *testing.T) {
	ra, err := newEngine().EvaluateRoom(room("r1", 22), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, ok := ra.ParameterStatistics["temperature"]
	if !ok {
		t.Fatalf("expected temperature statistics")
	}
	if st.Mean != 22 || st.Min != 22 || st.Max != 22 || st.Points != 24 {
		t.Fatalf("stats wrong: %+v", st)
	}
}
