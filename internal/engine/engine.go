// v2
// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/your-org/compliance/internal/aggregation"
	"github.com/your-org/compliance/internal/analysis"
	"github.com/your-org/compliance/internal/compliance"
	"github.com/your-org/compliance/internal/series"
)

var (
	errNoRoomID = errors.New("room has no id")
	errNoTests  = errors.New("room has no test configurations")
)

// RoomInput is everything needed to evaluate one room: already-loaded series
// per parameter plus the test configurations to run against them.
type RoomInput struct {
	RoomID     string `json:"roomId"`
	RoomName   string `json:"roomName,omitempty"`
	LevelID    string `json:"levelId,omitempty"`
	BuildingID string `json:"buildingId,omitempty"`

	Tests  []compliance.TestConfig  `json:"tests"`
	Series map[string]series.Series `json:"series"` // parameter -> series

	OccupiedHours float64 `json:"occupiedHours,omitempty"`
	FloorAreaM2   float64 `json:"floorAreaM2,omitempty"`
	CriticalSpace bool    `json:"criticalSpace,omitempty"`
}

// BuildingInput groups rooms under one building id.
type BuildingInput struct {
	BuildingID string      `json:"buildingId"`
	Rooms      []RoomInput `json:"rooms"`
}

// BatchInput is one full portfolio evaluation request.
type BatchInput struct {
	PortfolioID    string             `json:"portfolioId"`
	Name           string             `json:"name,omitempty"`
	Buildings      []BuildingInput    `json:"buildings"`
	Country        string             `json:"country,omitempty"`
	CustomHolidays []series.DateRange `json:"customHolidays,omitempty"`
}

// RoomOutcome is the explicit per-room result of a batch: either an analysis
// or the reason the room was dropped. Aggregation only ever sees the success
// subset.
type RoomOutcome struct {
	RoomID      string
	BuildingID  string
	Analysis    *analysis.RoomAnalysis
	Aggregation aggregation.RoomAggregationResult
	Err         error
}

// BatchResult is the joined outcome of one run.
type BatchResult struct {
	RunID     string
	Portfolio *aggregation.PortfolioAnalysis
	Buildings []*aggregation.BuildingAnalysis
	Rooms     []RoomOutcome
	Succeeded int
	Failed    int
}

// Observer receives engine counters; nil-safe on the caller side.
type Observer interface {
	TestEvaluated()
	TestSkipped()
	RoomSucceeded()
	RoomFailed()
}

// Engine runs the filter -> evaluate -> aggregate chain for whole batches.
// Rooms are independent pure computations over the shared immutable config,
// so they run on a worker pool; building and portfolio joins wait for the
// complete room set.
type Engine struct {
	cfg     aggregation.Config
	bands   compliance.SeverityBands
	log     *slog.Logger
	workers int
	obs     Observer
}

func New(cfg aggregation.Config, bands compliance.SeverityBands, log *slog.Logger, workers int, obs Observer) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Engine{cfg: cfg, bands: bands, log: log, workers: workers, obs: obs}
}

// EvaluateRoom evaluates every configured test for one room. Tests without a
// usable threshold are skipped with a warning; a missing series yields a
// no-data result for that test, never a violation.
func (e *Engine) EvaluateRoom(room RoomInput, hol *series.HolidayCalendar) (*analysis.RoomAnalysis, error) {
	if room.RoomID == "" {
		return nil, errNoRoomID
	}
	if len(room.Tests) == 0 {
		return nil, fmt.Errorf("room %s: %w", room.RoomID, errNoTests)
	}

	ra := analysis.NewRoomAnalysis(room.RoomID, room.RoomName, room.LevelID, room.BuildingID)
	for _, tc := range room.Tests {
		if tc.Threshold == nil || !tc.Threshold.Valid() {
			e.log.Warn("skipping test without threshold", "roomId", room.RoomID, "testId", tc.TestID)
			if e.obs != nil {
				e.obs.TestSkipped()
			}
			continue
		}
		filtered := room.Series[tc.Parameter].Filter(tc.Filter, hol)
		ra.AddComplianceResult(compliance.Evaluate(tc, filtered, e.bands))
		if st, ok := describe(filtered); ok {
			ra.SetParameterStats(tc.Parameter, st)
		}
		if e.obs != nil {
			e.obs.TestEvaluated()
		}
	}
	return ra, nil
}

// Run evaluates the full batch and joins rooms into buildings and buildings
// into the portfolio. Per-room failures are collected, logged and dropped;
// structural failures surface as FAILED analyses instead of errors.
func (e *Engine) Run(ctx context.Context, batch BatchInput) *BatchResult {
	res := &BatchResult{RunID: uuid.NewString()}

	hol, err := series.NewHolidayCalendar(batch.Country, batch.CustomHolidays)
	if err != nil {
		e.log.Warn("holiday calendar unavailable, using custom ranges only", "country", batch.Country, "err", err)
		hol, _ = series.NewHolidayCalendar("", batch.CustomHolidays)
	}

	type job struct {
		idx  int
		room RoomInput
	}
	var jobs []job
	for _, b := range batch.Buildings {
		for _, r := range b.Rooms {
			if r.BuildingID == "" {
				r.BuildingID = b.BuildingID
			}
			jobs = append(jobs, job{idx: len(jobs), room: r})
		}
	}
	res.Rooms = make([]RoomOutcome, len(jobs))

	jobCh := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				res.Rooms[j.idx] = e.evaluateOne(ctx, j.room, hol)
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	for i := range res.Rooms {
		o := &res.Rooms[i]
		if o.Err != nil {
			res.Failed++
			e.log.Warn("room dropped from batch", "roomId", o.RoomID, "err", o.Err)
			if e.obs != nil {
				e.obs.RoomFailed()
			}
			continue
		}
		res.Succeeded++
		if e.obs != nil {
			e.obs.RoomSucceeded()
		}
	}
	e.log.Info("room evaluation joined", "runId", res.RunID, "succeeded", res.Succeeded, "failed", res.Failed)

	ba := aggregation.NewBuildingAggregator(e.cfg, e.log)
	for _, b := range batch.Buildings {
		var rooms []*analysis.RoomAnalysis
		var aggs []aggregation.RoomAggregationResult
		for _, o := range res.Rooms {
			if o.Err == nil && o.BuildingID == b.BuildingID {
				rooms = append(rooms, o.Analysis)
				aggs = append(aggs, o.Aggregation)
			}
		}
		analysisOut := ba.Aggregate(b.BuildingID, rooms)
		if analysisOut.Status == aggregation.StatusCompleted {
			ba.ApplyAggregationStrategy(analysisOut, aggs)
		}
		res.Buildings = append(res.Buildings, analysisOut)
	}

	pa := aggregation.NewPortfolioAggregator(e.cfg, e.log)
	res.Portfolio = pa.Aggregate(batch.PortfolioID, batch.Name, res.Buildings)
	return res
}

func (e *Engine) evaluateOne(ctx context.Context, room RoomInput, hol *series.HolidayCalendar) RoomOutcome {
	out := RoomOutcome{RoomID: room.RoomID, BuildingID: room.BuildingID}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	ra, err := e.EvaluateRoom(room, hol)
	if err != nil {
		out.Err = err
		return out
	}
	out.Analysis = ra
	out.Aggregation = aggregation.AggregateRoom(e.cfg, ra, aggregation.RoomMeta{
		OccupiedHours: room.OccupiedHours,
		FloorAreaM2:   room.FloorAreaM2,
		CriticalSpace: room.CriticalSpace,
	})
	return out
}

// describe computes per-parameter descriptive statistics over the in-scope
// non-missing samples.
func describe(s series.Series) (analysis.ParameterStats, bool) {
	st := analysis.ParameterStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, p := range s {
		if p.Missing() {
			continue
		}
		st.Points++
		sum += p.Value
		st.Min = math.Min(st.Min, p.Value)
		st.Max = math.Max(st.Max, p.Value)
	}
	if st.Points == 0 {
		return analysis.ParameterStats{}, false
	}
	st.Mean = sum / float64(st.Points)
	return st, true
}
