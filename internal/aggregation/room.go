// v1
// internal/aggregation/room.go
package aggregation

import (
	"math"
	"sort"

	"github.com/your-org/compliance/internal/analysis"
	"github.com/your-org/compliance/internal/compliance"
	"github.com/your-org/compliance/internal/standards"
)

// ParameterResult is one parameter's aggregated outcome inside a room.
type ParameterResult struct {
	Category       standards.Category `json:"category"`
	ComplianceRate float64            `json:"complianceRate"`
}

// RoomAggregationResult is the strategy-aggregation view of one room. It is
// produced once per aggregation run and consumed read-only by the building
// aggregator.
type RoomAggregationResult struct {
	RoomID        string                     `json:"roomId"`
	Parameters    map[string]ParameterResult `json:"parameterResults"`
	OverallCat    standards.Category         `json:"overallCategory"`
	IEQScore      float64                    `json:"ieqScore"`
	OccupiedHours float64                    `json:"totalOccupiedHours"`
	FloorAreaM2   float64                    `json:"floorAreaM2"`
	CriticalSpace bool                       `json:"isCriticalSpace"`
}

// RoomMeta carries the spatial weighting attributes a RoomAnalysis does not
// know about.
type RoomMeta struct {
	OccupiedHours float64
	FloorAreaM2   float64
	CriticalSpace bool
}

// AggregateRoom collapses a room's per-test results first into per-parameter
// results, then into an overall category and score per the configured
// parameter method. Tests without data are excluded from their parameter,
// never counted as zero.
func AggregateRoom(cfg Config, ra *analysis.RoomAnalysis, meta RoomMeta) RoomAggregationResult {
	out := RoomAggregationResult{
		RoomID:        ra.RoomID,
		Parameters:    make(map[string]ParameterResult),
		OccupiedHours: meta.OccupiedHours,
		FloorAreaM2:   meta.FloorAreaM2,
		CriticalSpace: meta.CriticalSpace,
	}

	byParam := make(map[string][]compliance.Result)
	for _, r := range ra.Results {
		if r.NoData || !cfg.parameterIncluded(r.Parameter) {
			continue
		}
		byParam[r.Parameter] = append(byParam[r.Parameter], r)
	}

	for param, results := range byParam {
		var sum float64
		for _, r := range results {
			sum += r.ComplianceRate
		}
		rate := sum / float64(len(results))
		out.Parameters[param] = ParameterResult{
			Category:       cfg.categoryFromScore(rate),
			ComplianceRate: rate,
		}
	}

	out.OverallCat, out.IEQScore = cfg.combineParameters(out.Parameters)
	return out
}

// combineParameters reduces per-parameter results to the room overall. An
// empty parameter set yields the configured worst case (IV, 0).
func (c Config) combineParameters(params map[string]ParameterResult) (standards.Category, float64) {
	if len(params) == 0 {
		return standards.CategoryIV, 0
	}

	names := make([]string, 0, len(params))
	for p := range params {
		names = append(names, p)
	}
	sort.Strings(names)

	switch c.ParameterMethod {
	case WeightedAverage:
		values := make([]float64, 0, len(names))
		weights := make([]float64, 0, len(names))
		for _, p := range names {
			values = append(values, params[p].ComplianceRate)
			weights = append(weights, c.parameterWeight(p))
		}
		score, ok := weightedMean(values, weights)
		if !ok {
			return standards.CategoryIV, 0
		}
		return c.categoryFromScore(score), score
	default: // WorstParameter
		worst := standards.CategoryI
		minScore := math.Inf(1)
		for _, p := range names {
			worst = standards.Worse(worst, params[p].Category)
			minScore = math.Min(minScore, params[p].ComplianceRate)
		}
		return worst, minScore
	}
}
