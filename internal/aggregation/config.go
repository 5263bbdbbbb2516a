// v1
// internal/aggregation/config.go
package aggregation

import "github.com/your-org/compliance/internal/standards"

// ParameterMethod selects how one room's per-parameter results collapse into
// the room's overall category and score.
type ParameterMethod string

const (
	WorstParameter  ParameterMethod = "WORST_PARAMETER"
	WeightedAverage ParameterMethod = "WEIGHTED_AVERAGE"
)

// SpatialMethod selects how rooms combine to a building value.
type SpatialMethod string

const (
	WorstSpace         SpatialMethod = "WORST_SPACE"
	OccupantWeighted   SpatialMethod = "OCCUPANT_WEIGHTED"
	AreaWeighted       SpatialMethod = "AREA_WEIGHTED"
	SimpleAverage      SpatialMethod = "SIMPLE_AVERAGE"
	CriticalSpacesOnly SpatialMethod = "CRITICAL_SPACES_ONLY"
)

// Config is the shared aggregation configuration. It is never mutated after
// construction, so one value can back any number of concurrent room
// evaluations. Predicates must be side-effect free.
type Config struct {
	ParameterMethod ParameterMethod
	SpatialMethod   SpatialMethod

	// Score-to-category cut points, strictly descending percentages.
	Category1Threshold float64
	Category2Threshold float64
	Category3Threshold float64

	// ParameterWeights are the default per-parameter weights for
	// WEIGHTED_AVERAGE; unlisted parameters weigh 1.
	ParameterWeights map[string]float64

	// IncludeRoom and IncludeParameter scope the aggregation. Nil means
	// include everything, except that CRITICAL_SPACES_ONLY implies a
	// critical-space room predicate.
	IncludeRoom      func(RoomAggregationResult) bool
	IncludeParameter func(parameter string) bool

	// RankingSize bounds best/worst lists; 0 means the default of 5.
	RankingSize int
}

// DefaultConfig mirrors the EN16798-1 rate mapping in its cut points.
func DefaultConfig() Config {
	return Config{
		ParameterMethod:    WorstParameter,
		SpatialMethod:      SimpleAverage,
		Category1Threshold: 95,
		Category2Threshold: 75,
		Category3Threshold: 50,
	}
}

func (c Config) rankingSize() int {
	if c.RankingSize > 0 {
		return c.RankingSize
	}
	return 5
}

func (c Config) roomIncluded(r RoomAggregationResult) bool {
	if c.SpatialMethod == CriticalSpacesOnly && !r.CriticalSpace {
		return false
	}
	if c.IncludeRoom != nil {
		return c.IncludeRoom(r)
	}
	return true
}

func (c Config) parameterIncluded(p string) bool {
	return c.IncludeParameter == nil || c.IncludeParameter(p)
}

func (c Config) parameterWeight(p string) float64 {
	if w, ok := c.ParameterWeights[p]; ok {
		return w
	}
	return 1
}

func (c Config) categoryFromScore(score float64) standards.Category {
	return standards.FromScore(score, c.Category1Threshold, c.Category2Threshold, c.Category3Threshold)
}

// weightedMean computes Σ(v·w)/Σw. A zero total weight falls back to the
// unweighted mean of the same values; an empty set reports ok=false so the
// caller can apply the configured worst case instead of failing.
func weightedMean(values, weights []float64) (mean float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum, wsum float64
	for i, v := range values {
		sum += v * weights[i]
		wsum += weights[i]
	}
	if wsum > 0 {
		return sum / wsum, true
	}
	sum = 0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func simpleMean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
