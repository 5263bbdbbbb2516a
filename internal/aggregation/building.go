// v1
// internal/aggregation/building.go
package aggregation

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/your-org/compliance/internal/analysis"
	"github.com/your-org/compliance/internal/standards"
)

// Aggregation status values. A FAILED analysis is a well-formed result, not
// an error: callers can always render something.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TestAggregate summarizes one test across every room that ran it.
type TestAggregate struct {
	AvgRate     float64 `json:"avgComplianceRate"`
	MinRate     float64 `json:"minComplianceRate"`
	MaxRate     float64 `json:"maxComplianceRate"`
	Violations  int     `json:"totalViolations"`
	RoomsTested int     `json:"roomsTested"`
	RoomsPassed int     `json:"roomsPassed"` // rate >= 95
}

// RankedRoom is one entry of a best/worst ranking.
type RankedRoom struct {
	RoomID   string  `json:"roomId"`
	RoomName string  `json:"roomName"`
	Rate     float64 `json:"overallComplianceRate"`
}

// BuildingAnalysis is the building-level rollup. Aggregate creates it;
// ApplyAggregationStrategy optionally augments it in place; nothing mutates
// it afterwards.
type BuildingAnalysis struct {
	BuildingID string
	Status     string

	RoomIDs   []string
	LevelIDs  []string
	RoomCount int

	AvgComplianceRate float64
	AvgQualityScore   float64

	// Strategy outputs; empty until ApplyAggregationStrategy runs.
	BuildingCategory    standards.Category
	BuildingIEQScore    *float64
	ParameterCategories map[string]standards.Category
	ParameterScores     map[string]float64

	TestAggregations    map[string]TestAggregate
	ParameterStatistics map[string]analysis.ParameterStats

	BestRooms  []RankedRoom
	WorstRooms []RankedRoom

	CriticalIssues  []string
	Recommendations []analysis.Recommendation
}

// BuildingAggregator reduces room analyses into a BuildingAnalysis under one
// immutable config.
type BuildingAggregator struct {
	cfg Config
	log *slog.Logger
}

func NewBuildingAggregator(cfg Config, log *slog.Logger) *BuildingAggregator {
	if log == nil {
		log = slog.Default()
	}
	return &BuildingAggregator{cfg: cfg, log: log}
}

// Aggregate computes the simple cross-room rollup. Weighting by room count
// happens one level up, in the portfolio. Empty input produces an explicit
// FAILED analysis.
func (b *BuildingAggregator) Aggregate(buildingID string, rooms []*analysis.RoomAnalysis) *BuildingAnalysis {
	ba := &BuildingAnalysis{
		BuildingID:          buildingID,
		Status:              StatusCompleted,
		TestAggregations:    make(map[string]TestAggregate),
		ParameterStatistics: make(map[string]analysis.ParameterStats),
		ParameterCategories: make(map[string]standards.Category),
		ParameterScores:     make(map[string]float64),
	}
	if len(rooms) == 0 {
		ba.Status = StatusFailed
		ba.CriticalIssues = []string{"No room analyses available"}
		b.log.Warn("building aggregation with no rooms", "buildingId", buildingID)
		return ba
	}

	levelSeen := map[string]bool{}
	var rateSum, qualSum float64
	for _, ra := range rooms {
		ba.RoomIDs = append(ba.RoomIDs, ra.RoomID)
		if ra.LevelID != "" && !levelSeen[ra.LevelID] {
			levelSeen[ra.LevelID] = true
			ba.LevelIDs = append(ba.LevelIDs, ra.LevelID)
		}
		rateSum += ra.OverallRate
		qualSum += ra.DataQualityScore
	}
	ba.RoomCount = len(rooms)
	ba.AvgComplianceRate = rateSum / float64(len(rooms))
	ba.AvgQualityScore = qualSum / float64(len(rooms))

	b.aggregateTests(ba, rooms)
	b.aggregateParameterStats(ba, rooms)
	ba.BestRooms, ba.WorstRooms = b.rankRooms(rooms)
	ba.CriticalIssues = rollupIssues(roomIssues(rooms))
	ba.Recommendations = rollupRecommendations(roomRecommendations(rooms), b.cfg.rankingSize())
	return ba
}

func (b *BuildingAggregator) aggregateTests(ba *BuildingAnalysis, rooms []*analysis.RoomAnalysis) {
	for _, ra := range rooms {
		for id, r := range ra.Results {
			if r.NoData {
				continue
			}
			agg, seen := ba.TestAggregations[id]
			if !seen {
				agg = TestAggregate{MinRate: math.Inf(1), MaxRate: math.Inf(-1)}
			}
			agg.AvgRate += r.ComplianceRate // running sum, divided below
			agg.MinRate = math.Min(agg.MinRate, r.ComplianceRate)
			agg.MaxRate = math.Max(agg.MaxRate, r.ComplianceRate)
			agg.Violations += r.ViolationCount
			agg.RoomsTested++
			if r.ComplianceRate >= standards.PassThreshold {
				agg.RoomsPassed++
			}
			ba.TestAggregations[id] = agg
		}
	}
	for id, agg := range ba.TestAggregations {
		agg.AvgRate /= float64(agg.RoomsTested)
		ba.TestAggregations[id] = agg
	}
}

// aggregateParameterStats averages each parameter's room statistics; rooms
// lacking a stat are left out of that parameter's aggregate rather than
// counted as zero.
func (b *BuildingAggregator) aggregateParameterStats(ba *BuildingAnalysis, rooms []*analysis.RoomAnalysis) {
	counts := map[string]int{}
	for _, ra := range rooms {
		for param, st := range ra.ParameterStatistics {
			if st.Points == 0 {
				continue
			}
			agg, seen := ba.ParameterStatistics[param]
			if !seen {
				agg = analysis.ParameterStats{Min: math.Inf(1), Max: math.Inf(-1)}
			}
			agg.Mean += st.Mean
			agg.Min = math.Min(agg.Min, st.Min)
			agg.Max = math.Max(agg.Max, st.Max)
			agg.Points += st.Points
			counts[param]++
			ba.ParameterStatistics[param] = agg
		}
	}
	for param, agg := range ba.ParameterStatistics {
		agg.Mean /= float64(counts[param])
		ba.ParameterStatistics[param] = agg
	}
}

// rankRooms returns top-N and bottom-N by overall rate, ties broken by
// natural input order.
func (b *BuildingAggregator) rankRooms(rooms []*analysis.RoomAnalysis) (best, worst []RankedRoom) {
	n := b.cfg.rankingSize()
	ranked := make([]RankedRoom, 0, len(rooms))
	for _, ra := range rooms {
		ranked = append(ranked, RankedRoom{RoomID: ra.RoomID, RoomName: ra.RoomName, Rate: ra.OverallRate})
	}
	desc := append([]RankedRoom(nil), ranked...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Rate > desc[j].Rate })
	asc := append([]RankedRoom(nil), ranked...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Rate < asc[j].Rate })
	if len(desc) > n {
		desc = desc[:n]
	}
	if len(asc) > n {
		asc = asc[:n]
	}
	return desc, asc
}

// ApplyAggregationStrategy computes the building category and IEQ score from
// per-room aggregation results using the configured spatial method. An empty
// included-room set pins the worst case (IV, score 0) instead of failing.
func (b *BuildingAggregator) ApplyAggregationStrategy(ba *BuildingAnalysis, rooms []RoomAggregationResult) {
	included := rooms[:0:0]
	for _, r := range rooms {
		if b.cfg.roomIncluded(r) {
			included = append(included, r)
		}
	}
	if len(included) == 0 {
		ba.BuildingCategory = standards.CategoryIV
		zero := 0.0
		ba.BuildingIEQScore = &zero
		b.log.Warn("no rooms included by aggregation strategy", "buildingId", ba.BuildingID, "spatialMethod", string(b.cfg.SpatialMethod))
		return
	}

	for _, param := range b.includedParameters(included) {
		var children []spatialChild
		for _, r := range included {
			pr, ok := r.Parameters[param]
			if !ok {
				continue
			}
			children = append(children, spatialChild{
				category: pr.Category,
				score:    pr.ComplianceRate,
				hours:    r.OccupiedHours,
				area:     r.FloorAreaM2,
			})
		}
		cat, score := b.cfg.reduceSpatial(children)
		ba.ParameterCategories[param] = cat
		ba.ParameterScores[param] = score
	}

	// Same reduction over the rooms' overall values.
	children := make([]spatialChild, 0, len(included))
	var scoreSum float64
	for _, r := range included {
		children = append(children, spatialChild{
			category: r.OverallCat,
			score:    r.IEQScore,
			hours:    r.OccupiedHours,
			area:     r.FloorAreaM2,
		})
		scoreSum += r.IEQScore
	}
	cat, score := b.cfg.reduceSpatial(children)
	ba.BuildingCategory = cat
	if b.cfg.SpatialMethod == WorstSpace {
		// The category is authoritative from the worst room; the score is a
		// plain mean reported for dashboards only and does not feed back
		// into the category.
		score = scoreSum / float64(len(included))
	}
	ba.BuildingIEQScore = &score
}

func (b *BuildingAggregator) includedParameters(rooms []RoomAggregationResult) []string {
	seen := map[string]bool{}
	var params []string
	for _, r := range rooms {
		for p := range r.Parameters {
			if !seen[p] && b.cfg.parameterIncluded(p) {
				seen[p] = true
				params = append(params, p)
			}
		}
	}
	sort.Strings(params)
	return params
}

// spatialChild is one child's contribution to a spatial reduction. The same
// shape serves parameter-level and overall-level aggregation.
type spatialChild struct {
	category standards.Category
	score    float64
	hours    float64
	area     float64
}

// reduceSpatial collapses children per the spatial method. WORST_SPACE takes
// the worst category and the minimum score; the weighted methods average
// scores (falling back to an unweighted mean on zero total weight) and
// derive the category from the score. Empty input yields the worst case.
func (c Config) reduceSpatial(children []spatialChild) (standards.Category, float64) {
	if len(children) == 0 {
		return standards.CategoryIV, 0
	}
	switch c.SpatialMethod {
	case WorstSpace:
		worst := standards.CategoryI
		minScore := math.Inf(1)
		for _, ch := range children {
			worst = standards.Worse(worst, ch.category)
			minScore = math.Min(minScore, ch.score)
		}
		return worst, minScore
	case OccupantWeighted, AreaWeighted:
		values := make([]float64, 0, len(children))
		weights := make([]float64, 0, len(children))
		for _, ch := range children {
			values = append(values, ch.score)
			w := ch.hours
			if c.SpatialMethod == AreaWeighted {
				w = ch.area
			}
			weights = append(weights, w)
		}
		score, ok := weightedMean(values, weights)
		if !ok {
			return standards.CategoryIV, 0
		}
		return c.categoryFromScore(score), score
	default: // SimpleAverage, CriticalSpacesOnly: inclusion differs, not arithmetic
		values := make([]float64, 0, len(children))
		for _, ch := range children {
			values = append(values, ch.score)
		}
		score, ok := simpleMean(values)
		if !ok {
			return standards.CategoryIV, 0
		}
		return c.categoryFromScore(score), score
	}
}

func roomIssues(rooms []*analysis.RoomAnalysis) []string {
	var all []string
	for _, ra := range rooms {
		all = append(all, ra.CriticalIssues...)
	}
	return all
}

func roomRecommendations(rooms []*analysis.RoomAnalysis) []analysis.Recommendation {
	var all []analysis.Recommendation
	for _, ra := range rooms {
		all = append(all, ra.Recommendations...)
	}
	return all
}

// rollupIssues generalizes room-scoped issue texts by stripping the
// "room <id>: " prefix, then dedupes preserving first-seen order.
func rollupIssues(issues []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, is := range issues {
		g := generalizeIssue(is)
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

func generalizeIssue(s string) string {
	if strings.HasPrefix(s, "room ") {
		if i := strings.Index(s, ": "); i >= 0 {
			return s[i+2:]
		}
	}
	return s
}

var priorityRank = map[string]int{"critical": 0, "high": 1, "medium": 2, "low": 3}

// rollupRecommendations groups by title, counts frequency, keeps the top-N
// most frequent, then re-sorts those by priority independent of frequency.
func rollupRecommendations(recs []analysis.Recommendation, n int) []analysis.Recommendation {
	type group struct {
		rec   analysis.Recommendation
		count int
		order int
	}
	groups := map[string]*group{}
	var titles []string
	for i, r := range recs {
		g, ok := groups[r.Title]
		if !ok {
			g = &group{rec: r, order: i}
			groups[r.Title] = g
			titles = append(titles, r.Title)
		}
		g.count++
		if priorityRank[r.Priority] < priorityRank[g.rec.Priority] {
			g.rec.Priority = r.Priority
		}
	}
	sort.SliceStable(titles, func(i, j int) bool {
		gi, gj := groups[titles[i]], groups[titles[j]]
		if gi.count != gj.count {
			return gi.count > gj.count
		}
		return gi.order < gj.order
	})
	if len(titles) > n {
		titles = titles[:n]
	}
	sort.SliceStable(titles, func(i, j int) bool {
		return priorityRank[groups[titles[i]].rec.Priority] < priorityRank[groups[titles[j]].rec.Priority]
	})
	out := make([]analysis.Recommendation, 0, len(titles))
	for _, t := range titles {
		g := groups[t]
		g.rec.Detail = ""
		out = append(out, g.rec)
	}
	return out
}

// Summary returns the stable-keyed serialization contract for downstream
// collaborators.
func (ba *BuildingAnalysis) Summary() map[string]any {
	s := map[string]any{
		"building_id":            ba.BuildingID,
		"status":                 ba.Status,
		"room_ids":               ba.RoomIDs,
		"level_ids":              ba.LevelIDs,
		"room_count":             ba.RoomCount,
		"avg_compliance_rate":    round2(ba.AvgComplianceRate),
		"avg_quality_score":      round2(ba.AvgQualityScore),
		"parameter_categories":   ba.ParameterCategories,
		"parameter_scores":       ba.ParameterScores,
		"test_aggregations":      ba.TestAggregations,
		"parameter_statistics":   ba.ParameterStatistics,
		"best_performing_rooms":  ba.BestRooms,
		"worst_performing_rooms": ba.WorstRooms,
		"critical_issues":        ba.CriticalIssues,
		"recommendations":        ba.Recommendations,
	}
	if ba.BuildingCategory != standards.CategoryNone {
		s["building_category"] = ba.BuildingCategory
	}
	if ba.BuildingIEQScore != nil {
		s["building_ieq_score"] = round2(*ba.BuildingIEQScore)
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
