// v1
// internal/aggregation/portfolio.go
package aggregation

import (
	"log/slog"
	"sort"

	"github.com/your-org/compliance/internal/analysis"
	"github.com/your-org/compliance/internal/standards"
)

// RankedBuilding is one entry of a portfolio best/worst ranking.
type RankedBuilding struct {
	BuildingID string  `json:"buildingId"`
	Rate       float64 `json:"avgComplianceRate"`
	RoomCount  int     `json:"roomCount"`
}

// CommonIssue is an issue text observed in more than one building.
type CommonIssue struct {
	Text      string `json:"text"`
	Buildings int    `json:"affectedBuildings"`
}

// PortfolioAnalysis is the top-level rollup. Averages are weighted by each
// building's room count, so a ten-room building moves the portfolio ten
// times as much as a single-room one.
type PortfolioAnalysis struct {
	PortfolioID string
	Name        string
	Status      string

	BuildingIDs   []string
	BuildingCount int
	RoomCount     int

	AvgComplianceRate float64
	AvgQualityScore   float64

	// PortfolioCategory is informational, derived from the room-weighted
	// mean of building IEQ scores when strategies were applied.
	PortfolioCategory standards.Category
	PortfolioIEQScore *float64

	BestBuildings  []RankedBuilding
	WorstBuildings []RankedBuilding

	CommonIssues    []CommonIssue
	Recommendations []analysis.Recommendation
}

// PortfolioAggregator reduces building analyses one level up.
type PortfolioAggregator struct {
	cfg Config
	log *slog.Logger
}

func NewPortfolioAggregator(cfg Config, log *slog.Logger) *PortfolioAggregator {
	if log == nil {
		log = slog.Default()
	}
	return &PortfolioAggregator{cfg: cfg, log: log}
}

// Aggregate rolls buildings into a portfolio. Empty input produces a FAILED
// analysis, never an error. Buildings that themselves failed still count as
// members but contribute no rooms to the weighting.
func (p *PortfolioAggregator) Aggregate(portfolioID, name string, buildings []*BuildingAnalysis) *PortfolioAnalysis {
	pa := &PortfolioAnalysis{
		PortfolioID: portfolioID,
		Name:        name,
		Status:      StatusCompleted,
	}
	if len(buildings) == 0 {
		pa.Status = StatusFailed
		pa.CommonIssues = []CommonIssue{{Text: "No building analyses available", Buildings: 0}}
		p.log.Warn("portfolio aggregation with no buildings", "portfolioId", portfolioID)
		return pa
	}

	var rateSum, qualSum, scoreSum, weightSum float64
	scored := 0
	for _, ba := range buildings {
		pa.BuildingIDs = append(pa.BuildingIDs, ba.BuildingID)
		pa.RoomCount += ba.RoomCount
		w := float64(ba.RoomCount)
		rateSum += ba.AvgComplianceRate * w
		qualSum += ba.AvgQualityScore * w
		if ba.BuildingIEQScore != nil {
			scoreSum += *ba.BuildingIEQScore * w
			scored++
		}
		weightSum += w
	}
	pa.BuildingCount = len(buildings)
	pa.AvgComplianceRate = portfolioMean(rateSum, weightSum, buildings, func(b *BuildingAnalysis) float64 { return b.AvgComplianceRate })
	pa.AvgQualityScore = portfolioMean(qualSum, weightSum, buildings, func(b *BuildingAnalysis) float64 { return b.AvgQualityScore })

	if scored == len(buildings) && weightSum > 0 {
		score := scoreSum / weightSum
		pa.PortfolioIEQScore = &score
		pa.PortfolioCategory = p.cfg.categoryFromScore(score)
	}

	pa.BestBuildings, pa.WorstBuildings = p.rankBuildings(buildings)
	pa.CommonIssues = commonIssues(buildings)
	var recs []analysis.Recommendation
	for _, ba := range buildings {
		recs = append(recs, ba.Recommendations...)
	}
	pa.Recommendations = rollupRecommendations(recs, p.cfg.rankingSize())
	return pa
}

// portfolioMean is the room-count-weighted average, falling back to the
// unweighted building mean when every building reports zero rooms.
func portfolioMean(weightedSum, weightSum float64, buildings []*BuildingAnalysis, val func(*BuildingAnalysis) float64) float64 {
	if weightSum > 0 {
		return weightedSum / weightSum
	}
	var sum float64
	for _, b := range buildings {
		sum += val(b)
	}
	return sum / float64(len(buildings))
}

func (p *PortfolioAggregator) rankBuildings(buildings []*BuildingAnalysis) (best, worst []RankedBuilding) {
	n := p.cfg.rankingSize()
	ranked := make([]RankedBuilding, 0, len(buildings))
	for _, ba := range buildings {
		ranked = append(ranked, RankedBuilding{BuildingID: ba.BuildingID, Rate: ba.AvgComplianceRate, RoomCount: ba.RoomCount})
	}
	desc := append([]RankedBuilding(nil), ranked...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Rate > desc[j].Rate })
	asc := append([]RankedBuilding(nil), ranked...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Rate < asc[j].Rate })
	if len(desc) > n {
		desc = desc[:n]
	}
	if len(asc) > n {
		asc = asc[:n]
	}
	return desc, asc
}

// commonIssues surfaces issue texts appearing in more than one building,
// annotated with the affected-building count, most widespread first.
func commonIssues(buildings []*BuildingAnalysis) []CommonIssue {
	counts := map[string]int{}
	var order []string
	for _, ba := range buildings {
		seen := map[string]bool{}
		for _, is := range ba.CriticalIssues {
			if seen[is] {
				continue
			}
			seen[is] = true
			if counts[is] == 0 {
				order = append(order, is)
			}
			counts[is]++
		}
	}
	var out []CommonIssue
	for _, is := range order {
		if counts[is] > 1 {
			out = append(out, CommonIssue{Text: is, Buildings: counts[is]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Buildings > out[j].Buildings })
	return out
}

// Summary returns the stable-keyed serialization contract for downstream
// collaborators.
func (pa *PortfolioAnalysis) Summary() map[string]any {
	s := map[string]any{
		"portfolio_id":               pa.PortfolioID,
		"portfolio_name":             pa.Name,
		"status":                     pa.Status,
		"building_ids":               pa.BuildingIDs,
		"building_count":             pa.BuildingCount,
		"room_count":                 pa.RoomCount,
		"avg_compliance_rate":        round2(pa.AvgComplianceRate),
		"avg_quality_score":          round2(pa.AvgQualityScore),
		"best_performing_buildings":  pa.BestBuildings,
		"worst_performing_buildings": pa.WorstBuildings,
		"common_issues":              pa.CommonIssues,
		"recommendations":            pa.Recommendations,
	}
	if pa.PortfolioCategory != standards.CategoryNone {
		s["portfolio_category"] = pa.PortfolioCategory
	}
	if pa.PortfolioIEQScore != nil {
		s["portfolio_ieq_score"] = round2(*pa.PortfolioIEQScore)
	}
	return s
}
