// v1
// internal/api/handlers.go
package api

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/your-org/compliance/internal/aggregation"
	"github.com/your-org/compliance/internal/cache"
	"github.com/your-org/compliance/internal/compliance"
	"github.com/your-org/compliance/internal/engine"
	"github.com/your-org/compliance/internal/publish"
)

const maxBodyBytes = 32 << 20

// AggregationOptions is the wire form of aggregation.Config. Predicates are
// expressed as data: a parameter allow-list; room inclusion follows the
// spatial method.
type AggregationOptions struct {
	ParameterMethod    string             `json:"parameterMethod,omitempty"`
	SpatialMethod      string             `json:"spatialMethod,omitempty"`
	Category1Threshold *float64           `json:"category1Threshold,omitempty"`
	Category2Threshold *float64           `json:"category2Threshold,omitempty"`
	Category3Threshold *float64           `json:"category3Threshold,omitempty"`
	ParameterWeights   map[string]float64 `json:"parameterWeights,omitempty"`
	IncludeParameters  []string           `json:"includeParameters,omitempty"`
	RankingSize        int                `json:"rankingSize,omitempty"`
}

type analyzeRequest struct {
	engine.BatchInput
	Aggregation *AggregationOptions       `json:"aggregation,omitempty"`
	Severity    *compliance.SeverityBands `json:"severityBands,omitempty"`
}

// Handlers serves the analysis API. Everything downstream of decode is the
// engine's pure batch evaluation.
type Handlers struct {
	Log            *slog.Logger
	Cache          *cache.Cache[map[string]any]
	Workers        int
	RankingSize    int
	DefaultCountry string
	Obs            engine.Observer
	Pub            *publish.Publisher
	BatchObserver  func(time.Duration)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.Log.Info("health check", "path", "/health")
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "ts": time.Now().UTC()})
}

// AnalyzePortfolio runs one full batch: rooms -> buildings -> portfolio.
// Identical payloads within the cache TTL are served from cache.
func (h *Handlers) AnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.badRequest(w, "unreadable body")
		return
	}
	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.badRequest(w, fmt.Sprintf("invalid payload: %v", err))
		return
	}
	if req.PortfolioID == "" {
		h.badRequest(w, "portfolioId is required")
		return
	}
	cfg, err := h.buildConfig(req.Aggregation)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if req.Country == "" {
		req.Country = h.DefaultCountry
	}

	key := cacheKey(body)
	if v, ok := h.Cache.Get(key); ok {
		h.Log.Info("cache hit", "endpoint", "analyze", "portfolioId", req.PortfolioID)
		writeJSON(w, http.StatusOK, v)
		return
	}

	bands := compliance.DefaultSeverityBands()
	if req.Severity != nil {
		bands = *req.Severity
	}
	eng := engine.New(cfg, bands, h.Log, h.Workers, h.Obs)

	start := time.Now()
	res := eng.Run(r.Context(), req.BatchInput)
	if h.BatchObserver != nil {
		h.BatchObserver(time.Since(start))
	}

	resp := h.composeResponse(res)
	h.Cache.Set(key, resp)
	h.Log.Info("portfolio analyzed", "runId", res.RunID, "portfolioId", req.PortfolioID, "rooms", res.Succeeded+res.Failed, "failed", res.Failed, "took", time.Since(start))

	h.publishResults(r.Context(), res)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) composeResponse(res *engine.BatchResult) map[string]any {
	buildings := make([]map[string]any, 0, len(res.Buildings))
	for _, ba := range res.Buildings {
		buildings = append(buildings, ba.Summary())
	}
	rooms := make([]map[string]any, 0, len(res.Rooms))
	for _, o := range res.Rooms {
		if o.Err != nil {
			rooms = append(rooms, map[string]any{"room_id": o.RoomID, "status": "dropped", "reason": o.Err.Error()})
			continue
		}
		rooms = append(rooms, o.Analysis.Summary())
	}
	return map[string]any{
		"run_id":          res.RunID,
		"portfolio":       res.Portfolio.Summary(),
		"buildings":       buildings,
		"rooms":           rooms,
		"rooms_succeeded": res.Succeeded,
		"rooms_failed":    res.Failed,
	}
}

// publishResults is best-effort; the HTTP response never depends on it.
func (h *Handlers) publishResults(ctx context.Context, res *engine.BatchResult) {
	if h.Pub == nil {
		return
	}
	for _, ba := range res.Buildings {
		_ = h.Pub.Publish(ctx, res.RunID, "building", ba.BuildingID, ba.Summary())
	}
	_ = h.Pub.Publish(ctx, res.RunID, "portfolio", res.Portfolio.PortfolioID, res.Portfolio.Summary())
}

func (h *Handlers) buildConfig(opts *AggregationOptions) (aggregation.Config, error) {
	cfg := aggregation.DefaultConfig()
	cfg.RankingSize = h.RankingSize
	if opts == nil {
		return cfg, nil
	}
	if opts.ParameterMethod != "" {
		switch m := aggregation.ParameterMethod(opts.ParameterMethod); m {
		case aggregation.WorstParameter, aggregation.WeightedAverage:
			cfg.ParameterMethod = m
		default:
			return cfg, fmt.Errorf("unknown parameterMethod %q", opts.ParameterMethod)
		}
	}
	if opts.SpatialMethod != "" {
		switch m := aggregation.SpatialMethod(opts.SpatialMethod); m {
		case aggregation.WorstSpace, aggregation.OccupantWeighted, aggregation.AreaWeighted,
			aggregation.SimpleAverage, aggregation.CriticalSpacesOnly:
			cfg.SpatialMethod = m
		default:
			return cfg, fmt.Errorf("unknown spatialMethod %q", opts.SpatialMethod)
		}
	}
	if opts.Category1Threshold != nil {
		cfg.Category1Threshold = *opts.Category1Threshold
	}
	if opts.Category2Threshold != nil {
		cfg.Category2Threshold = *opts.Category2Threshold
	}
	if opts.Category3Threshold != nil {
		cfg.Category3Threshold = *opts.Category3Threshold
	}
	if !(cfg.Category1Threshold > cfg.Category2Threshold && cfg.Category2Threshold > cfg.Category3Threshold) {
		return cfg, fmt.Errorf("category thresholds must be strictly descending")
	}
	if opts.ParameterWeights != nil {
		cfg.ParameterWeights = opts.ParameterWeights
	}
	if len(opts.IncludeParameters) > 0 {
		allowed := make(map[string]bool, len(opts.IncludeParameters))
		for _, p := range opts.IncludeParameters {
			allowed[p] = true
		}
		cfg.IncludeParameter = func(p string) bool { return allowed[p] }
	}
	if opts.RankingSize > 0 {
		cfg.RankingSize = opts.RankingSize
	}
	return cfg, nil
}

func cacheKey(body []byte) string {
	sum := sha1.Sum(body)
	return hex.EncodeToString(sum[:])
}

func (h *Handlers) badRequest(w http.ResponseWriter, msg string) {
	h.Log.Warn("bad request", "error", msg)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
