// v1
// internal/api/router.go
package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter wires the analysis endpoints behind gorilla logging and
// recovery middleware. The metrics handler is mounted unwrapped so scrapes
// do not inflate the request counters.
func NewRouter(h *Handlers, metricsHandler http.Handler, wrap func(route string, next http.Handler) http.Handler) http.Handler {
	r := mux.NewRouter()

	if wrap == nil {
		wrap = func(_ string, next http.Handler) http.Handler { return next }
	}
	r.Handle("/health", wrap("health", http.HandlerFunc(h.Health))).Methods(http.MethodGet)
	r.Handle("/analyze/portfolio", wrap("analyze", http.HandlerFunc(h.AnalyzePortfolio))).Methods(http.MethodPost)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	return handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, r))
}
