// v1
// cmd/compliance/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/compliance/internal/api"
	"github.com/your-org/compliance/internal/cache"
	"github.com/your-org/compliance/internal/config"
	"github.com/your-org/compliance/internal/logging"
	"github.com/your-org/compliance/internal/observability"
	"github.com/your-org/compliance/internal/publish"
)

func main() {
	lg, err := logging.New()
	if err != nil {
		panic(err)
	}
	defer lg.Close()
	log := lg.Logger

	cfg := config.FromEnv()
	log.Info("config loaded", "bind", cfg.BindAddr, "cacheTTL", cfg.CacheTTL, "workers", cfg.Workers, "brokers", len(cfg.KafkaBrokers))

	metrics := observability.NewMetrics()
	pub := publish.New(log, cfg.KafkaBrokers, cfg.ResultsTopic)
	defer pub.Close()

	h := &api.Handlers{
		Log:            log,
		Cache:          cache.New[map[string]any](cfg.CacheTTL, metrics),
		Workers:        cfg.Workers,
		RankingSize:    cfg.RankingSize,
		DefaultCountry: cfg.HolidayCountry,
		Obs:            metrics,
		Pub:            pub,
		BatchObserver:  metrics.ObserveBatch,
	}

	srv := api.NewServer(cfg.BindAddr, log, api.NewRouter(h, metrics.Handler(), metrics.WrapHandler))

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", "err", err)
		}
	}()
	log.Info("compliance service started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("shutdown error", "err", err)
	}
	log.Info("compliance service stopped")
}
