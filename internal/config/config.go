// v1
// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries runtime settings (mostly via env).
type Config struct {
	BindAddr       string        // e.g. ":8087"
	CacheTTL       time.Duration // analysis response cache
	Workers        int           // room evaluation worker pool size
	HolidayCountry string        // default ISO code when requests omit one
	KafkaBrokers   []string      // empty disables the results publisher
	ResultsTopic   string
	RankingSize    int // best/worst list length
}

// FromEnv reads env vars and applies defaults.
func FromEnv() Config {
	return Config{
		BindAddr:       envStr("COMPLIANCE_BIND_ADDR", ":8087"),
		CacheTTL:       envDuration("CACHE_TTL", 30*time.Second),
		Workers:        envInt("COMPLIANCE_WORKERS", 4),
		HolidayCountry: envStr("HOLIDAY_COUNTRY", ""),
		KafkaBrokers:   envList("KAFKA_BROKERS"),
		ResultsTopic:   envStr("RESULTS_TOPIC", "compliance.results"),
		RankingSize:    envInt("RANKING_SIZE", 5),
	}
}

func envStr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func envList(k string) []string {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
