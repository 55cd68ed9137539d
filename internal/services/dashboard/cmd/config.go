package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort     string
	GRPCPort     string
	LogLevel     string
	OTLPEndpoint string

	SimInterval  time.Duration
	SimAutostart bool
	SeedDemoData bool
	PrefsPath    string
	DedupTTL     time.Duration
	DedupMax     int

	ShutdownTimeout time.Duration
}

// ====== Tunables ======
func loadConfig() Config {
	// optional .env, the environment wins over it
	_ = godotenv.Load()

	return Config{
		HTTPPort:     getenv("HTTP_PORT", "8080"),
		GRPCPort:     getenv("GRPC_PORT", "50051"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		SimInterval:  getenvDuration("SIM_INTERVAL", 5*time.Second),
		SimAutostart: getenvBool("SIM_AUTOSTART", false),
		SeedDemoData: getenvBool("SEED_DEMO_DATA", true),
		PrefsPath:    getenv("PREFS_PATH", "data/preferences.json"),
		DedupTTL:     getenvDuration("DEDUP_TTL", 2*time.Minute),
		DedupMax:     getenvInt("DEDUP_MAX", 10000),

		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// ===== Helpers =====
func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			return dur
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}
