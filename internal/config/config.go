package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort       string
	APIBaseURL       string
	DatabaseURL      string
	QubicRPCURL      string
	TickInterval     time.Duration
	StatsInterval    time.Duration
	RequestTimeout   time.Duration
	RPCCacheDuration time.Duration
	HistorySize      int
	DemoFallback     bool
	AutoStart        bool
	Language         string
	CORSAllowOrigin  string
}

// Load reads the process environment. A .env file in the working directory,
// if present, fills in variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "3000")
	tick := getDuration("TICK_INTERVAL", 5*time.Second)

	return &Config{
		ServerPort:       port,
		APIBaseURL:       apiBaseURL(port),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		QubicRPCURL:      getEnv("QUBIC_RPC_URL", "https://rpc.qubic.org/v1"),
		TickInterval:     tick,
		StatsInterval:    getDuration("STATS_INTERVAL", 6*tick),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 10*time.Second),
		RPCCacheDuration: getDuration("RPC_CACHE_DURATION", 2*time.Second),
		HistorySize:      getInt("HISTORY_SIZE", 20),
		DemoFallback:     getBool("DEMO_FALLBACK", true),
		AutoStart:        getBool("AUTO_START", true),
		Language:         getEnv("DASHBOARD_LANGUAGE", "zh-tw"),
		CORSAllowOrigin:  getEnv("CORS_ALLOW_ORIGIN", "http://localhost:3000"),
	}
}

// apiBaseURL defaults to this server's own Qubic proxy. "demo" or "none"
// disables the backend entirely.
func apiBaseURL(port string) string {
	v, ok := os.LookupEnv("API_BASE_URL")
	if !ok || v == "" {
		return "http://127.0.0.1:" + port + "/api/v1/qubic"
	}
	switch strings.ToLower(v) {
	case "demo", "none":
		return ""
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}
