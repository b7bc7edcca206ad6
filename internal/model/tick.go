package model

// Health status keys. They are translated by the label catalog, never shown raw.
const (
	StatusHealthy      = "healthy"
	StatusNormal       = "normal"
	StatusAttention    = "attention"
	StatusVeryFast     = "very_fast"
	StatusFast         = "fast"
	StatusSlightlySlow = "slightly_slow"
	StatusAbnormal     = "abnormal"
	StatusOffline      = "offline"
	StatusError        = "error"
	StatusUnknown      = "unknown"
)

type HealthStatus struct {
	Overall        string `json:"overall"`
	TickStatus     string `json:"tick_status"`
	EpochStatus    string `json:"epoch_status"`
	DurationStatus string `json:"duration_status"`
}

// TickSnapshot is produced once per fast poll and replaced, not mutated, by the next one.
type TickSnapshot struct {
	Tick        int64        `json:"tick"`
	Epoch       int64        `json:"epoch"`
	Duration    float64      `json:"duration"`
	InitialTick int64        `json:"initialTick"`
	Timestamp   int64        `json:"timestamp"`
	Health      HealthStatus `json:"health"`
}
