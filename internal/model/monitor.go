package model

import "time"

type ConnectionState string

const (
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionLiveDemo     ConnectionState = "live-demo"
	ConnectionLiveReal     ConnectionState = "live-real"
	ConnectionDisconnected ConnectionState = "disconnected"
)

// PollerState mirrors the persisted poller_state row and the coordinator's
// in-memory status.
type PollerState struct {
	IsRunning     bool            `json:"is_running"`
	Connection    ConnectionState `json:"connection"`
	TickCycles    int64           `json:"tick_cycles"`
	StatsCycles   int64           `json:"stats_cycles"`
	TickFailures  int64           `json:"tick_failures"`
	StatsFailures int64           `json:"stats_failures"`
	LastTickAt    *time.Time      `json:"last_tick_at"`
	LastStatsAt   *time.Time      `json:"last_stats_at"`
	LastError     string          `json:"last_error,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ArchivedTick is a TickSnapshot row read back from the archive.
type ArchivedTick struct {
	ID int64 `json:"id"`
	TickSnapshot
	RecordedAt time.Time `json:"recorded_at"`
}

// ArchivedStats is a StatsSnapshot row read back from the archive.
type ArchivedStats struct {
	ID int64 `json:"id"`
	StatsSnapshot
	RecordedAt time.Time `json:"recorded_at"`
}
