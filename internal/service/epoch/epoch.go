// Package epoch estimates epoch completion from the tick quality figure.
//
// The total epoch length is extrapolated as ticksInEpoch × 100 / quality and
// the quality percentage itself doubles as the progress indicator.
package epoch

import (
	"fmt"
	"math"
	"time"

	"github.com/qdashboard/qdashboard/internal/model"
)

// SecondsPerTick is the assumed wall-clock cost of one tick.
const SecondsPerTick = 1

type Progress struct {
	InitialTick         int64         `json:"initial_tick"`
	CurrentTick         int64         `json:"current_tick"`
	TicksInEpoch        int64         `json:"ticks_in_epoch"`
	EmptyTicks          int64         `json:"empty_ticks"`
	EstimatedTotalTicks int64         `json:"estimated_total_ticks"`
	RemainingTicks      int64         `json:"remaining_ticks"`
	Percent             float64       `json:"percent"`
	EstimatedRemaining  time.Duration `json:"estimated_remaining"`
}

// Estimate computes epoch progress. Quality below 1 is clamped to 1 so the
// extrapolation never divides by zero.
func Estimate(currentTick, ticksInEpoch int64, quality float64, emptyTicks int64) Progress {
	total := int64(math.Round(float64(ticksInEpoch) * (100 / math.Max(quality, 1))))
	remaining := max(0, total-ticksInEpoch)

	return Progress{
		InitialTick:         currentTick - ticksInEpoch,
		CurrentTick:         currentTick,
		TicksInEpoch:        ticksInEpoch,
		EmptyTicks:          emptyTicks,
		EstimatedTotalTicks: total,
		RemainingTicks:      remaining,
		Percent:             math.Min(quality, 100),
		EstimatedRemaining:  time.Duration(remaining*SecondsPerTick) * time.Second,
	}
}

// FromStats is Estimate applied to a stats snapshot.
func FromStats(s model.StatsSnapshot) Progress {
	return Estimate(s.CurrentTick, s.TicksInCurrentEpoch, s.EpochTickQuality, s.EmptyTicksInCurrentEpoch)
}

// FormatRemaining renders a remaining duration as "2h 1m", "45m" or "30s".
func FormatRemaining(d time.Duration) string {
	secs := int64(d / time.Second)
	switch {
	case secs > 3600:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	case secs > 60:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
