package health

import (
	"math"

	"github.com/qdashboard/qdashboard/internal/model"
)

// DurationSeconds rounds a tick duration up to whole seconds.
func DurationSeconds(d float64) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d))
}

// DurationStatus maps a tick duration to a status key.
func DurationStatus(d float64) string {
	switch s := DurationSeconds(d); {
	case s == 0:
		return model.StatusVeryFast
	case s == 1:
		return model.StatusFast
	case s == 2:
		return model.StatusNormal
	case s <= 3:
		return model.StatusSlightlySlow
	default:
		return model.StatusAbnormal
	}
}

// OverallFromQuality classifies the network from the epoch tick quality.
func OverallFromQuality(quality float64) string {
	switch {
	case quality > 95:
		return model.StatusHealthy
	case quality > 90:
		return model.StatusNormal
	default:
		return model.StatusAttention
	}
}

// OverallFromTick classifies the network when no quality figure is known.
func OverallFromTick(tick int64, d float64) string {
	if tick <= 0 {
		return model.StatusAttention
	}
	switch s := DurationSeconds(d); {
	case s <= 2:
		return model.StatusHealthy
	case s <= 3:
		return model.StatusNormal
	default:
		return model.StatusAttention
	}
}

// Classify derives a full HealthStatus. A quality <= 0 means unknown and
// falls back to tick/duration rules.
func Classify(tick int64, d float64, quality float64) model.HealthStatus {
	overall := OverallFromTick(tick, d)
	if quality > 0 {
		overall = OverallFromQuality(quality)
	}

	tickStatus := model.StatusNormal
	if tick <= 0 {
		tickStatus = model.StatusAbnormal
	}

	return model.HealthStatus{
		Overall:        overall,
		TickStatus:     tickStatus,
		EpochStatus:    model.StatusNormal,
		DurationStatus: DurationStatus(d),
	}
}

// Offline is reported when no data could be fetched at all.
func Offline() model.HealthStatus {
	return model.HealthStatus{
		Overall:        model.StatusOffline,
		TickStatus:     model.StatusOffline,
		EpochStatus:    model.StatusOffline,
		DurationStatus: model.StatusOffline,
	}
}
