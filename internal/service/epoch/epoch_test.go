package epoch

import (
	"testing"
	"time"

	"github.com/qdashboard/qdashboard/internal/model"
)

func TestEstimate_KnownEpoch(t *testing.T) {
	p := Estimate(31584874, 84874, 92.080025, 6722)

	if p.InitialTick != 31500000 {
		t.Errorf("InitialTick = %d, want 31500000", p.InitialTick)
	}
	// 84874 * 100 / 92.080025 = 92174.17
	if p.EstimatedTotalTicks != 92174 {
		t.Errorf("EstimatedTotalTicks = %d, want 92174", p.EstimatedTotalTicks)
	}
	if p.RemainingTicks != 7300 {
		t.Errorf("RemainingTicks = %d, want 7300", p.RemainingTicks)
	}
	if p.Percent != 92.080025 {
		t.Errorf("Percent = %v, want 92.080025", p.Percent)
	}
	if p.EstimatedRemaining != 7300*time.Second {
		t.Errorf("EstimatedRemaining = %v, want 7300s", p.EstimatedRemaining)
	}
	if p.EmptyTicks != 6722 {
		t.Errorf("EmptyTicks = %d, want 6722", p.EmptyTicks)
	}
}

func TestEstimate_ClampsQuality(t *testing.T) {
	p := Estimate(1000, 100, 0, 0)
	if p.EstimatedTotalTicks != 10000 {
		t.Errorf("EstimatedTotalTicks = %d, want 10000 (quality clamped to 1)", p.EstimatedTotalTicks)
	}

	p = Estimate(1000, 100, 120, 0)
	if p.Percent != 100 {
		t.Errorf("Percent = %v, want 100", p.Percent)
	}
	if p.RemainingTicks != 0 {
		t.Errorf("RemainingTicks = %d, want 0", p.RemainingTicks)
	}
}

func TestFromStats(t *testing.T) {
	p := FromStats(model.StatsSnapshot{
		CurrentTick:         31584874,
		TicksInCurrentEpoch: 84874,
		EpochTickQuality:    92.080025,
	})
	if p.InitialTick != 31500000 {
		t.Errorf("InitialTick = %d, want 31500000", p.InitialTick)
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{7300 * time.Second, "2h 1m"},
		{3600 * time.Second, "60m"},
		{61 * time.Second, "1m"},
		{60 * time.Second, "60s"},
		{0, "0s"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.d); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
