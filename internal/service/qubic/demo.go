package qubic

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/service/health"
)

const (
	demoTickBase          = 31470000
	demoTickSpread        = 1000
	demoEpoch             = 174
	demoInitialTick       = 31231000
	demoPrice             = 0.000002804
	demoPriceSpread       = 0.0000001
	demoActiveAddresses   = 592605
	demoAddressSpread     = 1000
	demoQuality           = 97.28
	demoQualitySpread     = 0.5
	demoCirculatingSupply = 154906810258577
	demoBurnedQus         = 19093189741423
)

// Demo generates synthetic snapshots in the ranges of a live epoch.
type Demo struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewDemo(seed uint64) *Demo {
	return &Demo{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func (d *Demo) Tick() model.TickSnapshot {
	d.mu.Lock()
	tick := int64(demoTickBase + d.rng.IntN(demoTickSpread))
	duration := float64(d.rng.IntN(3))
	d.mu.Unlock()

	return model.TickSnapshot{
		Tick:        tick,
		Epoch:       demoEpoch,
		Duration:    duration,
		InitialTick: demoInitialTick,
		Timestamp:   d.now().Unix(),
		Health: model.HealthStatus{
			Overall:        model.StatusHealthy,
			TickStatus:     model.StatusNormal,
			EpochStatus:    model.StatusNormal,
			DurationStatus: health.DurationStatus(duration),
		},
	}
}

func (d *Demo) Stats() model.StatsSnapshot {
	d.mu.Lock()
	price := demoPrice + (d.rng.Float64()-0.5)*demoPriceSpread
	active := demoActiveAddresses + int64(math.Floor((d.rng.Float64()-0.5)*demoAddressSpread))
	quality := demoQuality + (d.rng.Float64()-0.5)*demoQualitySpread
	tick := int64(demoTickBase + d.rng.IntN(demoTickSpread))
	d.mu.Unlock()

	return model.StatsSnapshot{
		ActiveAddresses:     active,
		MarketCap:           int64(math.Floor(price * demoCirculatingSupply)),
		Price:               price,
		EpochTickQuality:    quality,
		CirculatingSupply:   demoCirculatingSupply,
		BurnedQus:           demoBurnedQus,
		Timestamp:           d.now().Unix(),
		Epoch:               demoEpoch,
		CurrentTick:         tick,
		TicksInCurrentEpoch: tick - demoInitialTick,
	}
}
