package qubicrpc

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/service/health"
)

// DefaultCacheDuration is how long one RPC response is reused.
const DefaultCacheDuration = 2 * time.Second

type statsFetcher interface {
	LatestStats(ctx context.Context) (*LatestStats, error)
}

// Status describes the RPC side of the backend.
type Status struct {
	Available   bool       `json:"available"`
	LastError   string     `json:"last_error,omitempty"`
	LastFetchAt *time.Time `json:"last_fetch_at"`
	Tick        int64      `json:"tick"`
	Duration    float64    `json:"duration"`
}

// Source turns RPC statistics into tick and stats snapshots. It caches the
// last response and tracks how long ticks take between observed advances.
type Source struct {
	rpc      statsFetcher
	cacheFor time.Duration
	now      func() time.Time

	mu          sync.Mutex
	cached      *LatestStats
	fetchedAt   time.Time
	lastErr     error
	lastTick    int64
	lastAdvance time.Time
	duration    float64
}

func NewSource(rpc statsFetcher, cacheFor time.Duration) *Source {
	if cacheFor <= 0 {
		cacheFor = DefaultCacheDuration
	}
	return &Source{rpc: rpc, cacheFor: cacheFor, now: time.Now}
}

// Tick returns the current tick snapshot with derived duration and health.
func (s *Source) Tick(ctx context.Context) (model.TickSnapshot, error) {
	ls, duration, err := s.latest(ctx)
	if err != nil {
		return model.TickSnapshot{}, err
	}

	tick := ls.CurrentTick.IntPart()
	return model.TickSnapshot{
		Tick:        tick,
		Epoch:       ls.Epoch.IntPart(),
		Duration:    duration,
		InitialTick: tick - ls.TicksInCurrentEpoch.IntPart(),
		Timestamp:   s.timestamp(ls),
		Health:      health.Classify(tick, duration, ls.EpochTickQuality.InexactFloat64()),
	}, nil
}

// Stats returns the current statistics snapshot.
func (s *Source) Stats(ctx context.Context) (model.StatsSnapshot, error) {
	ls, _, err := s.latest(ctx)
	if err != nil {
		return model.StatsSnapshot{}, err
	}

	return model.StatsSnapshot{
		ActiveAddresses:          ls.ActiveAddresses.IntPart(),
		MarketCap:                ls.MarketCap.IntPart(),
		Price:                    ls.Price.InexactFloat64(),
		EpochTickQuality:         ls.EpochTickQuality.InexactFloat64(),
		CirculatingSupply:        ls.CirculatingSupply.IntPart(),
		BurnedQus:                ls.BurnedQus.IntPart(),
		Timestamp:                s.timestamp(ls),
		Epoch:                    ls.Epoch.IntPart(),
		CurrentTick:              ls.CurrentTick.IntPart(),
		TicksInCurrentEpoch:      ls.TicksInCurrentEpoch.IntPart(),
		EmptyTicksInCurrentEpoch: ls.EmptyTicksInCurrentEpoch.IntPart(),
	}, nil
}

func (s *Source) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Available: s.cached != nil && s.lastErr == nil,
		Tick:      s.lastTick,
		Duration:  s.duration,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if !s.fetchedAt.IsZero() {
		at := s.fetchedAt
		st.LastFetchAt = &at
	}
	return st
}

func (s *Source) latest(ctx context.Context) (*LatestStats, float64, error) {
	s.mu.Lock()
	if s.cached != nil && s.lastErr == nil && s.now().Sub(s.fetchedAt) < s.cacheFor {
		ls, d := s.cached, s.duration
		s.mu.Unlock()
		return ls, d, nil
	}
	s.mu.Unlock()

	// The RPC call runs unlocked so Status never waits on the network.
	ls, err := s.rpc.LatestStats(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return nil, 0, err
	}
	now := s.now()
	s.cached = ls
	s.fetchedAt = now
	s.lastErr = nil
	s.observe(ls.CurrentTick.IntPart(), now)
	return ls, s.duration, nil
}

// observe updates the per-tick duration. The first observation counts as one
// second; after that the elapsed time since the last advance is spread over
// the ticks that advanced and rounded up. A stalled tick keeps growing the
// duration until the tick moves again.
func (s *Source) observe(tick int64, now time.Time) {
	switch {
	case s.lastAdvance.IsZero():
		s.duration = 1
		s.lastTick = tick
		s.lastAdvance = now
	case tick > s.lastTick:
		per := now.Sub(s.lastAdvance).Seconds() / float64(tick-s.lastTick)
		s.duration = math.Ceil(per)
		s.lastTick = tick
		s.lastAdvance = now
	default:
		s.duration = math.Max(s.duration, math.Ceil(now.Sub(s.lastAdvance).Seconds()))
	}
}

func (s *Source) timestamp(ls *LatestStats) int64 {
	if ts := ls.Timestamp.IntPart(); ts > 0 {
		return ts
	}
	return s.now().Unix()
}
