// Package dashboard runs the two polling loops that keep the dashboard fresh.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qdashboard/qdashboard/internal/chart"
	"github.com/qdashboard/qdashboard/internal/eventbus"
	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/service/epoch"
	"github.com/qdashboard/qdashboard/internal/service/health"
	"github.com/qdashboard/qdashboard/internal/service/metrics"
)

var ErrAlreadyRunning = errors.New("dashboard already running")

const (
	DefaultTickInterval = 5 * time.Second
	statsMultiplier     = 6

	tickLabelLayout  = "15:04:05"
	priceLabelLayout = "15:04"
)

type apiClient interface {
	FetchTick(ctx context.Context) (model.TickSnapshot, error)
	FetchStats(ctx context.Context) (model.StatsSnapshot, error)
	Demo() bool
	DemoTick() model.TickSnapshot
	DemoStats() model.StatsSnapshot
}

type renderer interface {
	RenderMetrics(t model.TickSnapshot)
	RenderStats(cur, prev *model.StatsSnapshot)
	ClearStatsDeltas()
	RenderHealth(h model.HealthStatus)
	RenderConnectionStatus(state model.ConnectionState)
	RenderEpochProgress(p epoch.Progress)
	RenderEpochUnavailable()
	RenderLastUpdate(t time.Time)
}

type chartSink interface {
	PushPoint(seriesID, label string, value float64)
	Redraw(seriesID string)
}

type publisher interface {
	Publish(topic eventbus.Topic, payload any)
}

type stateStore interface {
	Save(ctx context.Context, state *model.PollerState) error
	SetRunning(ctx context.Context, running bool) error
	SetError(ctx context.Context, errMsg string) error
}

type Options struct {
	// TickInterval is the fast loop period. The stats loop runs every
	// six tick intervals unless StatsInterval is set.
	TickInterval  time.Duration
	StatsInterval time.Duration
	// DemoFallback renders synthetic data when a fetch fails instead of
	// switching to disconnected.
	DemoFallback bool
}

// Coordinator drives ApiClient -> MetricsStore -> renderer and charts on two
// independent timers.
type Coordinator struct {
	api    apiClient
	store  *metrics.Store
	view   renderer
	charts chartSink
	bus    publisher
	state  stateStore
	opts   Options
	now    func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	tickBusy  atomic.Bool
	statsBusy atomic.Bool

	dataMu    sync.RWMutex
	current   *model.TickSnapshot
	prevStats *model.StatsSnapshot
	status    model.PollerState
}

// New builds a coordinator. bus and state may be nil.
func New(
	api apiClient,
	store *metrics.Store,
	view renderer,
	charts chartSink,
	bus publisher,
	state stateStore,
	opts Options,
) *Coordinator {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = opts.TickInterval * statsMultiplier
	}
	return &Coordinator{
		api:    api,
		store:  store,
		view:   view,
		charts: charts,
		bus:    bus,
		state:  state,
		opts:   opts,
		now:    time.Now,
		status: model.PollerState{Connection: model.ConnectionConnecting},
	}
}

// Start refreshes tick and stats once and then keeps both loops running until
// Stop. The loops use a context detached from ctx so they outlive the
// request that started them.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.dataMu.Lock()
	c.status.IsRunning = true
	c.status.Connection = model.ConnectionConnecting
	c.status.UpdatedAt = c.now()
	c.dataMu.Unlock()

	if c.state != nil {
		if err := c.state.SetRunning(ctx, true); err != nil {
			slog.Warn("failed to persist poller running flag", "error", err)
		}
	}

	c.view.RenderConnectionStatus(model.ConnectionConnecting)

	c.wg.Add(2)
	go c.loop(runCtx, "tick", c.opts.TickInterval, c.RefreshTick)
	go c.loop(runCtx, "stats", c.opts.StatsInterval, c.RefreshStats)
	return nil
}

// Stop cancels both loops and waits for them to exit. Calling it when the
// coordinator is not running is a no-op.
func (c *Coordinator) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil {
		return nil
	}
	c.cancel()
	c.cancel = nil
	c.wg.Wait()

	c.dataMu.Lock()
	c.status.IsRunning = false
	c.status.UpdatedAt = c.now()
	c.dataMu.Unlock()

	if c.state != nil {
		dbCtx, dbCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dbCancel()
		if err := c.state.SetRunning(dbCtx, false); err != nil {
			slog.Warn("failed to persist poller running flag", "error", err)
		}
	}
	slog.Info("dashboard polling stopped")
	return nil
}

func (c *Coordinator) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// CurrentData returns the latest tick snapshot, if any.
func (c *Coordinator) CurrentData() (model.TickSnapshot, bool) {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	if c.current == nil {
		return model.TickSnapshot{}, false
	}
	return *c.current, true
}

// PreviousStats returns the stats snapshot kept for percentage deltas.
func (c *Coordinator) PreviousStats() (model.StatsSnapshot, bool) {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	if c.prevStats == nil {
		return model.StatsSnapshot{}, false
	}
	return *c.prevStats, true
}

func (c *Coordinator) Status() model.PollerState {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()
	return copyState(c.status)
}

func (c *Coordinator) loop(ctx context.Context, name string, interval time.Duration, refresh func(context.Context) bool) {
	defer c.wg.Done()
	slog.Info("poll loop started", "loop", name, "interval", interval)

	c.safeRefresh(ctx, name, refresh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poll loop stopped", "loop", name)
			return
		case <-ticker.C:
			c.safeRefresh(ctx, name, refresh)
		}
	}
}

func (c *Coordinator) safeRefresh(ctx context.Context, name string, refresh func(context.Context) bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("poll loop panicked", "loop", name, "error", r, "stack", string(debug.Stack()))
			c.recordError(ctx, fmt.Sprintf("panic in %s loop: %v", name, r))
		}
	}()
	refresh(ctx)
}

// RefreshTick runs one fast cycle. It reports false when another tick refresh
// is already in flight or when nothing could be rendered.
func (c *Coordinator) RefreshTick(ctx context.Context) bool {
	if !c.tickBusy.CompareAndSwap(false, true) {
		slog.Debug("tick refresh already in flight, skipping")
		return false
	}
	defer c.tickBusy.Store(false)

	conn := c.liveState()
	tick, err := c.api.FetchTick(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		slog.Warn("tick refresh failed", "error", err, "demo_fallback", c.opts.DemoFallback)
		c.recordFailure(ctx, true, err)
		if !c.opts.DemoFallback {
			c.setConnection(model.ConnectionDisconnected)
			c.view.RenderHealth(health.Offline())
			return false
		}
		tick = c.api.DemoTick()
		conn = model.ConnectionLiveDemo
	}

	now := c.now()
	label := now.Format(tickLabelLayout)

	c.store.AppendTick(label, tick.Tick, tick.Duration)

	c.view.RenderMetrics(tick)
	c.view.RenderHealth(tick.Health)

	c.charts.PushPoint(chart.SeriesTick, label, float64(tick.Tick))
	c.charts.Redraw(chart.SeriesTick)
	c.charts.PushPoint(chart.SeriesDuration, label, tick.Duration)
	c.charts.Redraw(chart.SeriesDuration)

	c.setConnection(conn)
	c.view.RenderLastUpdate(now)

	c.dataMu.Lock()
	c.current = &tick
	c.status.TickCycles++
	c.status.LastTickAt = &now
	if err == nil {
		c.status.LastError = ""
	}
	c.status.UpdatedAt = now
	snapshot := copyState(c.status)
	c.dataMu.Unlock()

	c.persist(ctx, &snapshot)
	c.publish(eventbus.TopicTickUpdated, eventbus.TickUpdated{Tick: tick, Connection: conn})
	return true
}

// RefreshStats runs one slow cycle. A failed fetch resets the epoch progress
// fields and keeps the previous stats for the next delta.
func (c *Coordinator) RefreshStats(ctx context.Context) bool {
	if !c.statsBusy.CompareAndSwap(false, true) {
		slog.Debug("stats refresh already in flight, skipping")
		return false
	}
	defer c.statsBusy.Store(false)

	stats, err := c.api.FetchStats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		slog.Warn("stats refresh failed", "error", err, "demo_fallback", c.opts.DemoFallback)
		c.recordFailure(ctx, false, err)
		if c.opts.DemoFallback {
			demo := c.api.DemoStats()
			c.view.RenderStats(&demo, nil)
			c.view.ClearStatsDeltas()
		}
		c.view.RenderEpochUnavailable()
		return false
	}

	c.dataMu.RLock()
	prev := c.prevStats
	c.dataMu.RUnlock()

	c.view.RenderStats(&stats, prev)
	if stats.TicksInCurrentEpoch > 0 {
		c.view.RenderEpochProgress(epoch.FromStats(stats))
	} else {
		c.view.RenderEpochUnavailable()
	}

	now := c.now()
	label := now.Format(priceLabelLayout)
	c.store.AppendPrice(label, stats.Price)
	c.charts.PushPoint(chart.SeriesPrice, label, stats.Price)
	c.charts.Redraw(chart.SeriesPrice)

	c.dataMu.Lock()
	c.prevStats = &stats
	c.status.StatsCycles++
	c.status.LastStatsAt = &now
	c.status.UpdatedAt = now
	conn := c.status.Connection
	snapshot := copyState(c.status)
	c.dataMu.Unlock()

	c.persist(ctx, &snapshot)
	c.publish(eventbus.TopicStatsUpdated, eventbus.StatsUpdated{Stats: stats, Previous: prev, Connection: conn})
	return true
}

func (c *Coordinator) liveState() model.ConnectionState {
	if c.api.Demo() {
		return model.ConnectionLiveDemo
	}
	return model.ConnectionLiveReal
}

func (c *Coordinator) setConnection(state model.ConnectionState) {
	c.dataMu.Lock()
	c.status.Connection = state
	c.dataMu.Unlock()
	c.view.RenderConnectionStatus(state)
}

func (c *Coordinator) recordFailure(ctx context.Context, tick bool, err error) {
	c.dataMu.Lock()
	if tick {
		c.status.TickFailures++
	} else {
		c.status.StatsFailures++
	}
	c.dataMu.Unlock()
	c.recordError(ctx, err.Error())
}

func (c *Coordinator) recordError(ctx context.Context, msg string) {
	c.dataMu.Lock()
	c.status.LastError = msg
	c.status.UpdatedAt = c.now()
	c.dataMu.Unlock()

	if c.state == nil {
		return
	}
	if err := c.state.SetError(ctx, msg); err != nil {
		slog.Warn("failed to persist poller error", "error", err)
	}
}

func (c *Coordinator) persist(ctx context.Context, s *model.PollerState) {
	if c.state == nil {
		return
	}
	if err := c.state.Save(ctx, s); err != nil {
		slog.Warn("failed to persist poller state", "error", err)
	}
}

func (c *Coordinator) publish(topic eventbus.Topic, payload any) {
	if c.bus != nil {
		c.bus.Publish(topic, payload)
	}
}

func copyState(s model.PollerState) model.PollerState {
	if s.LastTickAt != nil {
		t := *s.LastTickAt
		s.LastTickAt = &t
	}
	if s.LastStatsAt != nil {
		t := *s.LastStatsAt
		s.LastStatsAt = &t
	}
	return s
}
