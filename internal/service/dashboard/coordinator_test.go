package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qdashboard/qdashboard/internal/chart"
	"github.com/qdashboard/qdashboard/internal/eventbus"
	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/service/epoch"
	"github.com/qdashboard/qdashboard/internal/service/metrics"
)

// --- mocks ---

type mockAPI struct {
	fetchTickFn  func(ctx context.Context) (model.TickSnapshot, error)
	fetchStatsFn func(ctx context.Context) (model.StatsSnapshot, error)
	demo         bool
}

func (m *mockAPI) FetchTick(ctx context.Context) (model.TickSnapshot, error) {
	return m.fetchTickFn(ctx)
}
func (m *mockAPI) FetchStats(ctx context.Context) (model.StatsSnapshot, error) {
	return m.fetchStatsFn(ctx)
}
func (m *mockAPI) Demo() bool { return m.demo }
func (m *mockAPI) DemoTick() model.TickSnapshot {
	return model.TickSnapshot{Tick: 31470001, Epoch: 174, Duration: 2}
}
func (m *mockAPI) DemoStats() model.StatsSnapshot {
	return model.StatsSnapshot{Price: 0.000002804}
}

type fakeView struct {
	mu          sync.Mutex
	metrics     []model.TickSnapshot
	statsPrev   []*model.StatsSnapshot
	connections []model.ConnectionState
	progress    []epoch.Progress
	health      []model.HealthStatus
	unavailable int
	cleared     int
}

func (v *fakeView) RenderMetrics(t model.TickSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.metrics = append(v.metrics, t)
}
func (v *fakeView) RenderStats(cur, prev *model.StatsSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statsPrev = append(v.statsPrev, prev)
}
func (v *fakeView) ClearStatsDeltas() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cleared++
}
func (v *fakeView) RenderHealth(h model.HealthStatus) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.health = append(v.health, h)
}
func (v *fakeView) RenderConnectionStatus(state model.ConnectionState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.connections = append(v.connections, state)
}
func (v *fakeView) RenderEpochProgress(p epoch.Progress) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.progress = append(v.progress, p)
}
func (v *fakeView) RenderEpochUnavailable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unavailable++
}
func (v *fakeView) RenderLastUpdate(time.Time) {}

func (v *fakeView) lastConnection() model.ConnectionState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.connections) == 0 {
		return ""
	}
	return v.connections[len(v.connections)-1]
}

type mockStateStore struct {
	saveFn       func(ctx context.Context, state *model.PollerState) error
	setRunningFn func(ctx context.Context, running bool) error
	setErrorFn   func(ctx context.Context, errMsg string) error
}

func (m *mockStateStore) Save(ctx context.Context, state *model.PollerState) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, state)
	}
	return nil
}
func (m *mockStateStore) SetRunning(ctx context.Context, running bool) error {
	if m.setRunningFn != nil {
		return m.setRunningFn(ctx, running)
	}
	return nil
}
func (m *mockStateStore) SetError(ctx context.Context, errMsg string) error {
	if m.setErrorFn != nil {
		return m.setErrorFn(ctx, errMsg)
	}
	return nil
}

// --- helpers ---

func okTick(ctx context.Context) (model.TickSnapshot, error) {
	return model.TickSnapshot{Tick: 31315874, Epoch: 174, Duration: 1}, nil
}

func okStats(ctx context.Context) (model.StatsSnapshot, error) {
	return model.StatsSnapshot{
		Price:               0.0000028,
		EpochTickQuality:    92.080025,
		CurrentTick:         31315874,
		TicksInCurrentEpoch: 84874,
	}, nil
}

type fixture struct {
	c      *Coordinator
	view   *fakeView
	store  *metrics.Store
	charts *chart.Adapter
	bus    *eventbus.Bus
}

func newFixture(api *mockAPI, state stateStore, opts Options) *fixture {
	f := &fixture{
		view:   &fakeView{},
		store:  metrics.NewStore(20),
		charts: chart.NewAdapter(20),
		bus:    eventbus.New(),
	}
	f.c = New(api, f.store, f.view, f.charts, f.bus, state, opts)
	return f
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// --- tests ---

func TestNew_Defaults(t *testing.T) {
	c := New(&mockAPI{}, metrics.NewStore(0), &fakeView{}, chart.NewAdapter(0), nil, nil, Options{})
	if c.opts.TickInterval != 5*time.Second || c.opts.StatsInterval != 30*time.Second {
		t.Errorf("intervals = %v/%v, want 5s/30s", c.opts.TickInterval, c.opts.StatsInterval)
	}

	c = New(&mockAPI{}, metrics.NewStore(0), &fakeView{}, chart.NewAdapter(0), nil, nil, Options{TickInterval: time.Second})
	if c.opts.StatsInterval != 6*time.Second {
		t.Errorf("stats interval = %v, want 6x tick interval", c.opts.StatsInterval)
	}
}

func TestStartStop(t *testing.T) {
	var running []bool
	var mu sync.Mutex
	state := &mockStateStore{
		setRunningFn: func(ctx context.Context, r bool) error {
			mu.Lock()
			running = append(running, r)
			mu.Unlock()
			return nil
		},
	}
	f := newFixture(&mockAPI{fetchTickFn: okTick, fetchStatsFn: okStats}, state, Options{TickInterval: time.Hour})

	if err := f.c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !f.c.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if err := f.c.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	// Both loops refresh immediately, long before the first timer fires.
	waitFor(t, func() bool {
		s := f.c.Status()
		return s.TickCycles == 1 && s.StatsCycles == 1
	})

	if err := f.c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := f.c.Stop(context.Background()); err != nil {
		t.Errorf("second Stop() error = %v, want nil", err)
	}
	if f.c.IsRunning() || f.c.Status().IsRunning {
		t.Error("still running after Stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(running) != 2 || !running[0] || running[1] {
		t.Errorf("SetRunning calls = %v, want [true false]", running)
	}
}

func TestStop_BeforeStart(t *testing.T) {
	f := newFixture(&mockAPI{}, nil, Options{})
	if err := f.c.Stop(context.Background()); err != nil {
		t.Errorf("Stop() before Start error = %v, want nil", err)
	}
}

func TestStart_AfterStop(t *testing.T) {
	f := newFixture(&mockAPI{fetchTickFn: okTick, fetchStatsFn: okStats}, nil, Options{TickInterval: time.Hour})

	f.c.Start(context.Background())
	f.c.Stop(context.Background())
	if err := f.c.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	f.c.Stop(context.Background())
}

func TestRefreshTick_Success(t *testing.T) {
	f := newFixture(&mockAPI{fetchTickFn: okTick}, nil, Options{})

	var events []eventbus.TickUpdated
	eventbus.On(f.bus, eventbus.TopicTickUpdated, func(ev eventbus.TickUpdated) { events = append(events, ev) })

	if !f.c.RefreshTick(context.Background()) {
		t.Fatal("RefreshTick() = false, want true")
	}

	snap := f.store.Snapshot()
	if len(snap.Ticks) != 1 || snap.Ticks[0] != 31315874 || snap.Durations[0] != 1 {
		t.Errorf("store = %+v", snap)
	}
	if frame := f.charts.Frame(chart.SeriesTick); len(frame.Values) != 1 {
		t.Errorf("tick series = %+v", frame)
	}
	if frame := f.charts.Frame(chart.SeriesDuration); len(frame.Values) != 1 || frame.Values[0] != 1 {
		t.Errorf("duration series = %+v", frame)
	}
	if got := f.view.lastConnection(); got != model.ConnectionLiveReal {
		t.Errorf("connection = %q, want live-real", got)
	}
	if cur, ok := f.c.CurrentData(); !ok || cur.Tick != 31315874 {
		t.Errorf("CurrentData() = %+v, %v", cur, ok)
	}
	if len(events) != 1 || events[0].Connection != model.ConnectionLiveReal {
		t.Errorf("events = %+v", events)
	}
}

func TestRefreshTick_DemoModeIsLiveDemo(t *testing.T) {
	f := newFixture(&mockAPI{fetchTickFn: okTick, demo: true}, nil, Options{})
	f.c.RefreshTick(context.Background())

	if got := f.view.lastConnection(); got != model.ConnectionLiveDemo {
		t.Errorf("connection = %q, want live-demo", got)
	}
}

func TestRefreshTick_FailureKeepsPriorState(t *testing.T) {
	fail := false
	api := &mockAPI{fetchTickFn: func(ctx context.Context) (model.TickSnapshot, error) {
		if fail {
			return model.TickSnapshot{}, errors.New("status 502")
		}
		return okTick(ctx)
	}}
	var persisted []string
	state := &mockStateStore{setErrorFn: func(ctx context.Context, msg string) error {
		persisted = append(persisted, msg)
		return nil
	}}
	f := newFixture(api, state, Options{DemoFallback: false})

	f.c.RefreshTick(context.Background())
	fail = true
	if f.c.RefreshTick(context.Background()) {
		t.Error("RefreshTick() = true on failure without fallback")
	}

	if got := f.view.lastConnection(); got != model.ConnectionDisconnected {
		t.Errorf("connection = %q, want disconnected", got)
	}
	if ticks, _ := f.store.Len(); ticks != 1 {
		t.Errorf("store ticks = %d, want 1 (unchanged)", ticks)
	}
	if cur, _ := f.c.CurrentData(); cur.Tick != 31315874 {
		t.Errorf("CurrentData() = %+v, want prior snapshot", cur)
	}
	st := f.c.Status()
	if st.TickFailures != 1 || st.LastError != "status 502" {
		t.Errorf("status = %+v", st)
	}
	if len(persisted) != 1 || persisted[0] != "status 502" {
		t.Errorf("persisted errors = %v", persisted)
	}
	if last := f.view.health[len(f.view.health)-1]; last.Overall != model.StatusOffline {
		t.Errorf("last health = %+v, want offline", last)
	}
}

func TestRefreshTick_FailureWithDemoFallback(t *testing.T) {
	api := &mockAPI{fetchTickFn: func(ctx context.Context) (model.TickSnapshot, error) {
		return model.TickSnapshot{}, errors.New("connection refused")
	}}
	f := newFixture(api, nil, Options{DemoFallback: true})

	if !f.c.RefreshTick(context.Background()) {
		t.Fatal("RefreshTick() = false, want fallback render")
	}
	if got := f.view.lastConnection(); got != model.ConnectionLiveDemo {
		t.Errorf("connection = %q, want live-demo", got)
	}
	if cur, _ := f.c.CurrentData(); cur.Tick != 31470001 {
		t.Errorf("CurrentData() = %+v, want demo tick", cur)
	}
}

func TestRefreshTick_DemoFallbackDoesNotRenderOffline(t *testing.T) {
	api := &mockAPI{fetchTickFn: func(ctx context.Context) (model.TickSnapshot, error) {
		return model.TickSnapshot{}, errors.New("connection refused")
	}}
	f := newFixture(api, nil, Options{DemoFallback: true})

	f.c.RefreshTick(context.Background())

	for _, h := range f.view.health {
		if h.Overall == model.StatusOffline {
			t.Errorf("health = %+v, offline only applies when disconnected", h)
		}
	}
}

func TestRefreshTick_SkipsWhenInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &mockAPI{fetchTickFn: func(ctx context.Context) (model.TickSnapshot, error) {
		close(entered)
		<-release
		return okTick(ctx)
	}}
	f := newFixture(api, nil, Options{})

	done := make(chan bool)
	go func() { done <- f.c.RefreshTick(context.Background()) }()
	<-entered

	if f.c.RefreshTick(context.Background()) {
		t.Error("overlapping RefreshTick() = true, want skip")
	}
	close(release)
	if !<-done {
		t.Error("first RefreshTick() = false, want true")
	}
	if ticks, _ := f.store.Len(); ticks != 1 {
		t.Errorf("store ticks = %d, want 1", ticks)
	}
}

func TestRefreshStats_DeltaUsesPrevious(t *testing.T) {
	f := newFixture(&mockAPI{fetchStatsFn: okStats}, nil, Options{})

	var events []eventbus.StatsUpdated
	eventbus.On(f.bus, eventbus.TopicStatsUpdated, func(ev eventbus.StatsUpdated) { events = append(events, ev) })

	f.c.RefreshStats(context.Background())
	f.c.RefreshStats(context.Background())

	if len(f.view.statsPrev) != 2 {
		t.Fatalf("RenderStats calls = %d, want 2", len(f.view.statsPrev))
	}
	if f.view.statsPrev[0] != nil {
		t.Error("first cycle should render without a previous snapshot")
	}
	if f.view.statsPrev[1] == nil || f.view.statsPrev[1].Price != 0.0000028 {
		t.Errorf("second cycle previous = %+v", f.view.statsPrev[1])
	}
	if len(f.view.progress) != 2 || f.view.progress[0].RemainingTicks != 7300 {
		t.Errorf("epoch progress = %+v", f.view.progress)
	}
	if _, prices := f.store.Len(); prices != 2 {
		t.Errorf("store prices = %d, want 2", prices)
	}
	if len(events) != 2 || events[0].Previous != nil || events[1].Previous == nil {
		t.Errorf("events = %+v", events)
	}
}

func TestRefreshStats_FailureResetsEpochProgress(t *testing.T) {
	api := &mockAPI{fetchStatsFn: func(ctx context.Context) (model.StatsSnapshot, error) {
		return model.StatsSnapshot{}, errors.New("timeout")
	}}
	f := newFixture(api, nil, Options{})

	if f.c.RefreshStats(context.Background()) {
		t.Error("RefreshStats() = true on failure")
	}
	if f.view.unavailable != 1 {
		t.Errorf("RenderEpochUnavailable calls = %d, want 1", f.view.unavailable)
	}
	if _, ok := f.c.PreviousStats(); ok {
		t.Error("failed cycle must not set previous stats")
	}
	if f.c.Status().StatsFailures != 1 {
		t.Errorf("stats failures = %d, want 1", f.c.Status().StatsFailures)
	}
}

func TestRefreshStats_DemoFallbackClearsDeltas(t *testing.T) {
	fail := false
	api := &mockAPI{fetchStatsFn: func(ctx context.Context) (model.StatsSnapshot, error) {
		if fail {
			return model.StatsSnapshot{}, errors.New("status 503")
		}
		return okStats(ctx)
	}}
	f := newFixture(api, nil, Options{DemoFallback: true})

	f.c.RefreshStats(context.Background())
	f.c.RefreshStats(context.Background())
	if f.view.cleared != 0 {
		t.Fatalf("deltas cleared %d times on successful cycles, want 0", f.view.cleared)
	}

	fail = true
	f.c.RefreshStats(context.Background())

	if f.view.cleared != 1 {
		t.Errorf("deltas cleared %d times, want 1 after demo stats", f.view.cleared)
	}
	if last := f.view.statsPrev[len(f.view.statsPrev)-1]; last != nil {
		t.Errorf("demo stats rendered with previous %+v, want nil", last)
	}
}

func TestRefreshStats_FailureWithoutFallbackKeepsDeltas(t *testing.T) {
	api := &mockAPI{fetchStatsFn: func(ctx context.Context) (model.StatsSnapshot, error) {
		return model.StatsSnapshot{}, errors.New("status 503")
	}}
	f := newFixture(api, nil, Options{DemoFallback: false})

	f.c.RefreshStats(context.Background())

	if f.view.cleared != 0 || len(f.view.statsPrev) != 0 {
		t.Errorf("cleared = %d, stats renders = %d, want none", f.view.cleared, len(f.view.statsPrev))
	}
}

func TestTickFailureDoesNotBlockStatsLoop(t *testing.T) {
	api := &mockAPI{
		fetchTickFn: func(ctx context.Context) (model.TickSnapshot, error) {
			return model.TickSnapshot{}, errors.New("tick down")
		},
		fetchStatsFn: okStats,
	}
	f := newFixture(api, nil, Options{
		TickInterval:  10 * time.Millisecond,
		StatsInterval: 10 * time.Millisecond,
		DemoFallback:  false,
	})

	f.c.Start(context.Background())
	defer f.c.Stop(context.Background())

	waitFor(t, func() bool {
		s := f.c.Status()
		return s.StatsCycles >= 3 && s.TickFailures >= 3
	})
	if got := f.c.Status().Connection; got != model.ConnectionDisconnected {
		t.Errorf("connection = %q, want disconnected", got)
	}
}

func TestStatsFailureDoesNotBlockTickLoop(t *testing.T) {
	api := &mockAPI{
		fetchTickFn: okTick,
		fetchStatsFn: func(ctx context.Context) (model.StatsSnapshot, error) {
			return model.StatsSnapshot{}, errors.New("stats down")
		},
	}
	f := newFixture(api, nil, Options{TickInterval: 10 * time.Millisecond, StatsInterval: 10 * time.Millisecond})

	f.c.Start(context.Background())
	defer f.c.Stop(context.Background())

	waitFor(t, func() bool {
		s := f.c.Status()
		return s.TickCycles >= 3 && s.StatsFailures >= 3
	})
}

func TestLoop_RecoversPanic(t *testing.T) {
	var calls atomic.Int32
	api := &mockAPI{
		fetchTickFn: func(ctx context.Context) (model.TickSnapshot, error) {
			if calls.Add(1) == 1 {
				panic("boom")
			}
			return okTick(ctx)
		},
		fetchStatsFn: okStats,
	}
	f := newFixture(api, nil, Options{TickInterval: 10 * time.Millisecond, StatsInterval: time.Hour})

	f.c.Start(context.Background())
	defer f.c.Stop(context.Background())

	waitFor(t, func() bool { return f.c.Status().TickCycles >= 1 })
	if calls.Load() < 2 {
		t.Errorf("fetch calls = %d, want loop to keep running after panic", calls.Load())
	}
}

func TestRecordError_PanicMessage(t *testing.T) {
	f := newFixture(&mockAPI{}, nil, Options{})
	f.c.safeRefresh(context.Background(), "tick", func(context.Context) bool { panic("boom") })

	if got := f.c.Status().LastError; !strings.Contains(got, "panic in tick loop") {
		t.Errorf("LastError = %q", got)
	}
}
