package qubicrpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/shopspring/decimal"
)

type mockFetcher struct {
	calls int
	fn    func() (*LatestStats, error)
}

func (m *mockFetcher) LatestStats(ctx context.Context) (*LatestStats, error) {
	m.calls++
	return m.fn()
}

func statsAt(tick int64) *LatestStats {
	return &LatestStats{
		Timestamp:           decimal.NewFromInt(1700000000),
		CurrentTick:         decimal.NewFromInt(tick),
		Epoch:               decimal.NewFromInt(174),
		TicksInCurrentEpoch: decimal.NewFromInt(84874),
		EpochTickQuality:    decimal.RequireFromString("97.28"),
		Price:               decimal.RequireFromString("0.000002804"),
		CirculatingSupply:   decimal.NewFromInt(154906810258577),
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSource(f *mockFetcher) (*Source, *clock) {
	c := &clock{t: time.Unix(1700000000, 0)}
	s := NewSource(f, 2*time.Second)
	s.now = c.now
	return s, c
}

func TestClient_LatestStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/latest-stats" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"data":{"timestamp":"1700000000","circulatingSupply":"154906810258577","activeAddresses":592605,"price":0.000002804,"marketCap":"434358695","epoch":174,"currentTick":31315874,"ticksInCurrentEpoch":84874,"emptyTicksInCurrentEpoch":12,"epochTickQuality":92.080025,"burnedQus":"19093189741423"}}`))
	}))
	defer srv.Close()

	ls, err := NewClient(srv.URL+"/v1", time.Second).LatestStats(context.Background())
	if err != nil {
		t.Fatalf("LatestStats() error = %v", err)
	}
	if ls.CirculatingSupply.IntPart() != 154906810258577 {
		t.Errorf("circulatingSupply = %s", ls.CirculatingSupply)
	}
	if ls.CurrentTick.IntPart() != 31315874 || ls.Epoch.IntPart() != 174 {
		t.Errorf("tick/epoch = %s/%s", ls.CurrentTick, ls.Epoch)
	}
	if ls.BurnedQus.IntPart() != 19093189741423 {
		t.Errorf("burnedQus = %s", ls.BurnedQus)
	}
}

func TestNewClient_BaseURL(t *testing.T) {
	if got := NewClient("", time.Second).BaseURL(); got != DefaultURL {
		t.Errorf("BaseURL() = %q, want %q", got, DefaultURL)
	}
	if got := NewClient("https://rpc.example.com/v1/", time.Second).BaseURL(); got != "https://rpc.example.com/v1" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", got)
	}
}

func TestClient_LatestStatsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty/latest-stats" {
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).LatestStats(context.Background()); err == nil {
		t.Error("expected error for 503")
	}
	if _, err := NewClient(srv.URL+"/empty", time.Second).LatestStats(context.Background()); err == nil {
		t.Error("expected error for missing data")
	}
}

func TestSource_TickDerivesFields(t *testing.T) {
	f := &mockFetcher{fn: func() (*LatestStats, error) { return statsAt(31315874), nil }}
	s, _ := newTestSource(f)

	tick, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if tick.Tick != 31315874 || tick.InitialTick != 31231000 || tick.Epoch != 174 {
		t.Errorf("tick = %+v", tick)
	}
	if tick.Duration != 1 {
		t.Errorf("first duration = %v, want 1", tick.Duration)
	}
	if tick.Health.Overall != model.StatusHealthy || tick.Health.DurationStatus != model.StatusFast {
		t.Errorf("health = %+v", tick.Health)
	}
	if tick.Timestamp != 1700000000 {
		t.Errorf("timestamp = %d", tick.Timestamp)
	}
}

func TestSource_Caches(t *testing.T) {
	f := &mockFetcher{fn: func() (*LatestStats, error) { return statsAt(100), nil }}
	s, c := newTestSource(f)
	ctx := context.Background()

	s.Tick(ctx)
	s.Stats(ctx)
	c.advance(time.Second)
	s.Tick(ctx)
	if f.calls != 1 {
		t.Errorf("calls within cache window = %d, want 1", f.calls)
	}

	c.advance(2 * time.Second)
	s.Stats(ctx)
	if f.calls != 2 {
		t.Errorf("calls after expiry = %d, want 2", f.calls)
	}
}

func TestSource_DurationPerTick(t *testing.T) {
	tick := int64(100)
	f := &mockFetcher{fn: func() (*LatestStats, error) { return statsAt(tick), nil }}
	s, c := newTestSource(f)
	ctx := context.Background()

	s.Tick(ctx)

	c.advance(5 * time.Second)
	tick = 105
	got, _ := s.Tick(ctx)
	if got.Duration != 1 {
		t.Errorf("5 ticks in 5s duration = %v, want 1", got.Duration)
	}

	c.advance(5 * time.Second)
	tick = 107
	got, _ = s.Tick(ctx)
	if got.Duration != 3 {
		t.Errorf("2 ticks in 5s duration = %v, want 3", got.Duration)
	}

	c.advance(10 * time.Second)
	got, _ = s.Tick(ctx)
	if got.Duration != 10 || got.Health.DurationStatus != model.StatusAbnormal {
		t.Errorf("stalled duration = %v (%s), want 10 abnormal", got.Duration, got.Health.DurationStatus)
	}
}

func TestSource_ErrorNotCached(t *testing.T) {
	fail := true
	f := &mockFetcher{fn: func() (*LatestStats, error) {
		if fail {
			return nil, errors.New("rpc down")
		}
		return statsAt(1), nil
	}}
	s, _ := newTestSource(f)
	ctx := context.Background()

	if _, err := s.Stats(ctx); err == nil {
		t.Fatal("expected error")
	}
	if st := s.Status(); st.Available || st.LastError != "rpc down" {
		t.Errorf("Status() = %+v", st)
	}

	fail = false
	if _, err := s.Stats(ctx); err != nil {
		t.Fatalf("Stats() after recovery error = %v", err)
	}
	st := s.Status()
	if !st.Available || st.LastFetchAt == nil || st.LastError != "" {
		t.Errorf("Status() after recovery = %+v", st)
	}
}

type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingFetcher) LatestStats(ctx context.Context) (*LatestStats, error) {
	close(b.started)
	<-b.release
	return statsAt(100), nil
}

func TestSource_StatusDoesNotWaitForFetch(t *testing.T) {
	f := &blockingFetcher{started: make(chan struct{}), release: make(chan struct{})}
	s := NewSource(f, 2*time.Second)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Tick(context.Background())
	}()
	<-f.started

	statusDone := make(chan Status, 1)
	go func() { statusDone <- s.Status() }()

	select {
	case st := <-statusDone:
		if st.Available {
			t.Errorf("Status() during first fetch = %+v, want unavailable", st)
		}
	case <-time.After(time.Second):
		t.Fatal("Status() blocked while a fetch was in flight")
	}

	close(f.release)
	<-done
	if st := s.Status(); !st.Available || st.Tick != 100 {
		t.Errorf("Status() after fetch = %+v", st)
	}
}
