package view

import (
	"strconv"
	"sync"
	"time"

	"github.com/qdashboard/qdashboard/internal/eventbus"
	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/service/epoch"
)

const lastUpdateLayout = "2006/1/2 15:04:05"

type labeler interface {
	Label(key string) string
}

// Renderer formats snapshots and writes them into registry targets. Targets
// that are not bound are skipped.
type Renderer struct {
	reg    *Registry
	labels labeler

	mu         sync.Mutex
	health     *model.HealthStatus
	connection model.ConnectionState
}

func NewRenderer(reg *Registry, labels labeler) *Renderer {
	return &Renderer{reg: reg, labels: labels}
}

// Subscribe re-renders the last health and connection status whenever the
// language changes.
func (r *Renderer) Subscribe(bus *eventbus.Bus) (unsubscribe func()) {
	return eventbus.On(bus, eventbus.TopicLanguageChanged, func(eventbus.LanguageChanged) {
		r.Relabel()
	})
}

// Relabel repaints the label-bearing targets from the last known state.
func (r *Renderer) Relabel() {
	r.mu.Lock()
	health := r.health
	conn := r.connection
	r.mu.Unlock()

	if health != nil {
		r.writeHealth(*health)
	}
	if conn != "" {
		r.writeConnection(conn)
	}
}

func (r *Renderer) RenderMetrics(t model.TickSnapshot) {
	if t.Tick > 0 {
		r.reg.write(TargetCurrentTick, FormatInt(t.Tick), ToneNone)
		r.reg.write(TargetTickDuration, FormatGrouped(t.Duration), ToneNone)
	} else {
		r.reg.write(TargetCurrentTick, Placeholder, ToneNone)
		r.reg.write(TargetTickDuration, Placeholder, ToneNone)
	}
	if t.Epoch > 0 {
		r.reg.write(TargetCurrentEpoch, strconv.FormatInt(t.Epoch, 10), ToneNone)
	} else {
		r.reg.write(TargetCurrentEpoch, Placeholder, ToneNone)
	}
	r.reg.write(TargetNetworkHealth, r.label(t.Health.Overall), HealthTone(t.Health.Overall))
}

// RenderStats writes the stats figures. Deltas are shown only when prev is
// known and the previous value is non-zero.
func (r *Renderer) RenderStats(cur, prev *model.StatsSnapshot) {
	if cur == nil {
		return
	}
	r.reg.write(TargetActiveAddresses, FormatNumber(float64(cur.ActiveAddresses)), ToneNone)
	r.reg.write(TargetMarketCap, "$"+FormatNumber(float64(cur.MarketCap)), ToneNone)
	r.reg.write(TargetPrice, FormatPrice(cur.Price), ToneNone)
	r.reg.write(TargetEpochQuality, FormatPercent(cur.EpochTickQuality, 2), ToneNone)
	r.reg.write(TargetCirculatingSupply, FormatLargeNumber(float64(cur.CirculatingSupply)), ToneNone)
	r.reg.write(TargetBurnedQus, FormatLargeNumber(float64(cur.BurnedQus)), ToneNone)

	if prev == nil {
		return
	}
	r.writeDelta(TargetActiveAddressesChange, float64(cur.ActiveAddresses), float64(prev.ActiveAddresses))
	r.writeDelta(TargetMarketCapChange, float64(cur.MarketCap), float64(prev.MarketCap))
	r.writeDelta(TargetPriceChange, cur.Price, prev.Price)
	r.writeDelta(TargetQualityChange, cur.EpochTickQuality, prev.EpochTickQuality)
}

// ClearStatsDeltas blanks the four change targets, e.g. when the figures
// next to them are synthetic.
func (r *Renderer) ClearStatsDeltas() {
	for _, id := range []string{
		TargetActiveAddressesChange, TargetMarketCapChange, TargetPriceChange, TargetQualityChange,
	} {
		r.reg.write(id, "", ToneNone)
	}
}

func (r *Renderer) writeDelta(id string, cur, prev float64) {
	text, tone, ok := PercentDelta(cur, prev)
	if !ok {
		r.reg.write(id, "", ToneNone)
		return
	}
	r.reg.write(id, text, tone)
}

func (r *Renderer) RenderHealth(h model.HealthStatus) {
	r.mu.Lock()
	r.health = &h
	r.mu.Unlock()
	r.writeHealth(h)
}

func (r *Renderer) writeHealth(h model.HealthStatus) {
	r.reg.write(TargetHealthOverall, r.label(h.Overall), HealthTone(h.Overall))
	r.reg.write(TargetHealthTick, r.label(h.TickStatus), HealthTone(h.TickStatus))
	r.reg.write(TargetHealthEpoch, r.label(h.EpochStatus), HealthTone(h.EpochStatus))
	r.reg.write(TargetHealthDuration, r.label(h.DurationStatus), HealthTone(h.DurationStatus))
	r.reg.write(TargetNetworkHealth, r.label(h.Overall), HealthTone(h.Overall))
}

func (r *Renderer) RenderConnectionStatus(state model.ConnectionState) {
	r.mu.Lock()
	r.connection = state
	r.mu.Unlock()
	r.writeConnection(state)
}

func (r *Renderer) writeConnection(state model.ConnectionState) {
	r.reg.write(TargetConnectionStatus, r.label(string(state)), ConnectionTone(state))
	if state == model.ConnectionLiveDemo {
		r.reg.write(TargetDemoNotice, r.label("demo_notice"), ToneWarning)
	} else {
		r.reg.write(TargetDemoNotice, "", ToneNone)
	}
}

func (r *Renderer) RenderEpochProgress(p epoch.Progress) {
	pct := FormatPercent(p.Percent, 1)
	tone := ProgressTone(p.Percent)

	r.reg.write(TargetInitialTickValue, FormatInt(p.InitialTick), ToneNone)
	r.reg.write(TargetCurrentTickValue, FormatInt(p.CurrentTick), ToneNone)
	r.reg.write(TargetRemainingTicks, FormatInt(p.RemainingTicks), ToneNone)
	r.reg.write(TargetProgressPercentage, pct, ToneNone)
	r.reg.write(TargetEstimatedTime, epoch.FormatRemaining(p.EstimatedRemaining), ToneNone)
	r.reg.write(TargetEpochProgress, pct, tone)
	r.reg.level(TargetEpochProgress, p.Percent)
	r.reg.write(TargetEpochProgressText, pct, ToneNone)
}

// RenderEpochUnavailable resets the epoch fields to the placeholder and
// empties the bar.
func (r *Renderer) RenderEpochUnavailable() {
	for _, id := range []string{
		TargetInitialTickValue, TargetCurrentTickValue, TargetRemainingTicks,
		TargetEstimatedTime, TargetProgressPercentage,
	} {
		r.reg.write(id, Placeholder, ToneNone)
	}
	r.reg.write(TargetEpochProgress, "0%", ToneSecondary)
	r.reg.level(TargetEpochProgress, 0)
	r.reg.write(TargetEpochProgressText, "0%", ToneNone)
}

func (r *Renderer) RenderLastUpdate(t time.Time) {
	r.reg.write(TargetLastUpdate, t.Format(lastUpdateLayout), ToneNone)
}

func (r *Renderer) label(key string) string {
	if key == "" {
		return Placeholder
	}
	if r.labels == nil {
		return key
	}
	return r.labels.Label(key)
}
