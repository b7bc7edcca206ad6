// Package tui renders the dashboard in a terminal. Every display target is a
// tview text view; chart series are drawn as sparklines.
package tui

import (
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/qdashboard/qdashboard/internal/chart"
	"github.com/qdashboard/qdashboard/internal/view"
)

var (
	uiBorderColor = tcell.ColorDarkCyan
	uiTitleColor  = tcell.ColorAqua
)

// Actions are the key bindings the terminal forwards to the caller.
type Actions struct {
	ToggleLanguage func()
	Refresh        func()
	// Quit runs before the application stops, while queued draws are
	// still being drained.
	Quit func()
}

type Terminal struct {
	app     *tview.Application
	root    tview.Primitive
	fields  map[string]*Field
	charts  map[string]*ChartView
	actions Actions
	running atomic.Bool

	pending  chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func New(actions Actions) *Terminal {
	t := &Terminal{
		app:     tview.NewApplication(),
		fields:  make(map[string]*Field, len(view.AllTargets)),
		charts:  make(map[string]*ChartView, 3),
		actions: actions,
		pending: make(chan func()),
		done:    make(chan struct{}),
	}
	for _, id := range view.AllTargets {
		t.fields[id] = newField(t.queue)
	}
	t.charts[chart.SeriesTick] = newChartView("Tick", t.queue)
	t.charts[chart.SeriesDuration] = newChartView("Duration (s)", t.queue)
	t.charts[chart.SeriesPrice] = newChartView("Price", t.queue)

	t.root = t.layout()
	t.app.SetRoot(t.root, true)
	t.app.SetInputCapture(t.handleKey)
	return t
}

// queue hands fn to the UI goroutine while the application runs and applies
// it directly otherwise. Once stopped, a caller never waits on the event loop.
func (t *Terminal) queue(fn func()) {
	if !t.running.Load() {
		fn()
		return
	}
	select {
	case t.pending <- fn:
	case <-t.done:
		fn()
	}
}

// pump forwards queued updates to tview until the terminal stops.
func (t *Terminal) pump() {
	for {
		select {
		case fn := <-t.pending:
			t.app.QueueUpdateDraw(fn)
		case <-t.done:
			return
		}
	}
}

// BindTo registers every field in reg.
func (t *Terminal) BindTo(reg *view.Registry) {
	for id, f := range t.fields {
		reg.Bind(id, f)
	}
}

// BindCharts attaches the sparkline views as the adapter's surfaces.
func (t *Terminal) BindCharts(a *chart.Adapter) {
	for id, c := range t.charts {
		a.Bind(id, c)
	}
}

func (t *Terminal) Field(id string) (*Field, bool) {
	f, ok := t.fields[id]
	return f, ok
}

func (t *Terminal) Chart(series string) (*ChartView, bool) {
	c, ok := t.charts[series]
	return c, ok
}

// Run blocks until the user quits or Stop is called.
func (t *Terminal) Run() error {
	t.running.Store(true)
	go t.pump()
	defer t.markStopped()
	return t.app.Run()
}

func (t *Terminal) Stop() {
	t.markStopped()
	t.app.Stop()
}

func (t *Terminal) markStopped() {
	t.stopOnce.Do(func() {
		t.running.Store(false)
		close(t.done)
	})
}

// quit runs the Quit action and then stops the application. It must not run
// on the event loop: Quit may wait for renders that need the loop.
func (t *Terminal) quit() {
	if t.actions.Quit != nil {
		t.actions.Quit()
	}
	t.Stop()
}

func (t *Terminal) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		go t.quit()
		return nil
	}
	switch event.Rune() {
	case 'q', 'Q':
		go t.quit()
		return nil
	case 'l', 'L':
		if t.actions.ToggleLanguage != nil {
			go t.actions.ToggleLanguage()
		}
		return nil
	case 'r', 'R':
		if t.actions.Refresh != nil {
			go t.actions.Refresh()
		}
		return nil
	}
	return event
}

func (t *Terminal) layout() tview.Primitive {
	header := tview.NewFlex().
		AddItem(t.fields[view.TargetConnectionStatus].tv, 0, 1, false).
		AddItem(t.fields[view.TargetDemoNotice].tv, 0, 2, false).
		AddItem(t.fields[view.TargetLastUpdate].tv, 0, 1, false)

	tick := t.panel("Tick", []row{
		{"Current tick", view.TargetCurrentTick},
		{"Epoch", view.TargetCurrentEpoch},
		{"Duration (s)", view.TargetTickDuration},
		{"Network", view.TargetNetworkHealth},
	})
	health := t.panel("Health", []row{
		{"Overall", view.TargetHealthOverall},
		{"Tick", view.TargetHealthTick},
		{"Epoch", view.TargetHealthEpoch},
		{"Duration", view.TargetHealthDuration},
	})
	market := t.panel("Market", []row{
		{"Price", view.TargetPrice},
		{"  change", view.TargetPriceChange},
		{"Market cap", view.TargetMarketCap},
		{"  change", view.TargetMarketCapChange},
		{"Active addresses", view.TargetActiveAddresses},
		{"  change", view.TargetActiveAddressesChange},
		{"Circulating", view.TargetCirculatingSupply},
		{"Burned QUs", view.TargetBurnedQus},
	})
	epoch := t.panel("Epoch progress", []row{
		{"Quality", view.TargetEpochQuality},
		{"  change", view.TargetQualityChange},
		{"Progress", view.TargetEpochProgress},
		{"Completed", view.TargetEpochProgressText},
		{"Initial tick", view.TargetInitialTickValue},
		{"Current tick", view.TargetCurrentTickValue},
		{"Remaining", view.TargetRemainingTicks},
		{"Percentage", view.TargetProgressPercentage},
		{"Estimated", view.TargetEstimatedTime},
	})

	top := tview.NewFlex().
		AddItem(tick, 0, 1, false).
		AddItem(health, 0, 1, false)
	middle := tview.NewFlex().
		AddItem(market, 0, 1, false).
		AddItem(epoch, 0, 1, false)
	charts := tview.NewFlex().
		AddItem(t.charts[chart.SeriesTick].tv, 0, 1, false).
		AddItem(t.charts[chart.SeriesDuration].tv, 0, 1, false).
		AddItem(t.charts[chart.SeriesPrice].tv, 0, 1, false)

	footer := tview.NewTextView().SetText("[L]anguage  [R]efresh  [Q]uit")

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(top, 6, 0, false).
		AddItem(middle, 11, 0, false).
		AddItem(charts, 4, 0, false).
		AddItem(footer, 1, 0, false)
}

type row struct {
	caption string
	target  string
}

func (t *Terminal) panel(title string, rows []row) *tview.Flex {
	p := tview.NewFlex().SetDirection(tview.FlexRow)
	p.SetBorder(true).SetTitle(title).SetTitleAlign(tview.AlignLeft)
	p.SetBorderColor(uiBorderColor)
	p.SetTitleColor(uiTitleColor)
	for _, r := range rows {
		line := tview.NewFlex().
			AddItem(tview.NewTextView().SetText(r.caption), 18, 0, false).
			AddItem(t.fields[r.target].tv, 0, 1, false)
		p.AddItem(line, 1, 0, false)
	}
	return p
}

func newBoxedTextView(title string) *tview.TextView {
	tv := tview.NewTextView().SetWrap(false)
	tv.SetBorder(true)
	if title != "" {
		tv.SetTitle(title).SetTitleAlign(tview.AlignLeft)
	}
	tv.SetBorderColor(uiBorderColor)
	tv.SetTitleColor(uiTitleColor)
	return tv
}
