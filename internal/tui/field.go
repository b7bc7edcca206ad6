package tui

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/qdashboard/qdashboard/internal/chart"
	"github.com/qdashboard/qdashboard/internal/view"
)

// Field is a single-line text view bound to one display target.
type Field struct {
	tv    *tview.TextView
	queue func(func())

	mu    sync.Mutex
	text  string
	tone  view.Tone
	level *float64
}

func newField(queue func(func())) *Field {
	tv := tview.NewTextView().SetWrap(false)
	return &Field{tv: tv, queue: queue, text: view.Placeholder}
}

func (f *Field) SetText(text string) {
	f.mu.Lock()
	f.text = text
	f.mu.Unlock()
	f.redraw()
}

func (f *Field) SetTone(tone view.Tone) {
	f.mu.Lock()
	f.tone = tone
	f.mu.Unlock()
	f.redraw()
}

func (f *Field) SetLevel(percent float64) {
	f.mu.Lock()
	f.level = &percent
	f.mu.Unlock()
	f.redraw()
}

func (f *Field) Tone() view.Tone {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tone
}

// Content is the text the view shows, including the level bar for meters.
func (f *Field) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.level == nil {
		return f.text
	}
	return levelBar(*f.level, 20) + " " + f.text
}

func (f *Field) redraw() {
	content := f.Content()
	color := toneColor(f.Tone())
	f.queue(func() {
		f.tv.SetTextColor(color)
		f.tv.SetText(content)
	})
}

func levelBar(percent float64, width int) string {
	filled := int(math.Round(math.Max(0, math.Min(100, percent)) / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func toneColor(t view.Tone) tcell.Color {
	switch t {
	case view.ToneSuccess, view.TonePositive:
		return tcell.ColorGreen
	case view.ToneInfo:
		return tcell.ColorDodgerBlue
	case view.ToneWarning:
		return tcell.ColorYellow
	case view.ToneDanger, view.ToneNegative:
		return tcell.ColorRed
	case view.ToneSecondary, view.ToneNeutral:
		return tcell.ColorGray
	default:
		return tcell.ColorWhite
	}
}

// ChartView draws a series as a sparkline with its latest point.
type ChartView struct {
	tv    *tview.TextView
	queue func(func())

	mu   sync.Mutex
	line string
}

func newChartView(title string, queue func(func())) *ChartView {
	return &ChartView{tv: newBoxedTextView(title), queue: queue}
}

func (c *ChartView) Draw(frame chart.Frame) {
	line := chart.Sparkline(frame.Values)
	if n := len(frame.Values); n > 0 && len(frame.Labels) == n {
		line += fmt.Sprintf("\n%s  %s", frame.Labels[n-1], formatPoint(frame.Values[n-1]))
	}

	c.mu.Lock()
	c.line = line
	c.mu.Unlock()

	c.queue(func() { c.tv.SetText(line) })
}

func (c *ChartView) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line
}

func formatPoint(v float64) string {
	if v != 0 && math.Abs(v) < 0.01 {
		return view.FormatPrice(v)
	}
	return view.FormatGrouped(v)
}
