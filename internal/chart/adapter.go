// Package chart keeps per-series point buffers and pushes them to drawing
// surfaces.
package chart

import (
	"sort"
	"sync"
)

const (
	SeriesTick     = "tick"
	SeriesDuration = "duration"
	SeriesPrice    = "price"
)

// Frame is what a surface receives on redraw. Animate is always false: the
// dashboard redraws too often for transitions.
type Frame struct {
	Series  string    `json:"series"`
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"values"`
	Animate bool      `json:"animate"`
}

type Surface interface {
	Draw(f Frame)
}

type series struct {
	labels []string
	values []float64
}

// Adapter buffers up to capacity points per series.
type Adapter struct {
	capacity int

	mu       sync.Mutex
	series   map[string]*series
	surfaces map[string]Surface
}

func NewAdapter(capacity int) *Adapter {
	if capacity <= 0 {
		capacity = 20
	}
	return &Adapter{
		capacity: capacity,
		series:   make(map[string]*series),
		surfaces: make(map[string]Surface),
	}
}

// Bind attaches s as the drawing surface of seriesID.
func (a *Adapter) Bind(seriesID string, s Surface) {
	a.mu.Lock()
	a.surfaces[seriesID] = s
	a.mu.Unlock()
}

func (a *Adapter) Unbind(seriesID string) {
	a.mu.Lock()
	delete(a.surfaces, seriesID)
	a.mu.Unlock()
}

// PushPoint appends one point and drops the oldest once the buffer is full.
func (a *Adapter) PushPoint(seriesID, label string, value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.series[seriesID]
	if !ok {
		s = &series{}
		a.series[seriesID] = s
	}
	s.labels = append(s.labels, label)
	s.values = append(s.values, value)
	if over := len(s.values) - a.capacity; over > 0 {
		s.labels = append(s.labels[:0:0], s.labels[over:]...)
		s.values = append(s.values[:0:0], s.values[over:]...)
	}
}

// Redraw sends the current buffer of seriesID to its surface. Without a bound
// surface it does nothing.
func (a *Adapter) Redraw(seriesID string) {
	a.mu.Lock()
	surface, ok := a.surfaces[seriesID]
	if !ok {
		a.mu.Unlock()
		return
	}
	f := a.frameLocked(seriesID)
	a.mu.Unlock()

	surface.Draw(f)
}

// Frame returns a copy of the series buffer.
func (a *Adapter) Frame(seriesID string) Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameLocked(seriesID)
}

// Frames returns a copy of every series, keyed by id.
func (a *Adapter) Frames() map[string]Frame {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]string, 0, len(a.series))
	for id := range a.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string]Frame, len(ids))
	for _, id := range ids {
		out[id] = a.frameLocked(id)
	}
	return out
}

func (a *Adapter) frameLocked(seriesID string) Frame {
	f := Frame{Series: seriesID, Labels: []string{}, Values: []float64{}}
	if s, ok := a.series[seriesID]; ok {
		f.Labels = append(f.Labels, s.labels...)
		f.Values = append(f.Values, s.values...)
	}
	return f
}
