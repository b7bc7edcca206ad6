package view

import "sync"

// CellState is the JSON form of one memory target.
type CellState struct {
	Text  string   `json:"text"`
	Tone  Tone     `json:"tone,omitempty"`
	Level *float64 `json:"level,omitempty"`
}

// Cell is an in-memory Target and Meter.
type Cell struct {
	mu    sync.RWMutex
	state CellState
}

func (c *Cell) SetText(text string) {
	c.mu.Lock()
	c.state.Text = text
	c.mu.Unlock()
}

func (c *Cell) SetTone(tone Tone) {
	c.mu.Lock()
	c.state.Tone = tone
	c.mu.Unlock()
}

func (c *Cell) SetLevel(percent float64) {
	c.mu.Lock()
	c.state.Level = &percent
	c.mu.Unlock()
}

func (c *Cell) State() CellState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	if s.Level != nil {
		lvl := *s.Level
		s.Level = &lvl
	}
	return s
}

// Board is a fixed set of memory cells, served to the web page as JSON.
type Board struct {
	cells map[string]*Cell
}

// NewBoard creates one cell per id, or per AllTargets when ids is empty.
func NewBoard(ids ...string) *Board {
	if len(ids) == 0 {
		ids = AllTargets
	}
	b := &Board{cells: make(map[string]*Cell, len(ids))}
	for _, id := range ids {
		b.cells[id] = &Cell{}
	}
	return b
}

// BindTo registers every cell in reg.
func (b *Board) BindTo(reg *Registry) {
	for id, c := range b.cells {
		reg.Bind(id, c)
	}
}

func (b *Board) Get(id string) (CellState, bool) {
	c, ok := b.cells[id]
	if !ok {
		return CellState{}, false
	}
	return c.State(), true
}

func (b *Board) Snapshot() map[string]CellState {
	out := make(map[string]CellState, len(b.cells))
	for id, c := range b.cells {
		out[id] = c.State()
	}
	return out
}
