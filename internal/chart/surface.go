package chart

import (
	"math"
	"strings"
	"sync"
)

// MemorySurface keeps the last frame drawn onto it.
type MemorySurface struct {
	mu    sync.RWMutex
	frame Frame
	draws int
}

func (m *MemorySurface) Draw(f Frame) {
	m.mu.Lock()
	m.frame = f
	m.draws++
	m.mu.Unlock()
}

// Last returns the most recent frame and how many frames have been drawn.
func (m *MemorySurface) Last() (Frame, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame, m.draws
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of block characters, scaled between the
// series minimum and maximum. A flat series renders at the lowest level.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	top := float64(len(sparkRunes) - 1)
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * top))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
