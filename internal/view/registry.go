// Package view renders dashboard data into named display targets.
package view

import (
	"sort"
	"sync"
)

type Tone string

const (
	ToneNone      Tone = ""
	ToneSuccess   Tone = "success"
	ToneInfo      Tone = "info"
	ToneWarning   Tone = "warning"
	ToneDanger    Tone = "danger"
	ToneSecondary Tone = "secondary"
	TonePositive  Tone = "positive"
	ToneNegative  Tone = "negative"
	ToneNeutral   Tone = "neutral"
)

// Target is a named display slot: a page element or a terminal view.
type Target interface {
	SetText(text string)
	SetTone(tone Tone)
}

// Meter is implemented by targets that can show a fill level (0-100).
type Meter interface {
	SetLevel(percent float64)
}

// Registry maps target ids to targets. Lookups of unbound ids report false
// and callers skip them.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]Target
}

func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Target)}
}

// Bind attaches t under id, replacing any previous target.
func (r *Registry) Bind(id string, t Target) {
	r.mu.Lock()
	r.targets[id] = t
	r.mu.Unlock()
}

func (r *Registry) Unbind(id string) {
	r.mu.Lock()
	delete(r.targets, id)
	r.mu.Unlock()
}

func (r *Registry) Lookup(id string) (Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[id]
	return t, ok
}

// Bound returns the bound ids in sorted order.
func (r *Registry) Bound() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.targets))
	for id := range r.targets {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (r *Registry) write(id, text string, tone Tone) {
	t, ok := r.Lookup(id)
	if !ok {
		return
	}
	t.SetText(text)
	t.SetTone(tone)
}

func (r *Registry) level(id string, percent float64) {
	t, ok := r.Lookup(id)
	if !ok {
		return
	}
	if m, ok := t.(Meter); ok {
		m.SetLevel(percent)
	}
}
