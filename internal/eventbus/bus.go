// Package eventbus is a small typed publish/subscribe hub for dashboard events.
package eventbus

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/qdashboard/qdashboard/internal/model"
)

type Topic string

const (
	TopicTickUpdated     Topic = "tick-updated"
	TopicStatsUpdated    Topic = "stats-updated"
	TopicLanguageChanged Topic = "language-changed"
)

// LanguageChanged is the payload of TopicLanguageChanged.
type LanguageChanged struct {
	Language string `json:"language"`
}

// TickUpdated is the payload of TopicTickUpdated.
type TickUpdated struct {
	Tick       model.TickSnapshot
	Connection model.ConnectionState
}

// StatsUpdated is the payload of TopicStatsUpdated. Previous is nil on the
// first cycle.
type StatsUpdated struct {
	Stats      model.StatsSnapshot
	Previous   *model.StatsSnapshot
	Connection model.ConnectionState
}

type Event struct {
	Topic   Topic
	Payload any
}

type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Bus delivers events synchronously on the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic][]subscription
}

func New() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers fn for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.subs[topic]
			for i, s := range subs {
				if s.id == id {
					b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish calls every handler subscribed to topic. A panicking handler is
// logged and skipped.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload}
	for _, s := range subs {
		deliver(s.fn, ev)
	}
}

func deliver(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"topic", ev.Topic, "error", r, "stack", string(debug.Stack()))
		}
	}()
	fn(ev)
}

// On subscribes a handler that only receives payloads of type T. Payloads of
// any other type are logged and dropped.
func On[T any](b *Bus, topic Topic, fn func(T)) (unsubscribe func()) {
	return b.Subscribe(topic, func(ev Event) {
		v, ok := ev.Payload.(T)
		if !ok {
			slog.Warn("unexpected event payload", "topic", ev.Topic)
			return
		}
		fn(v)
	})
}
