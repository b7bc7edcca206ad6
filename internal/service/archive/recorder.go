// Package archive copies live tick and stats snapshots into the snapshot
// store without slowing down the polling loops.
package archive

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/qdashboard/qdashboard/internal/eventbus"
	"github.com/qdashboard/qdashboard/internal/model"
)

const DefaultBuffer = 256

type snapshotWriter interface {
	InsertTick(ctx context.Context, t *model.TickSnapshot) error
	InsertStats(ctx context.Context, s *model.StatsSnapshot) error
}

type record struct {
	tick  *model.TickSnapshot
	stats *model.StatsSnapshot
}

// Recorder receives snapshots from the event bus and writes them from its
// own goroutine. Synthetic snapshots are not archived.
type Recorder struct {
	w  snapshotWriter
	in chan record

	written atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

func NewRecorder(w snapshotWriter, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Recorder{w: w, in: make(chan record, buffer)}
}

// Subscribe attaches the recorder to the tick and stats topics.
func (r *Recorder) Subscribe(bus *eventbus.Bus) (unsubscribe func()) {
	unTick := eventbus.On(bus, eventbus.TopicTickUpdated, func(ev eventbus.TickUpdated) {
		if ev.Connection != model.ConnectionLiveReal {
			return
		}
		t := ev.Tick
		r.tryEnqueue(record{tick: &t})
	})
	unStats := eventbus.On(bus, eventbus.TopicStatsUpdated, func(ev eventbus.StatsUpdated) {
		if ev.Connection != model.ConnectionLiveReal {
			return
		}
		s := ev.Stats
		r.tryEnqueue(record{stats: &s})
	})
	return func() {
		unTick()
		unStats()
	}
}

// tryEnqueue queues rec without blocking. A full buffer drops the record.
func (r *Recorder) tryEnqueue(rec record) bool {
	select {
	case r.in <- rec:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// Run writes queued records until ctx is done, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	slog.Info("archive recorder started", "buffer", cap(r.in))
	for {
		select {
		case <-ctx.Done():
			r.drain()
			slog.Info("archive recorder stopped",
				"written", r.written.Load(), "dropped", r.dropped.Load(), "failed", r.failed.Load())
			return
		case rec := <-r.in:
			r.write(ctx, rec)
		}
	}
}

func (r *Recorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case rec := <-r.in:
			r.write(ctx, rec)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, rec record) {
	var err error
	switch {
	case rec.tick != nil:
		err = r.w.InsertTick(ctx, rec.tick)
	case rec.stats != nil:
		err = r.w.InsertStats(ctx, rec.stats)
	default:
		return
	}
	if err != nil {
		r.failed.Add(1)
		slog.Error("failed to archive snapshot", "error", err)
		return
	}
	r.written.Add(1)
}

// Counters reports written, dropped and failed records.
func (r *Recorder) Counters() (written, dropped, failed int64) {
	return r.written.Load(), r.dropped.Load(), r.failed.Load()
}
