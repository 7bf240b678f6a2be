package gamelog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/crwordle/internal/game"
)

// Recorder is the slice of Store the sink writes to.
type Recorder interface {
	Record(ctx context.Context, owner string, r game.RoundRecord) error
}

type entry struct {
	owner string
	rec   game.RoundRecord
	after func(game.RoundRecord)
}

// Sink records finished rounds on a background goroutine so a session never
// waits on the database. When the buffer is full the record is dropped and
// logged.
type Sink struct {
	rec     Recorder
	ch      chan entry
	done    chan struct{}
	timeout time.Duration

	closeOnce sync.Once
}

// NewSink starts the worker. buffer ≤ 0 means 64.
func NewSink(rec Recorder, buffer int) *Sink {
	if buffer <= 0 {
		buffer = 64
	}
	s := &Sink{
		rec:     rec,
		ch:      make(chan entry, buffer),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
	go s.run()
	return s
}

func (s *Sink) run() {
	defer close(s.done)
	for e := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.rec.Record(ctx, e.owner, e.rec); err != nil {
			log.Warn().Err(err).Str("owner", e.owner).Str("round", e.rec.RoundID).Msg("record round")
		}
		cancel()
		if e.after != nil {
			e.after(e.rec)
		}
	}
}

// For returns an observer that logs rounds under owner. after, if set, runs
// on the worker once the record is written (or failed).
func (s *Sink) For(owner string, after func(game.RoundRecord)) game.RoundObserver {
	return game.ObserverFunc(func(r game.RoundRecord) {
		select {
		case s.ch <- entry{owner: owner, rec: r, after: after}:
		default:
			log.Warn().Str("owner", owner).Str("round", r.RoundID).Msg("round log full, dropping")
		}
	})
}

// Close drains pending records and stops the worker.
func (s *Sink) Close() {
	s.closeOnce.Do(func() { close(s.ch) })
	<-s.done
}
