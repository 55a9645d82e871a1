package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
)

// Emitter receives a timer's message when it fires.
type Emitter func(ctx context.Context, message interface{}) error

var (
	TimerExists   = errors.New("timer id exists")
	TimerNotFound = errors.New("timer not found")
)

// TimerEntry is one scheduled message.  A duration spec fires once; a
// cron spec fires repeatedly.
type TimerEntry struct {
	Id      string      `json:"id"`
	Message interface{} `json:"message"`
	Spec    string      `json:"spec"`

	cron *cronexpr.Expression
	in   time.Duration
	ctl  chan bool
}

// Timers schedules messages for a Service: injected stimulus ("set
// enabled to false in 10s") or periodic ticks ("step every minute").
type Timers struct {
	sync.Mutex

	timers map[string]*TimerEntry
	ctl    chan bool
	emit   Emitter
}

// NewTimers makes a Timers that fires into the given Emitter.
func NewTimers(emitter Emitter) *Timers {
	return &Timers{
		timers: make(map[string]*TimerEntry, 32),
		emit:   emitter,
		ctl:    make(chan bool),
	}
}

// Add schedules a message.  The spec is either a Go duration
// ("10s", "1m30s") for a one-shot timer or a cron expression
// ("*/5 * * * * * *", seconds-resolution) for a repeating one.
func (ts *Timers) Add(ctx context.Context, id string, message interface{}, spec string) error {
	ts.Lock()
	defer ts.Unlock()

	if _, have := ts.timers[id]; have {
		return TimerExists
	}

	te := &TimerEntry{
		Id:      id,
		Message: message,
		Spec:    spec,
		ctl:     make(chan bool),
	}

	if in, err := time.ParseDuration(spec); err == nil {
		te.in = in
	} else {
		cron, err := cronexpr.Parse(spec)
		if err != nil {
			return err
		}
		te.cron = cron
	}

	ts.timers[id] = te

	go ts.drive(ctx, te)

	return nil
}

func (ts *Timers) drive(ctx context.Context, te *TimerEntry) {
	rem := func() {
		ts.Lock()
		delete(ts.timers, te.Id)
		ts.Unlock()
	}

	for {
		var in time.Duration
		if te.cron != nil {
			next := te.cron.Next(time.Now())
			if next.IsZero() {
				rem()
				return
			}
			in = time.Until(next)
		} else {
			in = te.in
		}

		timer := time.NewTimer(in)
		select {
		case <-ctx.Done():
			timer.Stop()
			rem()
			return
		case <-te.ctl:
			// We only get here via a Rem() call.
			timer.Stop()
			return
		case <-ts.ctl:
			timer.Stop()
			rem()
			return
		case <-timer.C:
			if err := ts.emit(ctx, te.Message); err != nil {
				log.Printf("timer %s emit error %v", te.Id, err)
			}
			if te.cron == nil {
				// One-shot.
				rem()
				return
			}
		}
	}
}

// Rem cancels a timer.
func (ts *Timers) Rem(ctx context.Context, id string) error {
	ts.Lock()
	defer ts.Unlock()

	te, have := ts.timers[id]
	if !have {
		return TimerNotFound
	}
	delete(ts.timers, id)
	close(te.ctl)
	return nil
}

// Shutdown stops all timers.
func (ts *Timers) Shutdown() error {
	close(ts.ctl)
	return nil
}
