package training

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs fn repeatedly until the returned cancel func is called.
// After cancel returns, fn is never invoked again.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// Loop is a single-goroutine event loop. Everything posted to it runs
// sequentially on the goroutine that called Run.
type Loop struct {
	events chan func()
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{events: make(chan func())}
}

// Run executes posted events until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		}
	}
}

// Post queues fn on the loop. It returns false if ctx ends first.
func (l *Loop) Post(ctx context.Context, fn func()) bool {
	select {
	case l.events <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// LoopScheduler delivers ticks onto a Loop, so a Machine driven by it is
// only ever touched from the loop goroutine.
type LoopScheduler struct {
	loop *Loop
}

// NewLoopScheduler schedules onto loop.
func NewLoopScheduler(loop *Loop) *LoopScheduler {
	return &LoopScheduler{loop: loop}
}

// Every starts a ticker goroutine. Cancel stops it and waits for it to
// exit; it is safe to call from the loop goroutine and more than once.
func (s *LoopScheduler) Every(interval time.Duration, fn func()) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	var cancelled atomic.Bool

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
			}
			// a tick already queued when cancel runs is dropped here
			ev := func() {
				if !cancelled.Load() {
					fn()
				}
			}
			select {
			case s.loop.events <- ev:
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelled.Store(true)
			close(stop)
			<-done
		})
	}
}

// ManualScheduler is a deterministic Scheduler for tests and step-through
// tooling. Fire runs every active schedule once.
type ManualScheduler struct {
	next   int
	active map[int]func()
}

// NewManualScheduler returns a scheduler with no active schedules.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{active: make(map[int]func())}
}

func (s *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	id := s.next
	s.next++
	s.active[id] = fn
	return func() { delete(s.active, id) }
}

// Active returns the number of schedules not yet cancelled.
func (s *ManualScheduler) Active() int { return len(s.active) }

// Fire delivers one tick to each active schedule, n times.
func (s *ManualScheduler) Fire(n int) {
	for range n {
		ids := make([]int, 0, len(s.active))
		for id := range s.active {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			// skip schedules cancelled by an earlier fn in this round
			if fn, ok := s.active[id]; ok {
				fn()
			}
		}
	}
}
