// Package scheduler provides the event loop that drives one parse.
//
// All handler invocations, accumulator transitions and manager dispatch
// run on the goroutine calling Run. Work that blocks, such as fetching a
// template, runs on its own goroutine and posts its continuation back onto
// the loop, so pipeline state is only ever touched from one goroutine.
package scheduler

import (
	"context"
	"sync"
)

// Loop is a single-goroutine task queue.
type Loop struct {
	mu          sync.Mutex
	queue       []func() error
	outstanding int
	wake        chan struct{}
}

// New creates an idle loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post schedules fn for a later turn of the loop. Safe from any goroutine.
func (l *Loop) Post(fn func() error) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
}

// Hold marks one piece of off-loop work as outstanding. Run keeps waiting
// until every hold is released. The returned function is idempotent.
func (l *Loop) Hold() (release func()) {
	l.mu.Lock()
	l.outstanding++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.outstanding--
			l.mu.Unlock()
			l.signal()
		})
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether tasks are queued or work is outstanding.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) > 0 || l.outstanding > 0
}

// Run executes posted tasks one at a time until the loop is idle. It
// returns the first error a task returned, or ctx.Err() if the context
// ends first. Queued tasks are discarded after an error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 && l.outstanding == 0 {
			l.mu.Unlock()
			return nil
		}
		var task func() error
		if len(l.queue) > 0 {
			task = l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
		}
		l.mu.Unlock()

		if task == nil {
			select {
			case <-l.wake:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(); err != nil {
			l.mu.Lock()
			l.queue = nil
			l.mu.Unlock()
			return err
		}
	}
}

// Defer runs work on its own goroutine and posts then(result, err) back
// onto the loop. The loop stays busy until then has been queued.
func Defer[T any](l *Loop, work func() (T, error), then func(T, error) error) {
	release := l.Hold()
	go func() {
		v, err := work()
		l.Post(func() error { return then(v, err) })
		release()
	}()
}
