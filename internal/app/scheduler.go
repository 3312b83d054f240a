package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/justyntemme/dirstat/internal/session"
)

// loopScheduler runs timer callbacks on the control goroutine by posting
// them to its call queue. A callback whose timer was stopped after it fired
// but before the loop got to it is dropped.
type loopScheduler struct {
	calls chan<- func()
	done  <-chan struct{}
}

type loopTimer struct {
	stopped  atomic.Bool
	stopOnce sync.Once
	stop     func()
}

func (t *loopTimer) Stop() {
	t.stopped.Store(true)
	t.stopOnce.Do(t.stop)
}

// post queues fn unless the timer was stopped or the loop is gone.
func (s *loopScheduler) post(t *loopTimer, fn func()) {
	select {
	case s.calls <- func() {
		if !t.stopped.Load() {
			fn()
		}
	}:
	case <-s.done:
	}
}

func (s *loopScheduler) AfterFunc(d time.Duration, fn func()) session.Timer {
	t := &loopTimer{}
	tm := time.AfterFunc(d, func() { s.post(t, fn) })
	t.stop = func() { tm.Stop() }
	return t
}

func (s *loopScheduler) Every(d time.Duration, fn func()) session.Timer {
	t := &loopTimer{}
	ticker := time.NewTicker(d)
	quit := make(chan struct{})
	t.stop = func() {
		ticker.Stop()
		close(quit)
	}
	go func() {
		for {
			select {
			case <-ticker.C:
				s.post(t, fn)
			case <-quit:
				return
			case <-s.done:
				return
			}
		}
	}()
	return t
}
