package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task is a handle to scheduled work.
// Stop cancels future runs and reports whether the task was still live.
type Task interface {
	Stop() bool
}

// Scheduler provides time and cancelable periodic or delayed callbacks.
// This interface allows tests to drive time manually.
type Scheduler interface {
	Now() time.Time
	Every(interval time.Duration, fn func(time.Time)) Task
	After(delay time.Duration, fn func()) Task
}

// System is the default Scheduler backed by the runtime clock.
var System Scheduler = systemScheduler{}

type systemScheduler struct{}

func (systemScheduler) Now() time.Time {
	return time.Now()
}

func (systemScheduler) Every(interval time.Duration, fn func(time.Time)) Task {
	ticker := time.NewTicker(interval)
	task := &tickerTask{stopCh: make(chan struct{})}

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-task.stopCh:
				return
			case tickTime := <-ticker.C:
				if task.stopped.Load() {
					return
				}
				fn(tickTime)
			}
		}
	}()

	return task
}

func (systemScheduler) After(delay time.Duration, fn func()) Task {
	return time.AfterFunc(delay, fn)
}

type tickerTask struct {
	stopOnce sync.Once
	stopCh   chan struct{}
	stopped  atomic.Bool
}

func (task *tickerTask) Stop() bool {
	first := false
	task.stopOnce.Do(func() {
		first = true
		task.stopped.Store(true)
		close(task.stopCh)
	})
	return first
}

// Stop stops task when it is non-nil and returns nil, so callers can clear their field in one line.
func Stop(task Task) Task {
	if task != nil {
		task.Stop()
	}
	return nil
}
