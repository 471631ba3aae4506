package schedule

import (
	"sync"
	"time"
)

// Manual is a Scheduler whose clock only moves when Advance is called.
// Due callbacks run synchronously on the caller's goroutine, in due order.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	owner    *Manual
	seq      int
	due      time.Time
	interval time.Duration
	every    func(time.Time)
	once     func()
	stopped  bool
}

// NewManual creates a Manual scheduler starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (manual *Manual) Now() time.Time {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.now
}

// Every registers fn to run each interval. It panics on a non-positive interval, like time.NewTicker.
func (manual *Manual) Every(interval time.Duration, fn func(time.Time)) Task {
	if interval <= 0 {
		panic("schedule: non-positive interval for Every")
	}
	return manual.add(&manualTask{interval: interval, every: fn}, interval)
}

// After registers fn to run once after delay.
func (manual *Manual) After(delay time.Duration, fn func()) Task {
	if delay < 0 {
		delay = 0
	}
	return manual.add(&manualTask{once: fn}, delay)
}

// Advance moves the clock forward by delta, running every callback that falls due.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	target := manual.now.Add(delta)
	manual.mu.Unlock()

	for {
		manual.mu.Lock()
		task := manual.nextDueLocked(target)
		if task == nil {
			manual.now = target
			manual.mu.Unlock()
			return
		}
		manual.now = task.due
		at := task.due
		if task.interval > 0 {
			task.due = task.due.Add(task.interval)
		} else {
			task.stopped = true
		}
		manual.mu.Unlock()

		if task.every != nil {
			task.every(at)
		} else {
			task.once()
		}
	}
}

// AdvanceTo moves the clock to at. Times in the past are ignored.
func (manual *Manual) AdvanceTo(at time.Time) {
	delta := at.Sub(manual.Now())
	if delta > 0 {
		manual.Advance(delta)
	}
}

// Pending returns the number of live tasks.
func (manual *Manual) Pending() int {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	count := 0
	for _, task := range manual.tasks {
		if !task.stopped {
			count++
		}
	}
	return count
}

func (manual *Manual) add(task *manualTask, delay time.Duration) Task {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.seq++
	task.owner = manual
	task.seq = manual.seq
	task.due = manual.now.Add(delay)
	manual.tasks = append(manual.tasks, task)
	return task
}

func (manual *Manual) nextDueLocked(target time.Time) *manualTask {
	live := manual.tasks[:0]
	var next *manualTask
	for _, task := range manual.tasks {
		if task.stopped {
			continue
		}
		live = append(live, task)
		if task.due.After(target) {
			continue
		}
		if next == nil || task.due.Before(next.due) || (task.due.Equal(next.due) && task.seq < next.seq) {
			next = task
		}
	}
	manual.tasks = live
	return next
}

func (task *manualTask) Stop() bool {
	task.owner.mu.Lock()
	defer task.owner.mu.Unlock()
	if task.stopped {
		return false
	}
	task.stopped = true
	return true
}
