package platform

import (
	"errors"
	"sync"
	"time"

	"stretchtime/internal/core/schedule"
	"stretchtime/internal/logger"
)

// PresenceMonitor calls onReturn when the user comes back after at least
// threshold of input idleness.
type PresenceMonitor struct {
	mu        sync.Mutex
	provider  IdleProvider
	threshold time.Duration
	onReturn  func()
	away      bool
	task      schedule.Task
}

// NewPresenceMonitor creates a stopped monitor.
func NewPresenceMonitor(provider IdleProvider, threshold time.Duration, onReturn func()) *PresenceMonitor {
	return &PresenceMonitor{
		provider:  provider,
		threshold: threshold,
		onReturn:  onReturn,
	}
}

// Start polls the idle provider every interval.
func (monitor *PresenceMonitor) Start(scheduler schedule.Scheduler, interval time.Duration) {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	if monitor.task != nil || monitor.provider == nil {
		return
	}
	monitor.task = scheduler.Every(interval, func(time.Time) { monitor.Check() })
}

// Check samples idleness once. Polling stops when the platform cannot report it.
func (monitor *PresenceMonitor) Check() {
	idle, err := monitor.provider.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			logger.Debug("idle detection unavailable, presence monitor stopped")
			monitor.Stop()
			return
		}
		logger.Warn("idle query failed", "error", err)
		return
	}

	monitor.mu.Lock()
	returned := monitor.away && idle < monitor.threshold
	monitor.away = idle >= monitor.threshold
	monitor.mu.Unlock()

	if returned && monitor.onReturn != nil {
		logger.Debug("user returned from idle")
		monitor.onReturn()
	}
}

// Stop ends polling.
func (monitor *PresenceMonitor) Stop() {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	monitor.task = schedule.Stop(monitor.task)
}
