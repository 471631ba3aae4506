package countdown

import (
	"errors"
	"sync"
	"time"

	"stretchtime/internal/core/model"
	"stretchtime/internal/core/notice"
	"stretchtime/internal/core/schedule"
	"stretchtime/internal/logger"
)

var (
	// ErrTimerBusy indicates the duration can only change while the timer is idle.
	ErrTimerBusy = errors.New("timer is not idle")
	// ErrInvalidDuration indicates a session length outside 1..MaxMinutes.
	ErrInvalidDuration = errors.New("duration must be between 1 and 1440 minutes")
)

// MaxMinutes is the longest session SetCustomDuration accepts.
const MaxMinutes = 24 * 60

const (
	messageStarted   = "Timer started! Let's stretch."
	messagePaused    = "Timer paused"
	messageReset     = "Timer reset"
	messageCompleted = "Congratulations! Stretching session complete!"
)

var milestones = map[int]string{
	60: "Last minute! Keep stretching",
	30: "30 seconds left!",
	10: "10 seconds! Finishing...",
}

type pendingNotice struct {
	message string
	kind    notice.Kind
}

// Timer is a state machine that counts a stretching session down one tick at a time.
type Timer struct {
	mu         sync.Mutex
	config     model.TimerConfig
	scheduler  schedule.Scheduler
	notices    notice.Emitter
	phase      Phase
	total      int
	remaining  int
	ticker     schedule.Task
	resetTask  schedule.Task
	// epoch changes whenever scheduled work is started or cancelled. Callbacks
	// carry the epoch they were scheduled under and are dropped once it moves.
	epoch      uint64
	events     []chan Event
	onComplete func()
	closed     bool
}

// New creates an idle Timer. A nil scheduler uses the system clock.
func New(config model.TimerConfig, scheduler schedule.Scheduler, notices notice.Emitter) *Timer {
	defaults := model.DefaultTimerConfig()
	if config.Duration < time.Second {
		config.Duration = defaults.Duration
	}
	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.CompletionReset <= 0 {
		config.CompletionReset = defaults.CompletionReset
	}
	if scheduler == nil {
		scheduler = schedule.System
	}
	if notices == nil {
		notices = notice.Discard
	}

	total := int(config.Duration / time.Second)
	return &Timer{
		config:    config,
		scheduler: scheduler,
		notices:   notices,
		phase:     PhaseIdle,
		total:     total,
		remaining: total,
	}
}

// SetCompletionEffect registers a hook run when a session completes.
func (timer *Timer) SetCompletionEffect(effect func()) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.onComplete = effect
}

// Subscribe registers a new observer channel.
func (timer *Timer) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.closed {
		close(ch)
		return ch
	}
	timer.events = append(timer.events, ch)
	return ch
}

// Snapshot returns the current state.
func (timer *Timer) Snapshot() Snapshot {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.snapshotLocked()
}

// Start begins or resumes the countdown.
func (timer *Timer) Start() {
	timer.mu.Lock()
	if timer.closed || (timer.phase != PhaseIdle && timer.phase != PhasePaused) {
		timer.mu.Unlock()
		return
	}
	fresh := timer.phase == PhaseIdle && timer.remaining == timer.total
	timer.phase = PhaseRunning
	epoch := timer.advanceEpochLocked()
	timer.ticker = timer.scheduler.Every(timer.config.TickInterval, func(tickTime time.Time) {
		timer.tick(epoch, tickTime)
	})
	now := timer.scheduler.Now()
	timer.emitLocked(Event{Type: EventPhase, Snapshot: timer.snapshotLocked(), At: now})

	pending := []pendingNotice{{message: messageStarted, kind: notice.Success}}
	// A session that starts exactly on a milestone never ticks onto it.
	if message, ok := milestones[timer.remaining]; ok && fresh {
		pending = append(pending, timer.milestoneLocked(message, now))
	}
	remaining := timer.remaining
	timer.mu.Unlock()

	logger.Debug("countdown started", "remaining", remaining)
	timer.show(pending)
}

// Pause freezes a running countdown.
func (timer *Timer) Pause() {
	timer.mu.Lock()
	if timer.phase != PhaseRunning {
		timer.mu.Unlock()
		return
	}
	timer.stopTickerLocked()
	timer.phase = PhasePaused
	timer.emitLocked(Event{Type: EventPhase, Snapshot: timer.snapshotLocked(), At: timer.scheduler.Now()})
	timer.mu.Unlock()

	timer.notices.Show(messagePaused, notice.Info)
}

// Reset stops the countdown and restores the full duration.
func (timer *Timer) Reset() {
	timer.mu.Lock()
	if timer.closed {
		timer.mu.Unlock()
		return
	}
	timer.resetLocked()
	timer.mu.Unlock()

	timer.notices.Show(messageReset, notice.Info)
}

// SetCustomDuration changes the session length. Only an idle timer accepts it.
func (timer *Timer) SetCustomDuration(minutes int) error {
	if minutes <= 0 || minutes > MaxMinutes {
		return ErrInvalidDuration
	}

	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.phase != PhaseIdle {
		return ErrTimerBusy
	}
	timer.total = minutes * 60
	timer.remaining = timer.total
	timer.emitLocked(Event{Type: EventProgress, Snapshot: timer.snapshotLocked(), At: timer.scheduler.Now()})
	return nil
}

// Close cancels scheduled work and closes observers.
func (timer *Timer) Close() {
	timer.mu.Lock()
	if timer.closed {
		timer.mu.Unlock()
		return
	}
	timer.closed = true
	timer.stopTickerLocked()
	timer.resetTask = schedule.Stop(timer.resetTask)
	events := timer.events
	timer.events = nil
	timer.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (timer *Timer) tick(epoch uint64, tickTime time.Time) {
	timer.mu.Lock()
	if timer.phase != PhaseRunning || epoch != timer.epoch {
		timer.mu.Unlock()
		return
	}

	if timer.remaining > 0 {
		timer.remaining--
	}
	timer.emitLocked(Event{Type: EventProgress, Snapshot: timer.snapshotLocked(), At: tickTime})

	var pending []pendingNotice
	if message, ok := milestones[timer.remaining]; ok {
		pending = append(pending, timer.milestoneLocked(message, tickTime))
	}

	var effect func()
	if timer.remaining == 0 {
		timer.stopTickerLocked()
		timer.phase = PhaseCompleted
		resetEpoch := timer.epoch
		timer.resetTask = timer.scheduler.After(timer.config.CompletionReset, func() {
			timer.autoReset(resetEpoch)
		})
		timer.emitLocked(Event{Type: EventCompleted, Snapshot: timer.snapshotLocked(), Message: messageCompleted, At: tickTime})
		pending = append(pending, pendingNotice{message: messageCompleted, kind: notice.Success})
		effect = timer.onComplete
	}
	timer.mu.Unlock()

	timer.show(pending)
	if effect != nil {
		logger.Info("stretching session completed")
		effect()
	}
}

func (timer *Timer) autoReset(epoch uint64) {
	timer.mu.Lock()
	if timer.phase != PhaseCompleted || epoch != timer.epoch {
		timer.mu.Unlock()
		return
	}
	timer.resetTask = nil
	timer.resetLocked()
	timer.mu.Unlock()

	timer.notices.Show(messageReset, notice.Info)
}

func (timer *Timer) resetLocked() {
	timer.stopTickerLocked()
	timer.resetTask = schedule.Stop(timer.resetTask)
	timer.phase = PhaseIdle
	timer.remaining = timer.total
	timer.emitLocked(Event{Type: EventPhase, Snapshot: timer.snapshotLocked(), At: timer.scheduler.Now()})
}

// stopTickerLocked cancels the ticker, including a tick already waiting on the lock.
func (timer *Timer) stopTickerLocked() {
	timer.ticker = schedule.Stop(timer.ticker)
	timer.advanceEpochLocked()
}

func (timer *Timer) advanceEpochLocked() uint64 {
	timer.epoch++
	return timer.epoch
}

func (timer *Timer) milestoneLocked(message string, at time.Time) pendingNotice {
	timer.emitLocked(Event{Type: EventMilestone, Snapshot: timer.snapshotLocked(), Message: message, At: at})
	return pendingNotice{message: message, kind: notice.Warning}
}

func (timer *Timer) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:            timer.phase,
		TotalSeconds:     timer.total,
		RemainingSeconds: timer.remaining,
	}
}

func (timer *Timer) show(pending []pendingNotice) {
	for _, item := range pending {
		timer.notices.Show(item.message, item.kind)
	}
}

func (timer *Timer) emitLocked(event Event) {
	for _, ch := range timer.events {
		select {
		case ch <- event:
		default:
		}
	}
}
