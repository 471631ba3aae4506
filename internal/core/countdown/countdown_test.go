package countdown

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"stretchtime/internal/core/model"
	"stretchtime/internal/core/notice"
	"stretchtime/internal/core/schedule"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestTimer(t *testing.T, duration time.Duration) (*Timer, *schedule.Manual, *notice.Recorder) {
	t.Helper()
	clock := schedule.NewManual(time.Date(2024, time.May, 1, 10, 0, 0, 0, time.Local))
	recorder := &notice.Recorder{}
	config := model.DefaultTimerConfig()
	config.Duration = duration
	timer := New(config, clock, recorder)
	t.Cleanup(timer.Close)
	return timer, clock, recorder
}

func TestNewTimerStartsIdleWithFullDuration(t *testing.T) {
	timer, _, _ := newTestTimer(t, 5*time.Minute)

	snapshot := timer.Snapshot()
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Equal(t, 300, snapshot.TotalSeconds)
	assert.Equal(t, 300, snapshot.RemainingSeconds)
	assert.Equal(t, "05:00", snapshot.Display())
}

func TestNewTimerFallsBackToDefaults(t *testing.T) {
	timer := New(model.TimerConfig{}, schedule.NewManual(time.Now()), nil)
	defer timer.Close()

	assert.Equal(t, 300, timer.Snapshot().TotalSeconds)
}

func TestRunningForDurationCompletes(t *testing.T) {
	for _, seconds := range []int{1, 5, 59, 61, 300} {
		timer, clock, _ := newTestTimer(t, time.Duration(seconds)*time.Second)

		timer.Start()
		clock.Advance(time.Duration(seconds) * time.Second)

		snapshot := timer.Snapshot()
		assert.Equal(t, PhaseCompleted, snapshot.Phase, "duration %ds", seconds)
		assert.Zero(t, snapshot.RemainingSeconds, "duration %ds", seconds)
		assert.Equal(t, 1.0, snapshot.Progress())
	}
}

func TestFiveSecondScenarioAutoResets(t *testing.T) {
	timer, clock, recorder := newTestTimer(t, 5*time.Second)
	completed := 0
	timer.SetCompletionEffect(func() { completed++ })

	timer.Start()
	clock.Advance(5 * time.Second)
	assert.Equal(t, PhaseCompleted, timer.Snapshot().Phase)
	assert.Equal(t, 1, completed)

	clock.Advance(3 * time.Second)
	snapshot := timer.Snapshot()
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Equal(t, 5, snapshot.RemainingSeconds)
	assert.Zero(t, clock.Pending(), "no task may outlive the session")

	last, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notice.Notice{Message: messageReset, Kind: notice.Info}, last)
}

func TestCompletionDoesNotTickFurther(t *testing.T) {
	timer, clock, recorder := newTestTimer(t, 2*time.Second)

	timer.Start()
	clock.Advance(2500 * time.Millisecond)

	assert.Equal(t, PhaseCompleted, timer.Snapshot().Phase)
	assert.Equal(t, 1, countMessage(recorder, messageCompleted))
}

func TestPauseResumePreservesRemaining(t *testing.T) {
	timer, clock, recorder := newTestTimer(t, time.Minute)

	timer.Start()
	clock.Advance(12 * time.Second)
	timer.Pause()
	paused := timer.Snapshot()
	assert.Equal(t, PhasePaused, paused.Phase)
	assert.Equal(t, 48, paused.RemainingSeconds)

	clock.Advance(time.Hour)
	assert.Equal(t, paused, timer.Snapshot(), "paused timer must not tick")
	assert.Zero(t, clock.Pending())

	timer.Start()
	assert.Equal(t, PhaseRunning, timer.Snapshot().Phase)
	assert.Equal(t, 48, timer.Snapshot().RemainingSeconds)
	clock.Advance(48 * time.Second)
	assert.Equal(t, PhaseCompleted, timer.Snapshot().Phase)

	assert.Equal(t, 1, countMessage(recorder, messagePaused))
	assert.Equal(t, 2, countMessage(recorder, messageStarted))
}

// recordingScheduler keeps every periodic callback so a test can deliver a
// tick that was already in flight when its ticker was stopped.
type recordingScheduler struct {
	*schedule.Manual
	mu    sync.Mutex
	ticks []func(time.Time)
}

func (scheduler *recordingScheduler) Every(interval time.Duration, fn func(time.Time)) schedule.Task {
	scheduler.mu.Lock()
	scheduler.ticks = append(scheduler.ticks, fn)
	scheduler.mu.Unlock()
	return scheduler.Manual.Every(interval, fn)
}

func (scheduler *recordingScheduler) tick(index int, at time.Time) {
	scheduler.mu.Lock()
	fn := scheduler.ticks[index]
	scheduler.mu.Unlock()
	fn(at)
}

func TestLateTickFromStoppedTickerIsIgnored(t *testing.T) {
	scheduler := &recordingScheduler{Manual: schedule.NewManual(time.Date(2024, time.May, 1, 10, 0, 0, 0, time.Local))}
	timer := New(model.DefaultTimerConfig(), scheduler, nil)
	defer timer.Close()

	timer.Start()
	scheduler.Advance(time.Second)
	timer.Pause()
	timer.Start()
	require.Equal(t, 299, timer.Snapshot().RemainingSeconds)

	scheduler.tick(0, scheduler.Now())
	assert.Equal(t, 299, timer.Snapshot().RemainingSeconds, "pause/resume must preserve the remaining time")

	timer.Reset()
	timer.Start()
	scheduler.tick(1, scheduler.Now())
	assert.Equal(t, 300, timer.Snapshot().RemainingSeconds, "a reset discards ticks of the previous run")

	scheduler.Advance(time.Second)
	assert.Equal(t, 299, timer.Snapshot().RemainingSeconds)
}

func TestStaleAutoResetIsIgnored(t *testing.T) {
	timer, clock, _ := newTestTimer(t, 2*time.Second)

	timer.Start()
	clock.Advance(2 * time.Second)
	require.Equal(t, PhaseCompleted, timer.Snapshot().Phase)

	// A manual reset and a new run that completes again must get the full
	// three seconds before the second auto-reset.
	timer.Reset()
	timer.Start()
	clock.Advance(2 * time.Second)
	require.Equal(t, PhaseCompleted, timer.Snapshot().Phase)
	clock.Advance(2 * time.Second)
	assert.Equal(t, PhaseCompleted, timer.Snapshot().Phase)
	clock.Advance(time.Second)
	assert.Equal(t, PhaseIdle, timer.Snapshot().Phase)
}

func TestStartAndPauseGuards(t *testing.T) {
	timer, clock, recorder := newTestTimer(t, time.Minute)

	timer.Pause()
	assert.Empty(t, recorder.Notices(), "pause while idle is a no-op")

	timer.Start()
	timer.Start()
	assert.Equal(t, 1, clock.Pending(), "second start must not add a ticker")
	assert.Equal(t, 1, countMessage(recorder, messageStarted))

	clock.Advance(time.Minute)
	require.Equal(t, PhaseCompleted, timer.Snapshot().Phase)
	timer.Start()
	timer.Pause()
	assert.Equal(t, PhaseCompleted, timer.Snapshot().Phase)
}

func TestResetFromEveryPhase(t *testing.T) {
	drive := map[Phase]func(*Timer, *schedule.Manual){
		PhaseIdle: func(*Timer, *schedule.Manual) {},
		PhaseRunning: func(timer *Timer, clock *schedule.Manual) {
			timer.Start()
			clock.Advance(7 * time.Second)
		},
		PhasePaused: func(timer *Timer, clock *schedule.Manual) {
			timer.Start()
			clock.Advance(7 * time.Second)
			timer.Pause()
		},
		PhaseCompleted: func(timer *Timer, clock *schedule.Manual) {
			timer.Start()
			clock.Advance(20 * time.Second)
		},
	}

	for phase, setup := range drive {
		t.Run(string(phase), func(t *testing.T) {
			timer, clock, recorder := newTestTimer(t, 20*time.Second)
			setup(timer, clock)
			require.Equal(t, phase, timer.Snapshot().Phase)

			timer.Reset()

			snapshot := timer.Snapshot()
			assert.Equal(t, PhaseIdle, snapshot.Phase)
			assert.Equal(t, snapshot.TotalSeconds, snapshot.RemainingSeconds)
			assert.Zero(t, clock.Pending())
			assert.Equal(t, 1, countMessage(recorder, messageReset))
		})
	}
}

func TestMilestonesFireOncePerRun(t *testing.T) {
	timer, clock, recorder := newTestTimer(t, 2*time.Minute)

	timer.Start()
	clock.Advance(2 * time.Minute)

	warnings := recorder.Count(notice.Warning)
	assert.Equal(t, 3, warnings)
	for _, message := range milestones {
		assert.Equal(t, 1, countMessage(recorder, message), message)
	}
}

func TestMilestonesSurvivePauseResume(t *testing.T) {
	timer, clock, recorder := newTestTimer(t, 2*time.Minute)

	timer.Start()
	clock.Advance(90 * time.Second)
	timer.Pause()
	timer.Start()
	clock.Advance(30 * time.Second)

	assert.Equal(t, 3, recorder.Count(notice.Warning))
}

func TestMilestoneAtSessionStart(t *testing.T) {
	timer, clock, recorder := newTestTimer(t, time.Minute)

	timer.Start()
	clock.Advance(time.Minute)

	assert.Equal(t, 1, countMessage(recorder, milestones[60]))
	assert.Equal(t, 3, recorder.Count(notice.Warning))
}

func TestShortSessionSkipsLargerMilestones(t *testing.T) {
	timer, clock, recorder := newTestTimer(t, 20*time.Second)

	timer.Start()
	clock.Advance(20 * time.Second)

	assert.Equal(t, 1, recorder.Count(notice.Warning))
	assert.Equal(t, 1, countMessage(recorder, milestones[10]))
}

func TestSetCustomDuration(t *testing.T) {
	timer, clock, _ := newTestTimer(t, 5*time.Minute)

	require.NoError(t, timer.SetCustomDuration(10))
	snapshot := timer.Snapshot()
	assert.Equal(t, 600, snapshot.TotalSeconds)
	assert.Equal(t, 600, snapshot.RemainingSeconds)

	assert.ErrorIs(t, timer.SetCustomDuration(0), ErrInvalidDuration)
	assert.ErrorIs(t, timer.SetCustomDuration(MaxMinutes+1), ErrInvalidDuration)
	assert.ErrorIs(t, timer.SetCustomDuration(math.MaxInt/30), ErrInvalidDuration)
	assert.Equal(t, 600, timer.Snapshot().TotalSeconds, "rejected lengths leave the session unchanged")

	timer.Start()
	assert.ErrorIs(t, timer.SetCustomDuration(2), ErrTimerBusy)
	timer.Pause()
	assert.ErrorIs(t, timer.SetCustomDuration(2), ErrTimerBusy)
	assert.Equal(t, 600, timer.Snapshot().TotalSeconds)

	timer.Reset()
	clock.Advance(time.Second)
	require.NoError(t, timer.SetCustomDuration(2))
	assert.Equal(t, 120, timer.Snapshot().RemainingSeconds)

	require.NoError(t, timer.SetCustomDuration(MaxMinutes))
	assert.Equal(t, MaxMinutes*60, timer.Snapshot().TotalSeconds)
}

func TestSnapshotBandsAndNearCompletion(t *testing.T) {
	tests := []struct {
		remaining int
		band      Band
		near      bool
		display   string
	}{
		{remaining: 100, band: BandDefault, near: false, display: "01:40"},
		{remaining: 51, band: BandDefault, near: false, display: "00:51"},
		{remaining: 50, band: BandHalfway, near: false, display: "00:50"},
		{remaining: 21, band: BandHalfway, near: false, display: "00:21"},
		{remaining: 20, band: BandFinishing, near: false, display: "00:20"},
		{remaining: 10, band: BandFinishing, near: true, display: "00:10"},
		{remaining: 1, band: BandFinishing, near: true, display: "00:01"},
		{remaining: 0, band: BandFinishing, near: false, display: "00:00"},
	}

	for _, tt := range tests {
		snapshot := Snapshot{TotalSeconds: 100, RemainingSeconds: tt.remaining}
		assert.Equal(t, tt.band, snapshot.Band(), "remaining %d", tt.remaining)
		assert.Equal(t, tt.near, snapshot.NearCompletion(), "remaining %d", tt.remaining)
		assert.Equal(t, tt.display, snapshot.Display())
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "00:00", FormatSeconds(-4))
	assert.Equal(t, "05:00", FormatSeconds(300))
	assert.Equal(t, "99:59", FormatSeconds(5999))
}

func TestSubscribeReceivesLifecycle(t *testing.T) {
	timer, clock, _ := newTestTimer(t, 3*time.Second)
	events := timer.Subscribe(32)

	timer.Start()
	clock.Advance(3 * time.Second)

	var types []EventType
	for len(events) > 0 {
		event := <-events
		types = append(types, event.Type)
	}
	assert.Equal(t, []EventType{
		EventPhase,
		EventProgress,
		EventProgress,
		EventProgress,
		EventCompleted,
	}, types)
}

func TestCloseStopsWorkAndClosesObservers(t *testing.T) {
	timer, clock, _ := newTestTimer(t, time.Minute)
	events := timer.Subscribe(1)

	timer.Start()
	timer.Close()
	timer.Close()

	assert.Zero(t, clock.Pending())
	for range events {
	}
	_, open := <-timer.Subscribe(1)
	assert.False(t, open)

	timer.Start()
	assert.Zero(t, clock.Pending(), "closed timer must not start")
}

func TestSystemSchedulerRunLeavesNoGoroutines(t *testing.T) {
	config := model.TimerConfig{
		Duration:        2 * time.Second,
		TickInterval:    time.Millisecond,
		CompletionReset: time.Millisecond,
	}
	recorder := &notice.Recorder{}
	timer := New(config, schedule.System, recorder)
	defer timer.Close()

	timer.Start()
	require.Eventually(t, func() bool {
		return countMessage(recorder, messageReset) == 1
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, PhaseIdle, timer.Snapshot().Phase)
}

func countMessage(recorder *notice.Recorder, message string) int {
	count := 0
	for _, recorded := range recorder.Notices() {
		if recorded.Message == message {
			count++
		}
	}
	return count
}
