package animation

import (
	"context"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type canvasRecorder struct {
	mu     sync.Mutex
	colors []color.Color
}

func (recorder *canvasRecorder) apply(value color.Color) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.colors = append(recorder.colors, value)
}

func (recorder *canvasRecorder) snapshot() []color.Color {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]color.Color(nil), recorder.colors...)
}

func TestPulseEndsOnOffColour(t *testing.T) {
	recorder := &canvasRecorder{}
	engine := New(recorder.apply)

	done := engine.Pulse(context.Background(), PulseSpec{
		On:       NeonGreen,
		Off:      Foreground,
		Interval: 5 * time.Millisecond,
		Duration: 30 * time.Millisecond,
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("bounded pulse did not finish")
	}

	colors := recorder.snapshot()
	require.NotEmpty(t, colors)
	assert.Equal(t, NeonGreen, colors[0])
	assert.Equal(t, Foreground, colors[len(colors)-1])
	assert.Contains(t, colors[1:], color.Color(Foreground))
	assert.False(t, engine.Running())
}

func TestStopWaitsForUnboundedPulse(t *testing.T) {
	recorder := &canvasRecorder{}
	engine := New(recorder.apply)

	done := engine.Pulse(context.Background(), NearCompletion())
	assert.True(t, engine.Running())
	assert.Equal(t, NearCompletion(), engine.Current())

	engine.Stop()
	select {
	case <-done:
	default:
		t.Fatal("Stop returned before the pulse exited")
	}
	assert.False(t, engine.Running())
	engine.Stop()
}

func TestPulseReplacesRunningPulse(t *testing.T) {
	recorder := &canvasRecorder{}
	engine := New(recorder.apply)

	first := engine.Pulse(context.Background(), NearCompletion())
	second := engine.Pulse(context.Background(), CompletionGlow())

	select {
	case <-first:
	default:
		t.Fatal("first pulse still running")
	}
	assert.Equal(t, CompletionGlow(), engine.Current())
	engine.Stop()
	<-second
}

func TestPulseHonoursParentContext(t *testing.T) {
	engine := New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := engine.Pulse(ctx, PulseSpec{On: NeonPink, Off: Foreground})
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pulse ignored cancellation")
	}
}

func TestPresets(t *testing.T) {
	glow := CompletionGlow()
	assert.Equal(t, CompletionGlowDuration, glow.Duration)
	assert.Equal(t, NeonGreen, glow.On)

	near := NearCompletion()
	assert.Zero(t, near.Duration)
	assert.Equal(t, Foreground, near.Off)
}
