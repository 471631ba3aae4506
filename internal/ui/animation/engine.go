package animation

import (
	"context"
	"image/color"
	"sync"
	"time"
)

// PulseSpec describes a colour alternation.
type PulseSpec struct {
	On       color.Color
	Off      color.Color
	Interval time.Duration
	// Duration bounds the pulse. Zero pulses until stopped.
	Duration time.Duration
}

// Engine drives colour pulses on a single target.
type Engine struct {
	// control serialises Pulse and Stop.
	control sync.Mutex
	mu      sync.Mutex
	apply   func(color.Color)
	cancel  context.CancelFunc
	done    chan struct{}
	spec    PulseSpec
}

// New creates an engine that paints through apply.
// apply runs on the engine goroutine.
func New(apply func(color.Color)) *Engine {
	return &Engine{apply: apply}
}

// Pulse replaces any running pulse. The returned channel is closed when the
// pulse ends, either by running out or by being stopped.
func (engine *Engine) Pulse(ctx context.Context, spec PulseSpec) <-chan struct{} {
	if spec.Interval <= 0 {
		spec.Interval = 500 * time.Millisecond
	}
	return engine.start(ctx, spec, func(runCtx context.Context) {
		engine.runPulse(runCtx, spec)
	})
}

// Running reports whether a pulse is active.
func (engine *Engine) Running() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.done == nil {
		return false
	}
	select {
	case <-engine.done:
		return false
	default:
		return true
	}
}

// Current returns the spec of the last started pulse.
func (engine *Engine) Current() PulseSpec {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.spec
}

// Stop terminates any active pulse and waits for it to exit.
func (engine *Engine) Stop() {
	engine.control.Lock()
	defer engine.control.Unlock()
	engine.stopLocked()
}

func (engine *Engine) stopLocked() {
	engine.mu.Lock()
	done := engine.done
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
	engine.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (engine *Engine) start(parent context.Context, spec PulseSpec, run func(context.Context)) <-chan struct{} {
	engine.control.Lock()
	defer engine.control.Unlock()
	engine.stopLocked()

	engine.mu.Lock()
	runCtx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	engine.cancel = cancel
	engine.done = done
	engine.spec = spec
	engine.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		run(runCtx)
	}()
	return done
}

func (engine *Engine) runPulse(ctx context.Context, spec PulseSpec) {
	deadline := time.Time{}
	if spec.Duration > 0 {
		deadline = time.Now().Add(spec.Duration)
	}

	lit := true
	for {
		if lit {
			engine.paint(spec.On)
		} else {
			engine.paint(spec.Off)
		}
		lit = !lit

		wait := spec.Interval
		if !deadline.IsZero() {
			left := time.Until(deadline)
			if left <= 0 {
				engine.paint(spec.Off)
				return
			}
			if left < wait {
				wait = left
			}
		}
		if !sleepWithContext(ctx, wait) {
			return
		}
	}
}

func (engine *Engine) paint(value color.Color) {
	if engine.apply != nil && value != nil {
		engine.apply(value)
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
