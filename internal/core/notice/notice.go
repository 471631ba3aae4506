package notice

import (
	"sync"
	"time"
)

// Kind classifies a transient user-facing message.
type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

// DefaultDuration is how long a notice stays visible.
const DefaultDuration = 4 * time.Second

// Emitter displays a transient typed message to the user.
type Emitter interface {
	Show(message string, kind Kind)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(message string, kind Kind)

// Show calls fn.
func (fn EmitterFunc) Show(message string, kind Kind) {
	fn(message, kind)
}

// Discard drops every notice.
var Discard Emitter = EmitterFunc(func(string, Kind) {})

// Notice is a recorded message.
type Notice struct {
	Message string
	Kind    Kind
}

// Recorder keeps every notice it is shown.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Show records the notice.
func (recorder *Recorder) Show(message string, kind Kind) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.notices = append(recorder.notices, Notice{Message: message, Kind: kind})
}

// Notices returns a copy of the recorded notices.
func (recorder *Recorder) Notices() []Notice {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]Notice(nil), recorder.notices...)
}

// Last returns the most recent notice.
func (recorder *Recorder) Last() (Notice, bool) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.notices) == 0 {
		return Notice{}, false
	}
	return recorder.notices[len(recorder.notices)-1], true
}

// Count returns how many notices of kind were recorded.
func (recorder *Recorder) Count(kind Kind) int {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	count := 0
	for _, recorded := range recorder.notices {
		if recorded.Kind == kind {
			count++
		}
	}
	return count
}

// Reset forgets recorded notices.
func (recorder *Recorder) Reset() {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.notices = nil
}

// Tee fans a notice out to every emitter.
func Tee(emitters ...Emitter) Emitter {
	return EmitterFunc(func(message string, kind Kind) {
		for _, emitter := range emitters {
			if emitter != nil {
				emitter.Show(message, kind)
			}
		}
	})
}
