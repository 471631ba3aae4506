package countdown

import (
	"fmt"
	"time"
)

// Phase is the discrete state of the countdown.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhasePaused    Phase = "paused"
	PhaseCompleted Phase = "completed"
)

// Band is the progress colour tier.
type Band string

const (
	BandDefault   Band = "default"
	BandHalfway   Band = "halfway"
	BandFinishing Band = "finishing"
)

// EventType defines the type of countdown event.
type EventType string

const (
	EventPhase     EventType = "phase"
	EventProgress  EventType = "progress"
	EventMilestone EventType = "milestone"
	EventCompleted EventType = "completed"
)

// Snapshot is a point-in-time copy of the countdown state.
type Snapshot struct {
	Phase            Phase
	TotalSeconds     int
	RemainingSeconds int
}

// Progress returns the completed fraction in [0, 1].
func (snapshot Snapshot) Progress() float64 {
	if snapshot.TotalSeconds <= 0 {
		return 0
	}
	return float64(snapshot.TotalSeconds-snapshot.RemainingSeconds) / float64(snapshot.TotalSeconds)
}

// Band returns the colour tier for the current progress.
func (snapshot Snapshot) Band() Band {
	progress := snapshot.Progress()
	switch {
	case progress >= 0.8:
		return BandFinishing
	case progress >= 0.5:
		return BandHalfway
	default:
		return BandDefault
	}
}

// NearCompletion reports whether ten or fewer seconds remain.
func (snapshot Snapshot) NearCompletion() bool {
	return snapshot.RemainingSeconds > 0 && snapshot.RemainingSeconds <= 10
}

// Display renders the remaining time as MM:SS.
func (snapshot Snapshot) Display() string {
	return FormatSeconds(snapshot.RemainingSeconds)
}

// FormatSeconds renders seconds as zero padded MM:SS.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Event represents a countdown update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Message  string
	At       time.Time
}
