package animation

import (
	"image/color"
	"time"
)

var (
	// Foreground is the resting colour of the timer digits.
	Foreground = color.NRGBA{R: 0xF5, G: 0xF7, B: 0xFA, A: 0xFF}
	// NeonGreen marks the final stretch and the completion glow.
	NeonGreen = color.NRGBA{R: 0x39, G: 0xFF, B: 0x14, A: 0xFF}
	// NeonYellow marks the halfway band.
	NeonYellow = color.NRGBA{R: 0xF5, G: 0xF0, B: 0x1F, A: 0xFF}
	// NeonCyan is the default band.
	NeonCyan = color.NRGBA{R: 0x00, G: 0xD4, B: 0xFF, A: 0xFF}
	// NeonPink highlights the last seconds.
	NeonPink = color.NRGBA{R: 0xFF, G: 0x2E, B: 0x88, A: 0xFF}
)

// CompletionGlowDuration is how long the completion glow lasts.
const CompletionGlowDuration = 2 * time.Second

// NearCompletion pulses the digits until stopped.
func NearCompletion() PulseSpec {
	return PulseSpec{
		On:       NeonPink,
		Off:      Foreground,
		Interval: 500 * time.Millisecond,
	}
}

// CompletionGlow flashes the digits green for two seconds.
func CompletionGlow() PulseSpec {
	return PulseSpec{
		On:       NeonGreen,
		Off:      Foreground,
		Interval: 250 * time.Millisecond,
		Duration: CompletionGlowDuration,
	}
}
