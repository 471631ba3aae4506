package timerview

import (
	"image/color"

	"fyne.io/fyne/v2"

	"stretchtime/internal/core/countdown"
	"stretchtime/internal/ui/animation"
)

type controls struct {
	startLabel    string
	startEnabled  bool
	pauseLabel    string
	pauseEnabled  bool
	lengthEnabled bool
}

func controlsFor(phase countdown.Phase) controls {
	switch phase {
	case countdown.PhaseRunning:
		return controls{startLabel: "Running...", pauseLabel: "Pause", pauseEnabled: true}
	case countdown.PhasePaused:
		return controls{startLabel: "Resume", startEnabled: true, pauseLabel: "Paused"}
	case countdown.PhaseCompleted:
		return controls{startLabel: "Start", pauseLabel: "Pause"}
	default:
		return controls{startLabel: "Start", startEnabled: true, pauseLabel: "Pause", lengthEnabled: true}
	}
}

func phaseText(phase countdown.Phase) string {
	switch phase {
	case countdown.PhaseRunning:
		return "Stretching"
	case countdown.PhasePaused:
		return "Paused"
	case countdown.PhaseCompleted:
		return "Session complete!"
	default:
		return "Ready when you are"
	}
}

// BandColor maps a progress band to the bar colour.
func BandColor(band countdown.Band) color.Color {
	switch band {
	case countdown.BandFinishing:
		return animation.NeonGreen
	case countdown.BandHalfway:
		return animation.NeonYellow
	default:
		return animation.NeonCyan
	}
}

// progressLayout stretches the track and sizes the fill to fraction of it.
type progressLayout struct {
	fraction float32
}

const barHeight = float32(14)

func (bar *progressLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	fraction := bar.fraction
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	y := (size.Height - barHeight) / 2
	if y < 0 {
		y = 0
	}
	track, fill := objects[0], objects[1]
	track.Move(fyne.NewPos(0, y))
	track.Resize(fyne.NewSize(size.Width, barHeight))
	fill.Move(fyne.NewPos(0, y))
	fill.Resize(fyne.NewSize(size.Width*fraction, barHeight))
}

func (bar *progressLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(240, barHeight)
}
