package timerview

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/stretchr/testify/assert"

	"stretchtime/internal/core/countdown"
	"stretchtime/internal/ui/animation"
)

func TestControlsFollowPhase(t *testing.T) {
	tests := []struct {
		phase countdown.Phase
		want  controls
	}{
		{countdown.PhaseIdle, controls{startLabel: "Start", startEnabled: true, pauseLabel: "Pause", lengthEnabled: true}},
		{countdown.PhaseRunning, controls{startLabel: "Running...", pauseLabel: "Pause", pauseEnabled: true}},
		{countdown.PhasePaused, controls{startLabel: "Resume", startEnabled: true, pauseLabel: "Paused"}},
		{countdown.PhaseCompleted, controls{startLabel: "Start", pauseLabel: "Pause"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			assert.Equal(t, tt.want, controlsFor(tt.phase))
			assert.NotEmpty(t, phaseText(tt.phase))
		})
	}
}

func TestBandColor(t *testing.T) {
	assert.Equal(t, animation.NeonCyan, BandColor(countdown.BandDefault))
	assert.Equal(t, animation.NeonYellow, BandColor(countdown.BandHalfway))
	assert.Equal(t, animation.NeonGreen, BandColor(countdown.BandFinishing))

	halfway := countdown.Snapshot{Phase: countdown.PhaseRunning, TotalSeconds: 300, RemainingSeconds: 150}
	assert.Equal(t, animation.NeonYellow, BandColor(halfway.Band()))
}

func TestProgressLayoutSizesFill(t *testing.T) {
	track := canvas.NewRectangle(nil)
	fill := canvas.NewRectangle(nil)
	objects := []fyne.CanvasObject{track, fill}

	bar := &progressLayout{fraction: 0.25}
	bar.Layout(objects, fyne.NewSize(400, 30))
	assert.Equal(t, fyne.NewSize(400, barHeight), track.Size())
	assert.Equal(t, fyne.NewSize(100, barHeight), fill.Size())
	assert.Equal(t, fyne.NewPos(0, 8), fill.Position())

	bar.fraction = 1.5
	bar.Layout(objects, fyne.NewSize(400, 30))
	assert.Equal(t, float32(400), fill.Size().Width)

	bar.fraction = -1
	bar.Layout(objects, fyne.NewSize(400, 30))
	assert.Zero(t, fill.Size().Width)
}

func TestParseMinutes(t *testing.T) {
	minutes, err := parseMinutes(" 10 ")
	assert.NoError(t, err)
	assert.Equal(t, 10, minutes)

	for _, bad := range []string{"", "ten", "0", "-3", "2.5"} {
		_, err := parseMinutes(bad)
		assert.Error(t, err, bad)
	}
	_, err = parseMinutes("0")
	assert.ErrorIs(t, err, countdown.ErrInvalidDuration)

	for _, oversized := range []string{"1441", "307445734561825860"} {
		_, err = parseMinutes(oversized)
		assert.ErrorIs(t, err, countdown.ErrInvalidDuration, oversized)
	}
}
