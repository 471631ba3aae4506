package shell

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Exercise is one entry of the stretching routine.
type Exercise struct {
	Name     string
	Steps    string
	Duration time.Duration
}

// Routine is the default session, sized to fit the five minute timer.
var Routine = []Exercise{
	{Name: "Neck release", Steps: "Tilt one ear toward the shoulder, hold, then switch sides.", Duration: 40 * time.Second},
	{Name: "Shoulder rolls", Steps: "Roll both shoulders slowly backwards, then forwards.", Duration: 30 * time.Second},
	{Name: "Overhead reach", Steps: "Interlace the fingers and press the palms toward the ceiling.", Duration: 30 * time.Second},
	{Name: "Seated twist", Steps: "Sit tall, rotate toward the chair back and hold each side.", Duration: 60 * time.Second},
	{Name: "Wrist and forearm", Steps: "Extend one arm, gently pull the fingers back, then down.", Duration: 40 * time.Second},
	{Name: "Standing hamstring", Steps: "Heel forward on the floor, hinge at the hips, keep the back long.", Duration: 60 * time.Second},
	{Name: "Calf stretch", Steps: "Hands on a wall, one leg back, press the heel down.", Duration: 40 * time.Second},
}

// RoutineLength sums the exercise durations.
func RoutineLength(routine []Exercise) time.Duration {
	var total time.Duration
	for _, exercise := range routine {
		total += exercise.Duration
	}
	return total
}

func exerciseList(routine []Exercise) fyne.CanvasObject {
	cards := container.NewVBox()
	for _, exercise := range routine {
		card := widget.NewCard(exercise.Name, formatHold(exercise.Duration), widget.NewLabel(exercise.Steps))
		cards.Add(card)
	}
	header := widget.NewLabelWithStyle(
		fmt.Sprintf("Today's routine (%s)", formatHold(RoutineLength(routine))),
		fyne.TextAlignLeading, fyne.TextStyle{Bold: true},
	)
	return container.NewBorder(header, nil, nil, nil, container.NewVScroll(cards))
}

func formatHold(duration time.Duration) string {
	seconds := int(duration / time.Second)
	if seconds%60 == 0 {
		return fmt.Sprintf("%d min", seconds/60)
	}
	if seconds > 60 {
		return fmt.Sprintf("%d min %d s", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%d s", seconds)
}
