// Package timerview renders the stretching countdown.
package timerview

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"stretchtime/internal/core/countdown"
	"stretchtime/internal/core/notice"
	"stretchtime/internal/logger"
	"stretchtime/internal/ui/animation"
)

const eventBuffer = 16

// View is the timer panel: digits, a band coloured progress bar and controls.
type View struct {
	timer   *countdown.Timer
	notices notice.Emitter
	engine  *animation.Engine

	digits  *canvas.Text
	phase   *widget.Label
	track   *canvas.Rectangle
	fill    *canvas.Rectangle
	bar     *progressLayout
	barBox  *fyne.Container
	start   *widget.Button
	pause   *widget.Button
	reset   *widget.Button
	minutes *widget.Entry
	apply   *widget.Button
	content fyne.CanvasObject

	done chan struct{}
}

// New builds the panel for timer. Notices about invalid input go to notices.
func New(timer *countdown.Timer, notices notice.Emitter) *View {
	if notices == nil {
		notices = notice.Discard
	}

	digits := canvas.NewText("--:--", animation.Foreground)
	digits.Alignment = fyne.TextAlignCenter
	digits.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	digits.TextSize = 72

	phase := widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	track := canvas.NewRectangle(color.NRGBA{R: 0x2A, G: 0x2F, B: 0x3A, A: 0xFF})
	track.CornerRadius = 6
	fill := canvas.NewRectangle(animation.NeonCyan)
	fill.CornerRadius = 6
	bar := &progressLayout{}

	minutes := widget.NewEntry()
	minutes.SetPlaceHolder("minutes")

	view := &View{
		timer:   timer,
		notices: notices,
		digits:  digits,
		phase:   phase,
		track:   track,
		fill:    fill,
		bar:     bar,
		barBox:  container.New(bar, track, fill),
		minutes: minutes,
	}
	view.engine = animation.New(view.paintDigits)

	view.start = widget.NewButton("Start", timer.Start)
	view.start.Importance = widget.HighImportance
	view.pause = widget.NewButton("Pause", timer.Pause)
	view.reset = widget.NewButton("Reset", timer.Reset)
	view.apply = widget.NewButton("Set length", view.applyMinutes)
	minutes.OnSubmitted = func(string) { view.applyMinutes() }

	controls := container.NewHBox(layout.NewSpacer(), view.start, view.pause, view.reset, layout.NewSpacer())
	custom := container.NewBorder(nil, nil, widget.NewLabel("Session length"), view.apply, minutes)
	view.content = container.NewVBox(
		layout.NewSpacer(),
		digits,
		phase,
		container.NewPadded(view.barBox),
		controls,
		widget.NewSeparator(),
		custom,
		layout.NewSpacer(),
	)

	timer.SetCompletionEffect(view.celebrate)
	view.render(timer.Snapshot())
	return view
}

// Content returns the panel's root object.
func (view *View) Content() fyne.CanvasObject {
	return view.content
}

// Bind follows timer events until the timer is closed.
func (view *View) Bind() {
	events := view.timer.Subscribe(eventBuffer)
	view.done = make(chan struct{})
	go func() {
		defer close(view.done)
		for event := range events {
			snapshot := event.Snapshot
			view.syncPulse(snapshot)
			fyne.Do(func() { view.render(snapshot) })
		}
	}()
}

// Close stops the pulse engine and waits for the event loop.
// The timer must be closed first.
func (view *View) Close() {
	if view.done != nil {
		<-view.done
	}
	view.engine.Stop()
}

func (view *View) render(snapshot countdown.Snapshot) {
	view.digits.Text = snapshot.Display()
	view.digits.Refresh()

	view.phase.SetText(phaseText(snapshot.Phase))

	view.bar.fraction = float32(snapshot.Progress())
	view.fill.FillColor = BandColor(snapshot.Band())
	view.fill.Refresh()
	view.barBox.Refresh()

	state := controlsFor(snapshot.Phase)
	view.start.SetText(state.startLabel)
	setEnabled(view.start, state.startEnabled)
	view.pause.SetText(state.pauseLabel)
	setEnabled(view.pause, state.pauseEnabled)
	setEnabled(view.apply, state.lengthEnabled)
	if state.lengthEnabled {
		view.minutes.Enable()
	} else {
		view.minutes.Disable()
	}
}

func (view *View) syncPulse(snapshot countdown.Snapshot) {
	near := snapshot.Phase == countdown.PhaseRunning && snapshot.NearCompletion()
	pulsing := view.engine.Running() && view.engine.Current().Duration == 0
	switch {
	case near && !pulsing:
		view.engine.Pulse(context.Background(), animation.NearCompletion())
	case !near && pulsing:
		view.engine.Stop()
		view.paintDigits(animation.Foreground)
	}
}

func (view *View) celebrate() {
	view.engine.Pulse(context.Background(), animation.CompletionGlow())
}

func (view *View) paintDigits(value color.Color) {
	fyne.Do(func() {
		view.digits.Color = value
		view.digits.Refresh()
	})
}

func (view *View) applyMinutes() {
	minutes, err := parseMinutes(view.minutes.Text)
	if err == nil {
		err = view.timer.SetCustomDuration(minutes)
	}
	switch {
	case err == nil:
		view.minutes.SetText("")
		view.render(view.timer.Snapshot())
		logger.Debug("session length changed", "minutes", minutes)
	case errors.Is(err, countdown.ErrTimerBusy):
		view.notices.Show("Reset the timer before changing its length", notice.Warning)
	default:
		view.notices.Show(fmt.Sprintf("Enter a whole number of minutes from 1 to %d", countdown.MaxMinutes), notice.Error)
	}
}

func parseMinutes(value string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse minutes: %w", err)
	}
	if minutes <= 0 || minutes > countdown.MaxMinutes {
		return 0, countdown.ErrInvalidDuration
	}
	return minutes, nil
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}
