package shell

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"stretchtime/internal/core/notice"
	"stretchtime/internal/core/schedule"
)

// Banner is the in-window notice strip. Each notice replaces the previous
// one and hides itself after the configured duration.
type Banner struct {
	mu         sync.Mutex
	scheduler  schedule.Scheduler
	duration   time.Duration
	generation int
	hideTask   schedule.Task
	render     func(message string, kind notice.Kind, visible bool)
	content    fyne.CanvasObject
}

// NewBanner builds the strip. A non-positive duration uses notice.DefaultDuration.
func NewBanner(scheduler schedule.Scheduler, duration time.Duration) *Banner {
	background := canvas.NewRectangle(kindColor(notice.Info))
	background.CornerRadius = 4
	label := widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	label.Wrapping = fyne.TextWrapWord
	strip := container.NewStack(background, label)
	strip.Hide()

	banner := newBanner(scheduler, duration, func(message string, kind notice.Kind, visible bool) {
		fyne.Do(func() {
			if !visible {
				strip.Hide()
				return
			}
			background.FillColor = kindColor(kind)
			background.Refresh()
			label.SetText(message)
			strip.Show()
		})
	})
	banner.content = strip
	return banner
}

func newBanner(scheduler schedule.Scheduler, duration time.Duration, render func(string, notice.Kind, bool)) *Banner {
	if scheduler == nil {
		scheduler = schedule.System
	}
	if duration <= 0 {
		duration = notice.DefaultDuration
	}
	return &Banner{scheduler: scheduler, duration: duration, render: render}
}

// Content returns the strip.
func (banner *Banner) Content() fyne.CanvasObject {
	return banner.content
}

// Show implements notice.Emitter.
func (banner *Banner) Show(message string, kind notice.Kind) {
	banner.mu.Lock()
	banner.generation++
	generation := banner.generation
	banner.hideTask = schedule.Stop(banner.hideTask)
	banner.hideTask = banner.scheduler.After(banner.duration, func() {
		banner.hide(generation)
	})
	banner.mu.Unlock()

	banner.render(message, kind, true)
}

// Close cancels a pending hide.
func (banner *Banner) Close() {
	banner.mu.Lock()
	defer banner.mu.Unlock()
	banner.hideTask = schedule.Stop(banner.hideTask)
}

func (banner *Banner) hide(generation int) {
	banner.mu.Lock()
	if generation != banner.generation {
		banner.mu.Unlock()
		return
	}
	banner.hideTask = nil
	banner.mu.Unlock()

	banner.render("", "", false)
}

func kindColor(kind notice.Kind) color.Color {
	switch kind {
	case notice.Success:
		return color.NRGBA{R: 0x1B, G: 0x7F, B: 0x3B, A: 0xE6}
	case notice.Warning:
		return color.NRGBA{R: 0xB3, G: 0x6B, B: 0x00, A: 0xE6}
	case notice.Error:
		return color.NRGBA{R: 0xB0, G: 0x1E, B: 0x2F, A: 0xE6}
	default:
		return color.NRGBA{R: 0x1F, G: 0x5F, B: 0xA8, A: 0xE6}
	}
}
