// Package reminderview renders the daily reminder controls.
package reminderview

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"stretchtime/internal/core/reminder"
	"stretchtime/internal/logger"
)

// View handles the reminder panel.
type View struct {
	reminder  *reminder.Reminder
	supported bool
	ctx       context.Context

	status     *widget.Label
	permission *widget.Label
	toggle     *widget.Button
	timeEntry  *widget.Entry
	update     *widget.Button
	preview    *widget.Button
	total      *widget.Label
	thisWeek   *widget.Label
	content    fyne.CanvasObject
}

// New builds the panel. ctx bounds permission prompts started from it.
func New(ctx context.Context, daily *reminder.Reminder, supported bool) *View {
	status := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	permission := widget.NewLabel("")

	timeEntry := widget.NewEntry()
	timeEntry.SetPlaceHolder("HH:MM")
	timeEntry.Validator = reminder.ValidateTime

	view := &View{
		reminder:   daily,
		supported:  supported,
		ctx:        ctx,
		status:     status,
		permission: permission,
		timeEntry:  timeEntry,
		total:      widget.NewLabel("0"),
		thisWeek:   widget.NewLabel("0"),
	}

	view.toggle = widget.NewButton("", view.handleToggle)
	view.toggle.Importance = widget.HighImportance
	view.update = widget.NewButton("Update time", view.handleUpdate)
	timeEntry.OnSubmitted = func(string) { view.handleUpdate() }
	view.preview = widget.NewButton("Preview reminder", view.handlePreview)

	stats := container.New(layout.NewFormLayout(),
		widget.NewLabel("Reminders sent"), view.total,
		widget.NewLabel("This week"), view.thisWeek,
	)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Daily reminder", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		status,
		permission,
		container.NewHBox(view.toggle, view.preview),
		widget.NewSeparator(),
		container.NewBorder(nil, nil, widget.NewLabel("Remind me at"), view.update, timeEntry),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Statistics", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		stats,
	)
	view.content = container.NewPadded(form)

	daily.OnChange(func(reminder.Settings) {
		fyne.Do(view.Refresh)
	})
	view.Refresh()
	return view
}

// Content returns the panel's root object.
func (view *View) Content() fyne.CanvasObject {
	return view.content
}

// Refresh redraws the panel from the reminder state. Call on the UI goroutine.
func (view *View) Refresh() {
	settings := view.reminder.Settings()
	stats := view.reminder.Stats()

	view.status.SetText(statusText(settings, view.supported))
	view.permission.SetText(permissionText(settings.Permission))
	view.toggle.SetText(toggleLabel(settings.Enabled))
	if view.supported {
		view.toggle.Enable()
	} else {
		view.toggle.Disable()
	}
	if settings.Enabled {
		view.preview.Enable()
	} else {
		view.preview.Disable()
	}
	view.timeEntry.SetText(settings.ScheduledTime)
	view.total.SetText(fmt.Sprintf("%d", stats.Total))
	view.thisWeek.SetText(fmt.Sprintf("%d", stats.ThisWeek))
}

// handleToggle runs off the UI goroutine: enabling may wait on the permission dialog.
func (view *View) handleToggle() {
	view.toggle.Disable()
	go func() {
		if err := view.reminder.Toggle(view.ctx); err != nil {
			logger.Debug("reminder toggle rejected", "error", err)
		}
		fyne.Do(view.Refresh)
	}()
}

func (view *View) handleUpdate() {
	if err := view.reminder.SetScheduledTime(view.timeEntry.Text); err != nil {
		logger.Debug("reminder time rejected", "value", view.timeEntry.Text, "error", err)
		return
	}
	view.Refresh()
}

func (view *View) handlePreview() {
	if err := view.reminder.PreviewDailyReminder(true); err != nil {
		logger.Warn("preview reminder failed", "error", err)
	}
	view.Refresh()
}

func statusText(settings reminder.Settings, supported bool) string {
	switch {
	case !supported:
		return "Desktop notifications are not available on this system"
	case settings.Enabled:
		return fmt.Sprintf("Reminders are on. You'll be notified daily at %s.", settings.ScheduledTime)
	default:
		return "Reminders are off"
	}
}

func permissionText(permission reminder.Permission) string {
	switch permission {
	case reminder.PermissionGranted:
		return "Notifications: allowed"
	case reminder.PermissionDenied:
		return "Notifications: blocked. Allow them again with `stretchtime permission reset`."
	default:
		return "Notifications: not asked yet"
	}
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "Disable reminders"
	}
	return "Enable reminders"
}
