package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"stretchtime/internal/core/countdown"
	"stretchtime/internal/core/reminder"
)

const menuTitle = "StretchTime"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnOpen           func()
	OnToggleTimer    func()
	OnResetTimer     func()
	OnToggleReminder func()
	OnQuit           func()
}

// Manager handles system tray state.
type Manager struct {
	app          desktop.App
	callbacks    Callbacks
	timerItem    *fyne.MenuItem
	reminderItem *fyne.MenuItem
	timerAction  *fyne.MenuItem
	resetAction  *fyne.MenuItem
	remindAction *fyne.MenuItem
	icons        Icons
	snapshot     countdown.Snapshot
	settings     reminder.Settings
}

// Icons are the tray images per timer activity.
type Icons struct {
	Idle    fyne.Resource
	Running fyne.Resource
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		icons:     icons,
	}

	manager.timerItem = fyne.NewMenuItem("", nil)
	manager.timerItem.Disabled = true
	manager.reminderItem = fyne.NewMenuItem("", nil)
	manager.reminderItem.Disabled = true

	manager.timerAction = fyne.NewMenuItem("Start timer", invoke(&manager.callbacks.OnToggleTimer))
	manager.resetAction = fyne.NewMenuItem("Reset timer", invoke(&manager.callbacks.OnResetTimer))
	manager.remindAction = fyne.NewMenuItem("Enable daily reminder", invoke(&manager.callbacks.OnToggleReminder))

	manager.SetTimer(countdown.Snapshot{Phase: countdown.PhaseIdle})
	manager.SetReminder(reminder.Settings{})
	return manager
}

// SetTimer updates the timer entries. Call on the UI goroutine.
func (manager *Manager) SetTimer(snapshot countdown.Snapshot) {
	manager.snapshot = snapshot
	manager.timerItem.Label = timerStatus(snapshot)
	manager.timerAction.Label = timerActionLabel(snapshot.Phase)
	manager.timerAction.Disabled = snapshot.Phase == countdown.PhaseCompleted
	manager.resetAction.Disabled = snapshot.Phase == countdown.PhaseIdle
	manager.refreshIcon()
	manager.refreshMenu()
}

// SetReminder updates the reminder entries. Call on the UI goroutine.
func (manager *Manager) SetReminder(settings reminder.Settings) {
	manager.settings = settings
	manager.reminderItem.Label = reminderStatus(settings)
	if settings.Enabled {
		manager.remindAction.Label = "Disable daily reminder"
	} else {
		manager.remindAction.Label = "Enable daily reminder"
	}
	manager.refreshMenu()
}

func (manager *Manager) refreshIcon() {
	if manager.app == nil {
		return
	}
	icon := manager.icons.Idle
	if manager.snapshot.Phase == countdown.PhaseRunning && manager.icons.Running != nil {
		icon = manager.icons.Running
	}
	if icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(fyne.NewMenu(menuTitle,
			manager.timerItem,
			manager.reminderItem,
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Open StretchTime", invoke(&manager.callbacks.OnOpen)),
			manager.timerAction,
			manager.resetAction,
			manager.remindAction,
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Quit", invoke(&manager.callbacks.OnQuit)),
		))
	}
}

func invoke(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}

func timerStatus(snapshot countdown.Snapshot) string {
	switch snapshot.Phase {
	case countdown.PhaseRunning:
		return fmt.Sprintf("Timer: %s left", snapshot.Display())
	case countdown.PhasePaused:
		return fmt.Sprintf("Timer: paused at %s", snapshot.Display())
	case countdown.PhaseCompleted:
		return "Timer: session complete"
	default:
		return "Timer: ready"
	}
}

func timerActionLabel(phase countdown.Phase) string {
	switch phase {
	case countdown.PhaseRunning:
		return "Pause timer"
	case countdown.PhasePaused:
		return "Resume timer"
	default:
		return "Start timer"
	}
}

func reminderStatus(settings reminder.Settings) string {
	if settings.Enabled {
		return fmt.Sprintf("Reminder: daily at %s", settings.ScheduledTime)
	}
	return "Reminder: off"
}
