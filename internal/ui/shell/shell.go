// Package shell hosts the main window and its sections.
package shell

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"stretchtime/internal/core/reminder"
	"stretchtime/internal/logger"
)

// Section names accepted by ScrollTo.
const (
	SectionExercises = reminder.SectionExercises
	SectionTimer     = "timer"
	SectionReminders = "reminders"
)

var sectionOrder = []string{SectionExercises, SectionTimer, SectionReminders}

// Shell is the main window. It implements reminder.Navigator.
type Shell struct {
	window   fyne.Window
	banner   *Banner
	tabs     *container.AppTabs
	onSelect func(section string)
}

// New creates the hidden main window. Closing it hides it instead of quitting.
func New(app fyne.App, title string, banner *Banner) *Shell {
	window := app.NewWindow(title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetCloseIntercept(func() {
		window.Hide()
	})
	window.Resize(fyne.NewSize(520, 560))
	return &Shell{window: window, banner: banner}
}

// Window returns the main window.
func (shell *Shell) Window() fyne.Window {
	return shell.window
}

// SetSections installs the panels. Call on the UI goroutine.
func (shell *Shell) SetSections(timer, reminders fyne.CanvasObject) {
	shell.tabs = container.NewAppTabs(
		container.NewTabItem("Exercises", exerciseList(Routine)),
		container.NewTabItem("Timer", timer),
		container.NewTabItem("Reminders", reminders),
	)
	shell.tabs.SetTabLocation(container.TabLocationTop)
	shell.tabs.OnSelected = func(item *container.TabItem) {
		index := shell.tabs.SelectedIndex()
		if shell.onSelect != nil && index >= 0 && index < len(sectionOrder) {
			shell.onSelect(sectionOrder[index])
		}
	}

	var top fyne.CanvasObject
	if shell.banner != nil {
		top = shell.banner.Content()
	}
	shell.window.SetContent(container.NewBorder(top, nil, nil, nil, shell.tabs))
}

// OnSectionSelected registers fn for tab changes.
func (shell *Shell) OnSectionSelected(fn func(section string)) {
	shell.onSelect = fn
}

// Show displays and raises the window.
func (shell *Shell) Show() {
	fyne.Do(func() {
		shell.window.Show()
		shell.window.RequestFocus()
	})
}

// Focus implements reminder.Navigator.
func (shell *Shell) Focus() {
	shell.Show()
}

// ScrollTo implements reminder.Navigator by selecting the section's tab.
func (shell *Shell) ScrollTo(section string) {
	index, ok := sectionIndex(section)
	if !ok {
		logger.Warn("unknown section", "section", section)
		return
	}
	fyne.Do(func() {
		if shell.tabs != nil {
			shell.tabs.SelectIndex(index)
		}
	})
}

func sectionIndex(section string) (int, bool) {
	for index, name := range sectionOrder {
		if name == section {
			return index, true
		}
	}
	return 0, false
}
