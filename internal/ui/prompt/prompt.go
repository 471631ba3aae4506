// Package prompt asks for notification permission with a modal dialog.
package prompt

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"stretchtime/internal/core/reminder"
)

const (
	title = "Daily stretch reminders"
	body  = "StretchTime would like to show a desktop notification once a day\nat your scheduled time. You can change this later."
)

// Dialog implements notify.Prompter on top of a fyne window.
type Dialog struct {
	show func(answer func(reminder.Permission)) (hide func())
}

// New returns a prompter whose dialog is attached to parent.
func New(parent fyne.Window) *Dialog {
	prompt := &Dialog{}
	prompt.show = func(answer func(reminder.Permission)) func() {
		var permission dialog.Dialog
		fyne.DoAndWait(func() {
			permission = newPermissionDialog(parent, answer)
			parent.Show()
			permission.Show()
		})
		return func() {
			fyne.Do(permission.Hide)
		}
	}
	return prompt
}

// Ask blocks until the user answers, closes the dialog or ctx ends.
// Closing the dialog without choosing reports PermissionUnasked.
func (prompt *Dialog) Ask(ctx context.Context) (reminder.Permission, error) {
	answers := make(chan reminder.Permission, 1)
	var once sync.Once
	answer := func(permission reminder.Permission) {
		once.Do(func() { answers <- permission })
	}

	hide := prompt.show(answer)
	select {
	case permission := <-answers:
		return permission, nil
	case <-ctx.Done():
		answer(reminder.PermissionUnasked)
		if hide != nil {
			hide()
		}
		return reminder.PermissionUnasked, ctx.Err()
	}
}

func newPermissionDialog(parent fyne.Window, answer func(reminder.Permission)) dialog.Dialog {
	content := container.NewVBox(widget.NewLabel(body))
	permission := dialog.NewCustomWithoutButtons(title, content, parent)

	allow := widget.NewButton("Allow", func() {
		answer(reminder.PermissionGranted)
		permission.Hide()
	})
	allow.Importance = widget.HighImportance
	block := widget.NewButton("Block", func() {
		answer(reminder.PermissionDenied)
		permission.Hide()
	})
	later := widget.NewButton("Not now", func() {
		permission.Hide()
	})

	permission.SetButtons([]fyne.CanvasObject{later, block, allow})
	permission.SetOnClosed(func() {
		answer(reminder.PermissionUnasked)
	})
	return permission
}
