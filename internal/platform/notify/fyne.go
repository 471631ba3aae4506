package notify

import (
	"fyne.io/fyne/v2"

	"stretchtime/internal/core/reminder"
)

// FyneBackend posts notifications through the fyne driver. It is used where
// no D-Bus notification server is reachable; it cannot offer actions.
type FyneBackend struct {
	app fyne.App
}

// NewFyneBackend wraps app.
func NewFyneBackend(app fyne.App) *FyneBackend {
	return &FyneBackend{app: app}
}

func (backend *FyneBackend) Supported() bool {
	return backend.app != nil
}

func (backend *FyneBackend) Show(notification reminder.Notification) (reminder.Handle, error) {
	if backend.app == nil {
		return nil, ErrNoBackend
	}
	backend.app.SendNotification(fyne.NewNotification(notification.Title, notification.Body))
	return noopHandle{}, nil
}

func (backend *FyneBackend) Close() error {
	return nil
}

// NewBackend prefers the session bus and falls back to the fyne driver.
// Either argument may be absent; a nil Backend means nothing can be shown.
func NewBackend(appName string, app fyne.App) Backend {
	if dbusBackend, err := NewDBusBackend(appName); err == nil {
		if dbusBackend.Supported() {
			return dbusBackend
		}
		dbusBackend.Close()
	}
	if app != nil {
		return NewFyneBackend(app)
	}
	return nil
}
