// Package notify delivers reminder notifications through the desktop
// notification service and records the user's grant.
package notify

import (
	"errors"

	"stretchtime/internal/core/reminder"
)

var (
	// ErrNotPermitted is returned by Display before the user granted notifications.
	ErrNotPermitted = errors.New("notifications not permitted")
	// ErrNoBackend indicates no notification service is reachable.
	ErrNoBackend = errors.New("no notification service available")
)

// Backend shows notifications on a concrete desktop service.
type Backend interface {
	Supported() bool
	Show(notification reminder.Notification) (reminder.Handle, error)
	Close() error
}

// noopHandle is returned by backends that cannot report clicks or close a
// notification once shown.
type noopHandle struct{}

func (noopHandle) OnAction(func(string)) {}
func (noopHandle) Close() error          { return nil }
