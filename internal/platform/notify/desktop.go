package notify

import (
	"context"
	"fmt"

	"stretchtime/internal/core/reminder"
	"stretchtime/internal/logger"
)

// PermissionKey is the store key holding the user's notification grant.
const PermissionKey = "notification-permission"

// Store persists the grant.
type Store interface {
	Save(key string, value any) error
	Load(key string, out any) (bool, error)
}

// Prompter asks the user whether reminders may be shown.
// Returning PermissionUnasked means the prompt was dismissed.
type Prompter interface {
	Ask(ctx context.Context) (reminder.Permission, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context) (reminder.Permission, error)

// Ask calls fn.
func (fn PrompterFunc) Ask(ctx context.Context) (reminder.Permission, error) {
	return fn(ctx)
}

// Desktop is the reminder.Platform of the desktop app: the grant lives in the
// store, the prompt is shown once and delivery goes to a Backend.
type Desktop struct {
	backend  Backend
	store    Store
	prompter Prompter
}

// NewDesktop assembles a Desktop. backend and prompter may be nil.
func NewDesktop(backend Backend, store Store, prompter Prompter) *Desktop {
	return &Desktop{backend: backend, store: store, prompter: prompter}
}

func (desktop *Desktop) Supported() bool {
	return desktop.backend != nil && desktop.backend.Supported()
}

// Permission reads the recorded grant.
func (desktop *Desktop) Permission() reminder.Permission {
	if desktop.store == nil {
		return reminder.PermissionUnasked
	}
	var permission reminder.Permission
	found, err := desktop.store.Load(PermissionKey, &permission)
	if err != nil {
		logger.Warn("notification permission unreadable", "error", err)
		return reminder.PermissionUnasked
	}
	if !found || !permission.Valid() {
		return reminder.PermissionUnasked
	}
	return permission
}

// RequestPermission prompts only while the grant is unasked.
func (desktop *Desktop) RequestPermission(ctx context.Context) (reminder.Permission, error) {
	current := desktop.Permission()
	if current != reminder.PermissionUnasked {
		return current, nil
	}
	if desktop.prompter == nil {
		return reminder.PermissionUnasked, nil
	}

	answer, err := desktop.prompter.Ask(ctx)
	if err != nil {
		return reminder.PermissionUnasked, fmt.Errorf("permission prompt: %w", err)
	}
	if answer == reminder.PermissionGranted || answer == reminder.PermissionDenied {
		if err := desktop.record(answer); err != nil {
			return reminder.PermissionUnasked, err
		}
	}
	return answer, nil
}

func (desktop *Desktop) Display(notification reminder.Notification) (reminder.Handle, error) {
	if !desktop.Supported() {
		return nil, ErrNoBackend
	}
	if desktop.Permission() != reminder.PermissionGranted {
		return nil, ErrNotPermitted
	}
	return desktop.backend.Show(notification)
}

// Revoke withdraws the grant. A running app disables reminders on its next revalidation.
func (desktop *Desktop) Revoke() error {
	return desktop.record(reminder.PermissionDenied)
}

// Reset forgets the answer so the next enable prompts again.
func (desktop *Desktop) Reset() error {
	return desktop.record(reminder.PermissionUnasked)
}

func (desktop *Desktop) record(permission reminder.Permission) error {
	if desktop.store == nil {
		return nil
	}
	if err := desktop.store.Save(PermissionKey, permission); err != nil {
		return fmt.Errorf("save notification permission: %w", err)
	}
	logger.Info("notification permission recorded", "permission", permission)
	return nil
}
