package main

import (
	"io"

	"stretchtime/internal/core/reminder"
	"stretchtime/internal/core/schedule"
	"stretchtime/internal/platform"
	"stretchtime/internal/platform/notify"
	"stretchtime/internal/storage"
	"stretchtime/internal/ui/console"
)

// session is the reminder state opened by a one-shot command.
type session struct {
	store   storage.Store
	backend notify.Backend
	desktop *notify.Desktop
	daily   *reminder.Reminder
	console *console.Emitter
}

// openSession opens the store shared with the tray app. Only commands that
// display something ask for a notification backend.
func (opts *options) openSession(out io.Writer, withBackend bool) (*session, error) {
	store, err := opts.config.OpenStore()
	if err != nil {
		return nil, err
	}

	var backend notify.Backend
	if withBackend {
		backend = notify.NewBackend(platform.DefaultAppName, nil)
	}

	emitter := console.NewEmitter(out)
	desktop := notify.NewDesktop(backend, store, nil)
	daily := reminder.New(opts.config.ReminderModel(), reminder.Deps{
		Store:     store,
		Platform:  desktop,
		Notices:   emitter,
		Scheduler: schedule.System,
	})

	return &session{
		store:   store,
		backend: backend,
		desktop: desktop,
		daily:   daily,
		console: emitter,
	}, nil
}

func (current *session) Close() error {
	current.daily.Close()
	if current.backend != nil {
		current.backend.Close()
	}
	return current.store.Close()
}

// stats reports the recorded grant rather than the last reconciled one. The
// tray app reconciles the reminder settings when it sees the grant change.
func (current *session) stats() reminder.Stats {
	stats := current.daily.Stats()
	stats.Permission = current.desktop.Permission()
	if stats.Permission != reminder.PermissionGranted {
		stats.Enabled = false
	}
	return stats
}
