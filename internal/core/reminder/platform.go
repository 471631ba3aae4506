package reminder

import "context"

// Notification action keys.
const (
	ActionDefault       = "default"
	ActionStartExercise = "start-exercise"
	ActionRemindLater   = "remind-later"
)

// SectionExercises is the navigator target for reminder clicks.
const SectionExercises = "exercises"

// Action is a button offered on a notification.
type Action struct {
	Key   string
	Label string
}

// Notification is a desktop notification request.
type Notification struct {
	Title   string
	Body    string
	Tag     string
	Actions []Action
	Urgent  bool
}

// Handle controls a displayed notification.
type Handle interface {
	// OnAction registers the click handler. The key is ActionDefault for a body click.
	OnAction(fn func(key string))
	Close() error
}

// Platform is the OS notification service.
type Platform interface {
	Supported() bool
	Permission() Permission
	// RequestPermission asks the user once. PermissionUnasked means the prompt was dismissed.
	RequestPermission(ctx context.Context) (Permission, error)
	Display(notification Notification) (Handle, error)
}

// Navigator brings the app forward and moves to a named section.
type Navigator interface {
	Focus()
	ScrollTo(section string)
}
