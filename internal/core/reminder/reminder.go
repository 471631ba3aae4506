package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stretchtime/internal/core/model"
	"stretchtime/internal/core/notice"
	"stretchtime/internal/core/schedule"
	"stretchtime/internal/logger"
)

var (
	ErrUnsupported         = errors.New("notifications are not supported on this system")
	ErrPermissionDenied    = errors.New("notification permission denied")
	ErrPermissionDismissed = errors.New("notification permission request dismissed")
	ErrPermissionPending   = errors.New("notification permission request already pending")
	ErrInvalidTime         = errors.New("invalid time, expected HH:MM")
	ErrClosed              = errors.New("reminder scheduler closed")
)

const (
	messageUnsupported   = "Notifications are not supported on this system"
	messageEnabled       = "Daily reminders enabled! You'll be notified at %s."
	messageDenied        = "Permission denied. Enable notifications in your system settings."
	messageDismissed     = "Permission not granted. Please try again."
	messageRequestFailed = "Could not enable notifications. Please try again."
	messageDisabled      = "Daily reminders disabled"
	messageTimeUpdated   = "Reminder time updated to %s"
	messageInvalidTime   = "Invalid time format. Use HH:MM"
	messageDisplayFailed = "Could not show the daily reminder"
)

const (
	dailyTag = "stretchtime-daily"
	testTag  = "stretchtime-test"
	weekSpan = 7 * 24 * time.Hour
)

// Deps are the collaborators of a Reminder.
type Deps struct {
	Store     Store
	Platform  Platform
	Navigator Navigator
	Notices   notice.Emitter
	Scheduler schedule.Scheduler
}

// Stats summarises reminder delivery.
type Stats struct {
	Total         int        `json:"total_notifications"`
	ThisWeek      int        `json:"this_week_notifications"`
	Enabled       bool       `json:"enabled"`
	ScheduledTime string     `json:"scheduled_time"`
	Permission    Permission `json:"permission"`
}

// Reminder owns the daily reminder preference and its polling schedule.
type Reminder struct {
	mu         sync.Mutex
	config     model.ReminderConfig
	store      Store
	platform   Platform
	navigator  Navigator
	notices    notice.Emitter
	scheduler  schedule.Scheduler
	settings   Settings
	entries    []LogEntry
	poller     schedule.Task
	snooze     schedule.Task

	// pollEpoch and snoozeEpoch move whenever their task is replaced or
	// cancelled; callbacks from an older epoch are ignored.
	pollEpoch   uint64
	snoozeEpoch uint64

	dismissals map[int]schedule.Task
	nextHandle int
	lastFired  string
	pending    bool
	listeners  []func(Settings)
	closed     bool
}

// New loads persisted state. Polling does not begin until Start.
func New(config model.ReminderConfig, deps Deps) *Reminder {
	defaults := model.DefaultReminderConfig()
	if ValidateTime(config.DefaultTime) != nil {
		config.DefaultTime = defaults.DefaultTime
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.AutoDismiss <= 0 {
		config.AutoDismiss = defaults.AutoDismiss
	}
	if config.TestDismiss <= 0 {
		config.TestDismiss = defaults.TestDismiss
	}
	if config.Snooze <= 0 {
		config.Snooze = defaults.Snooze
	}
	if config.LogLimit <= 0 {
		config.LogLimit = defaults.LogLimit
	}
	if deps.Platform == nil {
		deps.Platform = unsupported{}
	}
	if deps.Notices == nil {
		deps.Notices = notice.Discard
	}
	if deps.Scheduler == nil {
		deps.Scheduler = schedule.System
	}

	return &Reminder{
		config:     config,
		store:      deps.Store,
		platform:   deps.Platform,
		navigator:  deps.Navigator,
		notices:    deps.Notices,
		scheduler:  deps.Scheduler,
		settings:   LoadSettings(deps.Store, config.DefaultTime),
		entries:    loadLog(deps.Store),
		dismissals: make(map[int]schedule.Task),
	}
}

// OnChange registers fn to receive the settings after every change.
func (reminder *Reminder) OnChange(fn func(Settings)) {
	reminder.mu.Lock()
	defer reminder.mu.Unlock()
	reminder.listeners = append(reminder.listeners, fn)
}

// Settings returns a copy of the current preference.
func (reminder *Reminder) Settings() Settings {
	reminder.mu.Lock()
	defer reminder.mu.Unlock()
	return reminder.settings
}

// Start restores persisted state and resumes polling when the grant still holds.
func (reminder *Reminder) Start() {
	reminder.Sync()
}

// Sync re-reads the store and reconciles it with the platform grant.
// It picks up changes written by another process.
func (reminder *Reminder) Sync() {
	permission := reminder.platformPermission()

	reminder.mu.Lock()
	if reminder.closed {
		reminder.mu.Unlock()
		return
	}
	// Read under the lock so a concurrent write is not replaced by an older copy.
	stored := LoadSettings(reminder.store, reminder.config.DefaultTime)
	entries := loadLog(reminder.store)
	before := reminder.settings
	if stored.ScheduledTime != reminder.settings.ScheduledTime {
		reminder.lastFired = ""
	}
	reminder.settings = stored
	reminder.entries = entries
	if reminder.applyPermissionLocked(permission) {
		reminder.persistLocked()
	}
	settings := reminder.settings
	reminder.mu.Unlock()

	if !sameSettings(before, settings) {
		reminder.changed(settings)
	}
}

// Toggle enables a disabled reminder and disables an enabled one.
func (reminder *Reminder) Toggle(ctx context.Context) error {
	reminder.mu.Lock()
	enabled := reminder.settings.Enabled
	reminder.mu.Unlock()

	if enabled {
		reminder.Disable()
		return nil
	}
	return reminder.Enable(ctx)
}

// Enable requests permission and starts the daily schedule when granted.
func (reminder *Reminder) Enable(ctx context.Context) error {
	if !reminder.platform.Supported() {
		reminder.notices.Show(messageUnsupported, notice.Error)
		return ErrUnsupported
	}

	reminder.mu.Lock()
	switch {
	case reminder.closed:
		reminder.mu.Unlock()
		return ErrClosed
	case reminder.pending:
		reminder.mu.Unlock()
		return ErrPermissionPending
	case reminder.settings.Enabled:
		reminder.mu.Unlock()
		return nil
	}
	reminder.pending = true
	reminder.mu.Unlock()

	permission, err := reminder.platform.RequestPermission(ctx)

	reminder.mu.Lock()
	reminder.pending = false
	if err != nil {
		reminder.mu.Unlock()
		logger.Warn("notification permission request failed", "error", err)
		reminder.notices.Show(messageRequestFailed, notice.Error)
		return fmt.Errorf("request notification permission: %w", err)
	}
	switch permission {
	case PermissionGranted:
	case PermissionDenied:
		reminder.mu.Unlock()
		reminder.notices.Show(messageDenied, notice.Error)
		return ErrPermissionDenied
	default:
		reminder.mu.Unlock()
		reminder.notices.Show(messageDismissed, notice.Error)
		return ErrPermissionDismissed
	}
	if reminder.closed {
		reminder.mu.Unlock()
		return ErrClosed
	}

	reminder.settings.Enabled = true
	reminder.settings.Permission = PermissionGranted
	reminder.startPollingLocked()
	reminder.persistLocked()
	settings := reminder.settings
	reminder.mu.Unlock()

	logger.Info("daily reminder enabled", "time", settings.ScheduledTime)
	reminder.changed(settings)
	reminder.sendTestNotification(settings.ScheduledTime)
	reminder.notices.Show(fmt.Sprintf(messageEnabled, settings.ScheduledTime), notice.Success)
	return nil
}

// Disable stops the daily schedule.
func (reminder *Reminder) Disable() {
	reminder.mu.Lock()
	if reminder.closed {
		reminder.mu.Unlock()
		return
	}
	reminder.settings.Enabled = false
	reminder.stopPollingLocked()
	reminder.persistLocked()
	settings := reminder.settings
	reminder.mu.Unlock()

	logger.Info("daily reminder disabled")
	reminder.changed(settings)
	reminder.notices.Show(messageDisabled, notice.Info)
}

// SetScheduledTime changes the daily reminder time.
func (reminder *Reminder) SetScheduledTime(value string) error {
	if err := ValidateTime(value); err != nil {
		reminder.notices.Show(messageInvalidTime, notice.Error)
		return err
	}

	reminder.mu.Lock()
	if reminder.closed {
		reminder.mu.Unlock()
		return ErrClosed
	}
	if reminder.settings.ScheduledTime != value {
		reminder.lastFired = ""
	}
	reminder.settings.ScheduledTime = value
	reminder.persistLocked()
	settings := reminder.settings
	reminder.mu.Unlock()

	reminder.changed(settings)
	if settings.Enabled {
		reminder.notices.Show(fmt.Sprintf(messageTimeUpdated, value), notice.Success)
	}
	return nil
}

// Revalidate syncs the platform grant and force-disables the reminder
// when the grant was withdrawn outside the app.
func (reminder *Reminder) Revalidate() {
	permission := reminder.platformPermission()

	reminder.mu.Lock()
	if reminder.closed {
		reminder.mu.Unlock()
		return
	}
	dirty := reminder.applyPermissionLocked(permission)
	if dirty {
		reminder.persistLocked()
	}
	settings := reminder.settings
	reminder.mu.Unlock()

	if dirty {
		reminder.changed(settings)
	}
}

// Stats reports delivery counts relative to the scheduler clock.
func (reminder *Reminder) Stats() Stats {
	now := reminder.scheduler.Now()

	reminder.mu.Lock()
	defer reminder.mu.Unlock()

	thisWeek := 0
	for _, entry := range reminder.entries {
		if now.Sub(entry.Time()) <= weekSpan {
			thisWeek++
		}
	}
	return Stats{
		Total:         len(reminder.entries),
		ThisWeek:      thisWeek,
		Enabled:       reminder.settings.Enabled,
		ScheduledTime: reminder.settings.ScheduledTime,
		Permission:    reminder.settings.Permission,
	}
}

// Log returns a copy of the delivery log, oldest first.
func (reminder *Reminder) Log() []LogEntry {
	reminder.mu.Lock()
	defer reminder.mu.Unlock()
	return append([]LogEntry(nil), reminder.entries...)
}

// FireDailyReminder shows the daily notification and records it.
func (reminder *Reminder) FireDailyReminder() error {
	now := reminder.scheduler.Now()
	if err := reminder.showDaily(dailyNotification(true)); err != nil {
		return err
	}

	reminder.mu.Lock()
	reminder.entries = appendLog(reminder.entries, newLogEntry(now), reminder.config.LogLimit)
	if reminder.store != nil {
		if err := reminder.store.Save(LogKey, reminder.entries); err != nil {
			logger.Error("failed to persist reminder log", "error", err)
		}
	}
	reminder.mu.Unlock()

	logger.Info("daily reminder sent", "at", now.Format("15:04"))
	return nil
}

// PreviewDailyReminder shows the daily notification without recording it, so
// previews never count towards Stats. A non-interactive preview has no action
// buttons and normal urgency, for callers that exit before a click arrives.
func (reminder *Reminder) PreviewDailyReminder(interactive bool) error {
	if err := reminder.showDaily(dailyNotification(interactive)); err != nil {
		return err
	}
	logger.Debug("daily reminder previewed", "interactive", interactive)
	return nil
}

func (reminder *Reminder) showDaily(notification Notification) error {
	err := reminder.display(notification, reminder.config.AutoDismiss, reminder.handleDailyAction)
	if err != nil {
		logger.Warn("daily reminder not shown", "error", err)
		reminder.notices.Show(messageDisplayFailed, notice.Error)
		return fmt.Errorf("display daily reminder: %w", err)
	}
	return nil
}

func dailyNotification(interactive bool) Notification {
	notification := Notification{
		Title: "StretchTime: time to stretch!",
		Body:  "Take care of your health with 5 minutes of stretching.",
		Tag:   dailyTag,
	}
	if interactive {
		notification.Actions = []Action{
			{Key: ActionStartExercise, Label: "Start now"},
			{Key: ActionRemindLater, Label: "Remind me in 30 min"},
		}
		notification.Urgent = true
	}
	return notification
}

// Close stops polling, snoozes and pending auto-dismissals.
func (reminder *Reminder) Close() {
	reminder.mu.Lock()
	defer reminder.mu.Unlock()
	if reminder.closed {
		return
	}
	reminder.closed = true
	reminder.stopPollingLocked()
	for id, task := range reminder.dismissals {
		schedule.Stop(task)
		delete(reminder.dismissals, id)
	}
}

func (reminder *Reminder) poll(epoch uint64, at time.Time) {
	reminder.mu.Lock()
	if reminder.closed || !reminder.settings.Enabled || epoch != reminder.pollEpoch {
		reminder.mu.Unlock()
		return
	}
	if at.Format("15:04") != reminder.settings.ScheduledTime {
		reminder.mu.Unlock()
		return
	}
	day := at.Format(time.DateOnly)
	if reminder.lastFired == day {
		reminder.mu.Unlock()
		logger.Debug("daily reminder already sent today", "day", day)
		return
	}
	reminder.lastFired = day
	reminder.mu.Unlock()

	_ = reminder.FireDailyReminder()
}

func (reminder *Reminder) handleDailyAction(key string) {
	switch key {
	case ActionDefault, ActionStartExercise:
		reminder.navigate()
	case ActionRemindLater:
		reminder.scheduleSnooze()
	}
}

func (reminder *Reminder) navigate() {
	if reminder.navigator == nil {
		return
	}
	reminder.navigator.Focus()
	reminder.navigator.ScrollTo(SectionExercises)
}

func (reminder *Reminder) scheduleSnooze() {
	reminder.mu.Lock()
	defer reminder.mu.Unlock()
	if reminder.closed || !reminder.settings.Enabled {
		return
	}
	reminder.snooze = schedule.Stop(reminder.snooze)
	reminder.snoozeEpoch++
	epoch := reminder.snoozeEpoch
	reminder.snooze = reminder.scheduler.After(reminder.config.Snooze, func() {
		reminder.snoozeElapsed(epoch)
	})
	logger.Debug("daily reminder snoozed", "for", reminder.config.Snooze)
}

func (reminder *Reminder) snoozeElapsed(epoch uint64) {
	reminder.mu.Lock()
	if epoch != reminder.snoozeEpoch {
		reminder.mu.Unlock()
		return
	}
	reminder.snooze = nil
	live := !reminder.closed && reminder.settings.Enabled
	reminder.mu.Unlock()

	if live {
		_ = reminder.FireDailyReminder()
	}
}

func (reminder *Reminder) sendTestNotification(scheduledTime string) {
	notification := Notification{
		Title: "StretchTime: test notification",
		Body:  fmt.Sprintf("Notifications are set up! You'll get a daily reminder at %s.", scheduledTime),
		Tag:   testTag,
	}
	err := reminder.display(notification, reminder.config.TestDismiss, func(key string) {
		if key == ActionDefault && reminder.navigator != nil {
			reminder.navigator.Focus()
		}
	})
	if err != nil {
		logger.Warn("test notification not shown", "error", err)
	}
}

// display shows notification, closes it after dismissAfter and routes clicks to onAction.
// Any action also closes the notification.
func (reminder *Reminder) display(notification Notification, dismissAfter time.Duration, onAction func(key string)) error {
	handle, err := reminder.platform.Display(notification)
	if err != nil {
		return err
	}

	reminder.mu.Lock()
	if reminder.closed {
		reminder.mu.Unlock()
		_ = handle.Close()
		return ErrClosed
	}
	reminder.nextHandle++
	id := reminder.nextHandle
	reminder.dismissals[id] = reminder.scheduler.After(dismissAfter, func() {
		reminder.closeNotification(id, handle)
	})
	reminder.mu.Unlock()

	handle.OnAction(func(key string) {
		onAction(key)
		reminder.closeNotification(id, handle)
	})
	return nil
}

func (reminder *Reminder) closeNotification(id int, handle Handle) {
	reminder.mu.Lock()
	task, live := reminder.dismissals[id]
	delete(reminder.dismissals, id)
	reminder.mu.Unlock()

	if !live {
		return
	}
	schedule.Stop(task)
	if err := handle.Close(); err != nil {
		logger.Debug("closing notification failed", "error", err)
	}
}

func (reminder *Reminder) platformPermission() Permission {
	if !reminder.platform.Supported() {
		return PermissionUnasked
	}
	return reminder.platform.Permission()
}

// applyPermissionLocked records permission and aligns polling with the enabled flag.
// It reports whether the settings changed.
func (reminder *Reminder) applyPermissionLocked(permission Permission) bool {
	dirty := false
	if reminder.settings.Permission != permission {
		reminder.settings.Permission = permission
		dirty = true
	}
	if reminder.settings.Enabled && permission != PermissionGranted {
		reminder.settings.Enabled = false
		dirty = true
		logger.Info("notification permission withdrawn, daily reminder disabled", "permission", permission)
	}

	if reminder.settings.Enabled {
		if reminder.poller == nil {
			reminder.startPollingLocked()
		}
	} else {
		reminder.stopPollingLocked()
	}
	return dirty
}

func (reminder *Reminder) startPollingLocked() {
	reminder.poller = schedule.Stop(reminder.poller)
	reminder.pollEpoch++
	epoch := reminder.pollEpoch
	reminder.poller = reminder.scheduler.Every(reminder.config.PollInterval, func(at time.Time) {
		reminder.poll(epoch, at)
	})
	logger.Debug("reminder polling started", "interval", reminder.config.PollInterval)
}

func (reminder *Reminder) stopPollingLocked() {
	reminder.poller = schedule.Stop(reminder.poller)
	reminder.pollEpoch++
	reminder.snooze = schedule.Stop(reminder.snooze)
	reminder.snoozeEpoch++
}

func (reminder *Reminder) persistLocked() {
	reminder.settings.LastSaved = reminder.scheduler.Now()
	if reminder.store == nil {
		return
	}
	if err := reminder.store.Save(SettingsKey, reminder.settings); err != nil {
		logger.Error("failed to persist reminder settings", "error", err)
	}
}

func (reminder *Reminder) changed(settings Settings) {
	reminder.mu.Lock()
	listeners := append([]func(Settings){}, reminder.listeners...)
	reminder.mu.Unlock()

	for _, listener := range listeners {
		listener(settings)
	}
}

func sameSettings(a, b Settings) bool {
	return a.Enabled == b.Enabled && a.ScheduledTime == b.ScheduledTime && a.Permission == b.Permission
}

type unsupported struct{}

func (unsupported) Supported() bool        { return false }
func (unsupported) Permission() Permission { return PermissionUnasked }
func (unsupported) RequestPermission(context.Context) (Permission, error) {
	return PermissionUnasked, ErrUnsupported
}
func (unsupported) Display(Notification) (Handle, error) { return nil, ErrUnsupported }
