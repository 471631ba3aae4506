package reminder

import (
	"fmt"
	"time"

	"stretchtime/internal/logger"
)

// Store keys for persisted reminder state.
const (
	SettingsKey = "reminder-settings"
	LogKey      = "reminder-log"
)

// Permission is the platform notification grant.
type Permission string

const (
	PermissionUnasked Permission = "unasked"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Valid reports whether permission is one of the known values.
func (permission Permission) Valid() bool {
	switch permission {
	case PermissionUnasked, PermissionGranted, PermissionDenied:
		return true
	default:
		return false
	}
}

// Store is the durable key/value backend the scheduler persists to.
type Store interface {
	Save(key string, value any) error
	Load(key string, out any) (bool, error)
}

// Settings is the persisted reminder preference.
type Settings struct {
	Enabled       bool       `yaml:"enabled" json:"enabled"`
	ScheduledTime string     `yaml:"scheduled_time" json:"scheduled_time"`
	Permission    Permission `yaml:"permission" json:"permission"`
	LastSaved     time.Time  `yaml:"last_saved" json:"last_saved"`
}

// DefaultSettings returns a disabled reminder at defaultTime.
func DefaultSettings(defaultTime string) Settings {
	if ValidateTime(defaultTime) != nil {
		defaultTime = "08:00"
	}
	return Settings{
		ScheduledTime: defaultTime,
		Permission:    PermissionUnasked,
	}
}

// ValidateTime accepts a zero padded 24 hour "HH:MM".
func ValidateTime(value string) error {
	if len(value) != 5 {
		return fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	return nil
}

// LoadSettings reads the persisted preference.
// Missing or malformed data yields defaults; invalid fields are replaced individually.
func LoadSettings(store Store, defaultTime string) Settings {
	settings := DefaultSettings(defaultTime)
	if store == nil {
		return settings
	}

	var stored Settings
	found, err := store.Load(SettingsKey, &stored)
	if err != nil {
		logger.Warn("reminder settings unreadable, using defaults", "error", err)
		return settings
	}
	if !found {
		return settings
	}

	settings.Enabled = stored.Enabled
	settings.LastSaved = stored.LastSaved
	if ValidateTime(stored.ScheduledTime) == nil {
		settings.ScheduledTime = stored.ScheduledTime
	} else {
		logger.Warn("ignoring stored reminder time", "value", stored.ScheduledTime)
	}
	if stored.Permission.Valid() {
		settings.Permission = stored.Permission
	}
	return settings
}
