package reminderview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stretchtime/internal/core/reminder"
)

func TestStatusText(t *testing.T) {
	on := reminder.Settings{Enabled: true, ScheduledTime: "07:30"}
	off := reminder.Settings{ScheduledTime: "07:30"}

	assert.Equal(t, "Reminders are on. You'll be notified daily at 07:30.", statusText(on, true))
	assert.Equal(t, "Reminders are off", statusText(off, true))
	assert.Contains(t, statusText(on, false), "not available")
}

func TestPermissionText(t *testing.T) {
	assert.Contains(t, permissionText(reminder.PermissionGranted), "allowed")
	assert.Contains(t, permissionText(reminder.PermissionDenied), "permission reset")
	assert.Contains(t, permissionText(reminder.PermissionUnasked), "not asked")
	assert.Contains(t, permissionText(reminder.Permission("bogus")), "not asked")
}

func TestToggleLabel(t *testing.T) {
	assert.Equal(t, "Disable reminders", toggleLabel(true))
	assert.Equal(t, "Enable reminders", toggleLabel(false))
}
