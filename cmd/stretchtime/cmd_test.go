package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stretchtime/internal/core/reminder"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("APPDATA", home)
	t.Setenv("STRETCHTIME_STORAGE_TYPE", "yaml")
}

func TestScheduleThenStats(t *testing.T) {
	isolate(t)

	out, err := execute(t, "schedule", "09:15")
	require.NoError(t, err)
	assert.Contains(t, out, "Reminder time set to 09:15")

	out, err = execute(t, "stats", "--json")
	require.NoError(t, err)

	var stats reminder.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, "09:15", stats.ScheduledTime)
	assert.False(t, stats.Enabled)
	assert.Zero(t, stats.Total)
	assert.Equal(t, reminder.PermissionUnasked, stats.Permission)
}

func TestScheduleRejectsMalformedTime(t *testing.T) {
	isolate(t)

	out, err := execute(t, "schedule", "8:60")
	assert.ErrorIs(t, err, reminder.ErrInvalidTime)
	assert.Contains(t, out, "Invalid time format. Use HH:MM")

	out, err = execute(t, "stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"scheduled_time": "08:00"`)
}

func TestPermissionRevokeAndReset(t *testing.T) {
	isolate(t)

	out, err := execute(t, "permission", "status")
	require.NoError(t, err)
	assert.Equal(t, "unasked", strings.TrimSpace(out))

	_, err = execute(t, "permission", "revoke")
	require.NoError(t, err)
	out, err = execute(t, "permission", "status")
	require.NoError(t, err)
	assert.Equal(t, "denied", strings.TrimSpace(out))

	out, err = execute(t, "stats", "--json")
	require.NoError(t, err)
	var stats reminder.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, reminder.PermissionDenied, stats.Permission)
	assert.False(t, stats.Enabled)

	_, err = execute(t, "permission", "reset")
	require.NoError(t, err)
	out, err = execute(t, "permission", "status")
	require.NoError(t, err)
	assert.Equal(t, "unasked", strings.TrimSpace(out))
}

func TestStatsTextOutput(t *testing.T) {
	isolate(t)

	out, err := execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Scheduled time")
	assert.Contains(t, out, "08:00")
}
