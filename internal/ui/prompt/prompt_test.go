package prompt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stretchtime/internal/core/reminder"
)

func scripted(clicks ...reminder.Permission) (*Dialog, *int) {
	hidden := 0
	return &Dialog{show: func(answer func(reminder.Permission)) func() {
		for _, click := range clicks {
			answer(click)
		}
		return func() { hidden++ }
	}}, &hidden
}

func TestAskReturnsFirstAnswer(t *testing.T) {
	tests := []struct {
		name   string
		clicks []reminder.Permission
		want   reminder.Permission
	}{
		{"allow", []reminder.Permission{reminder.PermissionGranted, reminder.PermissionUnasked}, reminder.PermissionGranted},
		{"block", []reminder.Permission{reminder.PermissionDenied, reminder.PermissionUnasked}, reminder.PermissionDenied},
		{"dismissed", []reminder.Permission{reminder.PermissionUnasked}, reminder.PermissionUnasked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, hidden := scripted(tt.clicks...)
			got, err := prompt.Ask(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, *hidden)
		})
	}
}

func TestAskHidesDialogWhenContextEnds(t *testing.T) {
	prompt, hidden := scripted()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := prompt.Ask(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, reminder.PermissionUnasked, got)
	assert.Equal(t, 1, *hidden)
}
