package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"stretchtime/internal/core/reminder"
	"stretchtime/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type busCall struct {
	method string
	args   []interface{}
}

type fakeBus struct {
	mu           sync.Mutex
	calls        []busCall
	nextID       uint32
	capabilities []string
	serverErr    error
	signals      chan *dbus.Signal
}

func newFakeBus(capabilities ...string) *fakeBus {
	return &fakeBus{capabilities: capabilities, signals: make(chan *dbus.Signal, 8)}
}

func (bus *fakeBus) Call(method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.calls = append(bus.calls, busCall{method: method, args: args})

	switch method {
	case dbusInterface + ".GetCapabilities":
		return &dbus.Call{Body: []interface{}{bus.capabilities}}
	case dbusInterface + ".GetServerInformation":
		if bus.serverErr != nil {
			return &dbus.Call{Err: bus.serverErr}
		}
		return &dbus.Call{Body: []interface{}{"fake", "tests", "1.0", "1.2"}}
	case dbusInterface + ".Notify":
		bus.nextID++
		return &dbus.Call{Body: []interface{}{bus.nextID}}
	default:
		return &dbus.Call{}
	}
}

func (bus *fakeBus) Close() error {
	close(bus.signals)
	return nil
}

func (bus *fakeBus) callsTo(method string) []busCall {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	var matched []busCall
	for _, call := range bus.calls {
		if call.method == dbusInterface+"."+method {
			matched = append(matched, call)
		}
	}
	return matched
}

func newTestBackend(t *testing.T, bus *fakeBus) *DBusBackend {
	t.Helper()
	backend := newDBusBackend("stretchtime", bus, bus, bus.signals)
	t.Cleanup(func() { assert.NoError(t, backend.Close()) })
	return backend
}

var daily = reminder.Notification{
	Title: "Time to stretch",
	Body:  "Five minutes",
	Tag:   "daily",
	Actions: []reminder.Action{
		{Key: reminder.ActionStartExercise, Label: "Start now"},
		{Key: reminder.ActionRemindLater, Label: "Later"},
	},
	Urgent: true,
}

func TestDBusShowSendsActionsAndHints(t *testing.T) {
	bus := newFakeBus("body", "actions")
	backend := newTestBackend(t, bus)

	assert.True(t, backend.Supported())
	_, err := backend.Show(daily)
	require.NoError(t, err)

	notifies := bus.callsTo("Notify")
	require.Len(t, notifies, 1)
	args := notifies[0].args
	assert.Equal(t, "stretchtime", args[0])
	assert.Equal(t, uint32(0), args[1])
	assert.Equal(t, "Time to stretch", args[3])
	assert.Equal(t, []string{
		reminder.ActionDefault, "Open",
		reminder.ActionStartExercise, "Start now",
		reminder.ActionRemindLater, "Later",
	}, args[5])
	hints := args[6].(map[string]dbus.Variant)
	assert.Equal(t, urgencyCritical, hints["urgency"].Value())
}

func TestDBusWithoutActionCapability(t *testing.T) {
	bus := newFakeBus("body")
	backend := newTestBackend(t, bus)

	_, err := backend.Show(daily)
	require.NoError(t, err)

	assert.Nil(t, bus.callsTo("Notify")[0].args[5])
}

func TestDBusSameTagReplaces(t *testing.T) {
	bus := newFakeBus("actions")
	backend := newTestBackend(t, bus)

	_, err := backend.Show(daily)
	require.NoError(t, err)
	_, err = backend.Show(daily)
	require.NoError(t, err)

	notifies := bus.callsTo("Notify")
	require.Len(t, notifies, 2)
	assert.Equal(t, uint32(1), notifies[1].args[1])
}

func TestDBusActionSignalReachesHandle(t *testing.T) {
	bus := newFakeBus("actions")
	backend := newTestBackend(t, bus)
	handle, err := backend.Show(daily)
	require.NoError(t, err)

	var clicked atomic.Value
	handle.OnAction(func(key string) { clicked.Store(key) })

	bus.signals <- &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(1), reminder.ActionRemindLater}}
	require.Eventually(t, func() bool { return clicked.Load() == reminder.ActionRemindLater }, time.Second, time.Millisecond)

	require.NoError(t, handle.Close())
	closes := bus.callsTo("CloseNotification")
	require.Len(t, closes, 1)
	assert.Equal(t, uint32(1), closes[0].args[0])
}

func TestDBusClosedNotificationIgnoresLateActions(t *testing.T) {
	bus := newFakeBus("actions")
	backend := newTestBackend(t, bus)
	handle, err := backend.Show(daily)
	require.NoError(t, err)

	var clicks atomic.Int32
	handle.OnAction(func(string) { clicks.Add(1) })

	bus.signals <- &dbus.Signal{Name: signalClosed, Body: []interface{}{uint32(1), uint32(2)}}
	bus.signals <- &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(1), reminder.ActionDefault}}
	bus.signals <- &dbus.Signal{Name: "unrelated", Body: []interface{}{"x"}}
	require.Eventually(t, func() bool { return len(bus.signals) == 0 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	assert.Zero(t, clicks.Load())
	_, err = backend.Show(daily)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), bus.callsTo("Notify")[1].args[1], "closed tag is not replaced")
}

func TestDBusUnsupportedServer(t *testing.T) {
	bus := newFakeBus()
	bus.serverErr = errors.New("org.freedesktop.DBus.Error.ServiceUnknown")
	backend := newTestBackend(t, bus)

	assert.False(t, backend.Supported())
}

type fakeBackend struct {
	supported bool
	shown     []reminder.Notification
}

func (backend *fakeBackend) Supported() bool { return backend.supported }
func (backend *fakeBackend) Show(notification reminder.Notification) (reminder.Handle, error) {
	backend.shown = append(backend.shown, notification)
	return noopHandle{}, nil
}
func (backend *fakeBackend) Close() error { return nil }

func TestDesktopPromptsOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	prompts := 0
	desktop := NewDesktop(&fakeBackend{supported: true}, store, PrompterFunc(func(context.Context) (reminder.Permission, error) {
		prompts++
		return reminder.PermissionGranted, nil
	}))

	assert.Equal(t, reminder.PermissionUnasked, desktop.Permission())
	_, err := desktop.Display(daily)
	assert.ErrorIs(t, err, ErrNotPermitted)

	permission, err := desktop.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionGranted, permission)

	permission, err = desktop.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionGranted, permission)
	assert.Equal(t, 1, prompts)

	handle, err := desktop.Display(daily)
	require.NoError(t, err)
	assert.NoError(t, handle.Close())
}

func TestDesktopDismissedPromptIsNotRecorded(t *testing.T) {
	store := storage.NewMemoryStore()
	desktop := NewDesktop(&fakeBackend{supported: true}, store, PrompterFunc(func(context.Context) (reminder.Permission, error) {
		return reminder.PermissionUnasked, nil
	}))

	permission, err := desktop.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionUnasked, permission)
	found, err := store.Load(PermissionKey, new(reminder.Permission))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDesktopPromptError(t *testing.T) {
	desktop := NewDesktop(&fakeBackend{supported: true}, storage.NewMemoryStore(), PrompterFunc(func(ctx context.Context) (reminder.Permission, error) {
		return reminder.PermissionUnasked, context.Canceled
	}))

	_, err := desktop.RequestPermission(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDesktopRevokeAndReset(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(PermissionKey, reminder.PermissionGranted))
	desktop := NewDesktop(&fakeBackend{supported: true}, store, nil)
	require.Equal(t, reminder.PermissionGranted, desktop.Permission())

	require.NoError(t, desktop.Revoke())
	assert.Equal(t, reminder.PermissionDenied, desktop.Permission())
	permission, err := desktop.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionDenied, permission, "a denial is never re-prompted")

	require.NoError(t, desktop.Reset())
	assert.Equal(t, reminder.PermissionUnasked, desktop.Permission())
}

func TestDesktopWithoutBackend(t *testing.T) {
	desktop := NewDesktop(nil, storage.NewMemoryStore(), nil)

	assert.False(t, desktop.Supported())
	_, err := desktop.Display(daily)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestDesktopIgnoresGarbagePermission(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(PermissionKey, "sure"))

	assert.Equal(t, reminder.PermissionUnasked, NewDesktop(nil, store, nil).Permission())
}

func TestFyneBackendWithoutApp(t *testing.T) {
	backend := NewFyneBackend(nil)
	assert.False(t, backend.Supported())
	_, err := backend.Show(daily)
	assert.ErrorIs(t, err, ErrNoBackend)
}
