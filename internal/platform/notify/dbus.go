package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"stretchtime/internal/core/reminder"
	"stretchtime/internal/logger"
)

const (
	dbusDestination = "org.freedesktop.Notifications"
	dbusPath        = dbus.ObjectPath("/org/freedesktop/Notifications")
	dbusInterface   = "org.freedesktop.Notifications"

	signalActionInvoked = dbusInterface + ".ActionInvoked"
	signalClosed        = dbusInterface + ".NotificationClosed"
)

// Urgency levels from the desktop notifications specification.
const (
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// caller is the subset of dbus.BusObject used here.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DBusBackend talks to org.freedesktop.Notifications on the session bus.
type DBusBackend struct {
	appName string
	conn    interface{ Close() error }
	object  caller
	signals <-chan *dbus.Signal
	actions bool

	mu      sync.Mutex
	handles map[uint32]*dbusHandle
	byTag   map[string]uint32
	done    chan struct{}
}

// NewDBusBackend connects to the session bus and subscribes to notification signals.
func NewDBusBackend(appName string) (*DBusBackend, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusPath),
		dbus.WithMatchInterface(dbusInterface),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe notification signals: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	backend := newDBusBackend(appName, conn, conn.Object(dbusDestination, dbusPath), signals)
	return backend, nil
}

func newDBusBackend(appName string, conn interface{ Close() error }, object caller, signals <-chan *dbus.Signal) *DBusBackend {
	backend := &DBusBackend{
		appName: appName,
		conn:    conn,
		object:  object,
		signals: signals,
		handles: make(map[uint32]*dbusHandle),
		byTag:   make(map[string]uint32),
		done:    make(chan struct{}),
	}
	backend.actions = backend.hasCapability("actions")
	go backend.dispatch()
	return backend
}

// Supported reports whether a notification server answered on the bus.
func (backend *DBusBackend) Supported() bool {
	var name, vendor, version, specVersion string
	call := backend.object.Call(dbusInterface+".GetServerInformation", 0)
	return call.Store(&name, &vendor, &version, &specVersion) == nil
}

// Show sends notification. A notification with the same tag replaces the previous one.
func (backend *DBusBackend) Show(notification reminder.Notification) (reminder.Handle, error) {
	backend.mu.Lock()
	replaces := backend.byTag[notification.Tag]
	backend.mu.Unlock()

	var actions []string
	if backend.actions {
		actions = append(actions, reminder.ActionDefault, "Open")
		for _, action := range notification.Actions {
			actions = append(actions, action.Key, action.Label)
		}
	}

	urgency := urgencyNormal
	if notification.Urgent {
		urgency = urgencyCritical
	}
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(urgency),
		"desktop-entry": dbus.MakeVariant(backend.appName),
	}

	var id uint32
	call := backend.object.Call(dbusInterface+".Notify", 0,
		backend.appName,
		replaces,
		"",
		notification.Title,
		notification.Body,
		actions,
		hints,
		int32(-1),
	)
	if err := call.Store(&id); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}

	handle := &dbusHandle{backend: backend, id: id}
	backend.mu.Lock()
	delete(backend.handles, replaces)
	backend.handles[id] = handle
	if notification.Tag != "" {
		backend.byTag[notification.Tag] = id
	}
	backend.mu.Unlock()

	logger.Debug("desktop notification shown", "id", id, "tag", notification.Tag)
	return handle, nil
}

// Close drops the bus connection and waits for signal dispatch to end.
func (backend *DBusBackend) Close() error {
	err := backend.conn.Close()
	<-backend.done
	return err
}

func (backend *DBusBackend) hasCapability(name string) bool {
	var capabilities []string
	call := backend.object.Call(dbusInterface+".GetCapabilities", 0)
	if err := call.Store(&capabilities); err != nil {
		return false
	}
	for _, capability := range capabilities {
		if capability == name {
			return true
		}
	}
	return false
}

func (backend *DBusBackend) dispatch() {
	defer close(backend.done)
	for signal := range backend.signals {
		if len(signal.Body) < 2 {
			continue
		}
		id, ok := signal.Body[0].(uint32)
		if !ok {
			continue
		}

		switch signal.Name {
		case signalActionInvoked:
			key, _ := signal.Body[1].(string)
			if handle := backend.lookup(id); handle != nil {
				handle.invoke(key)
			}
		case signalClosed:
			backend.forget(id)
		}
	}
}

func (backend *DBusBackend) lookup(id uint32) *dbusHandle {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	return backend.handles[id]
}

func (backend *DBusBackend) forget(id uint32) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	delete(backend.handles, id)
	for tag, tagged := range backend.byTag {
		if tagged == id {
			delete(backend.byTag, tag)
		}
	}
}

type dbusHandle struct {
	backend  *DBusBackend
	id       uint32
	mu       sync.Mutex
	onAction func(string)
}

func (handle *dbusHandle) OnAction(fn func(string)) {
	handle.mu.Lock()
	defer handle.mu.Unlock()
	handle.onAction = fn
}

func (handle *dbusHandle) invoke(key string) {
	handle.mu.Lock()
	fn := handle.onAction
	handle.mu.Unlock()
	if fn != nil {
		fn(key)
	}
}

func (handle *dbusHandle) Close() error {
	handle.backend.forget(handle.id)
	call := handle.backend.object.Call(dbusInterface+".CloseNotification", 0, handle.id)
	if call.Err != nil {
		return fmt.Errorf("close notification %d: %w", handle.id, call.Err)
	}
	return nil
}
