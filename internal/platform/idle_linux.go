package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mutterIdleDest   = "org.gnome.Mutter.IdleMonitor"
	mutterIdlePath   = "/org/gnome/Mutter/IdleMonitor/Core"
	mutterIdleMethod = "org.gnome.Mutter.IdleMonitor.GetIdletime"
)

// errSourceGone marks a source that will never answer in this session.
var errSourceGone = errors.New("idle source unavailable")

// idleSource reports input idleness in milliseconds.
type idleSource func() (uint64, error)

// idleProvider asks each source in turn. X11 sessions answer through
// xprintidle; GNOME on Wayland answers through the Mutter idle monitor.
// Sources that report errSourceGone are dropped.
type idleProvider struct {
	mu      sync.Mutex
	sources []idleSource
}

func newIdleProvider() IdleProvider {
	provider := &idleProvider{}
	if path, err := exec.LookPath("xprintidle"); err == nil {
		provider.sources = append(provider.sources, xprintidleSource(path))
	}
	provider.sources = append(provider.sources, mutterSource)
	return provider
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()

	var lastErr error
	live := provider.sources[:0]
	for index, source := range provider.sources {
		idleMillis, err := source()
		if err == nil {
			live = append(live, provider.sources[index:]...)
			provider.sources = live
			return time.Duration(idleMillis) * time.Millisecond, nil
		}
		if !errors.Is(err, errSourceGone) {
			live = append(live, source)
		}
		lastErr = err
	}
	provider.sources = live

	if len(live) == 0 {
		return 0, ErrIdleUnsupported
	}
	return 0, lastErr
}

func xprintidleSource(path string) idleSource {
	return func() (uint64, error) {
		output, err := exec.Command(path).Output()
		if err != nil {
			return 0, fmt.Errorf("xprintidle: %w", err)
		}
		return parseIdleMillis(string(output))
	}
}

func mutterSource() (uint64, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return 0, fmt.Errorf("%w: session bus: %v", errSourceGone, err)
	}
	defer conn.Close()

	var idleMillis uint64
	call := conn.Object(mutterIdleDest, dbus.ObjectPath(mutterIdlePath)).Call(mutterIdleMethod, 0)
	if err := call.Store(&idleMillis); err != nil {
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) && dbusErr.Name == "org.freedesktop.DBus.Error.ServiceUnknown" {
			return 0, fmt.Errorf("%w: %s", errSourceGone, mutterIdleDest)
		}
		return 0, fmt.Errorf("mutter idle monitor: %w", err)
	}
	return idleMillis, nil
}

func parseIdleMillis(value string) (uint64, error) {
	idleMillis, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return uint64(idleMillis), nil
}
