package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const activateMessage = "activate\n"

// InstanceGuard holds the single-instance lock. A later instance that fails
// to acquire it pings the holder, which then runs its activate hook.
type InstanceGuard struct {
	listener net.Listener
	address  string
	mu       sync.Mutex
	activate func()
	done     chan struct{}
}

// AcquireSingleInstance attempts to bind a deterministic localhost port.
// When the port is taken the running instance is asked to come forward.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		signalRunning(address)
		return nil, ErrAlreadyRunning
	}

	guard := &InstanceGuard{listener: listener, address: address, done: make(chan struct{})}
	go guard.serve()
	return guard, nil
}

// OnActivate sets the hook run when another instance starts.
func (guard *InstanceGuard) OnActivate(fn func()) {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	guard.activate = fn
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	<-guard.done
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) serve() {
	defer close(guard.done)
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		buffer := make([]byte, len(activateMessage))
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		n, _ := conn.Read(buffer)
		conn.Close()
		if string(buffer[:n]) != activateMessage {
			continue
		}

		guard.mu.Lock()
		activate := guard.activate
		guard.mu.Unlock()
		if activate != nil {
			activate()
		}
	}
}

func signalRunning(address string) {
	conn, err := net.DialTimeout("tcp", address, time.Second)
	if err != nil {
		return
	}
	defer conn.Close()
	_, _ = conn.Write([]byte(activateMessage))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
