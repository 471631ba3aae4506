package platform

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"
)

var (
	user32DLL            = syscall.NewLazyDLL("user32.dll")
	kernel32DLL          = syscall.NewLazyDLL("kernel32.dll")
	procGetLastInputInfo = user32DLL.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32DLL.NewProc("GetTickCount")
)

type idleProvider struct{}

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

func newIdleProvider() IdleProvider {
	return &idleProvider{}
}

func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	if err := procGetLastInputInfo.Find(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIdleUnsupported, err)
	}

	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	result, _, err := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if result == 0 {
		return 0, fmt.Errorf("get last input info: %w", err)
	}

	tick, _, _ := procGetTickCount.Call()
	return elapsedTicks(uint32(tick), info.dwTime), nil
}

// elapsedTicks subtracts two 32-bit millisecond tick counts. The counter
// wraps after about 49.7 days; unsigned subtraction stays correct across it.
func elapsedTicks(now, last uint32) time.Duration {
	return time.Duration(now-last) * time.Millisecond
}
