//go:build unix && !linux

package process

import (
	"strconv"
	"syscall"
	"testing"
	"time"
)

// processAlive reports whether pid still answers signal 0, allowing a short
// grace period after SIGKILL.
func processAlive(t *testing.T, pid string) bool {
	t.Helper()

	n, err := strconv.Atoi(pid)
	if err != nil {
		t.Fatalf("parse pid %q: %v", pid, err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := syscall.Kill(n, 0); err != nil {
			return false
		}
		time.Sleep(20 * time.Millisecond)
	}
	return true
}
