//go:build linux

package process

import (
	"os"
	"strings"
	"testing"
	"time"
)

// processAlive reports whether pid is a live (non-zombie) process, allowing
// a short grace period after SIGKILL. Zombies count as gone: inside
// containers the reparented grandchild may never be reaped.
func processAlive(t *testing.T, pid string) bool {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile("/proc/" + pid + "/stat")
		if err != nil {
			return false
		}
		// The state field follows the parenthesised command name.
		if i := strings.LastIndexByte(string(data), ')'); i >= 0 && i+2 < len(data) {
			if state := data[i+2]; state == 'Z' || state == 'X' {
				return false
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	return true
}
