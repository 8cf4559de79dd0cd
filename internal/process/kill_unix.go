//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// killProcessGroup sends SIGKILL to the process group led by cmd, falling
// back to the single process if the group is already gone.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}
