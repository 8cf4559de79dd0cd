//go:build windows

package process

import "os/exec"

// configureSysProcAttr is a no-op on Windows.
func configureSysProcAttr(_ *exec.Cmd) {}

// killProcessGroup kills the command's process. Windows has no process
// groups in the POSIX sense.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
