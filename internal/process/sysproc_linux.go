//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr puts the child in its own process group and asks the
// kernel to send it SIGTERM when the parent dies, so an aborted test binary
// does not leave initdb or pg_ctl behind.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
