//go:build linux

// Package procattr provides platform-specific subprocess configuration
// and process-group signalling for the bridge child.
package procattr

import (
	"os/exec"
	"syscall"
)

// Set places the child in its own process group and arranges for it to
// receive SIGTERM if the supervising process dies (e.g. OOM kill, SIGKILL),
// so a crashed host never leaves a bridge holding its socket.
func Set(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
