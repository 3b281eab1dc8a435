//go:build !linux && !windows

// Package procattr provides platform-specific subprocess configuration
// and process-group signalling for the bridge child.
package procattr

import (
	"os/exec"
	"syscall"
)

// Set places the child in its own process group. Pdeathsig is Linux-only;
// elsewhere the group lets Stop signal the bridge and anything it spawned.
func Set(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
