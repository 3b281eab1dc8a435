//go:build !windows

package procattr

import (
	"os"

	"golang.org/x/sys/unix"
)

// SignalGroup sends a signal to the entire process group of the given process.
// Using the negative PID causes the kernel to deliver the signal to all
// processes in the group, not just the direct child.
func SignalGroup(p *os.Process, sig unix.Signal) error {
	if p == nil {
		return nil
	}
	err := unix.Kill(-p.Pid, sig)
	if err == unix.ESRCH {
		return nil
	}
	return err
}

// Terminate sends SIGTERM to the process group.
func Terminate(p *os.Process) error {
	return SignalGroup(p, unix.SIGTERM)
}

// Kill sends SIGKILL to the process group.
func Kill(p *os.Process) error {
	return SignalGroup(p, unix.SIGKILL)
}
