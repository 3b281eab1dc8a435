//go:build windows

// Package procattr provides platform-specific subprocess configuration
// and process-group signalling for the bridge child.
package procattr

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// Set starts the child in a new process group so console control events
// aimed at the host are not delivered to the bridge.
func Set(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}
}

// Terminate asks the process to exit. Windows has no SIGTERM equivalent for
// console-less children, so this is the same as Kill.
func Terminate(p *os.Process) error {
	return Kill(p)
}

// Kill forcibly terminates the process.
func Kill(p *os.Process) error {
	if p == nil {
		return nil
	}
	return ignoreDone(p.Kill())
}

func ignoreDone(err error) error {
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
