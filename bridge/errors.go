package bridge

import (
	"errors"
	"fmt"

	"github.com/bazelment/yoloswe/ipcbridge/protocol"
)

// Sentinel errors for common error conditions.
var (
	// ErrAlreadyRunning is returned by Start unless the bridge is unstarted or stopped.
	ErrAlreadyRunning = errors.New("ipc bridge is already running")

	// ErrFailed is returned by Start once the bridge has failed; failure is
	// terminal. It also matches ErrAlreadyRunning.
	ErrFailed error = failedError{}

	// ErrNotReady is returned by Send outside the ready state.
	ErrNotReady = errors.New("bridge is not running or not ready")

	// ErrStartTimeout is returned by Start when no ready handshake arrives in time.
	ErrStartTimeout = errors.New("bridge failed to start within timeout")

	// ErrStopped is returned by a pending Start that Stop interrupted.
	ErrStopped = errors.New("bridge stopped before becoming ready")

	// ErrInvalidState is returned for invalid state transitions.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrUnsupportedPlatform is wrapped by ConfigError for platforms without a bridge build.
	ErrUnsupportedPlatform = errors.New("unsupported platform or architecture")

	// ErrBinaryNotFound is wrapped by ConfigError when the bridge binary is missing.
	ErrBinaryNotFound = errors.New("ipc bridge binary not found")

	// ErrSocketPathRequired is wrapped by ConfigError for client mode without a socket path.
	ErrSocketPathRequired = errors.New("client mode requires a socket path")
)

type failedError struct{}

func (failedError) Error() string {
	return "ipc bridge has failed and cannot be restarted"
}

func (failedError) Is(target error) bool {
	return target == ErrAlreadyRunning
}

// ConfigError reports a configuration problem detected before any process
// is spawned.
type ConfigError struct {
	Cause   error
	Message string
}

func (e *ConfigError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("invalid bridge configuration: %v", e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("invalid bridge configuration: %v: %s", e.Cause, e.Message)
	}
	return "invalid bridge configuration: " + e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ProcessError represents an error with the bridge subprocess.
type ProcessError struct {
	Cause    error
	Message  string
	ExitCode int
}

func (e *ProcessError) Error() string {
	msg := e.Message
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// BridgeError is returned by Start when the bridge reports an error before
// completing its ready handshake.
type BridgeError struct {
	Message protocol.ErrorMessage
}

func (e *BridgeError) Error() string {
	if e.Message.Details == "" {
		return "bridge error: " + e.Message.Error
	}
	return fmt.Sprintf("bridge error: %s: %s", e.Message.Error, e.Message.Details)
}

// IsRecoverable reports whether a fresh Bridge with the same configuration
// could reasonably succeed where this error occurred.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return false
	}

	if errors.Is(err, protocol.ErrUnsupportedVersion) {
		return false
	}

	return true
}
