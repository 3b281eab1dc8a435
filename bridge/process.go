package bridge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/bazelment/yoloswe/ipcbridge/internal/ndjson"
	"github.com/bazelment/yoloswe/ipcbridge/internal/procattr"
)

// errInputClosed is returned by WriteJSON once shutdown has closed stdin.
var errInputClosed = errors.New("bridge stdin is closed")

// processManager manages one bridge subprocess.
type processManager struct {
	stdin       io.WriteCloser
	stdout      io.ReadCloser
	stderr      io.ReadCloser
	cmd         *exec.Cmd
	writer      *ndjson.Writer
	path        string
	config      Config
	mu          sync.Mutex // guards stdin against concurrent close
	inputClosed bool
}

func newProcessManager(path string, config Config) *processManager {
	return &processManager{path: path, config: config}
}

// BuildArgs returns the role flag and optional socket path.
//
// Server: ipc-json-bridge --server [socket]
// Client: ipc-json-bridge --client <socket>
func (pm *processManager) BuildArgs() []string {
	role := "--server"
	if pm.config.Client {
		role = "--client"
	}
	args := []string{role}
	if pm.config.SocketPath != "" {
		args = append(args, pm.config.SocketPath)
	}
	return args
}

// Start spawns the bridge process.
func (pm *processManager) Start() error {
	if err := ensureExecutable(pm.path); err != nil {
		return &ProcessError{Message: "failed to prepare bridge binary", Cause: err}
	}

	// Not CommandContext: the bridge outlives the Start call.
	pm.cmd = exec.Command(pm.path, pm.BuildArgs()...)

	// Configure process group for orphan prevention.
	procattr.Set(pm.cmd)

	if len(pm.config.Env) > 0 {
		pm.cmd.Env = os.Environ()
		for k, v := range pm.config.Env {
			pm.cmd.Env = append(pm.cmd.Env, k+"="+v)
		}
	}

	var err error
	pm.stdin, err = pm.cmd.StdinPipe()
	if err != nil {
		return &ProcessError{Message: "failed to get stdin pipe", Cause: err}
	}

	pm.stdout, err = pm.cmd.StdoutPipe()
	if err != nil {
		return &ProcessError{Message: "failed to get stdout pipe", Cause: err}
	}

	pm.stderr, err = pm.cmd.StderrPipe()
	if err != nil {
		return &ProcessError{Message: "failed to get stderr pipe", Cause: err}
	}

	if err := pm.cmd.Start(); err != nil {
		return &ProcessError{Message: "failed to start bridge process", Cause: err}
	}

	pm.writer = ndjson.NewWriter(pm.stdin)
	return nil
}

// Pid returns the child's process id.
func (pm *processManager) Pid() int {
	if pm.cmd == nil || pm.cmd.Process == nil {
		return 0
	}
	return pm.cmd.Process.Pid
}

// WriteJSON writes one JSON line to the bridge's stdin.
func (pm *processManager) WriteJSON(v any) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.inputClosed {
		return errInputClosed
	}
	return pm.writer.WriteJSON(v)
}

// CloseInput closes stdin after any in-flight write completes. Lines
// already written stay readable by the bridge.
func (pm *processManager) CloseInput() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.inputClosed {
		return
	}
	pm.inputClosed = true
	_ = pm.stdin.Close()
}

// Terminate asks the bridge's process group to exit.
func (pm *processManager) Terminate() error {
	return procattr.Terminate(pm.cmd.Process)
}

// Kill forcibly ends the bridge's process group.
func (pm *processManager) Kill() error {
	return procattr.Kill(pm.cmd.Process)
}

// Wait reaps the process. Callers must finish reading stdout and stderr
// first, since Wait closes both pipes.
func (pm *processManager) Wait() error {
	return pm.cmd.Wait()
}

// exitCode extracts the exit status from a Wait error; -1 means the process
// was killed by a signal.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// exitDetails renders a Wait result for an error event.
func exitDetails(err error) string {
	code := exitCode(err)
	var exitErr *exec.ExitError
	if code == -1 && errors.As(err, &exitErr) {
		return fmt.Sprintf("Exit code: %d (%s)", code, exitErr)
	}
	return fmt.Sprintf("Exit code: %d", code)
}
