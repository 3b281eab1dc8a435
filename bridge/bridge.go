package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bazelment/yoloswe/ipcbridge/internal/ndjson"
	"github.com/bazelment/yoloswe/ipcbridge/protocol"
)

// Bridge supervises one ipc-json-bridge subprocess at a time and dispatches
// its events to registered listeners.
type Bridge struct {
	*Dispatcher
	logger     *slog.Logger
	run        *run
	failedRun  *run // the run that moved the Bridge to Failed
	binaryPath string
	socketPath string
	config     Config
	state      stateMachine
	mu         sync.Mutex
}

// run is the state of one spawned child. A Bridge that is restarted gets a
// fresh run, so goroutines left over from an earlier child only ever touch
// their own run and are ignored once b.run has moved on.
//
// Each channel is closed exactly once, under Bridge.mu, in the same critical
// section as the state transition it announces.
type run struct {
	proc          *processManager
	events        chan protocol.Message
	ready         chan struct{} // Starting -> Ready
	failed        chan struct{} // Starting -> Failed
	stopRequested chan struct{} // Starting -> Stopping
	abandoned     chan struct{} // stop or failure began; blocked publishers give up
	terminated    chan struct{} // child reaped, or SIGKILL sent
	drained       chan struct{} // silenced and every accepted event dispatched
	exited        chan struct{}
	stopDone      chan struct{}
	stdoutDone    chan struct{}
	stderrDone    chan struct{}
	startErr      error
	versionErr    error
	pending       int // events accepted by publish and not yet dispatched or dropped
	stopping      bool
	silenced      bool
}

func newRun(proc *processManager, bufferSize int) *run {
	return &run{
		proc:          proc,
		events:        make(chan protocol.Message, bufferSize),
		ready:         make(chan struct{}),
		failed:        make(chan struct{}),
		stopRequested: make(chan struct{}),
		abandoned:     make(chan struct{}),
		terminated:    make(chan struct{}),
		drained:       make(chan struct{}),
		exited:        make(chan struct{}),
		stopDone:      make(chan struct{}),
		stdoutDone:    make(chan struct{}),
		stderrDone:    make(chan struct{}),
	}
}

// New validates the configuration and resolves the bridge binary. No
// process is spawned until Start.
func New(opts ...Option) (*Bridge, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.Client && config.SocketPath == "" {
		return nil, &ConfigError{Cause: ErrSocketPathRequired}
	}
	if config.StartTimeout <= 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("start timeout must be positive, got %s", config.StartTimeout)}
	}
	if config.StopTimeout <= 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("stop timeout must be positive, got %s", config.StopTimeout)}
	}
	if config.EventBufferSize < 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("event buffer size must not be negative, got %d", config.EventBufferSize)}
	}

	path, err := resolveBinary(config)
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Bridge{
		Dispatcher: NewDispatcher(config.Logger),
		logger:     config.Logger,
		binaryPath: path,
		config:     config,
	}, nil
}

// Start spawns the bridge and blocks until it completes the ready handshake.
//
// On timeout, early exit, or an error reported by the bridge during startup
// the child is torn down and the Bridge becomes Failed. A failed Start
// returns only after the child has been reaped or killed and every event it
// produced before the failure has been dispatched; no later events fire. A
// Stop issued while Start is pending makes Start return ErrStopped.
// Cancelling ctx stops the child and returns ctx.Err().
func (b *Bridge) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	if s := b.state.Current(); !s.canStart() {
		b.mu.Unlock()
		if s == StateFailed {
			return ErrFailed
		}
		return ErrAlreadyRunning
	}
	if err := b.state.transition(StateStarting); err != nil {
		b.mu.Unlock()
		return err
	}

	proc := newProcessManager(b.binaryPath, b.config)
	if err := proc.Start(); err != nil {
		_ = b.state.transition(StateFailed)
		b.mu.Unlock()
		b.logger.Error("failed to start bridge process", "path", b.binaryPath, "error", err)
		b.emit(protocol.ErrorMessage{Error: "Failed to start bridge process", Details: err.Error()})
		return err
	}

	r := newRun(proc, b.config.EventBufferSize)
	b.run = r
	b.mu.Unlock()

	b.logger.Info("bridge process started", "pid", proc.Pid(), "args", proc.BuildArgs())

	go b.readStdout(r)
	go b.readStderr(r)
	go b.monitor(r)
	go b.dispatch(r)

	timer := time.NewTimer(b.config.StartTimeout)
	defer timer.Stop()

	select {
	case <-r.ready:
		return nil
	case <-r.failed:
		b.awaitAbandoned(r)
		return r.startErr
	case <-r.stopRequested:
		return ErrStopped
	case <-timer.C:
		return b.failStart(r)
	case <-ctx.Done():
		_ = b.Stop()
		return ctx.Err()
	}
}

// failStart moves a run that missed its start deadline to Failed and tears
// the child down. If the run settled in the meantime, its outcome wins.
func (b *Bridge) failStart(r *run) error {
	b.mu.Lock()
	if b.run != r || b.state.Current() != StateStarting {
		b.mu.Unlock()
		return b.settled(r)
	}

	err := ErrStartTimeout
	if r.versionErr != nil {
		err = fmt.Errorf("%w: %w", ErrStartTimeout, r.versionErr)
	}
	b.fail(r, err)
	b.mu.Unlock()

	b.logger.Warn("bridge did not become ready", "timeout", b.config.StartTimeout, "error", err)
	b.terminate(r)
	<-r.drained
	return err
}

// fail moves the Bridge from Starting to Failed on behalf of r. Callers hold
// b.mu.
func (b *Bridge) fail(r *run, err error) {
	_ = b.state.transition(StateFailed)
	r.startErr = err
	b.silence(r)
	close(r.failed)
	b.run = nil
	b.failedRun = r
}

// awaitAbandoned blocks until a failed run's child is gone and its accepted
// events have been delivered.
func (b *Bridge) awaitAbandoned(r *run) {
	<-r.terminated
	<-r.drained
}

// settled reports how a run left Starting.
func (b *Bridge) settled(r *run) error {
	select {
	case <-r.ready:
		return nil
	case <-r.failed:
		b.awaitAbandoned(r)
		return r.startErr
	case <-r.stopRequested:
		return ErrStopped
	default:
		return ErrStartTimeout
	}
}

// Stop terminates the bridge, escalating to SIGKILL after the stop timeout,
// and returns once the child has exited or been killed. Concurrent calls
// join the stop in flight. On a Failed bridge it waits for the failed
// child's teardown. Stop always returns nil.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	r := b.run
	switch s := b.state.Current(); s {
	case StateStarting, StateReady:
		_ = b.state.transition(StateStopping)
		r.stopping = true
		closeOnce(r.abandoned)
		if s == StateStarting {
			close(r.stopRequested)
		}
		b.mu.Unlock()
	case StateStopping:
		b.mu.Unlock()
		<-r.stopDone
		return nil
	case StateFailed:
		failed := b.failedRun
		b.mu.Unlock()
		if failed != nil {
			<-failed.terminated
		}
		return nil
	default:
		b.mu.Unlock()
		return nil
	}

	b.logger.Info("stopping bridge", "pid", r.proc.Pid())
	b.terminate(r)

	b.mu.Lock()
	if b.run == r {
		_ = b.state.transition(StateStopped)
		b.run = nil
	}
	close(r.stopDone)
	b.mu.Unlock()

	b.logger.Info("bridge stopped")
	return nil
}

// terminate closes stdin, signals the process group, and sends SIGKILL if
// the child outlives the stop timeout. It does not wait after SIGKILL.
func (b *Bridge) terminate(r *run) {
	r.proc.CloseInput()
	if err := r.proc.Terminate(); err != nil {
		b.logger.Debug("failed to signal bridge", "pid", r.proc.Pid(), "error", err)
	}

	timer := time.NewTimer(b.config.StopTimeout)
	defer timer.Stop()

	select {
	case <-r.exited:
	case <-timer.C:
		b.logger.Warn("bridge did not exit in time, killing", "pid", r.proc.Pid(), "timeout", b.config.StopTimeout)
		if err := r.proc.Kill(); err != nil {
			b.logger.Debug("failed to kill bridge", "pid", r.proc.Pid(), "error", err)
		}
	}

	b.mu.Lock()
	closeOnce(r.terminated)
	b.mu.Unlock()
}

// Send writes msg to the bridge as one JSON line. It fails with ErrNotReady
// unless the bridge is ready. Delivery to the client is not confirmed.
func (b *Bridge) Send(msg protocol.OutgoingMessage) error {
	b.mu.Lock()
	r := b.run
	ready := r != nil && b.state.Current() == StateReady
	b.mu.Unlock()

	if !ready {
		return ErrNotReady
	}
	if err := r.proc.WriteJSON(msg); err != nil {
		if errors.Is(err, errInputClosed) {
			return ErrNotReady
		}
		return &ProcessError{Message: "failed to write to bridge stdin", Cause: err}
	}
	return nil
}

// IsReady reports whether the bridge has completed its handshake and is
// accepting Send calls.
func (b *Bridge) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.run != nil && b.state.Current() == StateReady
}

// SocketPath returns the socket path from the most recent ready handshake,
// or "" if the bridge has never been ready.
func (b *Bridge) SocketPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.socketPath
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Current()
}

// BinaryPath returns the resolved absolute path of the bridge binary.
func (b *Bridge) BinaryPath() string {
	return b.binaryPath
}

func (b *Bridge) readStdout(r *run) {
	defer close(r.stdoutDone)

	reader := ndjson.NewReader(r.proc.stdout)
	for {
		line, err := reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				b.logger.Debug("bridge stdout read failed", "error", err)
			}
			if n := reader.Dropped(); n > 0 {
				b.logger.Debug("discarded unterminated bridge output", "bytes", n)
			}
			return
		}
		b.handleFrame(r, line)
	}
}

func (b *Bridge) handleFrame(r *run, line []byte) {
	msg, err := protocol.Classify(line)
	if err != nil {
		var versionErr *protocol.VersionError
		if errors.As(err, &versionErr) {
			b.mu.Lock()
			r.versionErr = versionErr
			b.mu.Unlock()
			b.publish(r, false, protocol.ErrorMessage{
				Error:   "Unsupported bridge version",
				Details: fmt.Sprintf("Expected version %d, got %d", protocol.Version, versionErr.Got),
			})
			return
		}
		b.publish(r, false, protocol.ErrorMessage{Error: "Failed to parse bridge output", Details: err.Error()})
		return
	}

	switch m := msg.(type) {
	case nil:
		b.logger.Debug("ignoring unrecognized bridge frame", "line", string(line))
		return
	case protocol.ReadyMessage:
		if !b.markReady(r, m) {
			b.logger.Warn("ignoring unexpected ready frame", "socket", m.Socket)
			return
		}
		b.logger.Info("bridge ready", "socket", m.Socket, "pid", r.proc.Pid())
	case protocol.ErrorMessage:
		b.publish(r, false, m)
		b.failOnBridgeError(r, m)
		return
	}
	b.publish(r, false, msg)
}

func (b *Bridge) markReady(r *run, m protocol.ReadyMessage) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run != r || b.state.Current() != StateStarting {
		return false
	}
	_ = b.state.transition(StateReady)
	b.socketPath = m.Socket
	close(r.ready)
	return true
}

// failOnBridgeError fails a pending Start when the bridge reports an error
// before its handshake. Errors after Ready are only events.
func (b *Bridge) failOnBridgeError(r *run, m protocol.ErrorMessage) {
	b.mu.Lock()
	if b.run != r || b.state.Current() != StateStarting {
		b.mu.Unlock()
		return
	}
	b.fail(r, &BridgeError{Message: m})
	b.mu.Unlock()

	b.logger.Warn("bridge reported an error during startup", "error", m.Error, "details", m.Details)
	// terminate waits for the exit monitor, which waits for this reader.
	go b.terminate(r)
}

// publish queues msg for the run's dispatch goroutine. Whether msg is
// accepted is decided under b.mu together with silencing, so nothing is
// accepted once a run has failed. Diagnostic events are also refused once
// the run is stopping. A publisher blocked on a full queue gives up when the
// run is abandoned.
func (b *Bridge) publish(r *run, diagnostic bool, msg protocol.Message) {
	b.mu.Lock()
	if r.silenced || (diagnostic && r.stopping) {
		b.mu.Unlock()
		b.logger.Debug("dropping event from stopping bridge", "kind", msg.Kind())
		return
	}
	r.pending++
	b.mu.Unlock()

	select {
	case r.events <- msg:
		return
	default:
	}
	select {
	case r.events <- msg:
	case <-r.abandoned:
		b.logger.Debug("dropping event queued behind a stopping bridge", "kind", msg.Kind())
		b.settle(r)
	}
}

// settle records that an accepted event was dispatched or dropped.
func (b *Bridge) settle(r *run) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r.pending--
	if r.silenced && r.pending == 0 {
		closeOnce(r.drained)
	}
}

// silence stops r from accepting events. Callers hold b.mu.
func (b *Bridge) silence(r *run) {
	r.stopping = true
	r.silenced = true
	closeOnce(r.abandoned)
	if r.pending == 0 {
		closeOnce(r.drained)
	}
}

// closeOnce closes ch unless it is already closed. Callers hold b.mu.
func closeOnce(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func (b *Bridge) readStderr(r *run) {
	defer close(r.stderrDone)

	buf := make([]byte, 4096)
	for {
		n, err := r.proc.stderr.Read(buf)
		if n > 0 {
			text := string(buf[:n])
			b.logger.Debug("bridge stderr", "text", text)
			b.publish(r, true, protocol.ErrorMessage{Error: "Bridge process error", Details: text})
		}
		if err != nil {
			return
		}
	}
}

// monitor reaps the child once both output streams have closed and settles
// the lifecycle state if nothing else has.
func (b *Bridge) monitor(r *run) {
	<-r.stdoutDone
	<-r.stderrDone
	waitErr := r.proc.Wait()
	code := exitCode(waitErr)

	var notify *protocol.ErrorMessage

	b.mu.Lock()
	if b.run == r {
		switch b.state.Current() {
		case StateStarting:
			b.fail(r, &ProcessError{Message: "bridge exited before becoming ready", ExitCode: code, Cause: waitErr})
		case StateReady:
			_ = b.state.transition(StateStopped)
			b.run = nil
			if code != 0 {
				notify = &protocol.ErrorMessage{Error: "Bridge process exited unexpectedly", Details: exitDetails(waitErr)}
			}
		}
	}
	close(r.exited)
	closeOnce(r.terminated)
	b.mu.Unlock()

	b.logger.Info("bridge process exited", "pid", r.proc.Pid(), "code", code)

	if notify != nil {
		b.publish(r, false, *notify)
	}
	close(r.events)
}

// dispatch delivers a run's events in order on a single goroutine.
func (b *Bridge) dispatch(r *run) {
	for msg := range r.events {
		b.emit(msg)
		b.settle(r)
	}
}
