package bridge

import (
	"log/slog"
	"time"
)

// Config holds bridge supervisor configuration.
type Config struct {
	Logger          *slog.Logger
	Env             map[string]string
	BinaryPath      string // explicit binary; skips platform resolution
	BinaryDir       string // root of the bin/<os>/<arch> tree (default: <executable dir>/bin)
	SocketPath      string
	StartTimeout    time.Duration
	StopTimeout     time.Duration // grace period before SIGKILL
	EventBufferSize int
	Client          bool
}

func defaultConfig() Config {
	return Config{
		StartTimeout:    5 * time.Second,
		StopTimeout:     time.Second,
		EventBufferSize: 100,
	}
}

// Option is a functional option for configuring a Bridge.
type Option func(*Config)

// WithBinaryPath sets an explicit path to the bridge binary.
func WithBinaryPath(path string) Option {
	return func(c *Config) { c.BinaryPath = path }
}

// WithBinaryDir sets the directory holding per-platform bridge builds.
func WithBinaryDir(dir string) Option {
	return func(c *Config) { c.BinaryDir = dir }
}

// WithSocketPath sets the socket path passed to the bridge. In server mode
// it is optional and the bridge picks a path when it is empty.
func WithSocketPath(path string) Option {
	return func(c *Config) { c.SocketPath = path }
}

// WithClientMode runs the bridge as a client of an existing socket.
func WithClientMode(socketPath string) Option {
	return func(c *Config) {
		c.Client = true
		c.SocketPath = socketPath
	}
}

// WithStartTimeout bounds how long Start waits for the ready handshake.
func WithStartTimeout(d time.Duration) Option {
	return func(c *Config) { c.StartTimeout = d }
}

// WithStopTimeout sets the grace period between SIGTERM and SIGKILL.
func WithStopTimeout(d time.Duration) Option {
	return func(c *Config) { c.StopTimeout = d }
}

// WithEnv sets additional environment variables for the bridge subprocess.
func WithEnv(env map[string]string) Option {
	return func(c *Config) { c.Env = env }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithEventBufferSize sets how many classified events may queue ahead of
// slow listeners before the stdout reader applies backpressure.
func WithEventBufferSize(size int) Option {
	return func(c *Config) { c.EventBufferSize = size }
}
