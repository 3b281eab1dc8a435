package bridge

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name LoadConfig callers look for by default.
const DefaultConfigFile = ".ipcbridge.yaml"

// FileConfig is the on-disk form of Config.
//
//	binary_dir: ./bin
//	socket_path: /tmp/app.sock
//	start_timeout: 5s
//	stop_timeout: 1s
//	env:
//	  BRIDGE_DEBUG: "1"
type FileConfig struct {
	Env             map[string]string `yaml:"env"`
	BinaryPath      string            `yaml:"binary_path"`
	BinaryDir       string            `yaml:"binary_dir"`
	SocketPath      string            `yaml:"socket_path"`
	StartTimeout    time.Duration     `yaml:"start_timeout"`
	StopTimeout     time.Duration     `yaml:"stop_timeout"`
	EventBufferSize int               `yaml:"event_buffer_size"`
	Client          bool              `yaml:"client"`
}

// LoadConfig reads a FileConfig from path. A missing file yields an empty
// config so every setting falls back to its default.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, err
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{Cause: err, Message: path}
	}
	return &config, nil
}

// Options converts the set fields of c into bridge options. Options applied
// after these override them, so command-line flags can take precedence.
func (c *FileConfig) Options() []Option {
	if c == nil {
		return nil
	}
	var opts []Option
	if c.BinaryPath != "" {
		opts = append(opts, WithBinaryPath(c.BinaryPath))
	}
	if c.BinaryDir != "" {
		opts = append(opts, WithBinaryDir(c.BinaryDir))
	}
	if c.Client {
		opts = append(opts, WithClientMode(c.SocketPath))
	} else if c.SocketPath != "" {
		opts = append(opts, WithSocketPath(c.SocketPath))
	}
	if c.StartTimeout > 0 {
		opts = append(opts, WithStartTimeout(c.StartTimeout))
	}
	if c.StopTimeout > 0 {
		opts = append(opts, WithStopTimeout(c.StopTimeout))
	}
	if c.EventBufferSize > 0 {
		opts = append(opts, WithEventBufferSize(c.EventBufferSize))
	}
	if len(c.Env) > 0 {
		opts = append(opts, WithEnv(c.Env))
	}
	return opts
}
