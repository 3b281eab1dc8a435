package bridge

import (
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildArgs_ServerDefault(t *testing.T) {
	pm := newProcessManager("/bin/bridge", defaultConfig())
	assert.Equal(t, []string{"--server"}, pm.BuildArgs())
}

func TestBuildArgs_ServerWithSocket(t *testing.T) {
	config := defaultConfig()
	config.SocketPath = "/tmp/app.sock"
	pm := newProcessManager("/bin/bridge", config)
	assert.Equal(t, []string{"--server", "/tmp/app.sock"}, pm.BuildArgs())
}

func TestBuildArgs_Client(t *testing.T) {
	config := defaultConfig()
	WithClientMode("/tmp/server.sock")(&config)
	pm := newProcessManager("/bin/bridge", config)
	assert.Equal(t, []string{"--client", "/tmp/server.sock"}, pm.BuildArgs())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, -1, exitCode(errors.New("wait: broken pipe")))

	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	err := exec.Command("sh", "-c", "exit 3").Run()
	assert.Equal(t, 3, exitCode(err))
	assert.Equal(t, "Exit code: 3", exitDetails(err))
}
