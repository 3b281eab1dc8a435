package bridge

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBinaryPath(t *testing.T) {
	tests := []struct {
		goos   string
		goarch string
		want   string
	}{
		{"linux", "amd64", filepath.Join("bin", "linux", "amd64", "ipc-json-bridge")},
		{"linux", "arm", filepath.Join("bin", "linux", "arm", "ipc-json-bridge")},
		{"linux", "386", filepath.Join("bin", "linux", "386", "ipc-json-bridge")},
		{"darwin", "arm64", filepath.Join("bin", "darwin", "arm64", "ipc-json-bridge")},
		{"darwin", "amd64", filepath.Join("bin", "darwin", "amd64", "ipc-json-bridge")},
		{"windows", "amd64", filepath.Join("bin", "windows", "amd64", "ipc-json-bridge.exe")},
		{"windows", "arm64", filepath.Join("bin", "windows", "arm64", "ipc-json-bridge.exe")},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := ResolveBinaryPath("bin", tt.goos, tt.goarch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBinaryPath_Unsupported(t *testing.T) {
	tests := []struct {
		goos   string
		goarch string
	}{
		{"darwin", "arm"},
		{"darwin", "386"},
		{"freebsd", "amd64"},
		{"linux", "riscv64"},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			_, err := ResolveBinaryPath("bin", tt.goos, tt.goarch)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedPlatform)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.goos+" "+tt.goarch)
			assert.False(t, IsRecoverable(err))
		})
	}
}

func TestResolveBinary_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	config := defaultConfig()
	config.BinaryPath = path
	got, err := resolveBinary(config)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolveBinary_FromDir(t *testing.T) {
	if runtime.GOOS == "darwin" && (runtime.GOARCH == "arm" || runtime.GOARCH == "386") {
		t.Skip("no bridge build for this platform")
	}
	dir := t.TempDir()
	want, err := ResolveBinaryPath(dir, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("platform not supported: %v", err)
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(want), 0o755))
	require.NoError(t, os.WriteFile(want, []byte("#!/bin/sh\n"), 0o755))

	config := defaultConfig()
	config.BinaryDir = dir
	got, err := resolveBinary(config)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveBinary_Missing(t *testing.T) {
	config := defaultConfig()
	config.BinaryPath = filepath.Join(t.TempDir(), "missing")

	_, err := resolveBinary(config)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBinaryNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestResolveBinary_Directory(t *testing.T) {
	config := defaultConfig()
	config.BinaryPath = t.TempDir()

	_, err := resolveBinary(config)
	assert.ErrorIs(t, err, ErrBinaryNotFound)
}

func TestEnsureExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no exec bit on windows")
	}
	path := filepath.Join(t.TempDir(), "bridge")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))

	require.NoError(t, ensureExecutable(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o744), info.Mode().Perm())

	// Already executable: mode is left alone.
	require.NoError(t, os.Chmod(path, 0o750))
	require.NoError(t, ensureExecutable(path))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
}
