package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// BinaryName is the bridge executable name on non-Windows platforms.
const BinaryName = "ipc-json-bridge"

var supportedOS = map[string]bool{
	"darwin":  true,
	"linux":   true,
	"windows": true,
}

var supportedArch = map[string]bool{
	"amd64": true,
	"arm":   true,
	"arm64": true,
	"386":   true,
}

// ResolveBinaryPath returns the bridge build for goos/goarch under dir,
// laid out as <dir>/<goos>/<goarch>/ipc-json-bridge[.exe]. It does not check
// that the file exists.
func ResolveBinaryPath(dir, goos, goarch string) (string, error) {
	if !supportedOS[goos] || !supportedArch[goarch] {
		return "", &ConfigError{Cause: ErrUnsupportedPlatform, Message: goos + " " + goarch}
	}
	// No 32-bit macOS builds are published.
	if goos == "darwin" && (goarch == "arm" || goarch == "386") {
		return "", &ConfigError{Cause: ErrUnsupportedPlatform, Message: goos + " " + goarch}
	}

	name := BinaryName
	if goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, goos, goarch, name), nil
}

// DefaultBinaryDir returns the bin directory next to the running executable.
func DefaultBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "bin"
	}
	return filepath.Join(filepath.Dir(exe), "bin")
}

// resolveBinary applies config to pick the binary and checks it exists.
func resolveBinary(config Config) (string, error) {
	path := config.BinaryPath
	if path == "" {
		dir := config.BinaryDir
		if dir == "" {
			dir = DefaultBinaryDir()
		}
		var err error
		path, err = ResolveBinaryPath(dir, runtime.GOOS, runtime.GOARCH)
		if err != nil {
			return "", err
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &ConfigError{Cause: err, Message: path}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &ConfigError{Cause: ErrBinaryNotFound, Message: abs}
	}
	if info.IsDir() {
		return "", &ConfigError{Cause: ErrBinaryNotFound, Message: abs + " is a directory"}
	}
	return abs, nil
}

// ensureExecutable sets the owner execute bit if it is missing. Release
// archives do not always preserve file modes.
func ensureExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode&0o100 != 0 {
		return nil
	}
	if err := os.Chmod(path, mode|0o100); err != nil {
		return fmt.Errorf("make %s executable: %w", path, err)
	}
	return nil
}
