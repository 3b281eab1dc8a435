package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bazelment/yoloswe/ipcbridge/bridge"
)

// watchDebounce absorbs the burst of events a single install produces.
const watchDebounce = 200 * time.Millisecond

// watchBinary restarts b whenever its binary is rewritten or replaced, until
// ctx is done. The parent directory is watched so that rename-over installs
// are seen.
func watchBinary(ctx context.Context, b *bridge.Bridge, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	path := b.BinaryPath()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	log.Info("watching bridge binary", "path", path)

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isBinaryChange(event, path) {
				continue
			}
			log.Debug("bridge binary changed", "op", event.Op.String())
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			if err := restart(ctx, b, log); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("binary watcher error", "error", err)
		}
	}
}

// isBinaryChange reports whether event rewrote or replaced path.
func isBinaryChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
