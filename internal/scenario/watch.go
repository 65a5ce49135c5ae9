package scenario

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bnema/wayime/internal/logger"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watch calls fn with the scenario at path every time the file is
// written, until ctx is done. Files that fail to parse are reported to
// fn as errors and the watch continues.
func Watch(ctx context.Context, path string, fn func(*Scenario, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	logger.Debug("Watching scenario", "path", path)

	name := filepath.Base(path)
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			fn(Load(path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Scenario watcher error", "path", path, "error", err)
		}
	}
}
