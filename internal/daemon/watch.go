package daemon

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// watchConfig triggers ReloadConfig whenever the config file changes
// on disk, in addition to the reload-config IPC op. A missing config
// path (defaults-only run) means there is nothing to watch.
func (rt *Runtime) watchConfig(ctx context.Context) {
	if rt.cfgPath == "" {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		rt.log.Warn("config watcher unavailable", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(rt.cfgPath); err != nil {
		rt.log.Warn("config watcher add failed", "path", rt.cfgPath, "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := rt.ReloadConfig(); err != nil {
				rt.log.Warn("config reload triggered by file watch failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			rt.log.Warn("config watcher error", "error", err)
		}
	}
}
