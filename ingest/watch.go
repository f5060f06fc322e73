package ingest

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watcher wraps fsnotify over the two journal files' parent directories
// so the ingester can wake within milliseconds of a seal file appearing.
// The poll loop remains the source of truth; correctness does not depend
// on the watch firing.
type watcher struct {
	fsw *fsnotify.Watcher
	out chan struct{}
}

func newWatcher(pathA, pathB string, logger *zap.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dirs := map[string]struct{}{
		filepath.Dir(pathA): {},
		filepath.Dir(pathB): {},
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w := &watcher{fsw: fsw, out: make(chan struct{}, 1)}
	go w.pump(logger)
	return w, nil
}

// pump drains fsnotify's raw event/error channels and coalesces them
// into a single non-blocking wake signal; a burst of events (e.g. seal
// creation followed by the writer's next-file header write) collapses
// into at most one extra poll, never a queue the ingester has to drain.
func (w *watcher) pump(logger *zap.Logger) {
	for {
		select {
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			select {
			case w.out <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if logger != nil {
				logger.Warn("ingest: fsnotify watch error", zap.Error(err))
			}
		}
	}
}

func (w *watcher) events() <-chan struct{} {
	return w.out
}

func (w *watcher) Close() error {
	return w.fsw.Close()
}
