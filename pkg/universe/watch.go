package universe

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watch calls fn with the loaded universe file once, then again every time
// the file is written or replaced, until ctx is done. Load errors are passed
// to fn rather than stopping the watch.
//
// The containing directory is watched so that editors replacing the file
// by rename are picked up.
func Watch(ctx context.Context, path string, fn func(*File, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(abs))
	}

	fn(LoadFile(abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			slog.Debug("universe changed", "path", abs, "op", ev.Op.String())
			fn(LoadFile(abs))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(err, "watching universe")
		}
	}
}
