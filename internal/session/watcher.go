package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the session whenever the persisted record changes on disk,
// so a long-running process observes logins and logouts performed by other
// invocations. It blocks until ctx is cancelled.
//
// The watch is placed on the record's directory rather than the file itself:
// atomic writes replace the inode, which would silently detach a file watch.
func (s *Store) Watch(ctx context.Context, recordPath string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(recordPath)
	if err := w.Add(dir); err != nil {
		return err
	}
	name := filepath.Base(recordPath)
	logger.Info("session: watching record", slog.String("path", recordPath))

	for {
		select {
		case <-ctx.Done():
			logger.Info("session: watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.reload(logger)

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("session: watcher error", slog.String("error", werr.Error()))
		}
	}
}

func (s *Store) reload(logger *slog.Logger) {
	data, err := s.provider.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.cur = Session{}
			logger.Info("session: record removed, now logged out")
		} else {
			logger.Warn("session: reload failed", slog.String("error", err.Error()))
		}
		return
	}

	var next Session
	if err := json.Unmarshal(data, &next); err != nil {
		logger.Warn("session: ignoring unreadable record", slog.String("error", err.Error()))
		return
	}
	s.cur = next
	logger.Info("session: record reloaded",
		slog.Bool("authenticated", next.IsAuthenticated()))
}
