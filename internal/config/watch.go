package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long a config file must stay quiet before it is
// reloaded. Editors often write a file in several steps.
const DefaultSettle = 150 * time.Millisecond

// Watch reloads path whenever it changes and passes every config that loads
// and validates to onChange. A config that fails to load is logged and
// skipped. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file so that editors which
// save by renaming a temp file over the original keep working.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func(*Config)) error {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	log.Debug("config: watching", zap.String("path", abs))

	settle := time.NewTimer(DefaultSettle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			settle.Reset(DefaultSettle)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config: watch error", zap.Error(err))

		case <-settle.C:
			cfg, err := Load(abs)
			if err != nil {
				log.Warn("config: reload failed, keeping previous", zap.Error(err))
				continue
			}
			log.Info("config: reloaded", zap.String("path", abs), zap.String("theme", cfg.Theme))
			onChange(cfg)
		}
	}
}
