package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/dittoftp/internal/logger"
	"github.com/marmos91/dittoftp/pkg/config"
)

// configWatchPath is the file whose edits are picked up at runtime, or ""
// when the server runs on defaults alone.
func configWatchPath(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return ""
}

// watchLogLevel applies logging.level changes made to the config file while
// the server runs. Other settings need a restart. The directory is watched
// rather than the file so editors that replace the file are seen too.
func watchLogLevel(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	target := filepath.Clean(path)
	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				reloadLogLevel(path)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error", logger.KeyError, err)
			}
		}
	}()
	return nil
}

func reloadLogLevel(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Warn("Ignoring invalid config change", "path", path, logger.KeyError, err)
		return
	}
	level := strings.ToUpper(cfg.Logging.Level)
	if level == logger.GetLevel().String() {
		return
	}
	logger.SetLevel(level)
	logger.Info("Log level reloaded", "level", level, "path", path)
}
