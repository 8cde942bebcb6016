package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceDelay groups the burst of events produced by a single save
const debounceDelay = 100 * time.Millisecond

// watch calls fn once and then every time inputFileName changes, until ctx
// is cancelled or the process is interrupted.
// The directory is watched, so a file replaced on save is still seen.
func watch(ctx context.Context, inputFileName string, fn func(), sugar *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	target, err := filepath.Abs(inputFileName)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	fn()

	timer := time.NewTimer(debounceDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isChange(event, target) {
				continue
			}
			sugar.Debugw("change detected", "file", event.Name, "op", event.Op.String())
			timer.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			sugar.Errorw("watching", "error", err)

		case <-timer.C:
			fn()
		}
	}
}

// isChange reports whether event modified the file at target.
func isChange(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
