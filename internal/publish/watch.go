// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchDebounce collapses the burst of events an editor produces when it
// saves a file.
const watchDebounce = 250 * time.Millisecond

// WatchLink signals on the returned channel whenever the link file at path
// changes. The parent directory is watched so editors that replace the file
// by rename are still seen. The watcher stops when ctx is done.
func WatchLink(ctx context.Context, path string, log zerolog.Logger) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	name := filepath.Base(path)
	reload := make(chan struct{}, 1)
	notify := func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	}

	go func() {
		defer w.Close()

		var mu sync.Mutex
		var timer *time.Timer
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("link file event")
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, notify)
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Str("dir", dir).Msg("link file watch error")
			}
		}
	}()

	return reload, nil
}
