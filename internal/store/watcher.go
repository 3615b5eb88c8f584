package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/weft/internal/logging"
)

// templateWatcher invalidates cache entries when files under the template
// root change on disk.
type templateWatcher struct {
	watcher    *fsnotify.Watcher
	invalidate func(file string)
	logger     logging.Logger
	done       chan struct{}
}

func newTemplateWatcher(root string, invalidate func(string), logger logging.Logger) (*templateWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	tw := &templateWatcher{
		watcher:    watcher,
		invalidate: invalidate,
		logger:     logger,
		done:       make(chan struct{}),
	}

	// Watch the root and every directory below it.
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	go tw.loop()
	return tw, nil
}

func (tw *templateWatcher) loop() {
	for {
		select {
		case <-tw.done:
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write,
				event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				tw.invalidate(event.Name)
			}

			// New directories need watching too.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = tw.watcher.Add(event.Name)
				}
			}
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn(context.Background(), err, "template watcher error")
		}
	}
}

func (tw *templateWatcher) Close() error {
	close(tw.done)
	return tw.watcher.Close()
}
