// Package roles keeps trusted-group membership in sync with a roster file:
// one username per line, # comments allowed. The file is re-applied whenever
// it changes on disk.
package roles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/gommon/log"
)

type Syncer interface {
	SyncTrusted(usernames []string) error
}

type Watcher struct {
	path    string
	syncer  Syncer
	watcher *fsnotify.Watcher
}

func Watch(path string, syncer Syncer) (*Watcher, error) {
	w := &Watcher{path: path, syncer: syncer}
	if err := w.apply(); err != nil {
		return nil, err
	}

	var err error
	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if filepath.Clean(event.Name) != filepath.Clean(w.path) {
						continue
					}
					log.Infof("trusted roster changed: %s", event.Name)
					if err := w.apply(); err != nil {
						log.Errorf("applying trusted roster: %+v", err)
					}
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("watcher: %+v", err)
			}
		}
	}()

	// Watch the directory so edits that replace the file are still seen.
	if err := w.watcher.Add(filepath.Dir(path)); err != nil {
		w.watcher.Close()
		return nil, fmt.Errorf("watching roster directory: %w", err)
	}
	return w, nil
}

func (w *Watcher) apply() error {
	usernames, err := Parse(w.path)
	if err != nil {
		return err
	}
	return w.syncer.SyncTrusted(usernames)
}

func (w *Watcher) Close() error {
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func Parse(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}

	usernames := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		usernames = append(usernames, line)
	}
	return usernames, nil
}
