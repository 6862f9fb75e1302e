package importer

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the bursts of write events editors produce.
const DefaultDebounce = 150 * time.Millisecond

// WatchEvent reports one re-import triggered by a file change.
type WatchEvent struct {
	Path   string
	Result Result
	Err    error
}

// Watch re-imports a document whenever a matching file under dir is created
// or written, until ctx is cancelled. Removed files are logged and left in
// the store. onEvent may be nil.
func (i *Importer) Watch(ctx context.Context, dir string, opts Options, onEvent func(WatchEvent)) error {
	pattern := opts.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addDirs(watcher, dir); err != nil {
		return err
	}
	fsys := os.DirFS(dir)
	i.logger.Info("importer.watch.started", "dir", dir, "pattern", pattern)

	pending := map[string]struct{}{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			i.logger.Info("importer.watch.stopped", "dir", dir)
			return nil

		case <-timer.C:
			for rel := range pending {
				res, err := i.ImportFile(ctx, fsys, rel, opts)
				if err == nil {
					i.logger.Info("importer.watch.imported", "path", rel, "blocks_created", res.BlocksCreated, "blocks_updated", res.BlocksUpdated)
				}
				if onEvent != nil {
					onEvent(WatchEvent{Path: rel, Result: res, Err: err})
				}
			}
			clear(pending)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if err := addDirs(watcher, ev.Name); err != nil {
						i.logger.Warn("importer.watch.add_dir_failed", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			if ok, _ := path.Match(pattern, filepath.Base(ev.Name)); !ok {
				continue
			}
			rel, err := filepath.Rel(dir, ev.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			switch {
			case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
				pending[rel] = struct{}{}
				timer.Reset(DefaultDebounce)
			case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
				delete(pending, rel)
				i.logger.Warn("importer.watch.removed", "path", rel)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			i.logger.Error("importer.watch.error", "error", err)
		}
	}
}

func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
