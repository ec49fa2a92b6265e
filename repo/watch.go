package repo

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// refreshTimeout bounds the background re-scan triggered by a watch event.
const refreshTimeout = 30 * time.Second

// Watch starts watching f's root recursively for filesystem changes,
// invalidating the scanner cache entry for any changed package file
// and triggering a background Refresh. This is supplemental to
// spec.md's literal §4.3 text (which only specifies mtime/size
// validation on access) but does not contradict it — it just makes
// cache invalidation proactive instead of lazy, which matters for a
// long-lived resolver process watching a repository that changes
// underneath it.
//
// Watch blocks until ctx is canceled or an unrecoverable watcher error
// occurs; call it in its own goroutine.
func (f *Filesystem) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addRecursive(w, f.root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			f.handleEvent(w, event)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if f.log != nil {
				f.log.Warn("repo: watch error", zap.Error(err))
			}
		}
	}
}

func (f *Filesystem) handleEvent(w *fsnotify.Watcher, event fsnotify.Event) {
	f.scanner.cache.invalidate(event.Name)

	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		// A directory may have appeared; best-effort add it so new
		// package directories are picked up without a full re-walk.
		_ = w.Add(event.Name)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := f.Refresh(ctx); err != nil && f.log != nil {
			f.log.Warn("repo: refresh after watch event failed", zap.Error(err))
		}
	}()
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && !isExcludedDir(filepath.Base(path)) {
			return w.Add(path)
		}
		return nil
	})
}
