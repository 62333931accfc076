// Package watch re-runs a job whenever the watched repository or files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JetBrains/jbrdiff/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

// Target is a set of paths to watch. Directories report every change;
// files are watched through their parent directory.
type Target struct {
	dirs  []string
	files map[string]struct{}
}

// Repository returns the target for a work tree at root: its git directory
// and the local and remote-tracking ref directories when present.
func Repository(root string) *Target {
	t := &Target{files: map[string]struct{}{}}
	if root == "" {
		return t
	}
	gitDir := filepath.Join(root, ".git")
	if !isDir(gitDir) {
		t.addDir(root)
		return t
	}
	t.addDir(gitDir)
	t.addDir(filepath.Join(gitDir, "refs", "heads"))
	remotes := filepath.Join(gitDir, "refs", "remotes")
	if entries, err := os.ReadDir(remotes); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				t.addDir(filepath.Join(remotes, e.Name()))
			}
		}
	}
	return t
}

// AddFile watches a single file. Editors that replace the file on save are
// handled because the parent directory is watched.
func (t *Target) AddFile(path string) {
	if path == "" {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	t.files[abs] = struct{}{}
}

func (t *Target) addDir(path string) {
	if !isDir(path) {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if !slices.Contains(t.dirs, abs) {
		t.dirs = append(t.dirs, abs)
	}
}

// Paths returns the directories handed to fsnotify.
func (t *Target) Paths() []string {
	paths := slices.Clone(t.dirs)
	for f := range t.files {
		dir := filepath.Dir(f)
		if !slices.Contains(paths, dir) {
			paths = append(paths, dir)
		}
	}
	slices.Sort(paths)
	return paths
}

// Matches reports whether an event on name should trigger a re-run.
func (t *Target) Matches(name string) bool {
	if shouldIgnore(name) {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	if _, ok := t.files[abs]; ok {
		return true
	}
	return slices.Contains(t.dirs, filepath.Dir(abs))
}

func shouldIgnore(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lock", ".ipc":
		return true
	}
	return strings.HasSuffix(name, "~")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Run calls job after every burst of matching changes, one call at a time,
// until ctx is canceled. Errors from job are logged and do not stop watching.
func Run(ctx context.Context, t *Target, delay time.Duration, job func(context.Context) error) error {
	paths := t.Paths()
	if len(paths) == 0 {
		return errors.New("watch: nothing to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
	}()
	for _, p := range paths {
		slog.Debug("adding path to FS watcher", slog.String("path", p))
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	rerun := make(chan struct{}, 1)
	d := debounce.New(delay, func() {
		select {
		case rerun <- struct{}{}:
		default:
		}
	})
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !t.Matches(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			d.Trigger()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		case <-rerun:
			slog.Debug("change detected, re-running")
			if err := job(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("re-run failed", slog.Any("error", err))
			}
		}
	}
}
