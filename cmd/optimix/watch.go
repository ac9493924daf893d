package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchSettle is the quiet period after the last file event before a re-run.
const watchSettle = 50 * time.Millisecond

// watchAndRun runs the files once and again after every change until the
// command context is cancelled.
func watchAndRun(cmd *cobra.Command, paths []string, s runSettings) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// watch parent directories; a rename-on-save drops a per-file watch
	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	rerun := func() {
		if err := runFiles(cmd, paths, s); err != nil {
			log.Debugf("run failed: %s", err)
		}
		dimColor.Fprintf(cmd.ErrOrStderr(), "watching %d file(s), Ctrl-C to stop\n", len(paths))
	}
	rerun()

	ctx := cmd.Context()
	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle = time.After(watchSettle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch: %s", err)
		case <-settle:
			settle = nil
			rerun()
		}
	}
}
