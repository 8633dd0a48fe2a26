// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(e *env, fl *flags) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Check program tree files again whenever they change",
		Long: `watch checks every .ndjson and .json file under path (default ".")
and then checks each file again after it changes, until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = fl.cfg.DebounceDuration()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWatch(ctx, e, fl, target, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet `period` to wait for after a change (default from config, 250ms)")
	return cmd
}

// runWatch checks the tree files of target, then checks again the
// files that change, until ctx is done.
func runWatch(ctx context.Context, e *env, fl *flags, target string, debounce time.Duration) error {
	files, err := treeFiles(target)
	if err != nil {
		return err
	}
	checkFiles := func(files []string) {
		if len(files) == 0 {
			return
		}
		fmt.Fprintf(e.stdout, "checking %d file(s) at %s\n", len(files), time.Now().Format(time.TimeOnly))
		if err := runCheck(e, fl, files); err != nil {
			e.log.Print(err)
		} else {
			fmt.Fprintln(e.stdout, "ok")
		}
	}
	checkFiles(files)

	return watchWithFSNotify(ctx, target, debounce, func(changed []string) {
		var files []string
		for _, path := range changed {
			if info, err := os.Stat(path); err == nil && !info.IsDir() && isTreeFile(path) {
				files = append(files, path)
			}
		}
		checkFiles(files)
	})
}

// isTreeFile reports whether path names a program tree file.
func isTreeFile(path string) bool {
	switch filepath.Ext(path) {
	case ".ndjson", ".json":
		return true
	}
	return false
}

// treeFiles returns the tree files under target, which may be a
// file or a directory, in lexical order.
func treeFiles(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	var files []string
	err = filepath.WalkDir(target, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if shouldSkipWatchDir(target, path, entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isTreeFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// watchWithFSNotify calls onChange with the sorted paths that changed
// under target once no further change has arrived for debounce.
func watchWithFSNotify(ctx context.Context, target string, debounce time.Duration, onChange func(changed []string)) error {
	root, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		root = filepath.Dir(root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := addWatchRecursive(watcher, root); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, path)
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || shouldIgnoreWatchPath(path) {
				continue
			}
			if len(pending) > 0 && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			pending[path] = true
			timer.Reset(debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			onChange(changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if shouldSkipWatchDir(root, path, entry.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func shouldSkipWatchDir(root, path, name string) bool {
	if filepath.Clean(path) == filepath.Clean(root) {
		return false
	}
	return strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor"
}

func shouldIgnoreWatchPath(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#")
}
