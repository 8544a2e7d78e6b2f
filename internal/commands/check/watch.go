// Copyright 2025 Stepline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package check

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/steplinehq/stepline/internal/commands/shared"
	"github.com/steplinehq/stepline/pkg/typecheck"
)

// debounceWindow coalesces the burst of filesystem events an editor save
// produces into one re-check.
const debounceWindow = 100 * time.Millisecond

// watchAndCheck re-runs the type check whenever the source file changes.
// The containing directory is watched rather than the file itself: editors
// that save via rename-and-replace would otherwise drop the watch after the
// first write.
func watchAndCheck(cmd *cobra.Command, session *typecheck.Session, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return shared.NewUsageError("failed to resolve path", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return shared.NewConfigError("failed to create filesystem watcher", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return shared.NewConfigError("failed to watch directory", err)
	}

	recheck := func() {
		src, err := os.ReadFile(abs)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			return
		}
		result := session.Check(src)
		if err := report(cmd, path, result); err != nil {
			slog.Warn("reporting check result", slog.Any("error", err))
		}
	}

	recheck()
	if !shared.GetQuiet() {
		cmd.Printf("watching %s\n", path)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			recheck()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("filesystem watcher error", slog.Any("error", err))
		}
	}
}
