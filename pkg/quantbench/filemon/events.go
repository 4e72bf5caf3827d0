/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package filemon

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// FileMap maps paths to their last modification time.
type FileMap map[string]time.Time

// Stat lists the current dependencies and records their modification times.
// Files that disappear between listing and stat are skipped, they show up as
// deletions on the next poll.
func Stat(deps func() ([]string, error)) (FileMap, error) {
	state := FileMap{}
	paths, err := deps()
	if err != nil {
		return state, fmt.Errorf("listing files: %w", err)
	}
	for _, path := range paths {
		stat, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return state, fmt.Errorf("unable to stat file %q: %w", path, err)
		}
		if stat.IsDir() {
			continue
		}
		state[path] = stat.ModTime()
	}
	return state, nil
}

// Events describes the file changes observed between two polls.
type Events struct {
	Added    []string
	Modified []string
	Deleted  []string
}

func (e Events) HasChanged() bool {
	return len(e.Added) != 0 || len(e.Deleted) != 0 || len(e.Modified) != 0
}

func (e Events) String() string {
	added, modified, deleted := len(e.Added), len(e.Modified), len(e.Deleted)
	return fmt.Sprintf("watch: %d added, %d modified, %d deleted", added, modified, deleted)
}

func events(prev, curr FileMap) Events {
	e := Events{}
	for file, t := range curr {
		modTime, ok := prev[file]
		if !ok {
			e.Added = append(e.Added, file)
		} else if !modTime.Equal(t) {
			e.Modified = append(e.Modified, file)
		}
	}
	for file := range prev {
		if _, ok := curr[file]; !ok {
			e.Deleted = append(e.Deleted, file)
		}
	}

	sortEvents(&e)
	logEvents(e)
	return e
}

// coalesce merges the changes of consecutive polls so that a debounced
// callback sees every file that changed since it last fired, each one once.
func coalesce(prev, curr Events) Events {
	merged := Events{
		Added:    union(prev.Added, curr.Added),
		Modified: union(prev.Modified, curr.Modified),
		Deleted:  union(prev.Deleted, curr.Deleted),
	}
	sortEvents(&merged)
	return merged
}

func union(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func sortEvents(e *Events) {
	sort.Strings(e.Added)
	sort.Strings(e.Modified)
	sort.Strings(e.Deleted)
}

func logEvents(e Events) {
	if e.HasChanged() {
		logrus.Debugln(e.String())
	}
}
