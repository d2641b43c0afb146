// Package watcher detects export artifacts dropped by SAP into a watched
// directory. Detection is snapshot-based: files count as exported when they
// match the configured glob and are new or modified relative to a baseline
// taken before the transaction executed. The watcher never mutates the
// filesystem.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/poll"
)

// Interval is the fixed poll cadence; short relative to any sane export
// timeout.
const Interval = 500 * time.Millisecond

// DirectorySnapshot maps file paths to their last-modified time at capture.
type DirectorySnapshot map[string]time.Time

// Watcher watches one export directory.
type Watcher struct {
	Dir   string
	Clock poll.Clock
}

// New returns a watcher for dir on the system clock.
func New(dir string) *Watcher {
	return &Watcher{Dir: dir, Clock: poll.SystemClock}
}

// Snapshot captures the current pattern-matching files and their mtimes.
// Missing directories yield an empty baseline; the export dialog creates the
// directory on first save.
func (w *Watcher) Snapshot(pattern string) DirectorySnapshot {
	snap := make(DirectorySnapshot)
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return snap
	}
	for _, entry := range entries {
		if entry.IsDir() || !matches(entry.Name(), pattern) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snap[filepath.Join(w.Dir, entry.Name())] = info.ModTime()
	}
	return snap
}

// AwaitExport blocks until a file matching pattern is created or modified
// relative to baseline, returning its absolute path. After timeout it fails
// with an errs.ExportTimeout carrying directory, pattern and elapsed time.
func (w *Watcher) AwaitExport(ctx context.Context, baseline DirectorySnapshot, pattern string, timeout time.Duration) (string, error) {
	clock := w.Clock
	if clock == nil {
		clock = poll.SystemClock
	}
	started := clock.Now()

	var found string
	p := poll.Poller{Interval: Interval, Timeout: timeout, Clock: clock}
	err := p.Wait(ctx, func() (bool, error) {
		if path, ok := w.scan(baseline, pattern); ok {
			found = path
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		if errors.Is(err, poll.ErrTimeout) {
			return "", errs.Export(w.Dir, pattern, clock.Now().Sub(started))
		}
		return "", errs.Wrap(errs.ExportTimeout, "export watch aborted", err)
	}

	abs, absErr := filepath.Abs(found)
	if absErr != nil {
		return found, nil
	}
	return abs, nil
}

// scan returns the newest qualifying file, if any. A file qualifies when it
// matches the glob and either is absent from the baseline or carries a
// strictly newer mtime.
func (w *Watcher) scan(baseline DirectorySnapshot, pattern string) (string, bool) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return "", false
	}

	var best string
	var bestMtime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !matches(entry.Name(), pattern) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(w.Dir, entry.Name())
		prev, existed := baseline[path]
		if existed && !info.ModTime().After(prev) {
			continue
		}
		if best == "" || info.ModTime().After(bestMtime) {
			best = path
			bestMtime = info.ModTime()
		}
	}
	return best, best != ""
}

// matches is a case-insensitive glob match; SAP emits .XLSX or .xlsx
// depending on the GUI release.
func matches(name, pattern string) bool {
	ok, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(name))
	return err == nil && ok
}
