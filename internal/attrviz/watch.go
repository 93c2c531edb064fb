package attrviz

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/solardome/attrviz/internal/report"
)

// watchDebounce coalesces the burst of events editors emit for one save.
var watchDebounce = 150 * time.Millisecond

// Watch runs once, then again whenever an input or the settings file is
// written or recreated, until ctx is cancelled. Directories are watched
// rather than files so that rename-on-save editors are still seen.
func Watch(ctx context.Context, cfg Config, onRun func(Result, error)) error {
	cfg = withDefaults(cfg)
	if len(cfg.InputPaths) == 0 {
		return errors.New("at least one -in path is required")
	}

	watched := map[string]bool{}
	dirs := map[string]bool{}
	paths := append([]string(nil), cfg.InputPaths...)
	if strings.TrimSpace(cfg.SettingsPath) != "" {
		paths = append(paths, cfg.SettingsPath)
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	dirList := make([]string, 0, len(dirs))
	for d := range dirs {
		dirList = append(dirList, d)
	}
	sort.Strings(dirList)
	for _, d := range dirList {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	log, _ := report.NewRunLogger(cfg.RunLogPath)
	defer log.Close()

	onRun(Run(cfg))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()
	var changed []string
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !watched[abs] {
				continue
			}
			changed = append(changed, abs)
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case <-timer.C:
			log.Info("watch.change", report.Fields{"paths": uniqueSorted(changed)})
			changed = changed[:0]
			onRun(Run(cfg))
		}
	}
}

func uniqueSorted(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
