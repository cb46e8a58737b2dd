package knowledge

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

const refreshTimeout = 2 * time.Minute

// Refresher reloads a Snapshot on a cron schedule.
type Refresher struct {
	snapshot *Snapshot
	cron     *cron.Cron
	logger   logger.Logger
}

// NewRefresher schedules snapshot refreshes. schedule accepts standard five
// field cron expressions and descriptors such as "@every 10m".
func NewRefresher(snapshot *Snapshot, schedule string, log logger.Logger) (*Refresher, error) {
	r := &Refresher{
		snapshot: snapshot,
		cron:     cron.New(),
		logger:   log.WithFields(map[string]interface{}{"component": "refresher", "schedule": schedule}),
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := r.snapshot.Refresh(ctx); err != nil {
		r.logger.Warn("scheduled refresh failed, keeping previous snapshot", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Refresher) Start() {
	r.cron.Start()
	r.logger.Info("snapshot refresher started", nil)
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// Watcher refreshes a Snapshot when content files under a root change.
// Bursts of events are collapsed into one refresh after the debounce delay.
type Watcher struct {
	snapshot *Snapshot
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   logger.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(snapshot *Snapshot, root string, debounce time.Duration, log logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, err
	}
	// Section directories are watched individually; fsnotify is not recursive.
	dirs, _ := filepath.Glob(filepath.Join(root, "*"))
	for _, d := range dirs {
		if ValidSectionID(filepath.Base(d)) {
			_ = fw.Add(d)
		}
	}

	return &Watcher{
		snapshot: snapshot,
		watcher:  fw,
		debounce: debounce,
		logger:   log.WithFields(map[string]interface{}{"component": "watcher", "root": root}),
		done:     make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if ValidSectionID(filepath.Base(ev.Name)) {
					_ = w.watcher.Add(ev.Name)
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", map[string]interface{}{"error": err.Error()})
		case <-timer.C:
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			if err := w.snapshot.Refresh(ctx); err != nil {
				w.logger.Warn("refresh after change failed", map[string]interface{}{"error": err.Error()})
			}
			cancel()
		}
	}
}

// Stop ends the watch loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	return w.watcher.Close()
}
