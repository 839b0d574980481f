// Package watch reruns the pipeline when content changes on disk. Bursts of
// filesystem events are coalesced into a single rebuild per quiet window, and
// an optional interval schedule forces periodic rebuilds regardless of
// events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/syy321818/blogbuilder/internal/config"
	"github.com/syy321818/blogbuilder/internal/logfields"
	"github.com/syy321818/blogbuilder/internal/site"
)

// Runner executes one pipeline run. Satisfied by *site.Builder.
type Runner interface {
	Run(ctx context.Context) (*site.RunReport, error)
}

// Watcher drives repeated builds from filesystem events and an optional
// interval schedule.
type Watcher struct {
	cfg    *config.Config
	runner Runner

	fsw       *fsnotify.Watcher
	scheduler gocron.Scheduler
	requests  chan string

	metricsHandler http.Handler
}

// New creates a watcher over the configured content directory.
func New(cfg *config.Config, runner Runner) (*Watcher, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	return &Watcher{
		cfg:      cfg,
		runner:   runner,
		fsw:      fsw,
		requests: make(chan string, 16),
	}, nil
}

// SetMetricsHandler configures the handler served at /metrics when the
// configuration names a metrics address.
func (w *Watcher) SetMetricsHandler(h http.Handler) { w.metricsHandler = h }

// Run builds once, then blocks rebuilding on changes until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addTree(w.cfg.Content.Dir); err != nil {
		return err
	}

	if err := w.startSchedule(); err != nil {
		return err
	}
	defer w.stopSchedule()

	w.startMetricsServer(ctx)

	slog.Info("Watching for changes",
		slog.String("dir", w.cfg.Content.Dir),
		slog.Duration("debounce", w.cfg.Watch.DebounceDuration()))

	go w.eventLoop(ctx)

	w.build(ctx, "initial")

	deb := &debouncer{
		quiet: w.cfg.Watch.DebounceDuration(),
		max:   w.cfg.Watch.MaxDelayDuration(),
	}
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	reason := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-w.requests:
			reason = r
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(deb.observe(time.Now()))
		case <-timer.C:
			deb.fired()
			w.build(ctx, reason)
		}
	}
}

// debouncer coalesces bursts of rebuild requests: every request extends the
// quiet window, and the max delay bounds how long a sustained burst can
// postpone the rebuild.
type debouncer struct {
	quiet time.Duration
	max   time.Duration

	pending bool
	firstAt time.Time
}

// observe records a request at now and returns how long the rebuild timer
// should wait from this point.
func (d *debouncer) observe(now time.Time) time.Duration {
	if !d.pending {
		d.pending = true
		d.firstAt = now
	}
	wait := d.quiet
	if d.max > 0 {
		if remaining := d.max - now.Sub(d.firstAt); remaining < wait {
			wait = remaining
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (d *debouncer) fired() { d.pending = false }

func (w *Watcher) build(ctx context.Context, reason string) {
	slog.Info("Rebuilding", slog.String("reason", reason))
	report, err := w.runner.Run(ctx)
	if err != nil {
		slog.Error("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild finished",
		logfields.RunID(report.RunID),
		slog.String("outcome", string(report.Outcome)),
		logfields.Count(report.PagesRendered))
}

// eventLoop translates raw filesystem events into rebuild requests. New
// directories are added to the watch set as they appear; fsnotify does not
// watch recursively on its own.
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Error(err))
					}
					w.request("dir created: " + event.Name)
					continue
				}
			}
			if !relevant(event) {
				continue
			}
			w.request(event.Op.String() + " " + event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) request(reason string) {
	select {
	case w.requests <- reason:
	default:
		// A rebuild is already queued; dropping the extra trigger is fine.
	}
}

// relevant reports whether an event should trigger a rebuild: markdown
// writes, creates, removes and renames; everything else is noise.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".md" || ext == ".markdown"
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) startSchedule() error {
	interval := w.cfg.Watch.RebuildIntervalDuration()
	if interval <= 0 {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { w.request("scheduled rebuild") }),
		gocron.WithName("interval-rebuild"),
	)
	if err != nil {
		return fmt.Errorf("create interval rebuild job: %w", err)
	}

	w.scheduler = s
	s.Start()
	slog.Info("Scheduled interval rebuilds", slog.Duration("interval", interval))
	return nil
}

func (w *Watcher) stopSchedule() {
	if w.scheduler == nil {
		return
	}
	if err := w.scheduler.Shutdown(); err != nil {
		slog.Warn("Scheduler shutdown failed", logfields.Error(err))
	}
}

func (w *Watcher) startMetricsServer(ctx context.Context) {
	addr := w.cfg.Watch.MetricsAddr
	if addr == "" || w.metricsHandler == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", w.metricsHandler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Serving metrics", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
