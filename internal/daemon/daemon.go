// Package daemon keeps the site continuously built: it watches the content
// tree and configuration, rebuilds on change or schedule, and serves build
// status and metrics over HTTP.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/zkcodehub/sitectl/internal/config"
	"github.com/zkcodehub/sitectl/internal/eventstore"
	"github.com/zkcodehub/sitectl/internal/metrics"
	"github.com/zkcodehub/sitectl/internal/pipeline"
	"github.com/zkcodehub/sitectl/internal/workspace"
)

// Daemon coordinates watching, scheduling, building and serving.
type Daemon struct {
	cfg        *config.Config
	configPath string

	recorder  *metrics.PrometheusRecorder
	events    eventstore.Store
	server    *Server
	watcher   *Watcher
	scheduler *Scheduler
	publisher *Publisher // nil when NATS is not configured

	buildMu   sync.Mutex // one build at a time
	stateMu   sync.RWMutex
	lastBuild *BuildStatus

	triggerCh chan string
	wg        sync.WaitGroup
}

// BuildStatus is the daemon's view of the most recent build.
type BuildStatus struct {
	BuildID    string    `json:"build_id"`
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Pages      int       `json:"pages"`
}

// New creates a daemon from configuration. configPath is watched for
// changes and reloaded.
func New(cfg *config.Config, configPath string) (*Daemon, error) {
	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())

	store, err := eventstore.NewSQLiteStore(filepath.Join(cfg.Daemon.DataDir, "events.db"))
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		recorder:   recorder,
		events:     store,
		triggerCh:  make(chan string, 1),
	}

	d.server = NewServer(cfg.Daemon.Listen, recorder, store, d.Status)

	debounce, err := time.ParseDuration(cfg.Daemon.DebounceDelay)
	if err != nil || debounce <= 0 {
		debounce = 2 * time.Second
	}
	d.watcher, err = NewWatcher([]string{cfg.Content.Dir, filepath.Dir(configPath)}, debounce, d.Trigger)
	if err != nil {
		store.Close()
		return nil, err
	}

	if cfg.Daemon.Schedule != "" {
		d.scheduler, err = NewScheduler(cfg.Daemon.Schedule, func() { d.Trigger("schedule") })
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	if cfg.Daemon.NATSURL != "" {
		d.publisher, err = NewPublisher(cfg.Daemon.NATSURL, cfg.Daemon.NATSSubject)
		if err != nil {
			// Build events are best effort; the daemon still works without
			// a broker.
			slog.Warn("NATS unavailable, build events will not be published", "error", err)
		}
	}

	return d, nil
}

// Trigger requests a rebuild. Coalesces when one is already pending.
func (d *Daemon) Trigger(reason string) {
	select {
	case d.triggerCh <- reason:
	default:
		slog.Debug("Build already pending, coalescing trigger", "reason", reason)
	}
}

// Status returns the last build status, or nil before the first build.
func (d *Daemon) Status() *BuildStatus {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.lastBuild
}

// Start runs the daemon until ctx is canceled.
func (d *Daemon) Start(ctx context.Context) error {
	slog.Info("Daemon starting", "listen", d.cfg.Daemon.Listen, "content", d.cfg.Content.Dir)

	if err := d.server.Start(); err != nil {
		return err
	}
	if err := d.watcher.Start(ctx); err != nil {
		return err
	}
	if d.scheduler != nil {
		d.scheduler.Start()
	}

	// Initial build on startup.
	d.Trigger("startup")

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case reason := <-d.triggerCh:
				d.runBuild(ctx, reason)
			}
		}
	}()

	<-ctx.Done()
	return nil
}

// Stop shuts the daemon down gracefully.
func (d *Daemon) Stop(ctx context.Context) error {
	d.watcher.Stop()
	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			slog.Warn("Scheduler shutdown failed", "error", err)
		}
	}
	if d.publisher != nil {
		d.publisher.Close()
	}
	if err := d.server.Stop(ctx); err != nil {
		slog.Warn("HTTP server shutdown failed", "error", err)
	}
	d.wg.Wait()
	return d.events.Close()
}

// reloadConfig re-reads the configuration file so edits made while the
// daemon runs take effect on the next build. A broken file keeps the
// previous configuration. Watch roots are registered at startup and are not
// rewired.
func (d *Daemon) reloadConfig() *config.Config {
	cfg, err := config.Load(d.configPath)
	if err != nil {
		slog.Warn("Config reload failed, building with previous configuration",
			"path", d.configPath, "error", err)
		return d.cfg
	}
	d.cfg = cfg
	return cfg
}

func (d *Daemon) runBuild(ctx context.Context, reason string) {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	cfg := d.reloadConfig()
	status := &BuildStatus{Trigger: reason, StartedAt: time.Now()}
	slog.Info("Build starting", "trigger", reason)

	ws := workspace.NewPersistentManager(cfg.Daemon.DataDir, "working")
	if err := ws.Create(); err != nil {
		d.finishBuild(ctx, status, err)
		return
	}

	bc := &pipeline.BuildContext{
		Config:       cfg,
		OutputDir:    cfg.Output.Directory,
		WorkspaceDir: ws.Path(),
		Incremental:  true,
	}
	runner := pipeline.NewRunner(d.recorder, d.events)
	err := runner.Run(ctx, pipeline.DefaultStages(d.recorder), bc)

	status.BuildID = bc.BuildID
	if bc.Report != nil {
		status.Pages = bc.Report.Pages
	}
	d.finishBuild(ctx, status, err)
}

func (d *Daemon) finishBuild(ctx context.Context, status *BuildStatus, err error) {
	status.FinishedAt = time.Now()
	status.Success = err == nil
	if err != nil {
		status.Error = err.Error()
		slog.Error("Build failed", "trigger", status.Trigger, "error", err)
	} else {
		slog.Info("Build complete", "build_id", status.BuildID, "pages", status.Pages,
			"duration", status.FinishedAt.Sub(status.StartedAt))
	}

	d.stateMu.Lock()
	d.lastBuild = status
	d.stateMu.Unlock()

	if d.publisher != nil {
		d.publisher.PublishBuildStatus(ctx, status)
	}
}
