package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zkcodehub/sitectl/internal/codeimport"
	"github.com/zkcodehub/sitectl/internal/config"
	"github.com/zkcodehub/sitectl/internal/content"
	"github.com/zkcodehub/sitectl/internal/eventstore"
	"github.com/zkcodehub/sitectl/internal/linkverify"
	"github.com/zkcodehub/sitectl/internal/metrics"
	"github.com/zkcodehub/sitectl/internal/site"
)

// BuildContext carries state between stages. Stages populate the fields
// their dependents declare dependencies on.
type BuildContext struct {
	BuildID      string
	Config       *config.Config
	OutputDir    string
	WorkspaceDir string
	Incremental  bool

	RepoPaths  map[string]string // clone stage
	Resolver   *codeimport.Resolver
	Pages      []content.Page // discover stage
	Directives []codeimport.Directive
	Report     *site.BuildReport  // render stage
	LinkReport *linkverify.Report // verify stage
}

// Stage is one unit of build work.
type Stage interface {
	Name() StageName
	Dependencies() []StageName
	Execute(ctx context.Context, bc *BuildContext) error
}

// Runner executes a plan sequentially, recording metrics and events.
type Runner struct {
	recorder metrics.Recorder
	events   eventstore.Store // optional
}

// NewRunner creates a runner. recorder may be nil (noop); events may be nil
// to skip persistence.
func NewRunner(recorder metrics.Recorder, events eventstore.Store) *Runner {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Runner{recorder: recorder, events: events}
}

// Run plans and executes the stages, stopping at the first failure.
func (r *Runner) Run(ctx context.Context, stages []Stage, bc *BuildContext) error {
	if bc.BuildID == "" {
		bc.BuildID = uuid.NewString()
	}

	plan, err := BuildExecutionPlan(stages)
	if err != nil {
		return err
	}
	byName := make(map[StageName]Stage, len(stages))
	for _, st := range stages {
		byName[st.Name()] = st
	}

	buildStart := time.Now()
	r.appendEvent(ctx, bc.BuildID, eventstore.EventBuildStarted, map[string]any{"stages": plan.Order})

	for _, name := range plan.Order {
		if err := ctx.Err(); err != nil {
			r.recorder.IncBuildOutcome("canceled")
			r.appendEvent(ctx, bc.BuildID, eventstore.EventBuildFailed, map[string]any{"reason": "canceled"})
			return err
		}

		slog.Debug("Stage starting", "stage", name, "build_id", bc.BuildID)
		r.appendEvent(ctx, bc.BuildID, eventstore.EventStageStarted, map[string]any{"stage": name})

		stageStart := time.Now()
		err := byName[name].Execute(ctx, bc)
		elapsed := time.Since(stageStart)
		r.recorder.ObserveStageDuration(string(name), elapsed)

		if err != nil {
			result := metrics.ResultFatal
			if ctx.Err() != nil {
				result = metrics.ResultCanceled
			}
			r.recorder.IncStageResult(string(name), result)
			r.recorder.IncBuildOutcome("failed")
			r.appendEvent(ctx, bc.BuildID, eventstore.EventStageFailed, map[string]any{"stage": name, "error": err.Error()})
			r.appendEvent(ctx, bc.BuildID, eventstore.EventBuildFailed, map[string]any{"stage": name})
			return fmt.Errorf("stage %s: %w", name, err)
		}

		r.recorder.IncStageResult(string(name), metrics.ResultSuccess)
		r.appendEvent(ctx, bc.BuildID, eventstore.EventStageCompleted, map[string]any{"stage": name, "duration_ms": elapsed.Milliseconds()})
		slog.Debug("Stage complete", "stage", name, "duration", elapsed)
	}

	r.recorder.ObserveBuildDuration(time.Since(buildStart))
	r.recorder.IncBuildOutcome("success")
	r.appendEvent(ctx, bc.BuildID, eventstore.EventBuildCompleted, map[string]any{"duration_ms": time.Since(buildStart).Milliseconds()})
	return nil
}

func (r *Runner) appendEvent(ctx context.Context, buildID, eventType string, payload map[string]any) {
	if r.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	if err := r.events.Append(ctx, buildID, eventType, data, nil); err != nil {
		slog.Warn("Failed to record build event", "type", eventType, "error", err)
	}
}
