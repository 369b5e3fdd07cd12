package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/google/uuid"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/display"
	"github.com/backmassage/lapsemaster/internal/ffmpeg"
	"github.com/backmassage/lapsemaster/internal/fsx"
	"github.com/backmassage/lapsemaster/internal/planner"
)

// Executor runs the stages of one plan, chaining each stage's output into
// the next.
type Executor struct {
	cfg    *config.Config
	runner ffmpeg.Runner
	log    Logger
}

// NewExecutor returns an Executor that invokes ffmpeg through runner.
func NewExecutor(cfg *config.Config, runner ffmpeg.Runner, log Logger) *Executor {
	return &Executor{cfg: cfg, runner: runner, log: log}
}

// Run executes plan and returns the final artifact path (plan.OutputPath).
//
// Every stage but the last writes a uniquely named intermediate next to the
// final artifact; an intermediate is removed as soon as the following stage
// has consumed it. The source file is never removed here. When a stage fails
// the remaining stages are skipped, its partial output and the pending
// intermediate are removed, and the error matches ffmpeg.ErrExternalTool.
func (e *Executor) Run(ctx context.Context, plan *planner.FilePlan) (string, error) {
	final := plan.OutputPath
	current := plan.Source.Path
	n := len(plan.Stages)

	for i, st := range plan.Stages {
		if err := ctx.Err(); err != nil {
			e.discard(plan, current)
			return "", err
		}

		out := final
		if i < n-1 {
			out = intermediatePath(final, st.Kind)
		}
		cmd := ffmpeg.BuildStage(e.cfg, plan, i, current, out)

		if e.cfg.DryRun {
			e.log.Info("  [DRY] Stage %d/%d %s: %s", i+1, n, st.Kind, cmd)
			current = out
			continue
		}

		e.log.Render("  Stage %d/%d %s", i+1, n, st.Kind)
		e.log.Debug(e.cfg.Verbose, "  %s", cmd)
		start := time.Now()
		if _, err := e.runner.Run(ctx, cmd); err != nil {
			e.discard(plan, out)
			e.discard(plan, current)
			return "", merry.Wrap(err, merry.WithMessagef("%s stage %d/%d (%s): %v",
				filepath.Base(plan.Source.Path), i+1, n, st.Kind, err))
		}
		e.log.Render("  Stage %d/%d %s done in %s", i+1, n, st.Kind, display.FormatDuration(time.Since(start)))

		e.discard(plan, current)
		current = out
	}
	return final, nil
}

// discard removes an artifact produced by this plan. The source is left
// alone; the final artifact is only removed on failure (callers pass it
// explicitly then).
func (e *Executor) discard(plan *planner.FilePlan, path string) {
	if path == plan.Source.Path {
		return
	}
	if _, err := fsx.Remove(path); err != nil {
		e.log.Warn("Cannot remove %s: %v", path, err)
	}
}

// intermediatePath derives "<stem>_<index>.<stage>.<uuid><ext>" from the
// final artifact path.
func intermediatePath(final string, kind planner.StageKind) string {
	ext := filepath.Ext(final)
	return strings.TrimSuffix(final, ext) + "." + kind.Value + "." + uuid.NewString() + ext
}
