package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/display"
	"github.com/backmassage/lapsemaster/internal/ffmpeg"
	"github.com/backmassage/lapsemaster/internal/fsx"
	"github.com/backmassage/lapsemaster/internal/media"
	"github.com/backmassage/lapsemaster/internal/order"
	"github.com/backmassage/lapsemaster/internal/planner"
	"github.com/backmassage/lapsemaster/internal/probe"
	"github.com/backmassage/lapsemaster/internal/prompt"
	"github.com/backmassage/lapsemaster/internal/settings"
)

// Combined output names inside the output directory.
const (
	VideoOutputName  = "timelapse.mp4"
	AudioOutputName  = "audio.m4a"
	MergedOutputName = "timelapse_audio.mp4"
)

// Logger is the logging surface the pipeline needs; *logging.Logger
// implements it.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Render(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Asker answers the interactive settings and ordering questions.
type Asker interface {
	settings.Asker
}

// Deps are the collaborators of a run.
type Deps struct {
	Runner ffmpeg.Runner
	Log    Logger
	// Ask is only used with --interactive or --custom-order.
	Ask Asker
}

type run struct {
	cfg    *config.Config
	log    Logger
	ask    Asker
	prober *probe.Prober
	exec   *Executor

	stats  RunStats
	rows   []*ReportRow
	infos  map[string]*probe.Info
	claims *artifactClaims
}

// Run is the top-level batch entry point.
func Run(ctx context.Context, cfg *config.Config, deps Deps) RunStats {
	r := &run{
		cfg:    cfg,
		log:    deps.Log,
		ask:    deps.Ask,
		prober: probe.New(cfg, deps.Runner),
		exec:   NewExecutor(cfg, deps.Runner, deps.Log),
		infos:  map[string]*probe.Info{},
		claims: newArtifactClaims(),
	}
	r.run(ctx, deps.Runner)
	return r.stats
}

func (r *run) run(ctx context.Context, runner ffmpeg.Runner) {
	cfg, log := r.cfg, r.log

	// --- Directories ---
	if !r.prepareDirs() {
		r.stats.Failed++
		return
	}

	// --- Discover ---
	sources, err := Discover(cfg)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		r.stats.Failed++
		return
	}
	r.stats.Total = len(sources)
	if len(sources) == 0 {
		log.Warn("No source files found in %s, %s or %s", cfg.VideoDir, cfg.AudioDir, cfg.ImageDir)
		return
	}
	count := func(kind media.SourceKind) int {
		return lo.CountBy(sources, func(s media.SourceFile) bool { return s.Kind == kind })
	}
	log.Info("Found %d files (%d video, %d audio, %d image)",
		len(sources), count(media.KindVideo), count(media.KindAudio), count(media.KindImage))

	// --- Settings ---
	store, ok := r.resolveSettings(ctx, sources)
	if !ok {
		return
	}
	if cfg.SettingsOnly {
		log.Success("Settings stored for %d files", store.Len())
		return
	}
	fmt.Println()

	// --- Per-clip processing ---
	for i, src := range sources {
		r.stats.Current = i + 1
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			r.stats.Aborted = true
			return
		}
		reqs, _ := store.Get(src.Path)
		r.processFile(ctx, src, reqs)
	}

	// --- Order ---
	clips := func(s media.SourceFile) int {
		reqs, _ := store.Get(s.Path)
		return len(reqs)
	}
	ord, ok := r.resolveOrder(ctx, order.Artifacts(cfg.TempDir, sources, clips))
	if !ok {
		return
	}

	// --- Combined outputs ---
	outputs := newOutputs(cfg, runner, log)
	videoOK := outputs.build(ctx, media.KindVideo, ord.Video)
	audioOK := outputs.build(ctx, media.KindAudio, ord.Audio)
	if videoOK && audioOK && len(ord.Video) > 0 && len(ord.Audio) > 0 {
		outputs.merge(ctx)
	}
	r.stats.TotalOutputBytes = outputs.bytes

	// --- Cleanup ---
	r.cleanup(sources, ord, videoOK, audioOK)
	r.finish()
}

// prepareDirs clears and creates the generated directories.
func (r *run) prepareDirs() bool {
	cfg, log := r.cfg, r.log
	clearDir := func(enabled bool, dir, what string, exts ...string) {
		if !enabled {
			return
		}
		if cfg.DryRun {
			log.Info("[DRY] Would clear %s in %s", what, dir)
			return
		}
		removed, err := fsx.ClearDir(dir, exts...)
		if err != nil {
			log.Warn("Clearing %s: %v", dir, err)
		}
		log.Info("Cleared %d %s from %s", len(removed), what, dir)
	}
	clearDir(cfg.ClearTempVideo, cfg.TempDir, "video artifacts", ".mp4", ".txt")
	clearDir(cfg.ClearTempAudio, cfg.TempDir, "audio artifacts", ".m4a", ".txt")
	clearDir(cfg.ClearOutput, cfg.OutputDir, "outputs")

	if cfg.DryRun {
		return true
	}
	for _, dir := range []string{cfg.TempDir, cfg.OutputDir, cfg.SettingsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("Cannot create directory %s: %v", dir, err)
			return false
		}
	}
	return true
}

// resolveSettings loads, reconciles and extends the settings, then persists
// them. It returns false when the run must stop (interactive input ended).
func (r *run) resolveSettings(ctx context.Context, sources []media.SourceFile) (*settings.Store, bool) {
	cfg, log := r.cfg, r.log
	path := filepath.Join(cfg.SettingsDir, settings.FileName)

	store := settings.New(path)
	if cfg.UseSettings {
		store = settings.Load(path, log)
		if cfg.Repath {
			roots := make(map[media.SourceKind]string, 3)
			for _, kind := range media.Kinds.Members() {
				if abs, err := media.Canonical(cfg.SourceDir(kind)); err == nil {
					roots[kind] = abs
				}
			}
			store.Repath(roots, log)
		}
		for _, key := range store.Reconcile(sources) {
			log.Debug(cfg.Verbose, "Dropped settings for missing file %s", key)
		}
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			log.Warn("Interrupted; settings not saved")
			r.stats.Aborted = true
			return nil, false
		}

		if !settings.NeedsPrompt(cfg, store, src) {
			continue
		}

		def := settings.Defaults(cfg, src.Kind)
		if !cfg.Interactive {
			// Batch mode keeps stored requests unless --override-settings;
			// regenerated entries get one default per artifact already in
			// the temp directory.
			if _, ok := store.Get(src.Path); !ok || cfg.OverrideSettings {
				n := max(settings.ExistingClips(cfg.TempDir, src), 1)
				store.Upsert(src.Path, lo.Times(n, func(int) media.EditRequest { return def }))
			}
			continue
		}

		duration := 0.0
		if src.Kind != media.KindImage {
			info, err := r.probe(ctx, src)
			if err != nil {
				log.Warn("Cannot probe %s: %v; clip windows are not checked", src.Name(), err)
			} else {
				duration = info.Duration
			}
		}
		check := func(req media.EditRequest) error {
			if duration <= 0 && src.Kind != media.KindImage {
				return req.Validate(src.Kind)
			}
			return planner.ValidateInteractive(src.Kind, req, duration, cfg.ImageDuration)
		}
		reqs, err := settings.PromptRequests(r.ask, log, src, def, check)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				log.Warn("Input aborted; settings not saved")
			} else {
				log.Error("Prompt failed: %v", err)
			}
			r.stats.Aborted = true
			return nil, false
		}
		store.Upsert(src.Path, reqs)
	}

	if cfg.UseSettings {
		if cfg.DryRun {
			log.Info("[DRY] Would save settings for %d files to %s", store.Len(), path)
		} else if err := store.Save(); err != nil {
			log.Error("%v", err)
		} else {
			log.Debug(cfg.Verbose, "Saved settings for %d files to %s", store.Len(), path)
		}
	}
	return store, true
}

func (r *run) probe(ctx context.Context, src media.SourceFile) (*probe.Info, error) {
	if info, ok := r.infos[src.Path]; ok {
		return info, nil
	}
	info, err := r.prober.Probe(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	r.infos[src.Path] = info
	return info, nil
}

// processFile plans and executes every clip of one source.
func (r *run) processFile(ctx context.Context, src media.SourceFile, reqs []media.EditRequest) {
	cfg, log := r.cfg, r.log
	log.Info("[%d/%d] %s (%d clip%s)", r.stats.Current, r.stats.Total, src.Name(), len(reqs), lo.Ternary(len(reqs) == 1, "", "s"))

	for i, req := range reqs {
		r.stats.Clips++
		row := &ReportRow{Source: src.Path, Kind: src.Kind.Value, Clip: i}
		r.rows = append(r.rows, row)
		out := media.ArtifactPath(cfg.TempDir, src, i)
		row.Artifact = out
		if owner, ok := r.claims.claim(src.Path, out); !ok {
			r.fail(row, "Artifact %s is already produced by %s; rename one of the sources", filepath.Base(out), owner)
			continue
		}

		// --- Skip-existing check ---
		if fsx.Exists(out) && !cfg.OverrideTemp(src.Kind) {
			log.Warn("Skip (exists): %s", filepath.Base(out))
			row.Status = StatusSkipped
			r.stats.Skipped++
			continue
		}

		// --- Probe ---
		duration, hasAudio := 0.0, false
		if src.Kind != media.KindImage {
			info, err := r.probe(ctx, src)
			if err != nil {
				r.fail(row, "Cannot probe file (possibly corrupt): %v", err)
				continue
			}
			duration, hasAudio = info.Duration, info.HasAudio
			log.Debug(cfg.Verbose, "  %s, %s", display.FormatSeconds(info.Duration), info.Resolution())
		}

		// --- Plan ---
		plan, err := planner.BuildPlan(src, i, req, duration, planner.Options{
			KeepVideoAudio: cfg.KeepVideoAudio,
			SourceHasAudio: hasAudio,
			ImageDuration:  cfg.ImageDuration,
		})
		if err != nil {
			r.fail(row, "Invalid settings: %v", err)
			continue
		}
		plan.OutputPath = out
		for _, note := range plan.Notes {
			log.Warn("  %s", note)
		}
		row.setStages(plan.StageNames())
		row.InputSeconds = plan.InputDuration
		row.OutputSeconds = plan.Duration()
		row.Notes = strings.Join(plan.Notes, "; ")

		// --- Execute ---
		start := time.Now()
		if _, err := r.exec.Run(ctx, plan); err != nil {
			r.fail(row, "Clip %d failed: %v", i, err)
			continue
		}
		row.Elapsed = time.Since(start).Seconds()
		r.stats.OutputSeconds += plan.Duration()
		r.stats.Processed++
		if cfg.DryRun {
			row.Status = StatusPlanned
			continue
		}
		row.Status = StatusDone
		log.Success("  %s (%s) in %s", filepath.Base(out), display.FormatSeconds(plan.Duration()),
			display.FormatDuration(time.Since(start)))
	}
	fmt.Println()
}

func (r *run) fail(row *ReportRow, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.log.Error("  %s", msg)
	row.Status = StatusFailed
	row.Error = msg
	r.stats.Failed++
}

// resolveOrder resolves and persists the concatenation order.
func (r *run) resolveOrder(ctx context.Context, set order.Set) (order.Order, bool) {
	cfg, log := r.cfg, r.log
	path := filepath.Join(cfg.SettingsDir, order.FileName)

	var persisted *order.Document
	if cfg.UseOrder {
		persisted = order.LoadDocument(path, log)
	}
	opts := order.Options{Trust: cfg.UseOrder, Interactive: cfg.CustomOrder, Log: log}
	if r.ask != nil {
		opts.Ask = r.ask
	}
	if ctx.Err() != nil {
		r.stats.Aborted = true
		return order.Order{}, false
	}

	ord, err := order.Resolve(set, persisted, opts)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			log.Warn("Input aborted; order not saved")
		} else {
			log.Error("Resolving order: %v", err)
		}
		r.stats.Aborted = true
		return order.Order{}, false
	}

	if cfg.DryRun {
		log.Info("[DRY] Would save order to %s", path)
	} else if err := order.FromOrder(ord).Save(path); err != nil {
		log.Error("%v", err)
	}
	for _, track := range order.Tracks.Members() {
		for i, p := range ord.Get(track) {
			log.Debug(cfg.Verbose, "  %s %d: %s", track, i+1, filepath.Base(p))
		}
	}
	return ord, true
}

// cleanup removes consumed temp artifacts and, when asked, the sources of
// the tracks that were built.
func (r *run) cleanup(sources []media.SourceFile, ord order.Order, videoOK, audioOK bool) {
	cfg, log := r.cfg, r.log
	if cfg.DryRun {
		return
	}
	remove := func(path, what string) {
		removed, err := fsx.Remove(path)
		switch {
		case err != nil:
			log.Warn("Cannot delete %s %s: %v", what, path, err)
		case !removed:
			log.Debug(cfg.Verbose, "Already gone: %s", path)
		}
	}

	if videoOK && !cfg.KeepTempVideo {
		for _, p := range ord.Video {
			remove(p, "artifact")
		}
		remove(listPath(cfg, media.KindVideo), "list")
	}
	if audioOK && !cfg.KeepTempAudio {
		for _, p := range ord.Audio {
			remove(p, "artifact")
		}
		remove(listPath(cfg, media.KindAudio), "list")
	}

	for _, src := range sources {
		del := false
		switch src.Kind {
		case media.KindVideo:
			del = cfg.DeleteVideo && videoOK
		case media.KindImage:
			del = cfg.DeleteImage && videoOK
		case media.KindAudio:
			del = cfg.DeleteAudio && audioOK
		}
		if del && r.sourceSucceeded(src) {
			remove(src.Path, "source")
		}
	}
}

func (r *run) sourceSucceeded(src media.SourceFile) bool {
	return !lo.ContainsBy(r.rows, func(row *ReportRow) bool {
		return row.Source == src.Path && row.Status == StatusFailed
	})
}

func (r *run) finish() {
	cfg, log := r.cfg, r.log
	printClipTable(os.Stdout, r.rows)
	logSummary(cfg, log, &r.stats)
	if cfg.DryRun {
		return
	}
	if path, err := WriteReport(cfg.OutputDir, r.rows); err != nil {
		log.Warn("Cannot write report: %v", err)
	} else {
		log.Info("Report: %s", path)
	}
}

func logSummary(cfg *config.Config, log Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d processed, %d skipped, %d failed (%d clips from %d files)",
		stats.Processed, stats.Skipped, stats.Failed, stats.Clips, stats.Total)
	log.Info("  Planned length of processed clips: %s", display.FormatSeconds(stats.OutputSeconds))
	if cfg.DryRun {
		log.Info("  Output size: n/a (dry run)")
		return
	}
	if stats.Failed > 0 {
		log.Warn("  %d clip(s) failed; rerun to retry them", stats.Failed)
	} else {
		log.Success("  Output size: %s", display.FormatBytes(stats.TotalOutputBytes))
	}
}
