package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/display"
	"github.com/backmassage/lapsemaster/internal/ffmpeg"
	"github.com/backmassage/lapsemaster/internal/fsx"
	"github.com/backmassage/lapsemaster/internal/media"
)

// outputs concatenates ordered artifacts into the combined files.
type outputs struct {
	cfg    *config.Config
	runner ffmpeg.Runner
	log    Logger
	bytes  int64
}

func newOutputs(cfg *config.Config, runner ffmpeg.Runner, log Logger) *outputs {
	return &outputs{cfg: cfg, runner: runner, log: log}
}

// listPath is the concat list file of a track.
func listPath(cfg *config.Config, kind media.SourceKind) string {
	return filepath.Join(cfg.TempDir, kind.Value+".txt")
}

func outputPath(cfg *config.Config, kind media.SourceKind) string {
	if kind == media.KindAudio {
		return filepath.Join(cfg.OutputDir, AudioOutputName)
	}
	return filepath.Join(cfg.OutputDir, VideoOutputName)
}

// build concatenates paths into the combined output of kind's track. Paths
// whose artifact is missing are left out. It reports whether the output is
// in place afterwards (or would be, in dry-run mode).
func (o *outputs) build(ctx context.Context, kind media.SourceKind, paths []string) bool {
	cfg, log := o.cfg, o.log
	if len(paths) == 0 {
		return true
	}
	out := outputPath(cfg, kind)

	present := paths
	if !cfg.DryRun {
		present = present[:0:0]
		for _, p := range paths {
			if fsx.Exists(p) {
				present = append(present, p)
			} else {
				log.Warn("Missing artifact %s; left out of %s", filepath.Base(p), filepath.Base(out))
			}
		}
		if len(present) == 0 {
			log.Error("No %s artifacts to combine", kind)
			return false
		}
	}

	if fsx.Exists(out) && !cfg.OverrideOutput {
		log.Warn("Skip (exists): %s; use --override-output to rebuild", out)
		return false
	}

	list := listPath(cfg, kind)
	cmd := ffmpeg.BuildConcat(cfg, list, out, kind)
	if cfg.DryRun {
		log.Info("[DRY] Concat %d %s clips: %s", len(present), kind, cmd)
		return true
	}

	if err := fsx.WriteFileAtomic(list, ffmpeg.ConcatList(present)); err != nil {
		log.Error("Writing concat list: %v", err)
		return false
	}
	log.Info("Combining %d %s clips into %s", len(present), kind, filepath.Base(out))
	log.Debug(cfg.Verbose, "  %s", cmd)
	if _, err := o.runner.Run(ctx, cmd); err != nil {
		log.Error("Concat failed: %v", err)
		_, _ = fsx.Remove(out)
		return false
	}
	o.record(out)
	return true
}

// merge muxes the combined video with the combined audio track.
func (o *outputs) merge(ctx context.Context) {
	cfg, log := o.cfg, o.log
	video := outputPath(cfg, media.KindVideo)
	audio := outputPath(cfg, media.KindAudio)
	out := filepath.Join(cfg.OutputDir, MergedOutputName)

	if fsx.Exists(out) && !cfg.OverrideOutput {
		log.Warn("Skip (exists): %s; use --override-output to rebuild", out)
		return
	}
	cmd := ffmpeg.BuildMerge(cfg, video, audio, out)
	if cfg.DryRun {
		log.Info("[DRY] Merge: %s", cmd)
		return
	}
	log.Info("Merging audio into %s", filepath.Base(out))
	log.Debug(cfg.Verbose, "  %s", cmd)
	if _, err := o.runner.Run(ctx, cmd); err != nil {
		log.Error("Merge failed: %v", err)
		_, _ = fsx.Remove(out)
		return
	}
	o.record(out)
}

func (o *outputs) record(path string) {
	fi, err := os.Stat(path)
	if err != nil {
		o.log.Success("Wrote %s", path)
		return
	}
	o.bytes += fi.Size()
	o.log.Success("Wrote %s (%s)", path, display.FormatBytes(fi.Size()))
}
