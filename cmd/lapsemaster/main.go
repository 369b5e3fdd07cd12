// Command lapsemaster is the CLI entrypoint for the Lapsemaster timelapse
// builder.
//
// It parses flags, validates configuration and paths, and either runs
// system diagnostics (--check) or the batch pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/lapsemaster/internal/check"
	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/display"
	"github.com/backmassage/lapsemaster/internal/ffmpeg"
	"github.com/backmassage/lapsemaster/internal/logging"
	"github.com/backmassage/lapsemaster/internal/media"
	"github.com/backmassage/lapsemaster/internal/pipeline"
	"github.com/backmassage/lapsemaster/internal/prompt"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "lapsemaster: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "lapsemaster: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lapsemaster: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner(os.Stdout)

	// Cancel on SIGINT/SIGTERM so the pipeline stops between clips and
	// pending prompts return without saving.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := &ffmpeg.ExecRunner{Verbose: cfg.Verbose}

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, &cfg, runner, log) {
			return 1
		}
		return 0
	}

	if err := resolvePaths(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Info("=== Lapsemaster v%s (%s) ===", version, commit)
	log.Info("Video: %s  Audio: %s  Image: %s", cfg.VideoDir, cfg.AudioDir, cfg.ImageDir)
	log.Info("Temp:  %s", cfg.TempDir)
	log.Info("Out:   %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}
	log.Info("")

	// Fail fast if ffmpeg/ffprobe or the chosen encoder are unavailable.
	if !cfg.DryRun {
		if err := check.CheckDeps(ctx, &cfg, runner); err != nil {
			log.Error("%v", err)
			return 1
		}
	}

	// Phase 3: Run pipeline (settings -> probe -> plan -> execute -> order -> concat).
	deps := pipeline.Deps{Runner: runner, Log: log}
	if cfg.Interactive || cfg.CustomOrder {
		deps.Ask = prompt.New(ctx, os.Stdin, os.Stdout)
	}
	stats := pipeline.Run(ctx, &cfg, deps)

	if !stats.OK() {
		return 1
	}
	return 0
}

// resolvePaths makes every directory absolute and symlink-resolved and
// rejects generated directories inside a source directory, which would make
// discovery pick up artifacts as sources.
func resolvePaths(cfg *config.Config) error {
	for _, p := range []*string{&cfg.VideoDir, &cfg.AudioDir, &cfg.ImageDir, &cfg.TempDir, &cfg.OutputDir, &cfg.SettingsDir} {
		abs, err := media.Canonical(*p)
		if err != nil {
			return fmt.Errorf("cannot resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return config.ValidatePaths(
		[]string{cfg.VideoDir, cfg.AudioDir, cfg.ImageDir},
		cfg.TempDir, cfg.OutputDir,
	)
}
