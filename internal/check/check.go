// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg, ffprobe, the configured
// video encoder, and AAC.
package check

import (
	"context"
	"os/exec"
	"strings"

	"github.com/ansel1/merry/v2"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound    = merry.Sentinel("ffmpeg not found")
	ErrFfprobeNotFound   = merry.Sentinel("ffprobe not found")
	ErrVideoEncodeFailed = merry.Sentinel("video encoder test encode failed")
	ErrAudioEncodeFailed = merry.Sentinel("aac test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// RunCheck runs the --check flow: availability of ffmpeg and ffprobe, the
// matching encoders, and short test encodes with the configured video codec
// and AAC. It reports whether everything needed for a run works.
func RunCheck(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(ctx, runner, log, cfg.FFmpegPath)
	ok = checkTool(ctx, runner, log, cfg.FFprobePath) && ok
	if !ok {
		return false
	}
	listEncoders(ctx, cfg, runner, log)

	log.Info("Testing %s...", cfg.VideoCodec)
	if testEncode(ctx, runner, videoTestCmd(cfg)) {
		log.Success("%s works", cfg.VideoCodec)
	} else {
		log.Error("%s test encode failed", cfg.VideoCodec)
		ok = false
	}

	log.Info("Testing AAC encoder...")
	if testEncode(ctx, runner, audioTestCmd(cfg)) {
		log.Success("AAC encoder works")
	} else {
		log.Error("AAC encoder test failed")
		ok = false
	}
	return ok
}

// checkTool verifies a binary is resolvable and logs its version string.
func checkTool(ctx context.Context, runner ffmpeg.Runner, log Logger, path string) bool {
	if _, err := lookPath(path); err != nil {
		log.Error("%s not found", path)
		return false
	}
	res, err := runner.Run(ctx, ffmpeg.Command{Program: path, Args: []string{"-version"}})
	if err != nil {
		log.Warn("%s found but -version failed: %v", path, err)
		return true
	}
	firstLine := strings.TrimSpace(res.Stdout)
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s", firstLine)
	return true
}

// listEncoders logs the encoders ffmpeg reports for the configured codecs.
func listEncoders(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner, log Logger) {
	res, err := runner.Run(ctx, ffmpeg.Command{Program: cfg.FFmpegPath, Args: []string{"-hide_banner", "-encoders"}})
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	log.Info("Encoders:")
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && (fields[1] == cfg.VideoCodec || fields[1] == cfg.AudioCodec) {
			log.Info("  %s", strings.TrimSpace(line))
		}
	}
}

// CheckDeps is the pre-pipeline validation: it verifies that ffmpeg and
// ffprobe resolve and that the configured video encoder and AAC actually
// work. Returns a sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner) error {
	if _, err := lookPath(cfg.FFmpegPath); err != nil {
		return merry.Wrap(ErrFfmpegNotFound, merry.WithMessagef("ffmpeg not found: %s", cfg.FFmpegPath))
	}
	if _, err := lookPath(cfg.FFprobePath); err != nil {
		return merry.Wrap(ErrFfprobeNotFound, merry.WithMessagef("ffprobe not found: %s", cfg.FFprobePath))
	}
	if !testEncode(ctx, runner, videoTestCmd(cfg)) {
		return merry.Wrap(ErrVideoEncodeFailed, merry.WithMessagef("%s test encode failed", cfg.VideoCodec))
	}
	if !testEncode(ctx, runner, audioTestCmd(cfg)) {
		return ErrAudioEncodeFailed
	}
	return nil
}

// --- internal helpers ---

// videoTestCmd is a minimal encode of a generated black frame.
func videoTestCmd(cfg *config.Config) ffmpeg.Command {
	return ffmpeg.Command{Program: cfg.FFmpegPath, Args: []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", cfg.VideoCodec, "-pix_fmt", "yuv420p",
		"-f", "null", "-",
	}}
}

func audioTestCmd(cfg *config.Config) ffmpeg.Command {
	return ffmpeg.Command{Program: cfg.FFmpegPath, Args: []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", "aac", "-f", "null", "-",
	}}
}

func testEncode(ctx context.Context, runner ffmpeg.Runner, cmd ffmpeg.Command) bool {
	_, err := runner.Run(ctx, cmd)
	return err == nil
}
