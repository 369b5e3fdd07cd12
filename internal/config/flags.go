package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into directories, encoding, per-kind defaults, settings,
// housekeeping, display, and utility. Negated flags (e.g. --no-settings) are
// applied after Parse so Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/backmassage/lapsemaster/internal/media"
)

// ParseFlags parses args (without the program name) into cfg. On --help or
// --version it prints and exits. On error it returns non-nil.
func ParseFlags(cfg *Config, version string, args []string) error {
	fs := flag.NewFlagSet("lapsemaster", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(version) }

	var negated negatedFlags

	defineDirectoryFlags(fs, cfg)
	defineEncodingFlags(fs, cfg)
	defineDefaultFlags(fs, "video", &cfg.VideoDefaults)
	defineDefaultFlags(fs, "audio", &cfg.AudioDefaults)
	defineDefaultFlags(fs, "image", &cfg.ImageDefaults)
	defineSettingsFlags(fs, cfg, &negated)
	defineHousekeepingFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printUsage(version)
			os.Exit(0)
		}
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "lapsemaster v"+version)
		os.Exit(0)
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	normalizeDirs(cfg)
	return nil
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	noSettings  bool
	noOrder     bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineDirectoryFlags registers the source, temp, output and settings directories.
func defineDirectoryFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.VideoDir, "video-dir", cfg.VideoDir, "Video source directory")
	fs.StringVar(&cfg.AudioDir, "audio-dir", cfg.AudioDir, "Audio source directory")
	fs.StringVar(&cfg.ImageDir, "image-dir", cfg.ImageDir, "Image source directory")
	fs.StringVar(&cfg.TempDir, "temp-dir", cfg.TempDir, "Directory for intermediate artifacts")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for the combined output")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "Same as --output-dir")
	fs.StringVar(&cfg.SettingsDir, "settings-dir", cfg.SettingsDir, "Directory for settings.yaml and order.yaml")
}

// defineEncodingFlags registers codec, compression, fps, resize, threads and audio handling.
func defineEncodingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.VideoCodec, "codec", cfg.VideoCodec, "Video encoder")
	fs.IntVar(&cfg.Compression, "compression", cfg.Compression, "Encoder CRF (0-51)")
	fs.Float64Var(&cfg.OutputFPS, "fps", cfg.OutputFPS, "Output framerate")
	fs.Float64Var(&cfg.Resize, "resize", cfg.Resize, "Relative output scale (0-1]")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "ffmpeg thread count (0 = auto)")
	fs.BoolVar(&cfg.KeepVideoAudio, "keep-video-audio", false, "Keep the audio track of video sources")
	fs.StringVar(&cfg.AudioCodec, "audio-codec", cfg.AudioCodec, "Codec for the combined audio")
	fs.Float64Var(&cfg.ImageDuration, "image-duration", cfg.ImageDuration, "Seconds of video per image")
}

// defineDefaultFlags registers the per-kind default EditRequest fields, e.g.
// --video-speed, --audio-fade-in.
func defineDefaultFlags(fs *flag.FlagSet, kind string, r *media.EditRequest) {
	fs.Float64Var(&r.SpeedFactor, kind+"-speed", r.SpeedFactor, "Default "+kind+" speed factor (0 or 1 = unchanged)")
	fs.Float64Var(&r.ClipIn, kind+"-clip-in", r.ClipIn, "Default "+kind+" seconds cut from the start")
	fs.Float64Var(&r.ClipOut, kind+"-clip-out", r.ClipOut, "Default "+kind+" clip end (or seconds from the end)")
	fs.BoolVar(&r.ClipFromEnd, kind+"-clip-from-end", r.ClipFromEnd, "Treat --"+kind+"-clip-out as seconds from the end")
	fs.Float64Var(&r.FadeIn, kind+"-fade-in", r.FadeIn, "Default "+kind+" fade-in seconds")
	fs.Float64Var(&r.FadeOut, kind+"-fade-out", r.FadeOut, "Default "+kind+" fade-out seconds")
}

// defineSettingsFlags registers settings persistence, prompting and ordering.
func defineSettingsFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noSettings, "no-settings", false, "Do not load or save settings.yaml")
	fs.BoolVar(&cfg.SettingsOnly, "settings-only", false, "Collect and save settings, then exit")
	fs.BoolVar(&cfg.Interactive, "interactive", false, "Prompt for per-file settings")
	fs.BoolVar(&cfg.Interactive, "i", false, "Same as --interactive")
	fs.BoolVar(&cfg.OverrideSettings, "override-settings", false, "Re-prompt files that already have settings")
	fs.BoolVar(&cfg.Repath, "repath", false, "Move stored settings onto the current source directories")
	fs.BoolVar(&n.noOrder, "no-order", false, "Ignore the stored order")
	fs.BoolVar(&cfg.CustomOrder, "custom-order", false, "Prompt for the concatenation order")
}

// defineHousekeepingFlags registers delete/keep/override/clear switches.
func defineHousekeepingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DeleteVideo, "delete-video", false, "Delete source videos after a successful run")
	fs.BoolVar(&cfg.DeleteAudio, "delete-audio", false, "Delete source audio after a successful run")
	fs.BoolVar(&cfg.DeleteImage, "delete-image", false, "Delete source images after a successful run")
	fs.BoolVar(&cfg.KeepTempVideo, "keep-temp-video", false, "Keep per-file video artifacts")
	fs.BoolVar(&cfg.KeepTempAudio, "keep-temp-audio", false, "Keep per-file audio artifacts")
	fs.BoolVar(&cfg.OverrideTempVideo, "override-temp-video", false, "Rebuild existing video artifacts")
	fs.BoolVar(&cfg.OverrideTempAudio, "override-temp-audio", false, "Rebuild existing audio artifacts")
	fs.BoolVar(&cfg.OverrideOutput, "override-output", false, "Overwrite existing output files")
	fs.BoolVar(&cfg.ClearTempVideo, "clear-temp-video", false, "Delete video artifacts before running")
	fs.BoolVar(&cfg.ClearTempAudio, "clear-temp-audio", false, "Delete audio artifacts before running")
	fs.BoolVar(&cfg.ClearOutput, "clear-output", false, "Delete output files before running")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Plan and log commands without running them")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", "", "Append JSON logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe binary")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noSettings {
		cfg.UseSettings = false
	}
	if n.noOrder {
		cfg.UseOrder = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

func normalizeDirs(cfg *Config) {
	for _, p := range []*string{&cfg.VideoDir, &cfg.AudioDir, &cfg.ImageDir, &cfg.TempDir, &cfg.OutputDir, &cfg.SettingsDir} {
		*p = NormalizeDirArg(*p)
	}
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "lapsemaster v" + version + " - batch timelapse builder"},
		{"", ""},
		{"  lapsemaster [OPTIONS]", ""},
		{"", ""},
		{"Directories", ""},
		{"  --video-dir <dir>", "Video sources (default: ./video)"},
		{"  --audio-dir <dir>", "Audio sources (default: ./audio)"},
		{"  --image-dir <dir>", "Image sources (default: ./image)"},
		{"  --temp-dir <dir>", "Intermediate artifacts (default: ./temp)"},
		{"  -o, --output-dir <dir>", "Combined output (default: ./output)"},
		{"  --settings-dir <dir>", "settings.yaml / order.yaml (default: ./settings)"},
		{"", ""},
		{"Encoding", ""},
		{"  --codec <name>", "Video encoder (default: libx265)"},
		{"  --compression <0-51>", "Encoder CRF (default: 28)"},
		{"  --fps <n>", "Output framerate (default: 30)"},
		{"  --resize <0-1>", "Relative output scale (default: 1)"},
		{"  --threads <n>", "ffmpeg threads (default: 0 = auto)"},
		{"  --keep-video-audio", "Keep audio of video sources"},
		{"  --audio-codec <name>", "Combined audio codec (default: aac)"},
		{"  --image-duration <s>", "Seconds per image (default: 5)"},
		{"", ""},
		{"Per-kind defaults (video, audio, image)", ""},
		{"  --<kind>-speed <x>", "Speed factor (0 or 1 = unchanged)"},
		{"  --<kind>-clip-in <s>", "Seconds cut from the start"},
		{"  --<kind>-clip-out <s>", "Clip end, or seconds from the end with --<kind>-clip-from-end"},
		{"  --<kind>-fade-in <s>", "Fade-in seconds"},
		{"  --<kind>-fade-out <s>", "Fade-out seconds"},
		{"", ""},
		{"Settings & order", ""},
		{"  -i, --interactive", "Prompt for per-file settings"},
		{"  --settings-only", "Collect and save settings, then exit"},
		{"  --override-settings", "Re-prompt files with stored settings"},
		{"  --no-settings", "Do not load or save settings.yaml"},
		{"  --repath", "Move stored settings onto current source dirs"},
		{"  --custom-order", "Prompt for the concatenation order"},
		{"  --no-order", "Ignore the stored order"},
		{"", ""},
		{"Housekeeping", ""},
		{"  --delete-<video|audio|image>", "Delete sources after a successful run"},
		{"  --keep-temp-<video|audio>", "Keep per-file artifacts"},
		{"  --override-temp-<video|audio>", "Rebuild existing artifacts"},
		{"  --override-output", "Overwrite existing outputs"},
		{"  --clear-temp-<video|audio>", "Delete artifacts before running"},
		{"  --clear-output", "Delete outputs before running"},
		{"  -d, --dry-run", "Log commands without running them"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append JSON logs to file"},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
