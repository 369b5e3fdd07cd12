// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation. A Config is built once at startup and then handed read-only to
// every component; nothing reads configuration from package state.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/backmassage/lapsemaster/internal/media"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Validation bounds.
const (
	CompressionMin = 0
	CompressionMax = 51
	ResizeMax      = 1.0
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags]; after [Config.Validate] succeeds it is treated
// as immutable.
type Config struct {
	// Directories. Sources are read, the rest are created when missing.
	VideoDir    string
	AudioDir    string
	ImageDir    string
	TempDir     string
	OutputDir   string
	SettingsDir string

	// Encoding.
	VideoCodec      string  // Default: "libx265".
	Compression     int     // CRF passed to the video encoder. Default: 28.
	OutputFPS       float64 // Default: 30.
	Resize          float64 // Relative scale applied once per file, (0,1]. Default: 1.
	Threads         int     // Passed through as -threads; 0 lets ffmpeg decide.
	KeepVideoAudio  bool    // Keep the audio track of video sources.
	AudioCodec      string  // Codec for the combined audio track. Default: "aac".
	AudioSampleRate int     // Fixed: 48000 Hz.
	AudioChannels   int     // Fixed: 2.
	ImageDuration   float64 // Seconds of video produced from one still. Default: 5.

	// Per-kind defaults used when a file has no stored settings.
	VideoDefaults media.EditRequest
	AudioDefaults media.EditRequest
	ImageDefaults media.EditRequest

	// Settings and ordering.
	UseSettings      bool // Default: true. Load and persist settings.yaml.
	SettingsOnly     bool // Prompt for and store settings, then stop.
	Interactive      bool // Prompt per file instead of using defaults.
	OverrideSettings bool // Re-prompt files that already have stored settings.
	Repath           bool // Rewrite stored paths onto the current source directories.
	UseOrder         bool // Default: true. Trust a valid persisted order.
	CustomOrder      bool // Prompt for the concatenation order.

	// Housekeeping.
	DeleteVideo       bool
	DeleteAudio       bool
	DeleteImage       bool
	KeepTempVideo     bool
	KeepTempAudio     bool
	OverrideTempVideo bool
	OverrideTempAudio bool
	OverrideOutput    bool
	ClearTempVideo    bool
	ClearTempAudio    bool
	ClearOutput       bool

	// Display and logging.
	DryRun    bool
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.

	// ffprobe/ffmpeg binaries.
	FFmpegPath  string
	FFprobePath string
}

// DefaultConfig returns a Config with every default applied. Used as the base
// before [ParseFlags] applies CLI overrides.
func DefaultConfig() Config {
	return Config{
		VideoDir:        "video",
		AudioDir:        "audio",
		ImageDir:        "image",
		TempDir:         "temp",
		OutputDir:       "output",
		SettingsDir:     "settings",
		VideoCodec:      "libx265",
		Compression:     28,
		OutputFPS:       30,
		Resize:          1,
		AudioCodec:      "aac",
		AudioSampleRate: 48000,
		AudioChannels:   2,
		ImageDuration:   5,
		VideoDefaults:   media.EditRequest{SpeedFactor: 1},
		AudioDefaults:   media.EditRequest{SpeedFactor: 1},
		ImageDefaults:   media.EditRequest{},
		UseSettings:     true,
		UseOrder:        true,
		ColorMode:       ColorAuto,
		FFmpegPath:      "ffmpeg",
		FFprobePath:     "ffprobe",
	}
}

// Defaults returns the configured default EditRequest for a source kind.
func (c *Config) Defaults(kind media.SourceKind) media.EditRequest {
	switch kind {
	case media.KindAudio:
		return c.AudioDefaults
	case media.KindImage:
		return c.ImageDefaults
	default:
		return c.VideoDefaults
	}
}

// SourceDir returns the configured source directory for a kind.
func (c *Config) SourceDir(kind media.SourceKind) string {
	switch kind {
	case media.KindAudio:
		return c.AudioDir
	case media.KindImage:
		return c.ImageDir
	default:
		return c.VideoDir
	}
}

// OverrideTemp reports whether existing temp artifacts of kind are rebuilt.
// Images follow the video flag since they land on the video track.
func (c *Config) OverrideTemp(kind media.SourceKind) bool {
	if kind == media.KindAudio {
		return c.OverrideTempAudio
	}
	return c.OverrideTempVideo
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// logicalCPUs is swapped in tests.
var logicalCPUs = func() (int, error) { return cpu.Counts(true) }

// Validate checks every range-constrained field and returns all violations
// joined together, so the user can fix them in one pass.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		add("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Compression < CompressionMin || c.Compression > CompressionMax {
		add("compression must be within %d-%d (got %d)", CompressionMin, CompressionMax, c.Compression)
	}
	if !finite(c.Resize) || c.Resize <= 0 || c.Resize > ResizeMax {
		add("resize must be greater than 0 and at most %g (got %g)", ResizeMax, c.Resize)
	}
	if !finite(c.OutputFPS) || c.OutputFPS <= 0 {
		add("fps must be positive (got %g)", c.OutputFPS)
	}
	if !finite(c.ImageDuration) || c.ImageDuration <= 0 {
		add("image duration must be positive (got %g)", c.ImageDuration)
	}
	if c.Threads < 0 {
		add("threads must not be negative (got %d)", c.Threads)
	} else if c.Threads > 0 {
		if n, err := logicalCPUs(); err == nil && n > 0 && c.Threads > n {
			add("threads must not exceed %d logical CPUs (got %d)", n, c.Threads)
		}
	}

	for _, kind := range media.Kinds.Members() {
		if err := c.Defaults(kind).Validate(kind); err != nil {
			add("%s defaults: %w", kind.Value, err)
		}
	}

	if c.CheckOnly {
		return errors.Join(errs...)
	}
	for name, dir := range map[string]string{
		"video": c.VideoDir, "audio": c.AudioDir, "image": c.ImageDir,
		"temp": c.TempDir, "output": c.OutputDir, "settings": c.SettingsDir,
	} {
		if dir == "" {
			add("%s directory must not be empty", name)
		}
	}
	return errors.Join(errs...)
}

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

// ValidatePaths ensures that the resolved temp and output directories are not
// a source directory or inside one, which would make discovery pick up
// artifacts as sources. All arguments must be absolute, symlink-resolved paths.
func ValidatePaths(sources []string, generated ...string) error {
	sep := string(filepath.Separator)
	for _, g := range generated {
		for _, s := range sources {
			if g == s || strings.HasPrefix(g+sep, s+sep) {
				return fmt.Errorf("%s must not be inside source directory %s", g, s)
			}
		}
	}
	return nil
}
