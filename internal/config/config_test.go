package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/lapsemaster/internal/media"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/library", "/media/library"},
		{"single trailing slash", "/media/library/", "/media/library"},
		{"multiple trailing slashes", "/media/library///", "/media/library"},
		{"root path", "/", "/"},
		{"relative path", "output", "output"},
		{"relative with slash", "output/", "output"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.UseSettings)
	assert.True(t, cfg.UseOrder)
	assert.True(t, cfg.VideoDefaults.IsNoop(), "video defaults must not edit anything")
	assert.True(t, cfg.AudioDefaults.IsNoop())
	assert.True(t, cfg.ImageDefaults.IsNoop())
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"compression lower bound", func(c *Config) { c.Compression = 0 }, false},
		{"compression upper bound", func(c *Config) { c.Compression = 51 }, false},
		{"compression too high", func(c *Config) { c.Compression = 52 }, true},
		{"compression negative", func(c *Config) { c.Compression = -1 }, true},
		{"resize full", func(c *Config) { c.Resize = 1 }, false},
		{"resize half", func(c *Config) { c.Resize = 0.5 }, false},
		{"resize zero", func(c *Config) { c.Resize = 0 }, true},
		{"resize upscale", func(c *Config) { c.Resize = 1.5 }, true},
		{"fps zero", func(c *Config) { c.OutputFPS = 0 }, true},
		{"image duration zero", func(c *Config) { c.ImageDuration = 0 }, true},
		{"threads negative", func(c *Config) { c.Threads = -2 }, true},
		{"threads within cpus", func(c *Config) { c.Threads = 4 }, false},
		{"threads beyond cpus", func(c *Config) { c.Threads = 64 }, true},
		{"audio speed too low", func(c *Config) { c.AudioDefaults.SpeedFactor = 0.25 }, true},
		{"audio speed disabled", func(c *Config) { c.AudioDefaults.SpeedFactor = 0 }, false},
		{"audio speed max", func(c *Config) { c.AudioDefaults.SpeedFactor = 100 }, false},
		{"video speed fast", func(c *Config) { c.VideoDefaults.SpeedFactor = 600 }, false},
		{"negative fade", func(c *Config) { c.ImageDefaults.FadeIn = -1 }, true},
		{"negative clip", func(c *Config) { c.VideoDefaults.ClipOut = -3 }, true},
		{"infinite video speed", func(c *Config) { c.VideoDefaults.SpeedFactor = math.Inf(1) }, true},
		{"NaN image fade", func(c *Config) { c.ImageDefaults.FadeOut = math.NaN() }, true},
		{"NaN fps", func(c *Config) { c.OutputFPS = math.NaN() }, true},
		{"infinite image duration", func(c *Config) { c.ImageDuration = math.Inf(1) }, true},
		{"bad color mode", func(c *Config) { c.ColorMode = "sometimes" }, true},
		{"empty temp dir", func(c *Config) { c.TempDir = "" }, true},
	}
	restore := logicalCPUs
	logicalCPUs = func() (int, error) { return 8, nil }
	t.Cleanup(func() { logicalCPUs = restore })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compression = 99
	cfg.Resize = 0
	cfg.OutputFPS = -1
	cfg.AudioDefaults.SpeedFactor = 0.1

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "compression")
	assert.Contains(t, msg, "resize")
	assert.Contains(t, msg, "fps")
	assert.Contains(t, msg, "audio defaults")
}

func TestParseFlags_InfiniteSpeedFailsValidation(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, "test", []string{"--video-speed", "inf"}))
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, media.ErrNonFinite)
}

func TestValidate_CheckOnlySkipsDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = true
	cfg.VideoDir = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidatePaths(t *testing.T) {
	sources := []string{"/work/video", "/work/audio"}
	tests := []struct {
		name      string
		generated []string
		wantErr   bool
	}{
		{"siblings", []string{"/work/temp", "/work/output"}, false},
		{"same as source", []string{"/work/video"}, true},
		{"inside source", []string{"/work/audio/temp"}, true},
		{"prefix but not inside", []string{"/work/videos"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePaths(sources, tt.generated...)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestDefaultsPerKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VideoDefaults.FadeOut = 1
	cfg.AudioDefaults.FadeOut = 2
	cfg.ImageDefaults.FadeOut = 3

	assert.Equal(t, 1.0, cfg.Defaults(media.KindVideo).FadeOut)
	assert.Equal(t, 2.0, cfg.Defaults(media.KindAudio).FadeOut)
	assert.Equal(t, 3.0, cfg.Defaults(media.KindImage).FadeOut)
}

func TestParseFlags(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, "test", []string{
		"--video-dir", "clips/",
		"--video-speed", "30",
		"--audio-fade-in", "2",
		"--audio-fade-out", "3",
		"--no-settings",
		"--no-color",
		"--threads", "2",
		"-i",
	})
	require.NoError(t, err)

	assert.Equal(t, "clips", cfg.VideoDir)
	assert.Equal(t, 30.0, cfg.VideoDefaults.SpeedFactor)
	assert.Equal(t, 2.0, cfg.AudioDefaults.FadeIn)
	assert.Equal(t, 3.0, cfg.AudioDefaults.FadeOut)
	assert.False(t, cfg.UseSettings)
	assert.True(t, cfg.UseOrder)
	assert.Equal(t, ColorNever, cfg.ColorMode)
	assert.Equal(t, 2, cfg.Threads)
	assert.True(t, cfg.Interactive)
}

func TestParseFlags_RejectsPositionalArgs(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, "test", []string{"somewhere"})
	assert.Error(t, err)
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, "test", []string{"--bogus"})
	assert.Error(t, err)
}
