package probe

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ansel1/merry/v2"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/ffmpeg"
)

// Prober runs ffprobe through a Runner.
type Prober struct {
	cfg    *config.Config
	runner ffmpeg.Runner
}

// New returns a Prober using the ffprobe binary configured in cfg.
func New(cfg *config.Config, runner ffmpeg.Runner) *Prober {
	return &Prober{cfg: cfg, runner: runner}
}

// Probe runs a single ffprobe JSON call against path.
func (p *Prober) Probe(ctx context.Context, path string) (*Info, error) {
	res, err := p.runner.Run(ctx, ffmpeg.BuildProbe(p.cfg, path))
	if err != nil {
		return nil, merry.Wrap(err, merry.WithMessagef("ffprobe %q: %v", path, err))
	}
	return ParseJSON([]byte(res.Stdout))
}

// ParseJSON converts raw ffprobe JSON output into an Info.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Info, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, merry.Wrap(err, merry.WithMessagef("parse ffprobe JSON: %v", err))
	}
	return buildInfo(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Duration    string         `json:"duration"`
	Disposition map[string]int `json:"disposition"`
}

// --- Conversion from wire types to Info ---

func buildInfo(raw *ffprobeOutput) *Info {
	info := &Info{
		FormatName: raw.Format.FormatName,
		Duration:   parseFloat(raw.Format.Duration),
	}

	var longest float64
	for i := range raw.Streams {
		s := &raw.Streams[i]
		longest = max(longest, parseFloat(s.Duration))
		switch s.CodecType {
		case "video":
			// Cover art in audio files is reported as a video stream.
			if s.Disposition["attached_pic"] == 1 || info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Width, info.Height = s.Width, s.Height
		case "audio":
			info.HasAudio = true
		}
	}
	if info.Duration <= 0 {
		info.Duration = longest
	}
	return info
}

// ffprobe returns numbers as strings, and "N/A" when unknown.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
