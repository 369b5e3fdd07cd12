package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/media"
	"github.com/backmassage/lapsemaster/internal/planner"
)

// BuildStage constructs the ffmpeg command for stage i of plan, reading
// from in and writing to out. Every stage re-encodes to the configured
// codec and frame rate so the per-file artifacts can be concatenated with
// stream copy.
func BuildStage(cfg *config.Config, plan *planner.FilePlan, i int, in, out string) Command {
	st := plan.Stages[i]
	args := preamble(cfg)

	// --- Input ---
	switch st.Kind {
	case planner.StageStill:
		args = append(args,
			"-loop", "1",
			"-framerate", num(cfg.OutputFPS),
			"-t", num(st.Duration),
			"-i", in,
		)
	case planner.StageClip:
		args = append(args,
			"-ss", num(st.Start),
			"-i", in,
			"-t", num(st.End-st.Start),
		)
	default:
		args = append(args, "-i", in)
	}

	// --- Streams ---
	if plan.Source.Kind.OnVideoTrack() {
		args = appendVideo(args, cfg, st)
		if plan.Audio {
			args = appendAudio(args, cfg, st)
		} else {
			args = append(args, "-an")
		}
	} else {
		args = append(args, "-vn")
		args = appendAudio(args, cfg, st)
	}

	if cfg.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(cfg.Threads))
	}

	// --- Output ---
	args = append(args, out)
	return Command{Program: cfg.FFmpegPath, Args: args}
}

// VideoFilters returns the -vf chain for a stage, or "" when none applies.
func VideoFilters(cfg *config.Config, st planner.Stage) string {
	var filters []string
	if st.Normalize {
		// libx265/yuv420p need even dimensions; the scale also applies resize.
		r := num(cfg.Resize)
		filters = append(filters, fmt.Sprintf("scale=trunc(iw*%s/2)*2:trunc(ih*%s/2)*2", r, r))
	}
	switch st.Kind {
	case planner.StageSpeed:
		filters = append(filters, "setpts=PTS/"+num(st.Speed))
	case planner.StageFade:
		if st.FadeIn > 0 {
			filters = append(filters, "fade=t=in:st=0:d="+num(st.FadeIn))
		}
		if st.FadeOut > 0 {
			filters = append(filters, fmt.Sprintf("fade=t=out:st=%s:d=%s", num(st.FadeOutStart()), num(st.FadeOut)))
		}
	}
	return strings.Join(filters, ",")
}

// AudioFilters returns the -af chain for a stage, or "" when none applies.
// Speed changes use one atempo instance per factor of the decomposed chain.
func AudioFilters(st planner.Stage) string {
	var filters []string
	switch st.Kind {
	case planner.StageSpeed:
		filters = lo.Map(st.Tempo, func(f float64, _ int) string { return "atempo=" + num(f) })
	case planner.StageFade:
		if st.FadeIn > 0 {
			filters = append(filters, "afade=t=in:st=0:d="+num(st.FadeIn))
		}
		if st.FadeOut > 0 {
			filters = append(filters, fmt.Sprintf("afade=t=out:st=%s:d=%s", num(st.FadeOutStart()), num(st.FadeOut)))
		}
	}
	return strings.Join(filters, ",")
}

func appendVideo(args []string, cfg *config.Config, st planner.Stage) []string {
	if vf := VideoFilters(cfg, st); vf != "" {
		args = append(args, "-vf", vf)
	}
	return append(args,
		"-c:v", cfg.VideoCodec,
		"-crf", strconv.Itoa(cfg.Compression),
		"-pix_fmt", "yuv420p",
		"-r", num(cfg.OutputFPS),
	)
}

func appendAudio(args []string, cfg *config.Config, st planner.Stage) []string {
	if af := AudioFilters(st); af != "" {
		args = append(args, "-af", af)
	}
	return append(args,
		"-c:a", cfg.AudioCodec,
		"-ar", strconv.Itoa(cfg.AudioSampleRate),
		"-ac", strconv.Itoa(cfg.AudioChannels),
	)
}

// BuildConcat joins the files named in listFile into out. The video track is
// stream-copied; the audio track is re-encoded with the configured codec.
func BuildConcat(cfg *config.Config, listFile, out string, kind media.SourceKind) Command {
	args := preamble(cfg)
	args = append(args, "-f", "concat", "-safe", "0", "-i", listFile)
	if kind == media.KindAudio {
		args = append(args, "-vn", "-c:a", cfg.AudioCodec)
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, out)
	return Command{Program: cfg.FFmpegPath, Args: args}
}

// BuildMerge muxes the combined video and audio into out, stopping at the
// shorter of the two.
func BuildMerge(cfg *config.Config, video, audio, out string) Command {
	args := preamble(cfg)
	args = append(args,
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c", "copy",
		"-shortest",
		out,
	)
	return Command{Program: cfg.FFmpegPath, Args: args}
}

// BuildProbe constructs the single ffprobe JSON call used by the prober.
func BuildProbe(cfg *config.Config, path string) Command {
	return Command{Program: cfg.FFprobePath, Args: []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	}}
}

// ConcatList renders a concat demuxer list file for paths.
func ConcatList(paths []string) []byte {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return []byte(b.String())
}

func preamble(cfg *config.Config) []string {
	args := make([]string, 0, 48)
	args = append(args, "-hide_banner", "-nostdin", "-y")
	if cfg.Verbose {
		return append(args, "-loglevel", "info", "-stats")
	}
	return append(args, "-loglevel", "error")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
