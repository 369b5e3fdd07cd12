package planner

import (
	"github.com/orsinium-labs/enum"

	"github.com/backmassage/lapsemaster/internal/media"
)

// StageKind identifies one discrete external-tool transform.
type StageKind enum.Member[string]

var (
	StagePassthrough = StageKind{Value: "passthrough"} // Codec/framerate normalization only.
	StageStill       = StageKind{Value: "still"}       // Render an image into a video clip.
	StageClip        = StageKind{Value: "clip"}
	StageSpeed       = StageKind{Value: "speed"}
	StageFade        = StageKind{Value: "fade"}
	StageKinds       = enum.New(StagePassthrough, StageStill, StageClip, StageSpeed, StageFade)
)

func (k StageKind) String() string { return k.Value }

// Stage holds the parameters of one transform. Offsets are relative to the
// output of the previous stage, which is why stages always run in the order
// the planner emits them.
type Stage struct {
	Kind StageKind

	// Clip window in input seconds.
	Start float64
	End   float64

	// Speed multiplier and the bounded atempo chain for the audio stream.
	Speed float64
	Tempo []float64

	// Fade durations in seconds.
	FadeIn  float64
	FadeOut float64

	// Duration of this stage's output in seconds.
	Duration float64

	// Normalize applies the relative resize. Set on the first stage only
	// since resize is relative to its input.
	Normalize bool
}

// FadeOutStart returns the fade-out offset within this stage's output.
func (s Stage) FadeOutStart() float64 {
	start := s.Duration - s.FadeOut
	if start < 0 {
		return 0
	}
	return start
}

// FilePlan holds the complete set of decisions for one (source, clip index)
// pair. It is produced by BuildPlan and consumed by the ffmpeg builder and
// the pipeline executor.
type FilePlan struct {
	Source media.SourceFile
	Index  int

	// Request is the effective request after any batch repair.
	Request media.EditRequest

	Stages []Stage

	// Audio reports whether the artifact carries an audio stream.
	Audio bool

	// Notes are repair warnings for the caller to log.
	Notes []string

	// InputDuration is the probed source length (image duration for stills).
	InputDuration float64

	// OutputPath is the final artifact; filled in by the pipeline.
	OutputPath string
}

// Duration returns the expected length of the final artifact.
func (p *FilePlan) Duration() float64 {
	if len(p.Stages) == 0 {
		return 0
	}
	return p.Stages[len(p.Stages)-1].Duration
}

// StageNames returns the stage kinds in execution order, e.g. "clip+fade".
func (p *FilePlan) StageNames() []string {
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = s.Kind.Value
	}
	return names
}

// Options carries the configuration the planner needs.
type Options struct {
	KeepVideoAudio bool
	// SourceHasAudio is set when the source carries an audio stream. A
	// video without one never yields an audio track.
	SourceHasAudio bool
	ImageDuration  float64
	// Interactive surfaces clip/fade violations as errors instead of repairing.
	Interactive bool
}

// Window is a clip window in source seconds.
type Window struct {
	Start float64
	End   float64
}

// Length returns the window length in seconds.
func (w Window) Length() float64 { return w.End - w.Start }
