package planner

import (
	"github.com/backmassage/lapsemaster/internal/media"
)

// BuildPlan produces the ordered stage list for one clip of a source file.
// This is the central decision matrix that the pipeline calls for every
// (source, request) pair.
//
// Flow:
//  1. Images: render the still, then fade if requested
//  2. All-no-op requests: a single passthrough stage
//  3. Otherwise clip -> speed -> fade, skipping no-op stages
//
// duration is the probed source length; it is ignored for images. In
// interactive mode an out-of-range clip or fade is returned as an error
// instead of being repaired.
func BuildPlan(src media.SourceFile, index int, req media.EditRequest, duration float64, opts Options) (*FilePlan, error) {
	if opts.Interactive {
		if err := ValidateInteractive(src.Kind, req, duration, opts.ImageDuration); err != nil {
			return nil, err
		}
	} else if err := req.Validate(src.Kind); err != nil {
		return nil, err
	}

	plan := &FilePlan{
		Source:        src,
		Index:         index,
		Request:       req,
		InputDuration: duration,
		Audio:         src.Kind == media.KindAudio || (src.Kind == media.KindVideo && opts.KeepVideoAudio && opts.SourceHasAudio),
	}

	// --- 1. Stills ---
	if src.Kind == media.KindImage {
		planStill(plan, opts)
		return plan, nil
	}

	// --- 2. Passthrough ---
	if req.IsNoop() {
		plan.Stages = []Stage{{Kind: StagePassthrough, Duration: duration, Normalize: true}}
		return plan, nil
	}

	// --- 3. Clip, speed, fade ---
	length := duration
	if req.HasClip() {
		w, clip, note := RecoverClip(duration, req)
		plan.note(note)
		if clip {
			plan.Stages = append(plan.Stages, Stage{
				Kind: StageClip, Start: w.Start, End: w.End, Duration: w.Length(),
			})
			plan.Request.ClipIn = w.Start
			plan.Request.ClipOut = w.End
			plan.Request.ClipFromEnd = false
		} else {
			plan.Request.ClipIn, plan.Request.ClipOut, plan.Request.ClipFromEnd = 0, 0, false
		}
		length = w.Length()
	}

	if req.HasSpeed() {
		length /= req.SpeedFactor
		s := Stage{Kind: StageSpeed, Speed: req.SpeedFactor, Duration: length}
		if plan.Audio {
			s.Tempo = DecomposeTempo(req.SpeedFactor)
		}
		plan.Stages = append(plan.Stages, s)
	}

	if req.HasFade() {
		plan.appendFade(length, req.FadeIn, req.FadeOut)
	}

	if len(plan.Stages) == 0 {
		plan.Stages = []Stage{{Kind: StagePassthrough, Duration: length}}
	}
	plan.Stages[0].Normalize = true
	return plan, nil
}

// planStill renders an image for the configured duration. Clip and speed do
// not apply to stills.
func planStill(plan *FilePlan, opts Options) {
	if plan.Request.HasClip() || plan.Request.HasSpeed() {
		plan.note("clip and speed do not apply to images; ignored")
		plan.Request.ClipIn, plan.Request.ClipOut, plan.Request.ClipFromEnd = 0, 0, false
		plan.Request.SpeedFactor = 0
	}
	plan.InputDuration = opts.ImageDuration
	plan.Stages = []Stage{{Kind: StageStill, Duration: opts.ImageDuration, Normalize: true}}
	if plan.Request.HasFade() {
		plan.appendFade(opts.ImageDuration, plan.Request.FadeIn, plan.Request.FadeOut)
	}
}

func (p *FilePlan) appendFade(length, fadeIn, fadeOut float64) {
	in, out, note := RecoverFades(length, fadeIn, fadeOut)
	p.note(note)
	p.Request.FadeIn, p.Request.FadeOut = in, out
	p.Stages = append(p.Stages, Stage{Kind: StageFade, FadeIn: in, FadeOut: out, Duration: length})
}

func (p *FilePlan) note(n string) {
	if n != "" {
		p.Notes = append(p.Notes, n)
	}
}
