package media

import (
	"math"

	"github.com/ansel1/merry/v2"
)

// Audio speed bounds. The tempo chain can reach any factor in this range.
const (
	AudioSpeedMin = 0.5
	AudioSpeedMax = 100.0
)

var (
	ErrNegativeValue = merry.Sentinel("edit values must not be negative")
	ErrNonFinite     = merry.Sentinel("edit values must be finite numbers")
	ErrAudioSpeed    = merry.Sentinel("audio speed factor must be 0 or within 0.5-100")
)

// EditRequest describes one output clip cut from a source file. A source maps
// to an ordered list of requests, one artifact per request.
//
// ClipIn trims seconds from the start. ClipOut is an absolute end timestamp,
// or seconds trimmed from the end when ClipFromEnd is set; 0 means no out-cut.
// SpeedFactor 0 or 1 leaves the speed unchanged.
type EditRequest struct {
	SpeedFactor float64 `yaml:"speed_factor"`
	ClipIn      float64 `yaml:"clip_in"`
	ClipOut     float64 `yaml:"clip_out"`
	ClipFromEnd bool    `yaml:"clip_from_end"`
	FadeIn      float64 `yaml:"fade_in"`
	FadeOut     float64 `yaml:"fade_out"`
}

// HasClip reports whether the request cuts anything.
func (r EditRequest) HasClip() bool { return r.ClipIn > 0 || r.ClipOut > 0 }

// HasSpeed reports whether the request changes playback speed.
func (r EditRequest) HasSpeed() bool { return r.SpeedFactor != 0 && r.SpeedFactor != 1 }

// HasFade reports whether the request fades in or out.
func (r EditRequest) HasFade() bool { return r.FadeIn > 0 || r.FadeOut > 0 }

// IsNoop reports whether the request leaves the source untouched apart from
// codec and framerate normalization.
func (r EditRequest) IsNoop() bool { return !r.HasClip() && !r.HasSpeed() && !r.HasFade() }

// Validate checks the static invariants that do not depend on media length.
func (r EditRequest) Validate(kind SourceKind) error {
	for _, v := range []float64{r.SpeedFactor, r.ClipIn, r.ClipOut, r.FadeIn, r.FadeOut} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return merry.Wrap(ErrNonFinite, merry.WithMessagef("edit value %g is not a finite number", v))
		}
	}
	if r.SpeedFactor < 0 || r.ClipIn < 0 || r.ClipOut < 0 || r.FadeIn < 0 || r.FadeOut < 0 {
		return ErrNegativeValue
	}
	if kind == KindAudio && r.SpeedFactor != 0 &&
		(r.SpeedFactor < AudioSpeedMin || r.SpeedFactor > AudioSpeedMax) {
		return merry.Wrap(ErrAudioSpeed, merry.WithMessagef("audio speed factor %g out of range 0.5-100", r.SpeedFactor))
	}
	return nil
}
