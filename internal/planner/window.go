package planner

import (
	"fmt"

	"github.com/ansel1/merry/v2"

	"github.com/backmassage/lapsemaster/internal/media"
)

// minWindow is the shortest clip the recovery policy falls back to.
const minWindow = 1.0

// Errors returned in interactive mode so the caller can re-prompt.
var (
	ErrClipWindow = merry.Sentinel("clip window does not fit the media")
	ErrFadeWindow = merry.Sentinel("fades are longer than the clip")
)

// RequestedWindow resolves the raw clip window of req against duration d,
// without any validation.
func RequestedWindow(d float64, req media.EditRequest) Window {
	w := Window{Start: req.ClipIn, End: d}
	if req.ClipOut > 0 {
		if req.ClipFromEnd {
			w.End = d - req.ClipOut
		} else {
			w.End = req.ClipOut
		}
	}
	return w
}

func (w Window) fits(d float64) bool {
	return w.Start >= 0 && w.End <= d && w.End > w.Start
}

// RecoverClip returns the clip window to use for req on media of duration d.
// clip is false when no clip stage should run. note is non-empty when the
// requested window was repaired.
//
// Recovery keeps the clip-in value over the clip-out value: first the out-cut
// is dropped, then a one-second window ending at d is used, and finally the
// clip is abandoned.
func RecoverClip(d float64, req media.EditRequest) (w Window, clip bool, note string) {
	full := Window{Start: 0, End: d}
	if !req.HasClip() {
		return full, false, ""
	}
	if d <= 0 {
		return full, false, "unknown duration; clip ignored"
	}

	w = RequestedWindow(d, req)
	if w.fits(d) {
		return w, !(w.Start == 0 && w.End == d), ""
	}

	if req.ClipIn < d && d-req.ClipIn >= minWindow {
		w = Window{Start: req.ClipIn, End: d}
		return w, w.Start > 0, fmt.Sprintf("clip %s exceeds %.2fs; kept clip-in, dropped clip-out -> %s",
			formatWindow(RequestedWindow(d, req)), d, formatWindow(w))
	}

	if d > minWindow {
		w = Window{Start: d - minWindow, End: d}
		return w, true, fmt.Sprintf("clip %s exceeds %.2fs; using 1s minimum window %s",
			formatWindow(RequestedWindow(d, req)), d, formatWindow(w))
	}

	return full, false, fmt.Sprintf("clip %s cannot fit %.2fs; clip ignored",
		formatWindow(RequestedWindow(d, req)), d)
}

// RecoverFades clamps fades that do not fit in d: both become d/2.
func RecoverFades(d, fadeIn, fadeOut float64) (in, out float64, note string) {
	if fadeIn+fadeOut <= d {
		return fadeIn, fadeOut, ""
	}
	half := d / 2
	return half, half, fmt.Sprintf("fades %.2fs+%.2fs exceed %.2fs; using %.2fs each", fadeIn, fadeOut, d, half)
}

// ValidateInteractive performs the planner's checks without repairing
// anything. duration is the probed source length; for images it is ignored
// in favor of imageDuration.
func ValidateInteractive(kind media.SourceKind, req media.EditRequest, duration, imageDuration float64) error {
	if err := req.Validate(kind); err != nil {
		return err
	}

	length := imageDuration
	if kind != media.KindImage {
		w := Window{Start: 0, End: duration}
		if req.HasClip() {
			w = RequestedWindow(duration, req)
			if !w.fits(duration) {
				return merry.Wrap(ErrClipWindow, merry.WithMessagef(
					"clip %s does not fit %.2fs of media", formatWindow(w), duration))
			}
		}
		length = w.Length()
		if req.HasSpeed() {
			length /= req.SpeedFactor
		}
	}

	if req.FadeIn+req.FadeOut > length {
		return merry.Wrap(ErrFadeWindow, merry.WithMessagef(
			"fades %.2fs+%.2fs exceed the %.2fs clip", req.FadeIn, req.FadeOut, length))
	}
	return nil
}

func formatWindow(w Window) string {
	return fmt.Sprintf("[%.2fs, %.2fs]", w.Start, w.End)
}
