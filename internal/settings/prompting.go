package settings

import (
	"fmt"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/fsx"
	"github.com/backmassage/lapsemaster/internal/media"
)

// Asker is the interactive input the prompts need; prompt.Prompter
// implements it.
type Asker interface {
	Int(label string, def int) (int, error)
	Float(label string, def float64) (float64, error)
	Bool(label string, def bool) (bool, error)
}

// NeedsPrompt reports whether the entry for src must be (re)generated: it
// has no entry, --override-settings is set, or (outside --settings-only) the
// file still needs processing.
func NeedsPrompt(cfg *config.Config, s *Store, src media.SourceFile) bool {
	reqs, ok := s.Get(src.Path)
	if !ok || cfg.OverrideSettings {
		return true
	}
	if cfg.SettingsOnly {
		return false
	}
	return NeedsProcessing(cfg, src, len(reqs))
}

// NeedsProcessing reports whether any of the clips artifacts of src is
// missing from the temp directory. Video and audio are also rebuilt when
// their --override-temp flag is set; a rendered still is only redone when
// missing.
func NeedsProcessing(cfg *config.Config, src media.SourceFile, clips int) bool {
	if src.Kind != media.KindImage && cfg.OverrideTemp(src.Kind) {
		return true
	}
	for i := range max(clips, 1) {
		if !fsx.Exists(media.ArtifactPath(cfg.TempDir, src, i)) {
			return true
		}
	}
	return false
}

// Defaults returns the batch request for kind. Stills have no clip or
// speed.
func Defaults(cfg *config.Config, kind media.SourceKind) media.EditRequest {
	req := cfg.Defaults(kind)
	if kind == media.KindImage {
		req.SpeedFactor, req.ClipIn, req.ClipOut, req.ClipFromEnd = 0, 0, 0, false
	}
	return req
}

// ExistingClips counts the consecutive artifacts of src already in the temp
// directory, starting at index 0.
func ExistingClips(tempDir string, src media.SourceFile) int {
	n := 0
	for fsx.Exists(media.ArtifactPath(tempDir, src, n)) {
		n++
	}
	return n
}

// PromptRequests asks how many clips to cut from src and the parameters of
// each. Every answer defaults to the same field of def. check is run on each
// finished request; a failing request is reported and asked again.
func PromptRequests(ask Asker, log Logger, src media.SourceFile, def media.EditRequest, check func(media.EditRequest) error) ([]media.EditRequest, error) {
	var n int
	for {
		var err error
		n, err = ask.Int(fmt.Sprintf("%s: number of clips", src.Name()), 1)
		if err != nil {
			return nil, err
		}
		if n >= 1 {
			break
		}
		log.Warn("At least one clip is needed")
	}

	reqs := make([]media.EditRequest, 0, n)
	for len(reqs) < n {
		req, err := promptRequest(ask, src, len(reqs), def)
		if err != nil {
			return nil, err
		}
		if err := check(req); err != nil {
			log.Warn("%s clip %d: %v", src.Name(), len(reqs), err)
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func promptRequest(ask Asker, src media.SourceFile, index int, def media.EditRequest) (media.EditRequest, error) {
	var (
		req media.EditRequest
		err error
	)
	label := func(field string) string { return fmt.Sprintf("  clip %d %s", index, field) }

	if src.Kind != media.KindImage {
		if req.SpeedFactor, err = ask.Float(label("speed factor"), def.SpeedFactor); err != nil {
			return req, err
		}
		if req.ClipIn, err = ask.Float(label("clip in (s)"), def.ClipIn); err != nil {
			return req, err
		}
		if req.ClipOut, err = ask.Float(label("clip out (s, 0 = none)"), def.ClipOut); err != nil {
			return req, err
		}
		if req.ClipOut > 0 {
			if req.ClipFromEnd, err = ask.Bool(label("clip out counts from the end?"), def.ClipFromEnd); err != nil {
				return req, err
			}
		}
	}
	if req.FadeIn, err = ask.Float(label("fade in (s)"), def.FadeIn); err != nil {
		return req, err
	}
	if req.FadeOut, err = ask.Float(label("fade out (s)"), def.FadeOut); err != nil {
		return req, err
	}
	return req, nil
}
