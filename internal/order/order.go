// Package order resolves the concatenation order of the per-clip artifacts,
// separately for the video track and the audio track.
//
// The default is natural order over artifact stems. A persisted order is
// reused only while it names exactly the current artifact set; otherwise the
// order is derived again, either naturally or by interactive placement.
package order

import (
	"fmt"
	"maps"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/orsinium-labs/enum"
	"github.com/samber/lo"

	"github.com/backmassage/lapsemaster/internal/media"
)

// Track is one of the two concatenated outputs.
type Track enum.Member[string]

var (
	TrackVideo = Track{Value: "video"}
	TrackAudio = Track{Value: "audio"}
	Tracks     = enum.New(TrackVideo, TrackAudio)
)

func (t Track) String() string { return t.Value }

// TrackOf returns the track the artifacts of kind land on.
func TrackOf(kind media.SourceKind) Track {
	if kind.OnVideoTrack() {
		return TrackVideo
	}
	return TrackAudio
}

// Set maps every artifact path of a run to the source it is cut from, per
// track.
type Set map[Track]map[string]media.SourceFile

// Artifacts derives the artifact set from the sources and the number of
// clips each one yields.
func Artifacts(tempDir string, sources []media.SourceFile, clips func(media.SourceFile) int) Set {
	set := Set{TrackVideo: {}, TrackAudio: {}}
	for _, src := range sources {
		track := TrackOf(src.Kind)
		for i := range clips(src) {
			set[track][media.ArtifactPath(tempDir, src, i)] = src
		}
	}
	return set
}

// Order is a resolved concatenation order.
type Order struct {
	Video []string
	Audio []string
}

// Get returns the order of one track.
func (o Order) Get(t Track) []string {
	if t == TrackAudio {
		return o.Audio
	}
	return o.Video
}

func (o *Order) set(t Track, paths []string) {
	if t == TrackAudio {
		o.Audio = paths
	} else {
		o.Video = paths
	}
}

// Asker reads a placement answer; prompt.Prompter implements it.
type Asker interface {
	Int(label string, def int) (int, error)
}

// Logger is the logging surface Resolve needs.
type Logger interface {
	Info(string, ...interface{})
	Warn(string, ...interface{})
}

// Options controls Resolve.
type Options struct {
	// Trust reuses a persisted order that matches the artifact set.
	Trust bool
	// Interactive places artifacts by hand when the order is derived.
	Interactive bool
	Ask         Asker
	Log         Logger
}

// Resolve computes the order of each track. persisted may be nil.
func Resolve(set Set, persisted *Document, opts Options) (Order, error) {
	var out Order
	for _, track := range Tracks.Members() {
		paths := slices.Collect(maps.Keys(set[track]))
		Sort(paths)

		if opts.Trust && persisted != nil {
			stored := persisted.Positions(track)
			if Matches(stored, paths) {
				out.set(track, stored)
				continue
			}
			if len(stored) > 0 && opts.Log != nil {
				opts.Log.Warn("Stored %s order does not match the current clips; deriving a new one", track)
			}
		}

		if opts.Interactive && len(paths) > 1 {
			placed, err := Place(opts.Ask, opts.Log, track, paths)
			if err != nil {
				return Order{}, err
			}
			paths = placed
		}
		out.set(track, paths)
	}
	return out, nil
}

// Matches reports whether stored names exactly the artifacts in current:
// same set, no duplicates, nothing missing or extra.
func Matches(stored, current []string) bool {
	if len(stored) != len(current) {
		return false
	}
	s := mapset.NewSet(stored...)
	return s.Cardinality() == len(stored) && s.Equal(mapset.NewSet(current...))
}

// Place asks for the position of each artifact in natural order. The user
// picks a 1-based position among those still free, or 0 for the next free
// one; the last artifact takes the remaining slot.
func Place(ask Asker, log Logger, track Track, natural []string) ([]string, error) {
	n := len(natural)
	placed := make([]string, n)
	free := lo.RangeFrom(1, n)

	if log != nil {
		log.Info("Placing %d %s clips (0 = next free position)", n, track)
	}
	for _, path := range natural {
		if len(free) == 1 {
			placed[free[0]-1] = path
			break
		}
		for {
			pos, err := ask.Int(fmt.Sprintf("%s position for %s %v", track, media.Stem(path), free), 0)
			if err != nil {
				return nil, err
			}
			if pos == 0 {
				pos = free[0]
			}
			if idx := slices.Index(free, pos); idx >= 0 {
				free = slices.Delete(free, idx, idx+1)
				placed[pos-1] = path
				break
			}
			if log != nil {
				log.Warn("Position %d is not free", pos)
			}
		}
	}
	return placed, nil
}
