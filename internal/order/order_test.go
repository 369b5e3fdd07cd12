package order

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/lapsemaster/internal/media"
)

type fakeLogger struct{ infos, warns []string }

func (l *fakeLogger) Info(format string, args ...interface{}) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *fakeLogger) Warn(format string, args ...interface{}) {
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

type scriptedAsker struct{ answers []int }

func (a *scriptedAsker) Int(_ string, def int) (int, error) {
	if len(a.answers) == 0 {
		return def, nil
	}
	n := a.answers[0]
	a.answers = a.answers[1:]
	return n, nil
}

// --- Natural sort ---

func TestCompare(t *testing.T) {
	less := [][2]string{
		{"a2", "a10"},
		{"2a", "a2"},
		{"a", "a1"},
		{"clip2", "clip10"},
		{"clip10", "clip10a"},
		{"day9_0", "day10_0"},
		{"a01", "a1"},
		{"x99999999999999999999", "x100000000000000000000"},
	}
	for _, p := range less {
		assert.Negative(t, Compare(p[0], p[1]), "%s < %s", p[0], p[1])
		assert.Positive(t, Compare(p[1], p[0]), "%s > %s", p[1], p[0])
	}
	assert.Zero(t, Compare("same", "same"))
	assert.Zero(t, Compare("", ""))
}

func TestSort_DeterministicAndIdempotent(t *testing.T) {
	want := []string{
		"/t/1_0.mp4", "/t/2a_0.mp4", "/t/a2_0.mp4", "/t/a2_1.mp4", "/t/a10_0.mp4",
		"/t/b_0.mp4", "/t/b_1.mp4", "/t/b_10.mp4", "/t/clip10a_0.mp4",
	}
	r := rand.New(rand.NewSource(7))
	for range 20 {
		got := slices.Clone(want)
		r.Shuffle(len(got), func(i, j int) { got[i], got[j] = got[j], got[i] })
		Sort(got)
		assert.Equal(t, want, got)
	}

	sorted := slices.Clone(want)
	Sort(sorted)
	assert.Equal(t, want, sorted)
}

func TestSort_SourceNameBeforeClipIndex(t *testing.T) {
	srcs := []media.SourceFile{
		{Path: "/v/video/clip2.mp4", Kind: media.KindVideo},
		{Path: "/v/video/a1.mp4", Kind: media.KindVideo},
		{Path: "/v/video/clip.mp4", Kind: media.KindVideo},
		{Path: "/v/video/a.mp4", Kind: media.KindVideo},
	}
	clips := func(s media.SourceFile) int {
		if s.Path == "/v/video/a.mp4" {
			return 2
		}
		return 1
	}
	o, err := Resolve(Artifacts("/t", srcs, clips), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/t/a_0.mp4", "/t/a_1.mp4", "/t/a1_0.mp4", "/t/clip_0.mp4", "/t/clip2_0.mp4",
	}, o.Video)
}

func TestSplitArtifact(t *testing.T) {
	tests := []struct {
		path  string
		stem  string
		index int
	}{
		{"/t/a_0.mp4", "a", 0},
		{"/t/day_one_12.m4a", "day_one", 12},
		{"/t/plain.mp4", "plain", -1},
		{"/t/odd_x.mp4", "odd_x", -1},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			stem, index := splitArtifact(tt.path)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.index, index)
		})
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	names := []string{"", "a", "a1", "a01", "a2", "a10", "2a", "10", "b", "a1b", "a1b2", "A"}
	for _, x := range names {
		for _, y := range names {
			assert.Equal(t, -Compare(y, x), Compare(x, y), "antisymmetry %q %q", x, y)
			for _, z := range names {
				if Compare(x, y) < 0 && Compare(y, z) < 0 {
					assert.Negative(t, Compare(x, z), "transitivity %q %q %q", x, y, z)
				}
			}
		}
	}
}

// --- Artifact set and resolution ---

func sources() []media.SourceFile {
	return []media.SourceFile{
		{Path: "/v/video/b.mp4", Kind: media.KindVideo},
		{Path: "/v/video/a2.mp4", Kind: media.KindVideo},
		{Path: "/v/image/cover.png", Kind: media.KindImage},
		{Path: "/v/audio/song.wav", Kind: media.KindAudio},
	}
}

func oneClip(media.SourceFile) int { return 1 }

func TestArtifacts(t *testing.T) {
	clips := func(s media.SourceFile) int {
		if s.Kind == media.KindAudio {
			return 2
		}
		return 1
	}
	set := Artifacts("/t", sources(), clips)
	assert.Len(t, set[TrackVideo], 3)
	assert.Len(t, set[TrackAudio], 2)
	assert.Equal(t, "/v/video/a2.mp4", set[TrackVideo]["/t/a2_0.mp4"].Path)
	assert.Contains(t, set[TrackVideo], "/t/cover_0.mp4")
	assert.Contains(t, set[TrackAudio], "/t/song_1.m4a")
}

func TestResolve_Natural(t *testing.T) {
	set := Artifacts("/t", sources(), oneClip)
	o, err := Resolve(set, nil, Options{Trust: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"/t/a2_0.mp4", "/t/b_0.mp4", "/t/cover_0.mp4"}, o.Video)
	assert.Equal(t, []string{"/t/song_0.m4a"}, o.Audio)
}

func TestResolve_TrustsMatchingPersisted(t *testing.T) {
	set := Artifacts("/t", sources(), oneClip)
	doc := &Document{
		Video: map[int]string{1: "/t/cover_0.mp4", 2: "/t/b_0.mp4", 3: "/t/a2_0.mp4"},
		Audio: map[int]string{1: "/t/song_0.m4a"},
	}
	o, err := Resolve(set, doc, Options{Trust: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"/t/cover_0.mp4", "/t/b_0.mp4", "/t/a2_0.mp4"}, o.Video)

	o, err = Resolve(set, doc, Options{Trust: false})
	require.NoError(t, err)
	assert.Equal(t, []string{"/t/a2_0.mp4", "/t/b_0.mp4", "/t/cover_0.mp4"}, o.Video)
}

func TestResolve_RejectsMismatchedPersisted(t *testing.T) {
	set := Artifacts("/t", sources(), oneClip)
	cases := map[string]map[int]string{
		"missing": {1: "/t/b_0.mp4", 2: "/t/a2_0.mp4"},
		"extra":   {1: "/t/b_0.mp4", 2: "/t/a2_0.mp4", 3: "/t/cover_0.mp4", 4: "/t/old_0.mp4"},
		"swapped": {1: "/t/b_0.mp4", 2: "/t/a2_0.mp4", 3: "/t/other_0.mp4"},
		"dupes":   {1: "/t/b_0.mp4", 2: "/t/b_0.mp4", 3: "/t/a2_0.mp4"},
	}
	for name, video := range cases {
		t.Run(name, func(t *testing.T) {
			log := &fakeLogger{}
			doc := &Document{Video: video, Audio: map[int]string{1: "/t/song_0.m4a"}}
			o, err := Resolve(set, doc, Options{Trust: true, Log: log})
			require.NoError(t, err)
			assert.Equal(t, []string{"/t/a2_0.mp4", "/t/b_0.mp4", "/t/cover_0.mp4"}, o.Video)
			assert.Equal(t, []string{"/t/song_0.m4a"}, o.Audio)
			assert.Len(t, log.warns, 1)
		})
	}
}

func TestResolve_InteractiveOnMismatch(t *testing.T) {
	set := Artifacts("/t", sources(), oneClip)
	// natural: a2, b, cover -> a2 at 3, b at next free (1), cover takes 2
	ask := &scriptedAsker{answers: []int{3, 0}}
	o, err := Resolve(set, nil, Options{Trust: true, Interactive: true, Ask: ask, Log: &fakeLogger{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/t/b_0.mp4", "/t/cover_0.mp4", "/t/a2_0.mp4"}, o.Video)
	assert.Equal(t, []string{"/t/song_0.m4a"}, o.Audio)
	assert.Empty(t, ask.answers)
}

func TestPlace_RejectsTakenPositions(t *testing.T) {
	natural := []string{"/t/a_0.mp4", "/t/b_0.mp4", "/t/c_0.mp4", "/t/d_0.mp4"}
	log := &fakeLogger{}
	ask := &scriptedAsker{answers: []int{2, 2, 9, 4, 0}}

	got, err := Place(ask, log, TrackVideo, natural)
	require.NoError(t, err)
	assert.Equal(t, []string{"/t/c_0.mp4", "/t/a_0.mp4", "/t/d_0.mp4", "/t/b_0.mp4"}, got)
	assert.Len(t, log.warns, 2)
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches([]string{"b", "a"}, []string{"a", "b"}))
	assert.True(t, Matches(nil, nil))
	assert.False(t, Matches([]string{"a"}, []string{"a", "b"}))
	assert.False(t, Matches([]string{"a", "a"}, []string{"a", "b"}))
}

// --- Document ---

func TestDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	o := Order{Video: []string{"/t/b_0.mp4", "/t/a_0.mp4"}, Audio: []string{"/t/s_0.m4a"}}
	require.NoError(t, FromOrder(o).Save(path))

	doc := LoadDocument(path, &fakeLogger{})
	require.NotNil(t, doc)
	assert.Equal(t, o.Video, doc.Positions(TrackVideo))
	assert.Equal(t, o.Audio, doc.Positions(TrackAudio))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "video:")
	assert.Contains(t, string(raw), "1: /t/b_0.mp4")
}

func TestLoadDocument_MissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	log := &fakeLogger{}
	assert.Nil(t, LoadDocument(filepath.Join(dir, FileName), log))
	assert.Empty(t, log.warns)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("video:\n  first: /t/a.mp4\n"), 0o644))
	assert.Nil(t, LoadDocument(path, log))
	assert.Len(t, log.warns, 1)
}
