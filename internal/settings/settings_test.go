package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/media"
)

type fakeLogger struct{ warns []string }

func (l *fakeLogger) Warn(format string, args ...interface{}) {
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func src(path string) media.SourceFile {
	kind, _ := media.KindOf(path)
	return media.SourceFile{Path: path, Kind: kind, Exists: true}
}

func TestLoad_Missing(t *testing.T) {
	log := &fakeLogger{}
	s := Load(filepath.Join(t.TempDir(), FileName), log)
	assert.Zero(t, s.Len())
	assert.Empty(t, log.warns)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("/v/a.mp4: [speed_factor: {"), 0o644))

	log := &fakeLogger{}
	s := Load(path, log)
	assert.Zero(t, s.Len())
	require.Len(t, log.warns, 1)
	assert.Contains(t, log.warns[0], "malformed")
}

func TestLoad_DropsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	doc := `
/v/video/good.mp4:
  - speed_factor: 10
    fade_in: 1
/v/audio/bad.wav:
  - speed_factor: 0.1
/v/notes.txt:
  - speed_factor: 1
/v/video/empty.mp4: []
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	log := &fakeLogger{}
	s := Load(path, log)
	assert.Equal(t, []string{"/v/video/good.mp4"}, s.Keys())
	assert.Len(t, log.warns, 3)

	reqs, ok := s.Get("/v/video/good.mp4")
	require.True(t, ok)
	assert.Equal(t, []media.EditRequest{{SpeedFactor: 10, FadeIn: 1}}, reqs)
}

func TestLoad_DropsNonFiniteValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	doc := `
/v/video/fast.mp4:
  - speed_factor: .inf
/v/video/fade.mp4:
  - fade_in: .nan
/v/video/ok.mp4:
  - speed_factor: 2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	log := &fakeLogger{}
	s := Load(path, log)
	assert.Equal(t, []string{"/v/video/ok.mp4"}, s.Keys())
	require.Len(t, log.warns, 2)
	for _, w := range log.warns {
		assert.Contains(t, w, "not a finite number")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings", FileName)
	s := New(path)
	s.Upsert("/v/video/a.mp4", []media.EditRequest{{SpeedFactor: 30, ClipIn: 2}, {ClipOut: 3, ClipFromEnd: true}})
	s.Upsert("/v/image/c.png", []media.EditRequest{{FadeIn: 1, FadeOut: 1}})
	require.NoError(t, s.Save())

	loaded := Load(path, &fakeLogger{})
	assert.Equal(t, s.Document(), loaded.Document())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "clip_from_end: true")
	assert.Contains(t, string(raw), "speed_factor: 30")
}

func TestReconcile_Intersection(t *testing.T) {
	loaded := Document{
		"/v/video/a.mp4":   {{SpeedFactor: 2}},
		"/v/video/gone.mp4": {{SpeedFactor: 3}},
		"/v/audio/s.wav":   {{}},
	}
	current := []media.SourceFile{src("/v/video/a.mp4"), src("/v/audio/s.wav"), src("/v/video/new.mp4")}

	got := Reconcile(current, loaded)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "/v/video/a.mp4")
	assert.Contains(t, got, "/v/audio/s.wav")
	assert.NotContains(t, got, "/v/video/gone.mp4")
	assert.NotContains(t, got, "/v/video/new.mp4")

	assert.Empty(t, Reconcile(nil, loaded))
	assert.Empty(t, Reconcile(current, nil))
}

func TestStoreReconcile(t *testing.T) {
	s := New("unused")
	s.Upsert("/v/video/a.mp4", []media.EditRequest{{}})
	s.Upsert("/v/video/b.mp4", []media.EditRequest{{}})

	dropped := s.Reconcile([]media.SourceFile{src("/v/video/b.mp4")})
	assert.Equal(t, []string{"/v/video/a.mp4"}, dropped)
	assert.Equal(t, []string{"/v/video/b.mp4"}, s.Keys())
}

func TestRepath(t *testing.T) {
	root := t.TempDir()
	videoDir := filepath.Join(root, "clips")
	audioDir := filepath.Join(root, "audio")

	s := New("unused")
	s.Upsert("/old/video/a.mp4", []media.EditRequest{{SpeedFactor: 5}})
	s.Upsert("/old/clips/b.mp4", []media.EditRequest{{}})
	s.Upsert("/old/audio/s.wav", []media.EditRequest{{}})
	s.Upsert("/old/misc/x.mp4", []media.EditRequest{{}})

	log := &fakeLogger{}
	s.Repath(map[media.SourceKind]string{media.KindVideo: videoDir, media.KindAudio: audioDir}, log)

	want := []string{
		filepath.Join(audioDir, "s.wav"),
		filepath.Join(videoDir, "a.mp4"),
		filepath.Join(videoDir, "b.mp4"),
	}
	assert.ElementsMatch(t, want, s.Keys())
	reqs, ok := s.Get(filepath.Join(videoDir, "a.mp4"))
	require.True(t, ok)
	assert.Equal(t, 5.0, reqs[0].SpeedFactor)
	require.Len(t, log.warns, 1)
	assert.Contains(t, log.warns[0], "/old/misc/x.mp4")
}

func TestNeedsPrompt(t *testing.T) {
	temp := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.TempDir = temp

	stored := src("/v/video/a.mp4")
	fresh := src("/v/video/b.mp4")
	still := src("/v/image/c.png")

	s := New("unused")
	s.Upsert(stored.Path, []media.EditRequest{{}, {SpeedFactor: 2}})
	s.Upsert(still.Path, []media.EditRequest{{}})

	// No entry always prompts.
	assert.True(t, NeedsPrompt(&cfg, s, fresh))

	// A stored entry whose artifacts are missing still needs processing.
	assert.True(t, NeedsPrompt(&cfg, s, stored))
	require.NoError(t, os.WriteFile(media.ArtifactPath(temp, stored, 0), nil, 0o644))
	assert.True(t, NeedsPrompt(&cfg, s, stored), "second clip is missing")
	require.NoError(t, os.WriteFile(media.ArtifactPath(temp, stored, 1), nil, 0o644))
	assert.False(t, NeedsPrompt(&cfg, s, stored))

	cfg.OverrideTempVideo = true
	assert.True(t, NeedsPrompt(&cfg, s, stored))
	cfg.OverrideTempVideo = false

	cfg.OverrideSettings = true
	assert.True(t, NeedsPrompt(&cfg, s, stored))
	cfg.OverrideSettings = false

	// Settings-only mode ignores the temp directory.
	cfg.SettingsOnly = true
	assert.False(t, NeedsPrompt(&cfg, s, still))
	assert.True(t, NeedsPrompt(&cfg, s, fresh))
	cfg.SettingsOnly = false

	// Stills ignore --override-temp-video and only care about the render.
	assert.True(t, NeedsPrompt(&cfg, s, still))
	require.NoError(t, os.WriteFile(media.ArtifactPath(temp, still, 0), nil, 0o644))
	cfg.OverrideTempVideo = true
	assert.False(t, NeedsPrompt(&cfg, s, still))

	assert.Equal(t, 2, ExistingClips(temp, stored))
	assert.Equal(t, 0, ExistingClips(temp, fresh))
}

func TestDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.VideoDefaults = media.EditRequest{SpeedFactor: 20, FadeIn: 1}
	cfg.AudioDefaults = media.EditRequest{SpeedFactor: 1, FadeOut: 2}
	cfg.ImageDefaults = media.EditRequest{SpeedFactor: 3, FadeIn: 0.5}

	assert.Equal(t, media.EditRequest{SpeedFactor: 20, FadeIn: 1}, Defaults(&cfg, media.KindVideo))
	assert.Equal(t, media.EditRequest{SpeedFactor: 1, FadeOut: 2}, Defaults(&cfg, media.KindAudio))
	assert.Equal(t, media.EditRequest{FadeIn: 0.5}, Defaults(&cfg, media.KindImage))
}

// scriptedAsker answers from a queue; an empty queue returns the default.
type scriptedAsker struct {
	answers []interface{}
	labels  []string
	defs    []interface{}
}

func (a *scriptedAsker) next(label string, def interface{}) interface{} {
	a.labels = append(a.labels, label)
	a.defs = append(a.defs, def)
	if len(a.answers) == 0 {
		return def
	}
	v := a.answers[0]
	a.answers = a.answers[1:]
	if v == nil {
		return def
	}
	return v
}

func (a *scriptedAsker) Int(label string, def int) (int, error) {
	return a.next(label, def).(int), nil
}

func (a *scriptedAsker) Float(label string, def float64) (float64, error) {
	return a.next(label, def).(float64), nil
}

func (a *scriptedAsker) Bool(label string, def bool) (bool, error) {
	return a.next(label, def).(bool), nil
}

func TestPromptRequests(t *testing.T) {
	def := media.EditRequest{SpeedFactor: 1, FadeIn: 0.25, FadeOut: 0.75}
	ask := &scriptedAsker{answers: []interface{}{
		2,                             // clips
		10.0, 2.0, 3.0, true, nil, nil, // clip 0: speed, in, out, from end, fades default
		nil, 50.0, 0.0, 1.0, 1.0, // clip 1 (rejected): clip in too late
		nil, nil, 0.0, nil, nil, // clip 1 again
	}}
	log := &fakeLogger{}
	check := func(r media.EditRequest) error {
		if r.ClipIn > 20 {
			return errors.New("clip does not fit")
		}
		return nil
	}

	reqs, err := PromptRequests(ask, log, src("/v/video/a.mp4"), def, check)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, media.EditRequest{SpeedFactor: 10, ClipIn: 2, ClipOut: 3, ClipFromEnd: true, FadeIn: 0.25, FadeOut: 0.75}, reqs[0])
	assert.Equal(t, media.EditRequest{SpeedFactor: 1, FadeIn: 0.25, FadeOut: 0.75}, reqs[1])
	require.Len(t, log.warns, 1)
	assert.Contains(t, log.warns[0], "clip 1")
}

func TestPromptRequests_ImageFadesUseMatchingDefaults(t *testing.T) {
	def := media.EditRequest{FadeIn: 0.5, FadeOut: 1.5}
	ask := &scriptedAsker{}
	reqs, err := PromptRequests(ask, &fakeLogger{}, src("/v/image/c.png"), def, func(media.EditRequest) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []media.EditRequest{{FadeIn: 0.5, FadeOut: 1.5}}, reqs)
	// clips, fade in, fade out
	require.Len(t, ask.labels, 3)
	assert.Contains(t, ask.labels[1], "fade in")
	assert.Equal(t, 0.5, ask.defs[1])
	assert.Contains(t, ask.labels[2], "fade out")
	assert.Equal(t, 1.5, ask.defs[2])
}
