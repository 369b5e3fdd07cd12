package media

import (
	"path/filepath"
	"strings"

	"github.com/orsinium-labs/enum"
)

// SourceKind tags a source file as video, audio or image. Every kind flows
// through the same plan/execute path; kind-specific behavior is dispatched on
// this value.
type SourceKind enum.Member[string]

var (
	KindVideo = SourceKind{Value: "video"}
	KindAudio = SourceKind{Value: "audio"}
	KindImage = SourceKind{Value: "image"}
	Kinds     = enum.New(KindVideo, KindAudio, KindImage)
)

// Supported source extensions per kind (lowercase, with leading dot).
var extensions = map[SourceKind]map[string]bool{
	KindVideo: {".mp4": true, ".mkv": true, ".mov": true, ".webm": true},
	KindAudio: {".wav": true, ".mp3": true, ".m4a": true, ".flac": true},
	KindImage: {".png": true, ".jpg": true, ".jpeg": true},
}

// KindOf classifies path by extension. ok is false for unsupported files.
func KindOf(path string) (kind SourceKind, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, k := range Kinds.Members() {
		if extensions[k][ext] {
			return k, true
		}
	}
	return SourceKind{}, false
}

// OnVideoTrack reports whether artifacts of this kind are concatenated into
// the video output. Images become short video clips.
func (k SourceKind) OnVideoTrack() bool {
	return k != KindAudio
}

func (k SourceKind) String() string { return k.Value }
