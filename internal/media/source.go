// Package media defines the source-side data model: source kinds, source
// files, edit requests, discovery, and the artifact paths derived from them.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceFile is one discovered input. Path is canonical (absolute, cleaned).
type SourceFile struct {
	Path   string
	Kind   SourceKind
	Exists bool
}

// Name returns the base name of the source.
func (s SourceFile) Name() string { return filepath.Base(s.Path) }

// Stem returns the base name without extension.
func (s SourceFile) Stem() string { return Stem(s.Path) }

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Canonical returns the absolute, cleaned form of path. Symlinks are resolved
// when the target exists so the same file always yields the same key.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

// Discover lists the files of kind directly inside dir (no recursion),
// sorted lexicographically. Files with other extensions are ignored. A
// missing directory yields no files.
func Discover(dir string, kind SourceKind) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s directory %s: %w", kind, dir, err)
	}
	var files []SourceFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !extensions[kind][strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		path, err := Canonical(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, SourceFile{Path: path, Kind: kind, Exists: true})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ArtifactExt returns the extension of the per-clip artifacts of src. Every
// artifact on one track shares a container so the concat demuxer can stream
// copy them: mp4 on the video track, m4a on the audio track.
func ArtifactExt(src SourceFile) string {
	if src.Kind == KindAudio {
		return ".m4a"
	}
	return ".mp4"
}

// ArtifactPath returns the final artifact path for clip index of src.
func ArtifactPath(tempDir string, src SourceFile, index int) string {
	return filepath.Join(tempDir, fmt.Sprintf("%s_%d%s", src.Stem(), index, ArtifactExt(src)))
}
