package settings

import (
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/backmassage/lapsemaster/internal/media"
)

// Reconcile returns the entries of loaded whose key is one of the current
// source files. Entries for files that have disappeared are dropped without
// complaint; footage comes and goes between runs.
func Reconcile(current []media.SourceFile, loaded Document) Document {
	present := mapset.NewSet(lo.Map(current, func(f media.SourceFile, _ int) string { return f.Path })...)
	stored := mapset.NewSet(lo.Keys(loaded)...)

	out := make(Document, present.Cardinality())
	for key := range stored.Intersect(present).Iter() {
		out[key] = loaded[key]
	}
	return out
}

// Reconcile drops entries for files not in current and returns the dropped
// keys.
func (s *Store) Reconcile(current []media.SourceFile) []string {
	kept := Reconcile(current, s.entries)
	dropped := lo.Filter(s.Keys(), func(k string, _ int) bool {
		_, ok := kept[k]
		return !ok
	})
	s.entries = kept
	return dropped
}

// Repath moves stored keys onto new source roots. A key is matched by the
// name of its parent folder: either the kind name ("video", "audio",
// "image") or the base name of that kind's configured directory. Keys whose
// parent matches no root are dropped with a warning.
//
// roots maps each kind to its (absolute) source directory.
func (s *Store) Repath(roots map[media.SourceKind]string, log Logger) {
	byFolder := make(map[string]string, 2*len(roots))
	for kind, dir := range roots {
		byFolder[kind.Value] = dir
		byFolder[filepath.Base(dir)] = dir
	}

	moved := make(Document, len(s.entries))
	for _, key := range s.Keys() {
		root, ok := byFolder[filepath.Base(filepath.Dir(key))]
		if !ok {
			log.Warn("Cannot repath %s: parent folder matches no source directory; dropped", key)
			continue
		}
		newKey := filepath.Join(root, filepath.Base(key))
		if canon, err := media.Canonical(newKey); err == nil {
			newKey = canon
		}
		moved[newKey] = s.entries[key]
	}
	s.entries = moved
}
