// Package settings is the persistent per-file settings store: which clips to
// cut from each source file and how.
//
// The document maps a canonical absolute source path to an ordered list of
// edit requests, one per output clip:
//
//	/footage/video/day1.mp4:
//	  - speed_factor: 30
//	    clip_in: 2
//	    ...
//
// A Store is loaded at run start, reconciled against the files that are
// currently present, extended for new files, and saved at run end.
package settings

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/ansel1/merry/v2"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/lapsemaster/internal/fsx"
	"github.com/backmassage/lapsemaster/internal/media"
)

// FileName is the settings document inside the settings directory.
const FileName = "settings.yaml"

// Logger is the logging surface the store needs.
type Logger interface {
	Warn(string, ...interface{})
}

// Document is the serialized form of the store.
type Document map[string][]media.EditRequest

// Store holds the active settings of one run. It is not safe for concurrent
// use; one run owns it from Load to Save.
type Store struct {
	path    string
	entries Document
}

// New returns an empty store that saves to path.
func New(path string) *Store {
	return &Store{path: path, entries: Document{}}
}

// Load reads the document at path. A missing file yields an empty store. A
// malformed document is logged and treated as empty, and entries that are
// invalid for their file kind are dropped with a warning.
func Load(path string, log Logger) *Store {
	s := New(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Cannot read settings %s: %v; starting empty", path, err)
		}
		return s
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warn("Settings %s are malformed: %v; starting empty", path, err)
		return s
	}

	for key, reqs := range doc {
		if err := validEntry(key, reqs); err != nil {
			log.Warn("Dropping settings for %s: %v", key, err)
			continue
		}
		s.entries[key] = reqs
	}
	return s
}

func validEntry(key string, reqs []media.EditRequest) error {
	kind, ok := media.KindOf(key)
	if !ok {
		return merry.New("unsupported file type")
	}
	if len(reqs) == 0 {
		return merry.New("no clips")
	}
	for i, r := range reqs {
		if err := r.Validate(kind); err != nil {
			return merry.Wrap(err, merry.WithMessagef("clip %d: %v", i, err))
		}
	}
	return nil
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Len returns the number of files with stored settings.
func (s *Store) Len() int { return len(s.entries) }

// Keys returns the stored source paths, sorted.
func (s *Store) Keys() []string {
	keys := lo.Keys(s.entries)
	slices.Sort(keys)
	return keys
}

// Get returns the requests stored for a source path.
func (s *Store) Get(path string) ([]media.EditRequest, bool) {
	reqs, ok := s.entries[path]
	return reqs, ok
}

// Upsert stores reqs for path, replacing any previous entry.
func (s *Store) Upsert(path string, reqs []media.EditRequest) {
	s.entries[path] = append([]media.EditRequest(nil), reqs...)
}

// Document returns a copy of the stored entries.
func (s *Store) Document() Document {
	return lo.MapValues(s.entries, func(reqs []media.EditRequest, _ string) []media.EditRequest {
		return append([]media.EditRequest(nil), reqs...)
	})
}

// Save writes the document atomically. An interrupted run leaves the
// previous document in place.
func (s *Store) Save() error {
	data, err := yaml.Marshal(s.entries)
	if err != nil {
		return merry.Wrap(err)
	}
	if err := fsx.WriteFileAtomic(s.path, data); err != nil {
		return merry.Wrap(err, merry.WithMessagef("save settings %s: %v", s.path, err))
	}
	return nil
}
