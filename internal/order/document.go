package order

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/ansel1/merry/v2"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/lapsemaster/internal/fsx"
)

// FileName is the order document inside the settings directory.
const FileName = "order.yaml"

// Document is the persisted order: per track, 1-based position to artifact
// path.
type Document struct {
	Video map[int]string `yaml:"video"`
	Audio map[int]string `yaml:"audio"`
}

// FromOrder builds the document for a resolved order.
func FromOrder(o Order) *Document {
	toMap := func(paths []string) map[int]string {
		return lo.SliceToMap(lo.Range(len(paths)), func(i int) (int, string) { return i + 1, paths[i] })
	}
	return &Document{Video: toMap(o.Video), Audio: toMap(o.Audio)}
}

// Positions returns the paths of track ordered by position.
func (d *Document) Positions(t Track) []string {
	m := d.Video
	if t == TrackAudio {
		m = d.Audio
	}
	keys := lo.Keys(m)
	slices.Sort(keys)
	return lo.Map(keys, func(k int, _ int) string { return m[k] })
}

// LoadDocument reads the order document. A missing file yields nil; a
// malformed one is logged and also yields nil.
func LoadDocument(path string, log Logger) *Document {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Cannot read order %s: %v; ignoring it", path, err)
		}
		return nil
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warn("Order %s is malformed: %v; ignoring it", path, err)
		return nil
	}
	return &doc
}

// Save writes the document atomically.
func (d *Document) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return merry.Wrap(err)
	}
	if err := fsx.WriteFileAtomic(path, data); err != nil {
		return merry.Wrap(err, merry.WithMessagef("save order %s: %v", path, err))
	}
	return nil
}
