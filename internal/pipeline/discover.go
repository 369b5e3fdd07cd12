package pipeline

import (
	"github.com/ansel1/merry/v2"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/media"
)

// Discover lists the sources of every kind: video, then audio, then image,
// each sorted by path.
func Discover(cfg *config.Config) ([]media.SourceFile, error) {
	var all []media.SourceFile
	for _, kind := range media.Kinds.Members() {
		files, err := media.Discover(cfg.SourceDir(kind), kind)
		if err != nil {
			return nil, merry.Wrap(err)
		}
		all = append(all, files...)
	}
	return all, nil
}
