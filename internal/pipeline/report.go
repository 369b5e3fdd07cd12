package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/gocarina/gocsv"

	"github.com/backmassage/lapsemaster/internal/fsx"
)

// ReportFileName is the per-run CSV report inside the output directory.
const ReportFileName = "report.csv"

// Clip outcomes.
const (
	StatusDone    = "done"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
	StatusPlanned = "planned" // Dry run.
)

// ReportRow is one (source, clip) line of the run report.
type ReportRow struct {
	Source        string  `csv:"source"`
	Kind          string  `csv:"kind"`
	Clip          int     `csv:"clip"`
	Artifact      string  `csv:"artifact"`
	Stages        string  `csv:"stages"`
	InputSeconds  float64 `csv:"input_seconds"`
	OutputSeconds float64 `csv:"output_seconds"`
	Status        string  `csv:"status"`
	Elapsed       float64 `csv:"elapsed_seconds"`
	Notes         string  `csv:"notes"`
	Error         string  `csv:"error"`
}

func (r *ReportRow) setStages(names []string) { r.Stages = strings.Join(names, "+") }

// WriteReport writes rows as CSV to dir/report.csv.
func WriteReport(dir string, rows []*ReportRow) (string, error) {
	data, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return "", merry.Wrap(err)
	}
	path := filepath.Join(dir, ReportFileName)
	if err := fsx.WriteFileAtomic(path, data); err != nil {
		return "", merry.Wrap(err)
	}
	return path, nil
}
