package pipeline

// RunStats tracks aggregate counters across a batch run. Counters other than
// Total and Current count clips, not source files.
type RunStats struct {
	Total     int // Source files discovered.
	Current   int // Source file being processed (1-based).
	Clips     int
	Processed int
	Skipped   int
	Failed    int

	// OutputSeconds is the planned length of all processed clips.
	OutputSeconds float64
	// TotalOutputBytes is the size of the combined outputs.
	TotalOutputBytes int64

	// Aborted is set when interactive input ended or the run was
	// interrupted before finishing.
	Aborted bool
}

// OK reports whether the run finished without failures.
func (s *RunStats) OK() bool {
	return s.Failed == 0 && !s.Aborted
}
