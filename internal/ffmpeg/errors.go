package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/ansel1/merry/v2"
)

// ErrExternalTool matches every failed ffmpeg/ffprobe invocation via
// errors.Is.
var ErrExternalTool = merry.Sentinel("external tool failed")

// ExternalToolError reports a non-zero exit (or a failure to start) of an
// external program.
type ExternalToolError struct {
	Command  Command
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command.Program, e.ExitCode)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// Is makes every ExternalToolError match [ErrExternalTool].
func (e *ExternalToolError) Is(target error) bool { return target == ErrExternalTool }

// lastLine returns the last non-empty line of ffmpeg's stderr, which is
// almost always the actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
