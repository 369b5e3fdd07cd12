package probe

import "strconv"

// Info is the parsed result of probing one source file.
type Info struct {
	// Duration in seconds. Container duration when present, otherwise the
	// longest stream.
	Duration float64

	// Width and Height of the primary video stream (0 when there is none).
	Width  int
	Height int

	HasVideo   bool
	HasAudio   bool
	FormatName string
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (i *Info) Resolution() string {
	if i.Width <= 0 || i.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(i.Width) + "x" + strconv.Itoa(i.Height)
}
