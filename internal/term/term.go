// Package term holds the colour palette shared by the console logger, the
// banner and the clip table.
//
// The palette lives in package-level strings so callers can concatenate
// them directly; with colour off every entry is "" and Paint returns its
// input unchanged.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/lapsemaster/internal/config"
)

// Palette entries. Empty when colour is off.
var (
	Red     = "" // errors, failed clips
	Green   = "" // successes
	Yellow  = "" // warnings
	Orange  = "" // repaired clips
	Blue    = "" // info
	Cyan    = "" // debug
	Magenta = "" // render lines, banner
	NC      = "" // reset
)

const reset = "\033[0m"

// palette pairs every entry with its SGR sequence.
var palette = []struct {
	dst *string
	sgr string
}{
	{&Red, "\033[1;91m"},
	{&Green, "\033[1;92m"},
	{&Yellow, "\033[1;93m"},
	{&Orange, "\033[1;38;5;208m"},
	{&Blue, "\033[1;94m"},
	{&Cyan, "\033[1;96m"},
	{&Magenta, "\033[1;95m"},
	{&NC, reset},
}

// Configure fills or clears the palette for the given --color mode, judged
// against stdout and the process environment.
func Configure(mode config.ColorMode) {
	set(Want(mode, os.Stdout, os.Getenv))
}

func set(on bool) {
	for _, p := range palette {
		if on {
			*p.dst = p.sgr
		} else {
			*p.dst = ""
		}
	}
}

// Enabled reports whether the palette is filled.
func Enabled() bool { return NC != "" }

// Paint wraps s in color followed by a reset. An empty color leaves s as is.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + NC
}

// Want decides whether output to f gets colour. Explicit modes win. In
// auto mode NO_COLOR (https://no-color.org) and TERM=dumb switch colour
// off, FORCE_COLOR switches it on for pipes, and otherwise f must be a
// terminal.
func Want(mode config.ColorMode, f *os.File, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if getenv("NO_COLOR") != "" || strings.EqualFold(getenv("TERM"), "dumb") {
		return false
	}
	if getenv("FORCE_COLOR") != "" {
		return true
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
