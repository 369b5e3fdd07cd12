package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/backmassage/lapsemaster/internal/term"
)

// printClipTable prints one row per clip with its stages and lengths.
// Failed clips are red, repaired ones orange.
func printClipTable(w io.Writer, rows []*ReportRow) {
	if len(rows) == 0 {
		return
	}
	nameW, stageW, statusW := len("Clip"), len("Stages"), len("Status")
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = fmt.Sprintf("%s #%d", filepath.Base(r.Source), r.Clip)
		nameW = max(nameW, utf8.RuneCountInString(names[i]))
		stageW = max(stageW, len(r.Stages))
		statusW = max(statusW, len(r.Status))
	}
	nameW = min(nameW, 50)

	header := fmt.Sprintf("  %-*s  %-5s  %-*s  %8s  %8s  %-*s",
		nameW, "Clip", "Kind", stageW, "Stages", "In", "Out", statusW, "Status")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))

	for i, r := range rows {
		name := names[i]
		if rs := []rune(name); len(rs) > nameW {
			name = string(rs[:nameW-1]) + "…"
		}
		fmt.Fprintf(w, "  %-*s  %-5s  %-*s  %7.1fs  %7.1fs  %s\n",
			nameW, name, r.Kind, stageW, r.Stages, r.InputSeconds, r.OutputSeconds,
			colorPad(r.Status, statusW, rowClass(r)))
	}
	fmt.Fprintln(w)
}

func rowClass(r *ReportRow) string {
	switch {
	case r.Status == StatusFailed:
		return "failed"
	case r.Notes != "":
		return "repaired"
	}
	return ""
}

// colorPad pads a plain string to width, then wraps in ANSI color. This
// ensures %-*s-style alignment works correctly regardless of escape sequences.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	switch class {
	case "failed":
		return term.Paint(term.Red, padded)
	case "repaired":
		return term.Paint(term.Orange, padded)
	default:
		return padded
	}
}
