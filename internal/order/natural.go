package order

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/backmassage/lapsemaster/internal/media"
)

type token struct {
	text    string
	numeric bool
}

// tokenize splits s into alternating runs of ASCII digits and everything
// else.
func tokenize(s string) []token {
	var toks []token
	start, prevDigit := 0, false
	for i, r := range s {
		d := r >= '0' && r <= '9'
		if i > start && d != prevDigit {
			toks = append(toks, token{text: s[start:i], numeric: prevDigit})
			start = i
		}
		prevDigit = d
	}
	if start < len(s) {
		toks = append(toks, token{text: s[start:], numeric: prevDigit})
	}
	return toks
}

// compareNumeric compares two digit runs by value without overflowing on
// long runs.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Compare orders two names naturally: digit runs compare by value, other
// runs lexicographically, a digit run sorts before a text run at the same
// position, and a name that is a prefix of the other sorts first. Names that
// tokenize equal ("a01" and "a1") fall back to plain string order, so
// Compare is a strict total order.
func Compare(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		var c int
		switch {
		case x.numeric && y.numeric:
			c = compareNumeric(x.text, y.text)
		case x.numeric:
			c = -1
		case y.numeric:
			c = 1
		default:
			c = strings.Compare(x.text, y.text)
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return 1
	}
	return strings.Compare(a, b)
}

// Sort orders artifact paths by their source name, then by clip index, so
// every clip of "a" precedes "a1" and the clips of one source stay adjacent.
// Remaining ties break on the full path.
func Sort(paths []string) {
	slices.SortStableFunc(paths, func(a, b string) int {
		sa, ia := splitArtifact(a)
		sb, ib := splitArtifact(b)
		if c := Compare(sa, sb); c != 0 {
			return c
		}
		if c := cmp.Compare(ia, ib); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// splitArtifact recovers the source stem and clip index from an artifact
// path named "<stem>_<index><ext>". Names without an index yield -1.
func splitArtifact(path string) (string, int) {
	stem := media.Stem(path)
	i := strings.LastIndexByte(stem, '_')
	if i < 0 {
		return stem, -1
	}
	n, err := strconv.Atoi(stem[i+1:])
	if err != nil || n < 0 {
		return stem, -1
	}
	return stem[:i], n
}
