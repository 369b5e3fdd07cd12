// Package prompt reads answers for the interactive settings and ordering
// modes from a line-oriented terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ansel1/merry/v2"
)

// ErrAborted is returned when input ends (EOF) or the context is cancelled
// while waiting for an answer.
var ErrAborted = merry.Sentinel("input aborted")

// Prompter asks questions on out and reads one answer per line from in.
// An empty answer selects the default shown in brackets; an unparsable one
// repeats the question.
type Prompter struct {
	ctx   context.Context
	out   io.Writer
	lines chan string
}

// New starts reading lines from in. The reader goroutine ends at EOF; a
// cancelled ctx makes every pending and later question return ErrAborted.
func New(ctx context.Context, in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{ctx: ctx, out: out, lines: make(chan string)}
	go func() {
		defer close(p.lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case p.lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return p
}

// Int asks for an integer.
func (p *Prompter) Int(label string, def int) (int, error) {
	for {
		s, err := p.ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		if s == "" {
			return def, nil
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(p.out, "  %q is not a whole number\n", s)
	}
}

// Float asks for a number of seconds or a multiplier.
func (p *Prompter) Float(label string, def float64) (float64, error) {
	for {
		s, err := p.ask(label, strconv.FormatFloat(def, 'f', -1, 64))
		if err != nil {
			return 0, err
		}
		if s == "" {
			return def, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return f, nil
		}
		fmt.Fprintf(p.out, "  %q is not a number\n", s)
	}
}

// Bool asks a yes/no question.
func (p *Prompter) Bool(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		s, err := p.ask(label, hint)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(s) {
		case "":
			return def, nil
		case "y", "yes", "true", "1":
			return true, nil
		case "n", "no", "false", "0":
			return false, nil
		}
		fmt.Fprintf(p.out, "  answer y or n\n")
	}
}

func (p *Prompter) ask(label, hint string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
	select {
	case <-p.ctx.Done():
		fmt.Fprintln(p.out)
		return "", ErrAborted
	case line, ok := <-p.lines:
		if !ok {
			fmt.Fprintln(p.out)
			return "", ErrAborted
		}
		return strings.TrimSpace(line), nil
	}
}
