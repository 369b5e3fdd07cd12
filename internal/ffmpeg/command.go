package ffmpeg

import (
	"context"
	"strings"
)

// Command is one external tool invocation: a program and its discrete
// arguments. Nothing is ever passed through a shell.
type Command struct {
	Program string
	Args    []string
}

// String renders the command for logs, quoting arguments that contain
// whitespace or quotes.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Program))
	for _, a := range c.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\n\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

// Result holds the captured output of a finished invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands synchronously. Implementations must return an
// error wrapping [ErrExternalTool] when the program exits non-zero.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}
