// Package logging provides the leveled console logger used by every
// component. Console lines are plain text, colored per level when the
// terminal allows it; with --log the same events are also appended to a
// file as JSON lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/term"
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	file   *os.File
	sink   *zerolog.Logger
}

// NewLogger initializes colors from cfg and optionally opens the log file.
// Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	return newLogger(cfg.LogFile, os.Stdout, os.Stderr)
}

func newLogger(logFile string, stdout, stderr io.Writer) (*Logger, error) {
	l := &Logger{stdout: stdout, stderr: stderr}
	if logFile == "" {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	sink := zerolog.New(f).With().Timestamp().Logger()
	l.file = f
	l.sink = &sink
	return l, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file, l.sink = nil, nil
		return err
	}
	return nil
}

func (l *Logger) line(tag string, level zerolog.Level, color, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.stdout
	if level == zerolog.ErrorLevel {
		out = l.stderr
	}
	if color != "" {
		_, _ = io.WriteString(out, ts+" "+color+"["+tag+"]"+term.NC+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, ts+" ["+tag+"] "+text+"\n")
	}
	if l.sink != nil {
		l.sink.WithLevel(level).Str("tag", tag).Msg(text)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", zerolog.InfoLevel, term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", zerolog.InfoLevel, term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", zerolog.WarnLevel, term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", zerolog.ErrorLevel, term.Red, fmt.Sprintf(format, args...))
}

// Render logs at RENDER level (magenta). Used for encoder stage progress.
func (l *Logger) Render(format string, args ...interface{}) {
	l.line("RENDER", zerolog.InfoLevel, term.Magenta, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line("DEBUG", zerolog.DebugLevel, term.Cyan, fmt.Sprintf(format, args...))
}
