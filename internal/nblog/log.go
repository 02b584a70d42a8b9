// Package nblog implements the engine's diagnostic log (spec §7):
// messages tagged 'F'/'L'/'E'/'W' by severity.
//
// Grounded on cmd/sentra/main.go's direct use of the stdlib log package
// (the teacher never introduces zerolog/zap/logrus anywhere in its
// tree) — kept here for the same reason. Duration/count formatting uses
// github.com/dustin/go-humanize and color is gated by
// github.com/mattn/go-isatty, both already present in the teacher's
// go.mod but previously unwired.
package nblog

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"nodebrain/internal/nberrors"
)

// Logger writes engine diagnostics in the spec's tagged-message format:
// "<TAG> <message>". It wraps a standard log.Logger the way the
// teacher's CLI does, rather than adopting a structured-logging
// dependency the teacher itself never uses.
type Logger struct {
	out   *log.Logger
	color bool
}

// New creates a Logger writing to w. Color is enabled only when w is a
// terminal, mirroring how a CLI host would decide whether to colorize
// output.
func New(w io.Writer) *Logger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{
		out:   log.New(w, "", log.LstdFlags),
		color: color,
	}
}

// Default is a Logger over os.Stderr, the engine's default diagnostic
// sink absent a hosting configuration.
func Default() *Logger { return New(os.Stderr) }

func (l *Logger) colorize(tag byte, msg string) string {
	if !l.color {
		return fmt.Sprintf("%c %s", tag, msg)
	}
	code := "0"
	switch tag {
	case 'F':
		code = "41;97" // white on red
	case 'L':
		code = "31" // red
	case 'E':
		code = "33" // yellow
	case 'W':
		code = "36" // cyan
	}
	return fmt.Sprintf("\x1b[%sm%c %s\x1b[0m", code, tag, msg)
}

// Message logs a single tagged diagnostic line. A nil Logger discards
// it, and so do Err and Cycle, which log through Message.
func (l *Logger) Message(tag byte, format string, args ...any) {
	if l == nil {
		return
	}
	l.out.Print(l.colorize(tag, fmt.Sprintf(format, args...)))
}

// Err logs an *nberrors.Error (or any error, defaulted to 'E') with its
// severity tag.
func (l *Logger) Err(err error) {
	if err == nil {
		return
	}
	if ne, ok := err.(*nberrors.Error); ok {
		l.Message(ne.Tag(), "%s", ne.Error())
		return
	}
	l.Message('E', "%s", err.Error())
}

// Cycle reports a timing summary the way a host would log react()
// drain statistics, using go-humanize for readable counts/durations.
func (l *Logger) Cycle(cellsEvaluated, actionsFired int, elapsed time.Duration) {
	l.Message('I', "react(): %s cells evaluated, %s actions fired in %s",
		humanize.Comma(int64(cellsEvaluated)),
		humanize.Comma(int64(actionsFired)),
		elapsed.Round(time.Microsecond))
}
