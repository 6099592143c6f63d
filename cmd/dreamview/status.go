package main

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// status prints coloured one-line progress messages for the user. Colours are dropped when
// the writer is not a terminal.
type status struct {
	out *termenv.Output
}

func newStatus(w io.Writer) *status {
	return &status{out: termenv.NewOutput(w)}
}

func (s *status) line(mark string, color termenv.Color, format string, args ...any) {
	m := s.out.String(mark).Foreground(color).Bold()
	fmt.Fprintf(s.out, "%s %s\n", m, fmt.Sprintf(format, args...))
}

func (s *status) ok(format string, args ...any) {
	s.line("ok", termenv.ANSIGreen, format, args...)
}

func (s *status) warn(format string, args ...any) {
	s.line("warn", termenv.ANSIYellow, format, args...)
}

func (s *status) fail(format string, args ...any) {
	s.line("fail", termenv.ANSIRed, format, args...)
}
