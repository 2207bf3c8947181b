package calculation

import (
	"io"
	"log"
)

// Logger is a minimal logging interface for the projection engine and the
// simulators. Implementations must be safe for concurrent use; Monte Carlo
// workers share one.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no output.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...any) {}
func (NopLogger) Infof(format string, args ...any)  {}
func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}

// StdLogger writes levelled lines through a standard library logger.
// Debug lines are dropped unless Verbose is set.
type StdLogger struct {
	Verbose bool
	out     *log.Logger
}

// NewStdLogger creates a StdLogger writing to w.
func NewStdLogger(w io.Writer, verbose bool) *StdLogger {
	return &StdLogger{Verbose: verbose, out: log.New(w, "bizplan ", log.LstdFlags)}
}

func (l *StdLogger) Debugf(format string, args ...any) {
	if l.Verbose {
		l.out.Printf("DEBUG "+format, args...)
	}
}

func (l *StdLogger) Infof(format string, args ...any)  { l.out.Printf("INFO "+format, args...) }
func (l *StdLogger) Warnf(format string, args ...any)  { l.out.Printf("WARN "+format, args...) }
func (l *StdLogger) Errorf(format string, args ...any) { l.out.Printf("ERROR "+format, args...) }
