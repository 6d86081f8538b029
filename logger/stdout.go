package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the minimum severity printed by NewWriter loggers.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type stdOut struct {
	min   Level
	print func(msg string)
}

var _ Logger = &stdOut{}

// NewStdOut prints every message to stdout.
func NewStdOut() Logger {
	return NewWriter(os.Stdout, LevelDebug)
}

// NewWriter prints messages at or above minLevel to w, one per line.
// Lines from concurrent callers are never interleaved.
func NewWriter(w io.Writer, minLevel Level) Logger {
	var mu sync.Mutex
	return &stdOut{
		min: minLevel,
		print: func(msg string) {
			mu.Lock()
			defer mu.Unlock()
			_, _ = fmt.Fprintln(w, msg)
		},
	}
}

func (p *stdOut) log(level Level, tag string, format string, args []any) {
	if level < p.min {
		return
	}
	p.print(fmt.Sprintf("["+tag+"] "+format, args...))
}

func (p *stdOut) Debugf(format string, args ...any) {
	p.log(LevelDebug, "DEBUG", format, args)
}

func (p *stdOut) Infof(format string, args ...any) {
	p.log(LevelInfo, "INFO", format, args)
}

func (p *stdOut) Warnf(format string, args ...any) {
	p.log(LevelWarn, "WARN", format, args)
}

func (p *stdOut) Errorf(format string, args ...any) {
	p.log(LevelError, "ERROR", format, args)
}
