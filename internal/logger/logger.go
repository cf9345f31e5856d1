package logger

import (
	"fmt"
	"io"
	"log"
)

type Logger struct {
	l         *log.Logger
	component string
}

func New(l *log.Logger) *Logger {
	//nolint:exhaustruct
	return &Logger{l: l}
}

// Discard is used by tests and tools that do not care about output.
func Discard() *Logger {
	return New(log.New(io.Discard, "", 0))
}

// With returns a logger that tags every line with the component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{l: l.l, component: component}
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.print("Error", format, v...)
}

func (l *Logger) LogWarnf(format string, v ...any) {
	l.print("Warn", format, v...)
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.print("Info", format, v...)
}

func (l *Logger) print(level, format string, v ...any) {
	msg := fmt.Sprintf(format, v...)

	if l.component != "" {
		l.l.Printf("[%s] %s: %s\n", level, l.component, msg)

		return
	}

	l.l.Printf("[%s]: %s\n", level, msg)
}
