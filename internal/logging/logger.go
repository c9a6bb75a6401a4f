// Package logging provides a runtime.Logger for hosts that run outside Nakama, so the same
// handler code logs the same way in both.
package logging

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
)

// StdLogger writes leveled, field-annotated lines to a standard library logger.
type StdLogger struct {
	out    *log.Logger
	debug  bool
	fields map[string]interface{}
}

var _ runtime.Logger = (*StdLogger)(nil)

// New wraps out. Debug lines are dropped unless debug is set.
func New(out *log.Logger, debug bool) *StdLogger {
	if out == nil {
		out = log.Default()
	}
	return &StdLogger{out: out, debug: debug, fields: map[string]interface{}{}}
}

func (l *StdLogger) Debug(format string, v ...interface{}) {
	if l.debug {
		l.write("DEBUG", format, v...)
	}
}

func (l *StdLogger) Info(format string, v ...interface{}) {
	l.write("INFO", format, v...)
}

func (l *StdLogger) Warn(format string, v ...interface{}) {
	l.write("WARN", format, v...)
}

func (l *StdLogger) Error(format string, v ...interface{}) {
	l.write("ERROR", format, v...)
}

func (l *StdLogger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

func (l *StdLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &StdLogger{out: l.out, debug: l.debug, fields: merged}
}

func (l *StdLogger) Fields() map[string]interface{} {
	return maps.Clone(l.fields)
}

func (l *StdLogger) write(level, format string, v ...interface{}) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	fmt.Fprintf(&b, format, v...)
	for _, k := range slices.Sorted(maps.Keys(l.fields)) {
		fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
	}
	l.out.Print(b.String())
}
