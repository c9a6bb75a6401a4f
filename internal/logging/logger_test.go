package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStdLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(log.New(&buf, "", 0), false)

	base.Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug written while disabled: %q", buf.String())
	}

	room := base.WithField("room", "r1").WithFields(map[string]interface{}{"player": "p1"})
	room.Warn("slow client %s", "p2")

	got := strings.TrimSpace(buf.String())
	want := "WARN slow client p2 player=p1 room=r1"
	if got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
	if len(base.Fields()) != 0 {
		t.Fatalf("parent fields mutated: %v", base.Fields())
	}
}

func TestStdLoggerDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0), true)
	l.Debug("tick %d", 7)
	if got := strings.TrimSpace(buf.String()); got != "DEBUG tick 7" {
		t.Fatalf("line = %q, want %q", got, "DEBUG tick 7")
	}
}
