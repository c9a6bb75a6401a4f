package bot

import (
	"math/rand"
	"testing"
	"time"

	"typerace/internal/app"
)

const tick = 100 * time.Millisecond

func newRace(t *testing.T) *app.Session {
	t.Helper()
	s := app.NewSession("r1", app.Options{Rng: rand.New(rand.NewSource(11))})
	for _, id := range []string{"human", "bot-1"} {
		if _, err := s.AddPlayer(id); err != nil {
			t.Fatalf("add %s error: %v", id, err)
		}
	}
	if _, err := s.StartGame(); err != nil {
		t.Fatalf("start error: %v", err)
	}
	return s
}

func playerSnapshot(t *testing.T, s *app.Session, id string) app.PlayerSnapshot {
	t.Helper()
	for _, p := range s.Snapshot().Players {
		if p.PlayerID == id {
			return p
		}
	}
	t.Fatalf("player %s not in snapshot", id)
	return app.PlayerSnapshot{}
}

func TestPerfectBotCompletesSentences(t *testing.T) {
	s := newRace(t)
	a := &Agent{ID: "bot-1", Tuning: Tuning{CharsPerSecond: 1000}, rng: rand.New(rand.NewSource(1))}

	completed := 0
	for range 6 {
		evs, err := a.Step(s, tick)
		if err != nil {
			t.Fatalf("step error: %v", err)
		}
		for _, ev := range evs {
			if ev.Kind == app.EventSentenceComplete {
				completed++
			}
		}
	}
	if completed != 3 {
		t.Fatalf("completed = %d, want 3", completed)
	}
	if p := playerSnapshot(t, s, "bot-1"); p.Streak != 3 || p.Errors != 0 || p.Backspaces != 0 {
		t.Fatalf("bot state = %+v, want streak 3 and clean budgets", p)
	}
}

func TestSlowBotAccumulatesCredit(t *testing.T) {
	s := newRace(t)
	a := &Agent{ID: "bot-1", Tuning: Tuning{CharsPerSecond: 5}, rng: rand.New(rand.NewSource(1))}

	if _, err := a.Step(s, tick); err != nil {
		t.Fatalf("fetch step error: %v", err)
	}
	// Half a keystroke of credit: nothing typed yet.
	evs, err := a.Step(s, tick)
	if err != nil || len(evs) != 0 {
		t.Fatalf("step = %v, %v; want no events", evs, err)
	}
	evs, err = a.Step(s, tick)
	if err != nil || len(evs) == 0 {
		t.Fatalf("step = %v, %v; want a submission", evs, err)
	}
	if len(a.typed) != 1 {
		t.Fatalf("typed %d runes, want 1", len(a.typed))
	}
}

func sloppyAgent(reserve int) *Agent {
	return &Agent{
		ID:     "bot-1",
		Tuning: Tuning{CharsPerSecond: 1000, TypoRate: 1, ReserveBackspaces: reserve},
		rng:    rand.New(rand.NewSource(1)),
	}
}

func TestSloppyBotSpendsBudgetThenFalls(t *testing.T) {
	s := newRace(t)
	a := sloppyAgent(0)
	for range 200 {
		if _, err := a.Step(s, tick); err != nil {
			t.Fatalf("step error: %v", err)
		}
		if a.Out() {
			break
		}
	}
	if !a.Out() {
		t.Fatalf("bot typing only typos was never eliminated")
	}
	p := playerSnapshot(t, s, "bot-1")
	if p.Backspaces != 5 || p.Errors != 6 {
		t.Fatalf("bot state = %+v, want 5 backspaces and 6 errors", p)
	}
	if s.Winner() != "human" {
		t.Fatalf("winner = %q, want human", s.Winner())
	}
}

func TestBotKeepsBackspaceReserve(t *testing.T) {
	s := newRace(t)
	a := sloppyAgent(2)
	for range 200 {
		if _, err := a.Step(s, tick); err != nil {
			t.Fatalf("step error: %v", err)
		}
	}
	p := playerSnapshot(t, s, "bot-1")
	if p.Backspaces != 3 {
		t.Fatalf("backspaces = %d, want 3", p.Backspaces)
	}
	// The error gate never opens while backspaces remain.
	if a.Out() || p.Errors != 0 {
		t.Fatalf("bot state = %+v, want alive with no errors", p)
	}
}

func TestBotIdleOutsideRace(t *testing.T) {
	s := app.NewSession("r1", app.Options{})
	if _, err := s.AddPlayer("bot-1"); err != nil {
		t.Fatalf("add error: %v", err)
	}
	a := &Agent{ID: "bot-1", Tuning: Tuning{CharsPerSecond: 10}, rng: rand.New(rand.NewSource(1))}
	evs, err := a.Step(s, tick)
	if err != nil || len(evs) != 0 {
		t.Fatalf("lobby step = %v, %v; want nothing", evs, err)
	}
}
