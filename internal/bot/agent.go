package bot

import (
	"errors"
	"time"

	"typerace/internal/app"
	"typerace/internal/domain"
)

// Agent is an autonomous typist. It is stepped from the host's tick and talks to the session
// exactly like a client would.
type Agent struct {
	ID     string
	Name   string
	Tuning Tuning

	rng            randSource
	sentence       []rune
	typed          []rune
	backspacesLeft int
	credit         float64
	out            bool
}

type randSource interface {
	Float64() float64
}

// Out reports whether the agent was eliminated and has stopped typing.
func (a *Agent) Out() bool {
	return a.out
}

// Step advances the agent by dt and returns the session events its actions produced.
//
// A fresh sentence is only fetched on one step and typed from the next, which gives the bot a
// reaction delay of one tick.
func (a *Agent) Step(s *app.Session, dt time.Duration) ([]app.Event, error) {
	if a.out || s.Phase() != domain.PhasePlaying {
		return nil, nil
	}

	if a.sentence == nil {
		asg, events, err := s.NextSentence(a.ID)
		if err != nil || asg.Pending || asg.Sentence == "" {
			return nil, err
		}
		a.sentence = []rune(asg.Sentence)
		a.typed = a.typed[:0]
		a.backspacesLeft = asg.BackspacesLeft
		return events, nil
	}

	if n := len(a.typed); n > 0 && a.typed[n-1] != a.sentence[n-1] && a.backspacesLeft > a.Tuning.ReserveBackspaces {
		a.typed = a.typed[:n-1]
		return a.submit(s, true)
	}

	a.credit += a.Tuning.CharsPerSecond * dt.Seconds()
	keys := int(a.credit)
	if keys == 0 {
		return nil, nil
	}
	a.credit -= float64(keys)

	for i := 0; i < keys && len(a.typed) < len(a.sentence); i++ {
		want := a.sentence[len(a.typed)]
		got := want
		if a.rng.Float64() < a.Tuning.TypoRate {
			got = typo(want)
		}
		a.typed = append(a.typed, got)
		if got != want {
			break
		}
	}
	return a.submit(s, false)
}

func (a *Agent) submit(s *app.Session, backspace bool) ([]app.Event, error) {
	res, events, err := s.SubmitTyping(a.ID, string(a.typed), backspace)
	if errors.Is(err, domain.ErrNoActiveSentence) {
		a.sentence = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.backspacesLeft = res.MaxBackspaces - res.Backspaces
	if res.Completed {
		if res.Correct {
			a.sentence = nil
		}
		a.typed = a.typed[:0]
	}
	if res.Eliminated {
		a.out = true
	}
	return events, nil
}

func typo(r rune) rune {
	if r == 'x' {
		return 'z'
	}
	return 'x'
}
