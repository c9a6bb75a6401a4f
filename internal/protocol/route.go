package protocol

import (
	"errors"

	"typerace/internal/app"
)

// Apply runs one inbound game message against the session and returns the events to deliver.
// ping and leave involve the transport and the room directory, so hosts handle them first.
//
// A ready that completes the lobby starts the race in the same call.
func Apply(s *app.Session, playerID string, env Envelope) ([]app.Event, error) {
	switch env.T {
	case MsgReady:
		allReady, events, err := s.MarkReady(playerID)
		if err != nil || !allReady {
			return events, err
		}
		started, err := s.StartGame()
		if errors.Is(err, app.ErrAlreadyStarted) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		return append(events, started...), nil

	case MsgStart:
		return s.StartGame()

	case MsgNextSentence:
		_, events, err := s.NextSentence(playerID)
		return events, err

	case MsgSubmit:
		msg, err := DecodePayload[Submit](env)
		if err != nil {
			return nil, err
		}
		_, events, err := s.SubmitTyping(playerID, msg.Text, msg.Backspace)
		return events, err

	case MsgTyping:
		msg, err := DecodePayload[Typing](env)
		if err != nil {
			return nil, err
		}
		return s.RelayTyping(playerID, msg.Text)

	default:
		return nil, ErrUnknownType
	}
}
