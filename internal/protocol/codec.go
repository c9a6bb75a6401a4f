package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"typerace/internal/app"
	"typerace/internal/domain"
)

var (
	// ErrMalformed wraps every decoding failure so hosts can answer with a 400.
	ErrMalformed    = errors.New("malformed message")
	ErrEmptyType    = fmt.Errorf("%w: envelope type is empty", ErrMalformed)
	ErrEmptyMessage = fmt.Errorf("%w: message is empty", ErrMalformed)
	ErrUnknownType  = fmt.Errorf("%w: unknown message type", ErrMalformed)
	ErrNilPayload   = errors.New("payload is nil")
)

// Encode frames payload as a JSON envelope of type t.
func Encode(t Type, payload any) ([]byte, error) {
	if t == "" {
		return nil, ErrEmptyType
	}
	if payload == nil {
		return nil, ErrNilPayload
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// DecodeEnvelope parses the outer frame only.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.T == "" {
		return Envelope{}, ErrEmptyType
	}
	return e, nil
}

// DecodePayload unmarshals the payload of env into T. An absent payload yields the zero T, since
// several inbound messages carry none.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 || string(env.P) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.T, err)
	}
	return out, nil
}

// FromEvent returns the wire type and payload for a session event.
func FromEvent(ev app.Event) (Type, any) {
	return Type(ev.Kind), ev.Payload
}

// ErrorFor maps an error to the payload sent back to the offending player.
func ErrorFor(err error) Error {
	if errors.Is(err, ErrMalformed) {
		return Error{Code: 400, Kind: "malformed", Message: err.Error()}
	}
	kind := domain.KindOf(err)
	code := 500
	switch kind {
	case domain.KindNotFound:
		code = 404
	case domain.KindInvalidState:
		code = 409
	}
	return Error{Code: code, Kind: kind.String(), Message: err.Error()}
}
