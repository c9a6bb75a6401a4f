package domain

import "errors"

// ErrorKind classifies request-scoped failures so transports can map them without
// string matching.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindNotFound covers unknown room or player ids.
	KindNotFound
	// KindInvalidState covers requests that are illegal in the current state.
	KindInvalidState
	// KindInvalidTier is raised when a sentence tier has no sentences registered.
	KindInvalidTier
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidTier:
		return "invalid_tier"
	default:
		return "unknown"
	}
}

// Error is the closed error type returned by the domain and app layers.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf extracts the ErrorKind from err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	ErrInvalidTier      = NewError(KindInvalidTier, "no sentences registered for tier")
	ErrNoActiveSentence = NewError(KindInvalidState, "no active sentence")
)
