package app

import "typerace/internal/domain"

var (
	ErrRoomNotFound   = domain.NewError(domain.KindNotFound, "room not found")
	ErrUnknownPlayer  = domain.NewError(domain.KindNotFound, "player not found")
	ErrTooFewPlayers  = domain.NewError(domain.KindInvalidState, "not enough players to start")
	ErrAlreadyStarted = domain.NewError(domain.KindInvalidState, "race already started")
	ErrNotStarted     = domain.NewError(domain.KindInvalidState, "race not started")
	ErrGameInProgress = domain.NewError(domain.KindInvalidState, "race in progress")
	ErrEmptyPlayerID  = domain.NewError(domain.KindInvalidState, "player id is empty")
)
