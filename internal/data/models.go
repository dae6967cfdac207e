package data

import (
	"errors"

	"CricketScoreApi/internal/store"
)

var ErrRecordNotFound = errors.New("record not found")
var ErrLockHeld = errors.New("match is locked by another admin")

type Models struct {
	Matches     MatchModel
	Tournaments TournamentModel
	Admins      AdminModel
}

func NewModels(st store.Store) Models {
	return Models{
		Matches:     MatchModel{store: st},
		Tournaments: TournamentModel{store: st},
		Admins:      AdminModel{store: st},
	}
}
