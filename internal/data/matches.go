package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"CricketScoreApi/internal/cricket"
	"CricketScoreApi/internal/store"
)

type MatchModel struct {
	store store.Store
}

// MatchPath is the record path for a match document.
func MatchPath(matchID string) string {
	return "matches/" + matchID
}

func (m MatchModel) Insert(ctx context.Context, match *cricket.MatchData) error {
	match.LastUpdatedAt = time.Now().UnixMilli()
	return m.store.Write(ctx, MatchPath(match.MatchID), match)
}

func (m MatchModel) Get(ctx context.Context, matchID string) (*cricket.MatchData, error) {
	raw, err := m.store.Read(ctx, MatchPath(matchID))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	var match cricket.MatchData
	if err := json.Unmarshal(raw, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (m MatchModel) GetAll(ctx context.Context) (map[string]*cricket.MatchData, error) {
	raw, err := m.store.List(ctx, "matches")
	if err != nil {
		return nil, err
	}

	matches := make(map[string]*cricket.MatchData, len(raw))
	for id, value := range raw {
		var match cricket.MatchData
		if err := json.Unmarshal(value, &match); err != nil {
			return nil, err
		}
		matches[id] = &match
	}
	return matches, nil
}

// Update overwrites the whole match document. Every state mutation in the
// system goes through here: read current, compute next, write the full
// value. Concurrent writers clobber each other by design (spec'd
// single-scorer social contract).
func (m MatchModel) Update(ctx context.Context, match *cricket.MatchData) error {
	match.LastUpdatedAt = time.Now().UnixMilli()
	err := m.store.Write(ctx, MatchPath(match.MatchID), match)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// AcquireLock takes scoring rights for an admin. The held check is
// advisory: there is no compare-and-swap, and two racing admins can both
// believe they hold the lock, with the last write winning.
func (m MatchModel) AcquireLock(ctx context.Context, matchID, adminID, adminName string) error {
	match, err := m.Get(ctx, matchID)
	if err != nil {
		return err
	}

	if match.Lock != nil && match.Lock.HolderID != "" && match.Lock.HolderID != adminID {
		return ErrLockHeld
	}

	lock := cricket.Lock{
		HolderID:   adminID,
		HolderName: adminName,
		AcquiredAt: time.Now().UnixMilli(),
	}
	return m.store.Write(ctx, MatchPath(matchID)+"/lock", lock)
}

func (m MatchModel) ReleaseLock(ctx context.Context, matchID string) error {
	err := m.store.Write(ctx, MatchPath(matchID)+"/lock", nil)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// SetActivePlayer merges a single selection field into the live state
// without rewriting the rest of the document. field must be one of
// currentStriker, currentNonStriker, currentBowler.
func (m MatchModel) SetActivePlayer(ctx context.Context, matchID, field, name string) error {
	err := m.store.Merge(ctx, MatchPath(matchID)+"/state", map[string]any{field: name})
	if errors.Is(err, store.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// Subscribe opens a push feed of the full match document.
func (m MatchModel) Subscribe(matchID string) *store.Subscription {
	return m.store.Subscribe(MatchPath(matchID))
}
