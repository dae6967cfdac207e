package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CricketScoreApi/internal/cricket"
	"CricketScoreApi/internal/store"
	"CricketScoreApi/internal/tournament"
)

type TournamentModel struct {
	store store.Store
}

func TournamentPath(tournamentID string) string {
	return "tournaments/" + tournamentID
}

func (m TournamentModel) Get(ctx context.Context, tournamentID string) (*tournament.State, error) {
	raw, err := m.store.Read(ctx, TournamentPath(tournamentID))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	var state tournament.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m TournamentModel) Put(ctx context.Context, tournamentID string, state *tournament.State) error {
	return m.store.Write(ctx, TournamentPath(tournamentID), state)
}

// StartFixture creates the fixture's match and marks the fixture LIVE and
// linked in a single atomic multi-path write, so a crash between the two
// can never leave a live match without its fixture link.
func (m TournamentModel) StartFixture(ctx context.Context, tournamentID, fixtureID string,
	match *cricket.MatchData) error {

	match.LastUpdatedAt = time.Now().UnixMilli()
	fixturePath := fmt.Sprintf("%s/fixtures/%s", TournamentPath(tournamentID), fixtureID)

	err := m.store.WriteMulti(ctx, map[string]any{
		MatchPath(match.MatchID): match,
		fixturePath + "/status":  tournament.FixtureLive,
		fixturePath + "/matchId": match.MatchID,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// CompleteFixture flips the fixture's lifecycle status once its match has a
// result.
func (m TournamentModel) CompleteFixture(ctx context.Context, tournamentID, fixtureID string) error {
	path := fmt.Sprintf("%s/fixtures/%s/status", TournamentPath(tournamentID), fixtureID)
	err := m.store.Write(ctx, path, tournament.FixtureCompleted)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}
