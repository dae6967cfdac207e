package matchhub

import (
	"context"
	"io"
	"testing"

	"CricketScoreApi/internal/assert"
	"CricketScoreApi/internal/cricket"
	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/jsonlog"
	"CricketScoreApi/internal/store"
)

func testHubModel(t *testing.T) (*HubModel, data.Models) {
	t.Helper()

	models := data.NewModels(store.NewMemoryStore())
	hubs := NewHubModel(models, jsonlog.New(io.Discard, jsonlog.LevelError), nil)
	t.Cleanup(hubs.Shutdown)
	return hubs, models
}

func lockedMatch(t *testing.T, models data.Models, matchID, adminID string) {
	t.Helper()
	ctx := context.Background()

	match := &cricket.MatchData{
		MatchID: matchID,
		Meta: cricket.MatchMeta{
			TeamA:           "India",
			TeamB:           "Australia",
			OversPerInnings: 20,
			Status:          cricket.StatusNotStarted,
			Innings:         1,
			BattingTeam:     "India",
			BowlingTeam:     "Australia",
		},
		Balls: []cricket.Ball{},
	}
	assert.NilError(t, models.Matches.Insert(ctx, match))
	assert.NilError(t, models.Matches.AcquireLock(ctx, matchID, adminID, "scorer"))
}

func TestHubModel_StartScoring(t *testing.T) {
	hubs, models := testHubModel(t)
	ctx := context.Background()

	lockedMatch(t, models, "m1", "YWxpY2U")

	hub, err := hubs.StartScoring(ctx, "m1", "YWxpY2U")
	assert.NilError(t, err)
	assert.Equal(t, hub.MatchID, "m1")
	assert.Equal(t, hub.AllowedScorer, "YWxpY2U")

	// Opening the scoring session moves the match out of NOT_STARTED.
	match, err := models.Matches.Get(ctx, "m1")
	assert.NilError(t, err)
	assert.Equal(t, match.Meta.Status, cricket.StatusLive)
}

func TestHubModel_StartScoringUnknownMatch(t *testing.T) {
	hubs, _ := testHubModel(t)

	_, err := hubs.StartScoring(context.Background(), "nope", "YWxpY2U")
	assert.Equal(t, err, error(ErrMatchNotFound))
}

func TestHubModel_StartScoringWithoutLock(t *testing.T) {
	hubs, models := testHubModel(t)
	ctx := context.Background()

	lockedMatch(t, models, "m1", "YWxpY2U")

	_, err := hubs.StartScoring(ctx, "m1", "Ym9i")
	assert.Equal(t, err, error(ErrScorerNotAuthorized))
}

func TestHubModel_StartScoringCompletedMatch(t *testing.T) {
	hubs, models := testHubModel(t)
	ctx := context.Background()

	lockedMatch(t, models, "m1", "YWxpY2U")
	match, err := models.Matches.Get(ctx, "m1")
	assert.NilError(t, err)
	match.Meta.Status = cricket.StatusCompleted
	assert.NilError(t, models.Matches.Update(ctx, match))

	_, err = hubs.StartScoring(ctx, "m1", "YWxpY2U")
	assert.Equal(t, err, error(ErrMatchCompleted))
}

func TestHubModel_StartScoringFollowsTheLock(t *testing.T) {
	hubs, models := testHubModel(t)
	ctx := context.Background()

	lockedMatch(t, models, "m1", "YWxpY2U")

	first, err := hubs.StartScoring(ctx, "m1", "YWxpY2U")
	assert.NilError(t, err)

	// The lock moves to another admin; the same hub must accept them.
	assert.NilError(t, models.Matches.ReleaseLock(ctx, "m1"))
	assert.NilError(t, models.Matches.AcquireLock(ctx, "m1", "Ym9i", "bob"))

	second, err := hubs.StartScoring(ctx, "m1", "Ym9i")
	assert.NilError(t, err)
	assert.Equal(t, first == second, true)
	assert.Equal(t, second.AllowedScorer, "Ym9i")
}

func TestHubModel_Watch(t *testing.T) {
	hubs, models := testHubModel(t)
	ctx := context.Background()

	lockedMatch(t, models, "m1", "YWxpY2U")

	hub, err := hubs.Watch(ctx, "m1")
	assert.NilError(t, err)
	assert.Equal(t, hub.MatchID, "m1")
	// A watch-created hub has no authorized scorer.
	assert.Equal(t, hub.AllowedScorer, "")

	_, err = hubs.Watch(ctx, "nope")
	assert.Equal(t, err, error(ErrMatchNotFound))
}
