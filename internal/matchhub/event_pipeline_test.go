package matchhub

import (
	"context"
	"testing"

	"CricketScoreApi/internal/assert"
	"CricketScoreApi/internal/cricket"
	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/tournament"
)

// The tests below drive events through execute exactly as the run loop
// does, against an in-memory store, without any websocket plumbing.

func liveMatch(t *testing.T, models data.Models, matchID string, overs int) {
	t.Helper()
	ctx := context.Background()

	squadA := []string{"Asha", "Binod", "Deepa"}
	match := &cricket.MatchData{
		MatchID: matchID,
		Meta: cricket.MatchMeta{
			TeamA:           "India",
			TeamB:           "Australia",
			OversPerInnings: overs,
			Status:          cricket.StatusLive,
			Innings:         1,
			BattingTeam:     "India",
			BowlingTeam:     "Australia",
		},
		Squads: cricket.Squads{
			TeamA: squadA,
			TeamB: []string{"Chetan", "Dinesh", "Esha"},
		},
		State: cricket.NewMatchState(squadA),
		Balls: []cricket.Ball{},
	}
	assert.NilError(t, models.Matches.Insert(ctx, match))
}

func selectPlayers(t *testing.T, h *Hub, striker, nonStriker, bowler string) {
	t.Helper()

	PlayerEvent{Role: RoleStriker, Name: striker}.execute(h)
	PlayerEvent{Role: RoleNonStriker, Name: nonStriker}.execute(h)
	PlayerEvent{Role: RoleBowler, Name: bowler}.execute(h)

	match := getMatch(t, h.models, h.MatchID)
	if match.State.CurrentStriker == nil || match.State.CurrentNonStriker == nil ||
		match.State.CurrentBowler == nil {
		t.Fatal("player selection was rejected")
	}
}

func bowl(h *Hub, runs int) {
	DeliveryEvent{Input: cricket.BallInput{
		Runs:       runs,
		ExtrasType: cricket.ExtrasNone,
	}}.execute(h)
}

func getMatch(t *testing.T, models data.Models, matchID string) *cricket.MatchData {
	t.Helper()
	match, err := models.Matches.Get(context.Background(), matchID)
	assert.NilError(t, err)
	return match
}

func TestDeliveryEvents_FullFixtureMatch(t *testing.T) {
	hubs, models := testHubModel(t)
	ctx := context.Background()

	// A one-over fixture match, started through the hub model so the
	// completed match also retires its hub.
	lockedMatch(t, models, "m1", "YWxpY2U")
	match := getMatch(t, models, "m1")
	tournamentID, fixtureID := "t1", "f1"
	match.TournamentID = &tournamentID
	match.FixtureID = &fixtureID
	match.Meta.OversPerInnings = 1
	match.Squads = cricket.Squads{
		TeamA: []string{"Asha", "Binod", "Deepa"},
		TeamB: []string{"Chetan", "Dinesh", "Esha"},
	}
	match.State = cricket.NewMatchState(match.Squads.TeamA)
	assert.NilError(t, models.Matches.Update(ctx, match))

	state := &tournament.State{Fixtures: map[string]tournament.Fixture{
		fixtureID: {
			ID:      fixtureID,
			TeamAID: "t_a",
			TeamBID: "t_b",
			Group:   "A",
			Status:  tournament.FixtureLive,
			MatchID: &match.MatchID,
		},
	}}
	assert.NilError(t, models.Tournaments.Put(ctx, tournamentID, state))

	var completed *cricket.MatchData
	hubs.onCompleted = func(m *cricket.MatchData) { completed = m }

	hub, err := hubs.StartScoring(ctx, "m1", "YWxpY2U")
	assert.NilError(t, err)

	selectPlayers(t, hub, "Asha", "Binod", "Chetan")
	for i := 0; i < 6; i++ {
		bowl(hub, 2)
	}

	match = getMatch(t, models, "m1")
	assert.Equal(t, match.Meta.Status, cricket.StatusInningsBreak)
	assert.Equal(t, len(match.Balls), 6)
	if match.Innings1 == nil {
		t.Fatal("expected an innings 1 snapshot")
	}
	assert.Equal(t, match.Innings1.TotalRuns, 12)
	assert.Equal(t, match.Innings1.BattingTeam, "India")

	StartInningsEvent{}.execute(hub)

	match = getMatch(t, models, "m1")
	assert.Equal(t, match.Meta.Status, cricket.StatusLive)
	assert.Equal(t, match.Meta.Innings, 2)
	assert.Equal(t, match.Meta.BattingTeam, "Australia")
	assert.Equal(t, *match.Meta.TargetScore, 13)
	assert.Equal(t, len(match.Balls), 0)

	selectPlayers(t, hub, "Chetan", "Dinesh", "Asha")
	bowl(hub, 6)
	bowl(hub, 6)

	match = getMatch(t, models, "m1")
	assert.Equal(t, match.Meta.Status, cricket.StatusLive)
	assert.Equal(t, match.State.TotalRuns, 12)

	// The winning run: chase complete mid-over.
	bowl(hub, 1)

	match = getMatch(t, models, "m1")
	assert.Equal(t, match.Meta.Status, cricket.StatusCompleted)
	assert.Equal(t, *match.Meta.WinningTeam, "Australia")
	assert.Equal(t, *match.Meta.MatchResult, "Australia won by 10 wickets")

	fixtures, err := models.Tournaments.Get(ctx, tournamentID)
	assert.NilError(t, err)
	assert.Equal(t, fixtures.Fixtures[fixtureID].Status, tournament.FixtureCompleted)

	if completed == nil {
		t.Fatal("completion callback did not fire")
	}
	assert.Equal(t, completed.MatchID, "m1")

	// The finished match's hub is retired rather than held until shutdown.
	assert.Equal(t, hubs.ActiveCount(), 0)
}

func TestDeliveryEvent_WicketSuggestsNextBatsman(t *testing.T) {
	hubs, models := testHubModel(t)
	liveMatch(t, models, "m1", 20)

	hub, err := hubs.Watch(context.Background(), "m1")
	assert.NilError(t, err)
	selectPlayers(t, hub, "Asha", "Binod", "Chetan")

	kind := cricket.WicketBowled
	playerOut := "striker"
	DeliveryEvent{Input: cricket.BallInput{
		ExtrasType: cricket.ExtrasNone,
		IsWicket:   true,
		WicketKind: &kind,
		PlayerOut:  &playerOut,
	}}.execute(hub)

	match := getMatch(t, models, "m1")
	assert.Equal(t, match.State.TotalWickets, 1)
	if match.State.CurrentStriker != nil {
		t.Fatal("dismissed striker should have vacated the crease")
	}
	// The striker alias resolved to the actual batter.
	assert.Equal(t, *match.Balls[0].PlayerOut, "Asha")

	// The suggestion the ack carries: the first available batter who is
	// neither out nor already at the crease.
	stats := cricket.AllBatsmanStats(match.Balls, match.Squads.TeamA)
	next := cricket.NextBatsman(match.State.BattingOrder, match.State.NextBatsmanIndex,
		stats, *match.State.CurrentNonStriker)
	if next == nil {
		t.Fatal("expected a next batsman suggestion")
	}
	assert.Equal(t, *next, "Deepa")
}

func TestDeliveryEvent_RequiresActivePlayers(t *testing.T) {
	hubs, models := testHubModel(t)
	liveMatch(t, models, "m1", 20)

	hub, err := hubs.Watch(context.Background(), "m1")
	assert.NilError(t, err)

	bowl(hub, 4)

	match := getMatch(t, models, "m1")
	assert.Equal(t, len(match.Balls), 0)
	assert.Equal(t, match.State.TotalRuns, 0)
}

func TestDeliveryEvent_RequiresLiveMatch(t *testing.T) {
	hubs, models := testHubModel(t)
	ctx := context.Background()
	liveMatch(t, models, "m1", 20)

	match := getMatch(t, models, "m1")
	match.Meta.Status = cricket.StatusInningsBreak
	assert.NilError(t, models.Matches.Update(ctx, match))

	hub, err := hubs.Watch(ctx, "m1")
	assert.NilError(t, err)
	bowl(hub, 4)

	match = getMatch(t, models, "m1")
	assert.Equal(t, len(match.Balls), 0)
}

func TestSwapEvent_RotatesStrike(t *testing.T) {
	hubs, models := testHubModel(t)
	liveMatch(t, models, "m1", 20)

	hub, err := hubs.Watch(context.Background(), "m1")
	assert.NilError(t, err)
	selectPlayers(t, hub, "Asha", "Binod", "Chetan")

	SwapEvent{}.execute(hub)

	match := getMatch(t, models, "m1")
	assert.Equal(t, *match.State.CurrentStriker, "Binod")
	assert.Equal(t, *match.State.CurrentNonStriker, "Asha")
}

func TestPlayerEvent_RejectsBatterAlreadyAtCrease(t *testing.T) {
	hubs, models := testHubModel(t)
	liveMatch(t, models, "m1", 20)

	hub, err := hubs.Watch(context.Background(), "m1")
	assert.NilError(t, err)
	PlayerEvent{Role: RoleStriker, Name: "Asha"}.execute(hub)
	PlayerEvent{Role: RoleNonStriker, Name: "Asha"}.execute(hub)

	match := getMatch(t, models, "m1")
	assert.Equal(t, *match.State.CurrentStriker, "Asha")
	if match.State.CurrentNonStriker != nil {
		t.Fatal("non-striker selection should have been rejected")
	}
}

func TestUndoEvent_ReplaysHistory(t *testing.T) {
	hubs, models := testHubModel(t)
	liveMatch(t, models, "m1", 20)

	hub, err := hubs.Watch(context.Background(), "m1")
	assert.NilError(t, err)
	selectPlayers(t, hub, "Asha", "Binod", "Chetan")

	bowl(hub, 4)
	bowl(hub, 1)

	match := getMatch(t, models, "m1")
	assert.Equal(t, match.State.TotalRuns, 5)
	assert.Equal(t, match.State.LegalBalls, 2)
	assert.Equal(t, *match.State.CurrentStriker, "Binod")

	UndoEvent{}.execute(hub)

	match = getMatch(t, models, "m1")
	assert.Equal(t, match.State.TotalRuns, 4)
	assert.Equal(t, match.State.LegalBalls, 1)
	assert.Equal(t, len(match.Balls), 1)
	assert.Equal(t, *match.State.CurrentStriker, "Asha")
	assert.Equal(t, *match.State.CurrentNonStriker, "Binod")
	assert.Equal(t, *match.State.CurrentBowler, "Chetan")

	// Undoing the last remaining ball zeroes the innings but keeps the
	// selected players in place.
	UndoEvent{}.execute(hub)

	match = getMatch(t, models, "m1")
	assert.Equal(t, match.State.TotalRuns, 0)
	assert.Equal(t, len(match.Balls), 0)
	assert.Equal(t, *match.State.CurrentStriker, "Asha")

	// Nothing left to undo: a no-op, not a crash.
	UndoEvent{}.execute(hub)
	match = getMatch(t, models, "m1")
	assert.Equal(t, len(match.Balls), 0)
}

func TestStartInningsEvent_RequiresInningsBreak(t *testing.T) {
	hubs, models := testHubModel(t)
	liveMatch(t, models, "m1", 20)

	hub, err := hubs.Watch(context.Background(), "m1")
	assert.NilError(t, err)
	StartInningsEvent{}.execute(hub)

	match := getMatch(t, models, "m1")
	assert.Equal(t, match.Meta.Innings, 1)
	assert.Equal(t, match.Meta.Status, cricket.StatusLive)
}
