package main

import (
	"errors"
	"fmt"
	"net/http"

	"CricketScoreApi/internal/cricket"
	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/ids"
	"CricketScoreApi/internal/tournament"
	"CricketScoreApi/internal/validator"

	"github.com/go-chi/chi/v5"
)

// SetupTournament is one-shot: it writes the group draw and the full
// round-robin fixture list in a single document. Team IDs must come from
// the bundled rosters, since fixture matches take their squads from there.
func (app *application) SetupTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "id")

	var input struct {
		Groups struct {
			GroupA []string `json:"groupA"`
			GroupB []string `json:"groupB"`
		} `json:"groups"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(len(input.Groups.GroupA) == 4, "groups.groupA", "must contain exactly 4 teams")
	v.Check(len(input.Groups.GroupB) == 4, "groups.groupB", "must contain exactly 4 teams")
	allTeams := append(append([]string{}, input.Groups.GroupA...), input.Groups.GroupB...)
	v.Check(validator.Unique(allTeams), "groups", "must not contain duplicate teams")
	for _, teamID := range allTeams {
		if _, ok := app.rosters.Team(teamID); !ok {
			v.AddError("groups", fmt.Sprintf("unknown team %q", teamID))
		}
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	existing, err := app.models.Tournaments.Get(r.Context(), tournamentID)
	if err != nil && !errors.Is(err, data.ErrRecordNotFound) {
		app.serverErrorResponse(w, r, err)
		return
	}
	if existing != nil && existing.Config.IsSetupComplete {
		app.errorResponse(w, r, http.StatusConflict, "tournament setup is already complete")
		return
	}

	state := &tournament.State{
		Fixtures: make(map[string]tournament.Fixture),
	}
	state.Config.Groups.GroupA = input.Groups.GroupA
	state.Config.Groups.GroupB = input.Groups.GroupB
	state.Config.IsSetupComplete = true

	for _, fixture := range tournament.GenerateGroupFixtures(input.Groups.GroupA, "A") {
		state.Fixtures[fixture.ID] = fixture
	}
	for _, fixture := range tournament.GenerateGroupFixtures(input.Groups.GroupB, "B") {
		state.Fixtures[fixture.ID] = fixture
	}

	err = app.models.Tournaments.Put(r.Context(), tournamentID, state)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"tournament": state}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "id")

	state, err := app.models.Tournaments.Get(r.Context(), tournamentID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"tournament": state}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// StartFixture creates the fixture's match document from the bundled
// rosters and links it to the fixture atomically. The toss winner elects
// to bat or bowl; the batting side follows from that choice.
func (app *application) StartFixture(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "id")
	fixtureID := chi.URLParam(r, "fixtureId")

	var input struct {
		TossWinner      string `json:"tossWinner"`
		BatFirst        bool   `json:"batFirst"`
		OversPerInnings int    `json:"oversPerInnings"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.OversPerInnings == 0 {
		input.OversPerInnings = 20
	}

	v := validator.New()
	v.Check(input.TossWinner != "", "tossWinner", "must be provided")
	v.Check(input.OversPerInnings >= 1, "oversPerInnings", "must be at least 1")
	v.Check(input.OversPerInnings <= 50, "oversPerInnings", "must not be more than 50")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	state, err := app.models.Tournaments.Get(r.Context(), tournamentID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	fixture, ok := state.Fixtures[fixtureID]
	if !ok {
		app.notFoundResponse(w, r)
		return
	}
	if fixture.Status != tournament.FixtureScheduled {
		app.errorResponse(w, r, http.StatusConflict, "fixture has already been started")
		return
	}

	teamA, okA := app.rosters.Team(fixture.TeamAID)
	teamB, okB := app.rosters.Team(fixture.TeamBID)
	if !okA || !okB {
		app.serverErrorResponse(w, r, fmt.Errorf("fixture %s references unknown team", fixtureID))
		return
	}

	if !validator.PermittedValue(input.TossWinner, fixture.TeamAID, fixture.TeamBID) {
		v.AddError("tossWinner", "must be one of the fixture's two teams")
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	battingID := input.TossWinner
	if !input.BatFirst {
		battingID = fixture.TeamBID
		if input.TossWinner == fixture.TeamBID {
			battingID = fixture.TeamAID
		}
	}
	battingTeam, bowlingTeam := teamA.Name, teamB.Name
	if battingID == fixture.TeamBID {
		battingTeam, bowlingTeam = teamB.Name, teamA.Name
	}

	admin := app.contextGetAdmin(r)

	match := &cricket.MatchData{
		MatchID:      ids.NewMatchID(),
		CreatedBy:    admin.ID,
		TournamentID: &tournamentID,
		FixtureID:    &fixtureID,
		Meta: cricket.MatchMeta{
			TeamA:           teamA.Name,
			TeamB:           teamB.Name,
			OversPerInnings: input.OversPerInnings,
			Status:          cricket.StatusNotStarted,
			Innings:         1,
			BattingTeam:     battingTeam,
			BowlingTeam:     bowlingTeam,
		},
		Squads: cricket.Squads{
			TeamA: app.rosters.Squad(fixture.TeamAID),
			TeamB: app.rosters.Squad(fixture.TeamBID),
		},
		Balls: []cricket.Ball{},
	}
	match.State = cricket.NewMatchState(app.rosters.Squad(battingID))

	err = app.models.Tournaments.StartFixture(r.Context(), tournamentID, fixtureID, match)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/match/%s", match.MatchID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"match": match}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetStandings derives the league tables for both groups on demand; nothing
// about the tables is persisted.
func (app *application) GetStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "id")

	state, err := app.models.Tournaments.Get(r.Context(), tournamentID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	matchesByID := make(map[string]*cricket.MatchData)
	for _, fixture := range state.Fixtures {
		if fixture.Status != tournament.FixtureCompleted || fixture.MatchID == nil {
			continue
		}
		match, err := app.models.Matches.Get(r.Context(), *fixture.MatchID)
		if err != nil {
			if errors.Is(err, data.ErrRecordNotFound) {
				continue
			}
			app.serverErrorResponse(w, r, err)
			return
		}
		matchesByID[match.MatchID] = match
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"groupA": tournament.ComputeStandings(state.Config.Groups.GroupA, state.Fixtures, matchesByID),
		"groupB": tournament.ComputeStandings(state.Config.Groups.GroupB, state.Fixtures, matchesByID),
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
