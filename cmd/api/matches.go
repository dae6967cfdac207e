package main

import (
	"errors"
	"fmt"
	"net/http"

	"CricketScoreApi/internal/cricket"
	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/ids"
	"CricketScoreApi/internal/matchhub"
	"CricketScoreApi/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (app *application) InsertMatch(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TeamA           string `json:"teamA"`
		TeamB           string `json:"teamB"`
		OversPerInnings int    `json:"oversPerInnings"`
		BattingFirst    string `json:"battingFirst"`
		Squads          struct {
			TeamA []string `json:"teamA"`
			TeamB []string `json:"teamB"`
		} `json:"squads"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.BattingFirst == "" {
		input.BattingFirst = input.TeamA
	}

	v := validator.New()
	v.Check(input.TeamA != "", "teamA", "must be provided")
	v.Check(input.TeamB != "", "teamB", "must be provided")
	v.Check(input.TeamA != input.TeamB, "teamB", "must differ from teamA")
	v.Check(input.OversPerInnings >= 1, "oversPerInnings", "must be at least 1")
	v.Check(input.OversPerInnings <= 50, "oversPerInnings", "must not be more than 50")
	v.Check(len(input.Squads.TeamA) >= 2, "squads.teamA", "must contain at least 2 players")
	v.Check(len(input.Squads.TeamA) <= 11, "squads.teamA", "must not contain more than 11 players")
	v.Check(len(input.Squads.TeamB) >= 2, "squads.teamB", "must contain at least 2 players")
	v.Check(len(input.Squads.TeamB) <= 11, "squads.teamB", "must not contain more than 11 players")
	v.Check(validator.Unique(input.Squads.TeamA), "squads.teamA", "must not contain duplicate players")
	v.Check(validator.Unique(input.Squads.TeamB), "squads.teamB", "must not contain duplicate players")
	v.Check(validator.PermittedValue(input.BattingFirst, input.TeamA, input.TeamB),
		"battingFirst", "must be one of the two teams")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	bowlingFirst := input.TeamA
	battingSquad := input.Squads.TeamB
	if input.BattingFirst == input.TeamA {
		bowlingFirst = input.TeamB
		battingSquad = input.Squads.TeamA
	}

	admin := app.contextGetAdmin(r)

	match := &cricket.MatchData{
		MatchID:   ids.NewMatchID(),
		CreatedBy: admin.ID,
		Meta: cricket.MatchMeta{
			TeamA:           input.TeamA,
			TeamB:           input.TeamB,
			OversPerInnings: input.OversPerInnings,
			Status:          cricket.StatusNotStarted,
			Innings:         1,
			BattingTeam:     input.BattingFirst,
			BowlingTeam:     bowlingFirst,
		},
		Squads: cricket.Squads{
			TeamA: input.Squads.TeamA,
			TeamB: input.Squads.TeamB,
		},
		State: cricket.NewMatchState(battingSquad),
		Balls: []cricket.Ball{},
	}

	err = app.models.Matches.Insert(r.Context(), match)
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

func (app *application) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	match, err := app.models.Matches.Get(r.Context(), matchID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"match": match}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetAllMatches(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	statuses := app.readCSMatchStatus(r.URL.Query(), nil, v)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	matches, err := app.models.Matches.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if statuses != nil {
		for id, match := range matches {
			keep := false
			for _, status := range statuses {
				if match.Meta.Status == status {
					keep = true
					break
				}
			}
			if !keep {
				delete(matches, id)
			}
		}
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"matches": matches}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetScorecard derives the full scorecard on demand. Nothing here is read
// from storage beyond the match document itself; every figure is recomputed
// from the ball history.
func (app *application) GetScorecard(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	match, err := app.models.Matches.Get(r.Context(), matchID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"matchId":  match.MatchID,
		"meta":     match.Meta,
		"innings1": match.Innings1,
		"innings2": match.Innings2,
		"summary":  cricket.MatchSummary(match),
	}

	if match.Meta.Status != cricket.StatusCompleted {
		current := cricket.SnapshotInnings(match, match.Balls)
		response["current"] = current
		response["runRate"] = cricket.RunRate(match.State.TotalRuns, match.State.LegalBalls)

		if match.Meta.TargetScore != nil {
			ballsRemaining := match.Meta.OversPerInnings*6 - match.State.LegalBalls
			response["requiredRunRate"] = cricket.RequiredRunRate(*match.Meta.TargetScore,
				match.State.TotalRuns, ballsRemaining)
		}
	}

	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) AcquireMatchLock(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")
	admin := app.contextGetAdmin(r)

	err := app.models.Matches.AcquireLock(r.Context(), matchID, admin.ID, admin.Username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrLockHeld):
			app.lockHeldResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"matchId":  matchID,
		"holderId": admin.ID,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ReleaseMatchLock(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")
	admin := app.contextGetAdmin(r)

	match, err := app.models.Matches.Get(r.Context(), matchID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if match.Lock != nil && match.Lock.HolderID != "" && match.Lock.HolderID != admin.ID {
		app.lockHeldResponse(w, r)
		return
	}

	err = app.models.Matches.ReleaseLock(r.Context(), matchID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "lock released"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ScoreMatch upgrades to a websocket scoring session. Browsers cannot set
// headers on the websocket handshake, so the admin ID may also arrive as a
// token query parameter.
func (app *application) ScoreMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	admin := app.contextGetAdmin(r)
	if admin.IsAnonymous() {
		token := r.URL.Query().Get("token")
		username, err := ids.DecodeAdminID(token)
		if err != nil {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}
		admin = adminIdentity{ID: token, Username: username}
	}

	hub, err := app.hubs.StartScoring(r.Context(), matchID, admin.ID)
	if err != nil {
		switch {
		case errors.Is(err, matchhub.ErrMatchNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, matchhub.ErrMatchCompleted):
			app.errorResponse(w, r, http.StatusConflict, "match is already completed")
		case errors.Is(err, matchhub.ErrScorerNotAuthorized):
			app.notPermittedResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logError(r, err)
		return
	}

	err = hub.JoinScorer(admin.ID, conn)
	if err != nil {
		app.logError(r, err)
		conn.Close()
	}
}

func (app *application) WatchMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	hub, err := app.hubs.Watch(r.Context(), matchID)
	if err != nil {
		switch {
		case errors.Is(err, matchhub.ErrMatchNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logError(r, err)
		return
	}

	hub.JoinAsWatcher(conn)
}

// notifyMatchCompleted runs when a scoring hub finishes a match. The email
// is best effort; a send failure is logged and otherwise ignored.
func (app *application) notifyMatchCompleted(match *cricket.MatchData) {
	properties := map[string]string{"match_id": match.MatchID}
	if match.Meta.MatchResult != nil {
		properties["result"] = *match.Meta.MatchResult
	}
	app.logger.PrintInfo("match completed", properties)

	if !app.config.smtp.enabled || app.config.smtp.recipient == "" {
		return
	}

	scorerName := ""
	if match.Lock != nil {
		scorerName = match.Lock.HolderName
	}
	resultText := ""
	if match.Meta.MatchResult != nil {
		resultText = *match.Meta.MatchResult
	}

	templateData := map[string]any{
		"TeamA":           match.Meta.TeamA,
		"TeamB":           match.Meta.TeamB,
		"OversPerInnings": match.Meta.OversPerInnings,
		"ResultText":      resultText,
		"Innings1Line":    inningsLine(match.Innings1),
		"Innings2Line":    inningsLine(match.Innings2),
		"ScorerName":      scorerName,
	}

	app.backgroundTask(func() {
		err := app.mailer.Send(app.config.smtp.recipient, "match_result.tmpl", templateData)
		if err != nil {
			app.logger.PrintError(err, map[string]string{"match_id": match.MatchID})
		}
	})
}

func inningsLine(innings *cricket.InningsData) string {
	if innings == nil {
		return ""
	}
	return fmt.Sprintf("%s %d/%d (%d.%d ov)", innings.BattingTeam, innings.TotalRuns,
		innings.TotalWickets, innings.OversBowled, innings.BallsInCurrentOver)
}
