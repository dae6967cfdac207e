package matchhub

import (
	"context"
	"encoding/json"
	"errors"

	"CricketScoreApi/internal/cricket"
)

// MatchEvent is one scorer action executed serially by the hub's run loop.
type MatchEvent interface {
	execute(h *Hub)
}

type MatchEventType int

const (
	delivery MatchEventType = iota
	player
	swapStrike
	undo
	startInnings
)

// GenericEvent is the raw decoded JSON message from a scorer connection.
type GenericEvent map[string]any

func (e GenericEvent) parseEvent() (MatchEvent, error) {
	eventType, err := intFromMap(e, "type")
	if err != nil {
		return nil, ErrEventParseFailed
	}

	switch MatchEventType(eventType) {
	case delivery:
		event := DeliveryEvent{}

		runs, err := intFromMap(e, "runs")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Input.Runs = runs

		extras, err := stringFromMap(e, "extrasType")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Input.ExtrasType = cricket.ExtrasType(extras)

		isWicket, err := boolFromMap(e, "isWicket")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Input.IsWicket = isWicket

		if isWicket {
			kind, err := stringFromMap(e, "wicketKind")
			if err != nil {
				return nil, ErrEventParseFailed
			}
			wicketKind := cricket.WicketKind(kind)
			event.Input.WicketKind = &wicketKind

			playerOut, err := stringFromMap(e, "playerOut")
			if err != nil {
				return nil, ErrEventParseFailed
			}
			event.Input.PlayerOut = &playerOut

			if fielder, err := stringFromMap(e, "fielder"); err == nil && fielder != "" {
				event.Input.Fielder = &fielder
			}
		}

		if err := event.validate(); err != nil {
			return nil, err
		}
		return event, nil

	case player:
		event := PlayerEvent{}

		role, err := stringFromMap(e, "role")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Role = role

		name, err := stringFromMap(e, "name")
		if err != nil {
			return nil, ErrEventParseFailed
		}
		event.Name = name

		if err := event.validate(); err != nil {
			return nil, err
		}
		return event, nil

	case swapStrike:
		return SwapEvent{}, nil

	case undo:
		return UndoEvent{}, nil

	case startInnings:
		return StartInningsEvent{}, nil
	}

	return nil, ErrEventParseFailed
}

// DeliveryEvent records one ball. The full pipeline runs inside a single
// execute: validate preconditions, process the delivery, snapshot a
// completed innings, compute the match result, persist the whole document,
// complete a linked tournament fixture. Watchers learn of the change via
// the store's push feed.
type DeliveryEvent struct {
	Input cricket.BallInput
}

func (e DeliveryEvent) validate() error {
	switch e.Input.ExtrasType {
	case cricket.ExtrasNone, cricket.ExtrasWide, cricket.ExtrasNoBall,
		cricket.ExtrasBye, cricket.ExtrasLegBye:
	default:
		return ErrEventValidationFailed
	}
	if e.Input.Runs < 0 || e.Input.Runs > 7 {
		return ErrEventValidationFailed
	}
	return nil
}

func (e DeliveryEvent) execute(h *Hub) {
	ctx := context.Background()

	match, err := h.models.Matches.Get(ctx, h.MatchID)
	if err != nil {
		h.rejectScorer(err)
		return
	}

	if match.Meta.Status != cricket.StatusLive {
		h.rejectScorer(errors.New("match is not live"))
		return
	}
	if err := cricket.CanProgressMatch(match.State); err != nil {
		h.rejectScorer(err)
		return
	}

	striker := *match.State.CurrentStriker
	nonStriker := *match.State.CurrentNonStriker
	bowler := *match.State.CurrentBowler

	input := e.Input
	if input.PlayerOut != nil {
		resolved := resolvePlayerOut(*input.PlayerOut, striker, nonStriker)
		input.PlayerOut = &resolved
	}

	result := cricket.ProcessDelivery(match.State, match.Meta, input,
		len(match.Balls)+1, striker, nonStriker, bowler)

	match.State = result.State
	match.Meta = result.Meta
	match.Balls = append(match.Balls, result.Ball)

	if result.Changes.InningsCompleted {
		snapshot := cricket.SnapshotInnings(match, match.Balls)
		if match.Meta.Innings == 1 {
			match.Innings1 = &snapshot
		} else if match.Innings1 != nil {
			match.Innings2 = &snapshot
			matchResult := cricket.ComputeMatchResult(*match.Innings1, *match.Innings2)
			resultType := matchResult.ResultType
			match.Meta.WinningTeam = &matchResult.WinningTeam
			match.Meta.MatchResult = &matchResult.ResultText
			match.Meta.MatchResultType = &resultType
		}
	}

	if err := h.models.Matches.Update(ctx, match); err != nil {
		h.rejectScorer(err)
		return
	}

	if match.Meta.Status == cricket.StatusCompleted {
		if match.TournamentID != nil && match.FixtureID != nil {
			err := h.models.Tournaments.CompleteFixture(ctx, *match.TournamentID, *match.FixtureID)
			if err != nil {
				h.logger.PrintError(err, map[string]string{"match_id": h.MatchID})
			}
		}
		// Push the final document now; the completion callback may retire
		// the hub before the store feed delivers it.
		if doc, err := json.Marshal(match); err == nil {
			h.ToAllWatchers(doc)
		}
		if h.onCompleted != nil {
			h.onCompleted(match)
		}
	}

	response := envelope{"stateChanges": result.Changes, "ball": result.Ball}
	if result.Ball.IsWicket && !result.Changes.InningsCompleted {
		// Suggest the incoming batter so the scorer's next player
		// selection is one tap.
		battingSquad := match.Squads.BattingSquad(match.Meta)
		stats := cricket.AllBatsmanStats(match.Balls, battingSquad)
		var atCrease []string
		if match.State.CurrentStriker != nil {
			atCrease = append(atCrease, *match.State.CurrentStriker)
		}
		if match.State.CurrentNonStriker != nil {
			atCrease = append(atCrease, *match.State.CurrentNonStriker)
		}
		if next := cricket.NextBatsman(match.State.BattingOrder,
			match.State.NextBatsmanIndex, stats, atCrease...); next != nil {
			response["nextBatsman"] = *next
		}
	}
	h.ackScorer(response)
}

func resolvePlayerOut(playerOut, striker, nonStriker string) string {
	switch playerOut {
	case "striker":
		return striker
	case "nonStriker":
		return nonStriker
	default:
		return playerOut
	}
}

// PlayerEvent selects the striker, non-striker or bowler. The rules
// validator runs before anything is persisted; a rejection changes no
// state.
type PlayerEvent struct {
	Role string
	Name string
}

const (
	RoleStriker    = "striker"
	RoleNonStriker = "nonStriker"
	RoleBowler     = "bowler"
)

func (e PlayerEvent) validate() error {
	if e.Name == "" {
		return ErrEventValidationFailed
	}
	switch e.Role {
	case RoleStriker, RoleNonStriker, RoleBowler:
		return nil
	default:
		return ErrEventValidationFailed
	}
}

func (e PlayerEvent) execute(h *Hub) {
	ctx := context.Background()

	match, err := h.models.Matches.Get(ctx, h.MatchID)
	if err != nil {
		h.rejectScorer(err)
		return
	}

	state := match.State
	battingSquad := match.Squads.BattingSquad(match.Meta)

	var field string
	switch e.Role {
	case RoleStriker:
		if state.CurrentNonStriker != nil && e.Name == *state.CurrentNonStriker {
			h.rejectScorer(errors.New("player already at crease as non-striker"))
			return
		}
		err = cricket.ValidateBattingOrder(battingSquad, state.BattingOrder,
			cricket.AllBatsmanStats(match.Balls, battingSquad), e.Name)
		field = "currentStriker"
	case RoleNonStriker:
		if state.CurrentStriker != nil && e.Name == *state.CurrentStriker {
			h.rejectScorer(errors.New("player already at crease as striker"))
			return
		}
		err = cricket.ValidateBattingOrder(battingSquad, state.BattingOrder,
			cricket.AllBatsmanStats(match.Balls, battingSquad), e.Name)
		field = "currentNonStriker"
	case RoleBowler:
		err = cricket.ValidateBowlerSelection(state.CurrentBowler, state.LastOverBowler, e.Name)
		field = "currentBowler"
	}
	if err != nil {
		h.rejectScorer(err)
		return
	}

	if err := h.models.Matches.SetActivePlayer(ctx, h.MatchID, field, e.Name); err != nil {
		h.rejectScorer(err)
		return
	}

	h.ackScorer(envelope{"role": e.Role, "name": e.Name})
}

// SwapEvent rotates the strike manually, outside delivery processing.
type SwapEvent struct{}

func (e SwapEvent) execute(h *Hub) {
	ctx := context.Background()

	match, err := h.models.Matches.Get(ctx, h.MatchID)
	if err != nil {
		h.rejectScorer(err)
		return
	}

	match.State = cricket.RotateStrike(match.State)
	if err := h.models.Matches.Update(ctx, match); err != nil {
		h.rejectScorer(err)
		return
	}

	h.ackScorer(envelope{"striker": match.State.CurrentStriker})
}

// UndoEvent removes the most recent ball and rebuilds the whole state by
// replay. Innings snapshots are not unwound; undo is for correcting the
// live innings.
type UndoEvent struct{}

func (e UndoEvent) execute(h *Hub) {
	ctx := context.Background()

	match, err := h.models.Matches.Get(ctx, h.MatchID)
	if err != nil {
		h.rejectScorer(err)
		return
	}

	if len(match.Balls) == 0 {
		h.rejectScorer(errors.New("no balls to undo"))
		return
	}

	match.Balls = match.Balls[:len(match.Balls)-1]
	match.State = cricket.RecomputeState(match.Balls, match.State)

	if err := h.models.Matches.Update(ctx, match); err != nil {
		h.rejectScorer(err)
		return
	}

	h.ackScorer(envelope{"ballsRemaining": len(match.Balls)})
}

// StartInningsEvent begins the second innings from the innings break.
type StartInningsEvent struct{}

func (e StartInningsEvent) execute(h *Hub) {
	ctx := context.Background()

	match, err := h.models.Matches.Get(ctx, h.MatchID)
	if err != nil {
		h.rejectScorer(err)
		return
	}

	if match.Meta.Status != cricket.StatusInningsBreak {
		h.rejectScorer(errors.New("match is not at an innings break"))
		return
	}
	if match.Innings1 == nil {
		h.rejectScorer(errors.New("innings 1 data not found"))
		return
	}

	match.Meta, match.State = cricket.PrepareSecondInnings(match)
	match.Balls = []cricket.Ball{}

	if err := h.models.Matches.Update(ctx, match); err != nil {
		h.rejectScorer(err)
		return
	}

	h.ackScorer(envelope{"innings": match.Meta.Innings, "target": match.Meta.TargetScore})
}
