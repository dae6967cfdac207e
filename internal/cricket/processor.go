package cricket

// BallInput is one delivery's raw outcome as entered by the scorer.
type BallInput struct {
	Runs       int         `json:"runs"`
	ExtrasType ExtrasType  `json:"extrasType"`
	IsWicket   bool        `json:"isWicket"`
	WicketKind *WicketKind `json:"wicketKind,omitempty"`
	PlayerOut  *string     `json:"playerOut,omitempty"`
	Fielder    *string     `json:"fielder,omitempty"`
}

// StateChanges flags every transition triggered by a single delivery.
type StateChanges struct {
	StrikeChanged    bool `json:"strikeChanged"`
	OverCompleted    bool `json:"overCompleted"`
	WicketFell       bool `json:"wicketFell"`
	NeedNewBatsman   bool `json:"needNewBatsman"`
	NeedNewBowler    bool `json:"needNewBowler"`
	InningsCompleted bool `json:"inningsCompleted"`
}

type DeliveryResult struct {
	Ball    Ball
	State   MatchState
	Meta    MatchMeta
	Changes StateChanges
}

// ProcessDelivery takes the current match state and meta plus one delivery's
// input and derives the next state deterministically: no I/O, no randomness,
// no mutation of its arguments. The caller must have resolved striker,
// non-striker and bowler before calling; selection preconditions are checked
// by CanProgressMatch, not re-checked here. ballNumber is the global index
// of the delivery being recorded (history length + 1).
func ProcessDelivery(state MatchState, meta MatchMeta, input BallInput, ballNumber int,
	striker, nonStriker, bowler string) DeliveryResult {

	isWide := input.ExtrasType == ExtrasWide
	isNoBall := input.ExtrasType == ExtrasNoBall
	isBye := input.ExtrasType == ExtrasBye
	isLegBye := input.ExtrasType == ExtrasLegBye
	isLegal := !isWide && !isNoBall

	// Runs off the bat are zero for wides, byes and leg-byes. The one-run
	// penalty for a wide or no-ball is tracked separately from the entered
	// run value, and both count toward the team total.
	runsByBatsman := input.Runs
	if isWide || isBye || isLegBye {
		runsByBatsman = 0
	}
	extraRuns := 0
	if isWide || isNoBall {
		extraRuns = 1
	}
	totalBallRuns := input.Runs + extraRuns

	// Snapshot the ball before any state is touched, including the free-hit
	// flag as it stood when the delivery was bowled.
	ball := Ball{
		BallNumber:      ballNumber,
		OverNumber:      state.OversBowled,
		BallInOver:      state.BallsInCurrentOver + 1,
		RunsScored:      totalBallRuns,
		RunsByBatsman:   runsByBatsman,
		ExtraRuns:       extraRuns,
		IsWide:          isWide,
		IsNoBall:        isNoBall,
		IsBye:           isBye,
		IsLegBye:        isLegBye,
		IsWicket:        input.IsWicket,
		Striker:         striker,
		NonStriker:      nonStriker,
		Bowler:          bowler,
		IsFreeHit:       state.IsFreeHit,
		PartnershipRuns: state.CurrentPartnershipRuns + totalBallRuns,
	}
	if input.IsWicket {
		ball.WicketKind = input.WicketKind
		ball.PlayerOut = input.PlayerOut
	}
	if input.Fielder != nil && *input.Fielder != "" {
		ball.Fielder = input.Fielder
	}

	newState := state
	newState.TotalRuns += totalBallRuns
	newState.CurrentPartnershipRuns += totalBallRuns

	if isLegal {
		newState.LegalBalls++
		newState.BallsInCurrentOver++
		newState.IsFreeHit = false
		newState.CurrentPartnershipBalls++
	} else if isNoBall {
		// The next delivery is a free hit. Whether a wicket is even legal on
		// it is the selection layer's concern; the processor records what it
		// is told.
		newState.IsFreeHit = true
	}

	var changes StateChanges

	if input.IsWicket {
		newState.TotalWickets++
		changes.WicketFell = true
		changes.NeedNewBatsman = true

		if input.PlayerOut != nil && *input.PlayerOut == nonStriker {
			newState.CurrentNonStriker = nil
		} else {
			newState.CurrentStriker = nil
		}

		newState.NextBatsmanIndex++
		newState.CurrentPartnershipRuns = 0
		newState.CurrentPartnershipBalls = 0
	}

	// Odd runs off the bat rotate the strike, unless a wicket fell on the
	// same delivery. Wide runs never rotate: the bat-run count for a wide is
	// zero by construction.
	if runsByBatsman%2 != 0 && !changes.WicketFell {
		newState.CurrentStriker, newState.CurrentNonStriker =
			newState.CurrentNonStriker, newState.CurrentStriker
		changes.StrikeChanged = true
	}

	if newState.BallsInCurrentOver == 6 {
		newState.OversBowled++
		newState.BallsInCurrentOver = 0
		newState.LastOverBowler = newState.CurrentBowler
		newState.CurrentBowler = nil
		changes.OverCompleted = true
		changes.NeedNewBowler = true

		// Over-end rotation is unconditional and independent of the odd-run
		// rotation above; on an odd final ball the two swaps cancel out.
		newState.CurrentStriker, newState.CurrentNonStriker =
			newState.CurrentNonStriker, newState.CurrentStriker
		changes.StrikeChanged = true
	}

	newMeta := meta
	if newState.OversBowled >= meta.OversPerInnings || newState.TotalWickets >= 10 {
		changes.InningsCompleted = true
		if meta.Innings == 1 {
			newMeta.Status = StatusInningsBreak
		} else {
			newMeta.Status = StatusCompleted
		}
	}

	// A successful chase ends the second innings immediately, regardless of
	// overs or wickets remaining.
	if meta.Innings == 2 && meta.TargetScore != nil && newState.TotalRuns >= *meta.TargetScore {
		changes.InningsCompleted = true
		newMeta.Status = StatusCompleted
	}

	return DeliveryResult{
		Ball:    ball,
		State:   newState,
		Meta:    newMeta,
		Changes: changes,
	}
}

// RotateStrike swaps the batsmen manually, outside of delivery processing.
func RotateStrike(state MatchState) MatchState {
	newState := state
	newState.CurrentStriker, newState.CurrentNonStriker =
		newState.CurrentNonStriker, newState.CurrentStriker
	return newState
}
