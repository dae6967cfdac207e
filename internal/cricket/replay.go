package cricket

// RecomputeState rebuilds the live state from scratch by replaying the ball
// history. This is the backbone of undo: the caller truncates the history by
// one ball and replaces the whole state with the replayed one, so no
// incremental counter can ever drift from the record.
//
// The active players are restored from the snapshot on the new final ball;
// with an empty history the previous selections are kept. The free-hit flag
// is re-derived from whether the final ball was a no-ball, and the last-over
// bowler from the first recorded ball of the previous over.
func RecomputeState(balls []Ball, previous MatchState) MatchState {
	totalRuns, totalWickets, legalBalls := 0, 0, 0
	partnershipRuns, partnershipBalls := 0, 0

	for _, b := range balls {
		totalRuns += b.RunsScored
		if b.IsLegal() {
			legalBalls++
			partnershipBalls++
		}
		partnershipRuns += b.RunsScored
		if b.IsWicket {
			totalWickets++
			partnershipRuns, partnershipBalls = 0, 0
		}
	}

	state := MatchState{
		TotalRuns:               totalRuns,
		TotalWickets:            totalWickets,
		LegalBalls:              legalBalls,
		OversBowled:             legalBalls / 6,
		BallsInCurrentOver:      legalBalls % 6,
		CurrentStriker:          previous.CurrentStriker,
		CurrentNonStriker:       previous.CurrentNonStriker,
		CurrentBowler:           previous.CurrentBowler,
		BattingOrder:            previous.BattingOrder,
		NextBatsmanIndex:        totalWickets,
		CurrentPartnershipRuns:  partnershipRuns,
		CurrentPartnershipBalls: partnershipBalls,
	}
	if state.BattingOrder == nil {
		state.BattingOrder = []string{}
	}

	if len(balls) > 0 {
		lastBall := balls[len(balls)-1]
		striker := lastBall.Striker
		nonStriker := lastBall.NonStriker
		bowler := lastBall.Bowler
		state.CurrentStriker = &striker
		state.CurrentNonStriker = &nonStriker
		state.CurrentBowler = &bowler
		state.IsFreeHit = lastBall.IsNoBall
	}

	state.LastOverBowler = LastOverBowler(balls, state.OversBowled)

	return state
}
