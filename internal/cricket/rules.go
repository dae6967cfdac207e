package cricket

import (
	"fmt"
	"slices"
)

// RuleError is a validation failure with a reason fit for showing to the
// scorer. No state has changed when one is returned.
type RuleError struct {
	Reason string
}

func (e RuleError) Error() string {
	return e.Reason
}

// ValidateBowlerSelection enforces the one bowling restriction this system
// models: a bowler cannot bowl two consecutive overs. There is no cap on a
// bowler's total overs.
func ValidateBowlerSelection(currentBowler, lastOverBowler *string, proposed string) error {
	if lastOverBowler == nil || *lastOverBowler == "" {
		return nil
	}
	if proposed == *lastOverBowler {
		return RuleError{Reason: fmt.Sprintf(
			"%s bowled the last over and cannot bowl consecutive overs", proposed)}
	}
	return nil
}

// ValidateBattingOrder rejects a proposed batsman who is not in the squad or
// has already been dismissed. When no batting order is tracked, any player
// is allowed.
func ValidateBattingOrder(squad, battingOrder []string,
	batsmanStats map[string]BatsmanStats, proposed string) error {

	if len(battingOrder) == 0 {
		return nil
	}
	if !slices.Contains(squad, proposed) {
		return RuleError{Reason: fmt.Sprintf("%s is not in the squad", proposed)}
	}
	if stats, ok := batsmanStats[proposed]; ok && stats.IsOut {
		return RuleError{Reason: fmt.Sprintf("%s is already out and cannot bat again", proposed)}
	}
	return nil
}

// CanProgressMatch checks the processor's preconditions: all three active
// players selected, and the two batsmen distinct. Callers must pass this
// before ProcessDelivery; the processor itself does not re-validate.
func CanProgressMatch(state MatchState) error {
	if state.CurrentStriker == nil || *state.CurrentStriker == "" {
		return RuleError{Reason: "please select a striker"}
	}
	if state.CurrentNonStriker == nil || *state.CurrentNonStriker == "" {
		return RuleError{Reason: "please select a non-striker"}
	}
	if state.CurrentBowler == nil || *state.CurrentBowler == "" {
		return RuleError{Reason: "please select a bowler"}
	}
	if *state.CurrentStriker == *state.CurrentNonStriker {
		return RuleError{Reason: "striker and non-striker cannot be the same player"}
	}
	return nil
}

// NextBatsman scans the batting order from nextBatsmanIndex forward and
// returns the first player neither recorded as out nor already at the
// crease, or nil if the order is exhausted or untracked.
func NextBatsman(battingOrder []string, nextBatsmanIndex int,
	batsmanStats map[string]BatsmanStats, atCrease ...string) *string {

	if len(battingOrder) == 0 {
		return nil
	}
	if nextBatsmanIndex < 0 {
		nextBatsmanIndex = 0
	}
	for i := nextBatsmanIndex; i < len(battingOrder); i++ {
		player := battingOrder[i]
		if slices.Contains(atCrease, player) {
			continue
		}
		if stats, ok := batsmanStats[player]; !ok || !stats.IsOut {
			return &player
		}
	}
	return nil
}

// IsInningsComplete reports whether the innings has run out of overs or
// wickets. The second-innings early finish is checked by IsTargetChased.
func IsInningsComplete(state MatchState, meta MatchMeta) bool {
	return state.OversBowled >= meta.OversPerInnings || state.TotalWickets >= 10
}

// IsTargetChased reports whether the chasing side has reached the target.
func IsTargetChased(currentRuns int, targetScore *int) bool {
	return targetScore != nil && currentRuns >= *targetScore
}

// LastOverBowler returns the bowler of the over before currentOverNumber
// from the recorded history, or nil for the first over.
func LastOverBowler(balls []Ball, currentOverNumber int) *string {
	if currentOverNumber == 0 {
		return nil
	}
	for _, b := range balls {
		if b.OverNumber == currentOverNumber-1 {
			bowler := b.Bowler
			return &bowler
		}
	}
	return nil
}
