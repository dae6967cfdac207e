package cricket

import "fmt"

// SnapshotInnings computes and freezes the statistics of a just-completed
// innings. It is called exactly once per innings, when the processor reports
// inningsCompleted; the returned snapshot is never mutated afterward.
func SnapshotInnings(match *MatchData, balls []Ball) InningsData {
	battingSquad := match.Squads.BattingSquad(match.Meta)
	bowlingSquad := match.Squads.BowlingSquad(match.Meta)

	return InningsData{
		BattingTeam:        match.Meta.BattingTeam,
		BowlingTeam:        match.Meta.BowlingTeam,
		TotalRuns:          match.State.TotalRuns,
		TotalWickets:       match.State.TotalWickets,
		OversBowled:        match.State.OversBowled,
		BallsInCurrentOver: match.State.BallsInCurrentOver,
		LegalBalls:         match.State.LegalBalls,
		FallOfWickets:      FallOfWickets(balls),
		Partnerships:       Partnerships(balls),
		BatsmanStats:       AllBatsmanStats(balls, battingSquad),
		BowlerStats:        AllBowlerStats(balls, bowlingSquad),
		Extras:             ExtrasBreakdown(balls),
	}
}

// PrepareSecondInnings derives the meta and state for the start of innings
// 2: target is the first-innings total plus one, the teams swap roles, and
// every live counter resets. The batting order carries over when tracked.
func PrepareSecondInnings(match *MatchData) (MatchMeta, MatchState) {
	targetScore := match.State.TotalRuns + 1

	newMeta := match.Meta
	newMeta.Innings = 2
	newMeta.BattingTeam = match.Meta.BowlingTeam
	newMeta.BowlingTeam = match.Meta.BattingTeam
	newMeta.TargetScore = &targetScore
	newMeta.Status = StatusLive

	newState := NewMatchState(match.State.BattingOrder)

	return newMeta, newState
}

// MatchResult is the computed outcome of a completed two-innings match.
type MatchResult struct {
	WinningTeam string     `json:"winningTeam"`
	ResultText  string     `json:"resultText"`
	ResultType  ResultType `json:"resultType"`
}

// ComputeMatchResult compares the two frozen innings. Equal totals tie; a
// higher chasing total wins by wickets in hand; otherwise the defending
// side wins by the run margin.
func ComputeMatchResult(innings1, innings2 InningsData) MatchResult {
	team1 := innings1.BattingTeam
	team2 := innings2.BattingTeam
	team1Score := innings1.TotalRuns
	team2Score := innings2.TotalRuns

	if team1Score == team2Score {
		return MatchResult{
			WinningTeam: "Tie",
			ResultText:  "Match tied",
			ResultType:  ResultTie,
		}
	}

	if team2Score > team1Score {
		wicketsRemaining := 10 - innings2.TotalWickets
		return MatchResult{
			WinningTeam: team2,
			ResultText: fmt.Sprintf("%s won by %d wicket%s", team2, wicketsRemaining,
				plural(wicketsRemaining)),
			ResultType: ResultWickets,
		}
	}

	runsDifference := team1Score - team2Score
	return MatchResult{
		WinningTeam: team1,
		ResultText: fmt.Sprintf("%s won by %d run%s", team1, runsDifference,
			plural(runsDifference)),
		ResultType: ResultRuns,
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// MatchSummary renders a one-line status for lists and notifications.
func MatchSummary(match *MatchData) string {
	meta := match.Meta

	switch meta.Status {
	case StatusNotStarted:
		return "Match not started"
	case StatusLive:
		if meta.Innings == 1 {
			return fmt.Sprintf("%s batting", meta.BattingTeam)
		}
		target := 0
		if meta.TargetScore != nil {
			target = *meta.TargetScore
		}
		return fmt.Sprintf("%s chasing %d", meta.BattingTeam, target)
	case StatusInningsBreak:
		if match.Innings1 != nil {
			return fmt.Sprintf("Innings break - %s: %d/%d", match.Innings1.BattingTeam,
				match.Innings1.TotalRuns, match.Innings1.TotalWickets)
		}
		return "Innings break"
	case StatusCompleted:
		if meta.MatchResult != nil {
			return *meta.MatchResult
		}
	}

	return "Match completed"
}
