package tournament

import (
	"sort"

	"CricketScoreApi/internal/cricket"
)

// Standing is one team's derived league row. Standings are never stored;
// they are recomputed from completed fixtures' linked matches on every
// query.
type Standing struct {
	TeamID string  `json:"team_id"`
	Played int     `json:"played"`
	Won    int     `json:"won"`
	Lost   int     `json:"lost"`
	Tied   int     `json:"tied"`
	Points int     `json:"points"`
	NRR    float64 `json:"nrr"`
}

type nrrAccumulator struct {
	runsScored   int
	oversFaced   float64
	runsConceded int
	oversBowled  float64
}

// ComputeStandings tallies points and net run rate for the given teams from
// every completed fixture with a linked match. A win is worth 2 points, a
// tie or no-result 1 each. The winner is reconciled by comparing the match
// result's winning-team name against the fixture's team A name; any name
// divergence between fixture IDs and match metadata silently misattributes
// the win, which is why callers must keep the two consistent.
func ComputeStandings(teamIDs []string, fixtures map[string]Fixture,
	matchesByID map[string]*cricket.MatchData) []Standing {

	standings := make(map[string]*Standing)
	nrr := make(map[string]*nrrAccumulator)
	for _, id := range teamIDs {
		standings[id] = &Standing{TeamID: id}
		nrr[id] = &nrrAccumulator{}
	}

	for _, fixture := range fixtures {
		if fixture.Status != FixtureCompleted || fixture.MatchID == nil {
			continue
		}
		match, ok := matchesByID[*fixture.MatchID]
		if !ok {
			continue
		}

		teamA := fixture.TeamAID
		teamB := fixture.TeamBID

		if row, ok := standings[teamA]; ok {
			row.Played++
		}
		if row, ok := standings[teamB]; ok {
			row.Played++
		}

		if match.Innings1 != nil && match.Innings2 != nil {
			accumulateNRR(nrr, match, teamA, teamB)
		}

		resultType := match.Meta.MatchResultType
		winner := match.Meta.WinningTeam

		if resultType != nil &&
			(*resultType == cricket.ResultTie || *resultType == cricket.ResultNoResult) {
			for _, id := range []string{teamA, teamB} {
				if row, ok := standings[id]; ok {
					row.Points++
					row.Tied++
				}
			}
		} else if winner != nil {
			winnerID, loserID := teamB, teamA
			if *winner == match.Meta.TeamA {
				winnerID, loserID = teamA, teamB
			}
			if row, ok := standings[winnerID]; ok {
				row.Won++
				row.Points += 2
			}
			if row, ok := standings[loserID]; ok {
				row.Lost++
			}
		}
	}

	for _, id := range teamIDs {
		acc := nrr[id]
		if acc.oversFaced > 0 && acc.oversBowled > 0 {
			runRate := float64(acc.runsScored) / acc.oversFaced
			concededRate := float64(acc.runsConceded) / acc.oversBowled
			standings[id].NRR = runRate - concededRate
		}
	}

	table := make([]Standing, 0, len(teamIDs))
	for _, id := range teamIDs {
		table = append(table, *standings[id])
	}
	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Points != table[j].Points {
			return table[i].Points > table[j].Points
		}
		return table[i].NRR > table[j].NRR
	})

	return table
}

// accumulateNRR credits each side's runs and overs in both roles. Overs are
// decimalized as completed overs plus balls/6, so 12 overs 3 balls counts
// as 12.5 overs faced.
func accumulateNRR(nrr map[string]*nrrAccumulator, match *cricket.MatchData,
	teamA, teamB string) {

	innings1Team, innings2Team := teamA, teamB
	if match.Innings1.BattingTeam != match.Meta.TeamA {
		innings1Team, innings2Team = teamB, teamA
	}

	overs1 := float64(match.Innings1.OversBowled) + float64(match.Innings1.BallsInCurrentOver)/6
	overs2 := float64(match.Innings2.OversBowled) + float64(match.Innings2.BallsInCurrentOver)/6

	if acc, ok := nrr[innings1Team]; ok {
		acc.runsScored += match.Innings1.TotalRuns
		acc.oversFaced += overs1
		acc.runsConceded += match.Innings2.TotalRuns
		acc.oversBowled += overs2
	}
	if acc, ok := nrr[innings2Team]; ok {
		acc.runsScored += match.Innings2.TotalRuns
		acc.oversFaced += overs2
		acc.runsConceded += match.Innings1.TotalRuns
		acc.oversBowled += overs1
	}
}
