package cricket

import (
	"fmt"
	"math"
)

// The statistics engine replays the full ordered ball history on every
// call. Nothing here is cached or incremental: recomputation from scratch is
// the contract, which is what keeps the numbers consistent after an undo
// truncates the history.

type BatsmanStats struct {
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strikeRate"`
	IsOut      bool    `json:"isOut"`
	HowOut     string  `json:"howOut,omitempty"`
}

type BowlerStats struct {
	Name    string  `json:"name"`
	Overs   int     `json:"overs"`
	Balls   int     `json:"balls"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Economy float64 `json:"economy"`
	Maidens int     `json:"maidens"`
	Wides   int     `json:"wides"`
	NoBalls int     `json:"noBalls"`
}

type FallOfWicket struct {
	PlayerOut    string  `json:"playerOut"`
	Score        int     `json:"score"`
	WicketNumber int     `json:"wicketNumber"`
	OversBowled  int     `json:"oversBowled"`
	BallsInOver  int     `json:"ballsInOver"`
	WicketKind   string  `json:"wicketKind"`
	Bowler       string  `json:"bowler"`
	Fielder      *string `json:"fielder,omitempty"`
}

type Partnership struct {
	Batsman1    string `json:"batsman1"`
	Batsman2    string `json:"batsman2"`
	Runs        int    `json:"runs"`
	Balls       int    `json:"balls"`
	StartWicket int    `json:"startWicket"`
	EndWicket   *int   `json:"endWicket,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type Extras struct {
	Wides   int `json:"wides"`
	NoBalls int `json:"noBalls"`
	Byes    int `json:"byes"`
	LegByes int `json:"legByes"`
	Total   int `json:"total"`
}

// BatsmanStatsFor derives one player's batting line from the history. A
// player recorded as non-striker at the moment of a run-out against them is
// marked out as well.
func BatsmanStatsFor(balls []Ball, playerName string) BatsmanStats {
	stats := BatsmanStats{Name: playerName}

	for _, ball := range balls {
		if ball.Striker == playerName {
			if ball.IsLegal() {
				stats.Balls++
			}

			stats.Runs += ball.RunsByBatsman
			if ball.RunsByBatsman == 4 {
				stats.Fours++
			}
			if ball.RunsByBatsman == 6 {
				stats.Sixes++
			}

			if ball.IsWicket && ball.PlayerOut != nil && *ball.PlayerOut == playerName {
				stats.IsOut = true
				stats.HowOut = dismissalText(ball)
			}
		}

		if ball.NonStriker == playerName && ball.IsWicket &&
			ball.PlayerOut != nil && *ball.PlayerOut == playerName {
			stats.IsOut = true
			if ball.Fielder != nil {
				stats.HowOut = fmt.Sprintf("run out (%s)", *ball.Fielder)
			} else {
				stats.HowOut = "run out"
			}
		}
	}

	if stats.Balls > 0 {
		stats.StrikeRate = round2(float64(stats.Runs) / float64(stats.Balls) * 100)
	}

	return stats
}

func dismissalText(ball Ball) string {
	if ball.WicketKind == nil {
		return "out"
	}
	switch *ball.WicketKind {
	case WicketBowled:
		return fmt.Sprintf("b %s", ball.Bowler)
	case WicketCaught:
		if ball.Fielder != nil {
			return fmt.Sprintf("c %s b %s", *ball.Fielder, ball.Bowler)
		}
		return fmt.Sprintf("c & b %s", ball.Bowler)
	case WicketLbw:
		return fmt.Sprintf("lbw b %s", ball.Bowler)
	case WicketStumped:
		if ball.Fielder != nil {
			return fmt.Sprintf("st %s b %s", *ball.Fielder, ball.Bowler)
		}
		return fmt.Sprintf("st b %s", ball.Bowler)
	case WicketRunOut:
		if ball.Fielder != nil {
			return fmt.Sprintf("run out (%s)", *ball.Fielder)
		}
		return "run out"
	case WicketHitWicket:
		return fmt.Sprintf("hit wicket b %s", ball.Bowler)
	default:
		return "out"
	}
}

// BowlerStatsFor derives one player's bowling line. Runs conceded charge
// every run scored off the bowler's deliveries, byes and leg-byes included;
// wickets exclude run-outs; a maiden is an over with six legal balls and no
// runs at all.
func BowlerStatsFor(balls []Ball, playerName string) BowlerStats {
	stats := BowlerStats{Name: playerName}
	ballsBowled := 0
	overBalls := make(map[int][]Ball)

	for _, ball := range balls {
		if ball.Bowler != playerName {
			continue
		}
		if ball.IsLegal() {
			ballsBowled++
		}
		stats.Runs += ball.RunsScored
		if ball.IsWicket && (ball.WicketKind == nil || *ball.WicketKind != WicketRunOut) {
			stats.Wickets++
		}
		if ball.IsWide {
			stats.Wides++
		}
		if ball.IsNoBall {
			stats.NoBalls++
		}
		overBalls[ball.OverNumber] = append(overBalls[ball.OverNumber], ball)
	}

	for _, over := range overBalls {
		legal, runs := 0, 0
		for _, b := range over {
			if b.IsLegal() {
				legal++
			}
			runs += b.RunsScored
		}
		if legal == 6 && runs == 0 {
			stats.Maidens++
		}
	}

	stats.Overs = ballsBowled / 6
	stats.Balls = ballsBowled % 6
	if ballsBowled > 0 {
		stats.Economy = round2(float64(stats.Runs) / float64(ballsBowled) * 6)
	}

	return stats
}

// FallOfWickets returns the chronological dismissal log with the cumulative
// team score at each wicket.
func FallOfWickets(balls []Ball) []FallOfWicket {
	fall := make([]FallOfWicket, 0)
	wicketCount := 0
	totalRuns := 0

	for _, ball := range balls {
		totalRuns += ball.RunsScored

		if !ball.IsWicket || ball.PlayerOut == nil {
			continue
		}

		wicketCount++
		fow := FallOfWicket{
			PlayerOut:    *ball.PlayerOut,
			Score:        totalRuns,
			WicketNumber: wicketCount,
			OversBowled:  ball.OverNumber,
			BallsInOver:  ball.BallInOver,
			WicketKind:   "out",
			Bowler:       ball.Bowler,
			Fielder:      ball.Fielder,
		}
		if ball.WicketKind != nil {
			fow.WicketKind = string(*ball.WicketKind)
		}
		fall = append(fall, fow)
	}

	return fall
}

// Partnerships segments the history by contiguous batting pair. The pair is
// order-insensitive: swapping ends does not start a new partnership, a
// change of personnel does. The final segment is marked active.
func Partnerships(balls []Ball) []Partnership {
	partnerships := make([]Partnership, 0)
	var batsman1, batsman2 string
	runs, ballCount, startWicket := 0, 0, 0

	for _, ball := range balls {
		if batsman1 == "" && batsman2 == "" {
			batsman1 = ball.Striker
			batsman2 = ball.NonStriker
		}

		if !samePair(ball.Striker, ball.NonStriker, batsman1, batsman2) {
			endWicket := startWicket + 1
			partnerships = append(partnerships, Partnership{
				Batsman1:    batsman1,
				Batsman2:    batsman2,
				Runs:        runs,
				Balls:       ballCount,
				StartWicket: startWicket,
				EndWicket:   &endWicket,
			})

			batsman1 = ball.Striker
			batsman2 = ball.NonStriker
			runs, ballCount = 0, 0
			startWicket++
		}

		runs += ball.RunsScored
		if ball.IsLegal() {
			ballCount++
		}
	}

	if batsman1 != "" || batsman2 != "" {
		partnerships = append(partnerships, Partnership{
			Batsman1:    batsman1,
			Batsman2:    batsman2,
			Runs:        runs,
			Balls:       ballCount,
			StartWicket: startWicket,
			IsActive:    true,
		})
	}

	return partnerships
}

func samePair(a1, a2, b1, b2 string) bool {
	return (a1 == b1 && a2 == b2) || (a1 == b2 && a2 == b1)
}

// ExtrasBreakdown sums the extras conceded. A no-ball contributes a flat one
// to the breakdown regardless of any runs taken off it.
func ExtrasBreakdown(balls []Ball) Extras {
	var extras Extras
	for _, ball := range balls {
		if ball.IsWide {
			extras.Wides += ball.RunsScored
		}
		if ball.IsNoBall {
			extras.NoBalls++
		}
		if ball.IsBye {
			extras.Byes += ball.RunsScored
		}
		if ball.IsLegBye {
			extras.LegByes += ball.RunsScored
		}
	}
	extras.Total = extras.Wides + extras.NoBalls + extras.Byes + extras.LegByes
	return extras
}

// RunRate is runs per over for the balls faced so far, zero before the
// first legal ball.
func RunRate(runs, legalBalls int) float64 {
	if legalBalls == 0 {
		return 0
	}
	return round2(float64(runs) / (float64(legalBalls) / 6))
}

// RequiredRunRate is the asking rate for the chase, zero once the target is
// met or no balls remain.
func RequiredRunRate(target, runsScored, ballsRemaining int) float64 {
	if ballsRemaining == 0 {
		return 0
	}
	runsNeeded := target - runsScored
	if runsNeeded <= 0 {
		return 0
	}
	return round2(float64(runsNeeded) / (float64(ballsRemaining) / 6))
}

// AllBatsmanStats computes batting lines for the whole squad, keeping only
// players who have faced a ball or been dismissed.
func AllBatsmanStats(balls []Ball, squad []string) map[string]BatsmanStats {
	stats := make(map[string]BatsmanStats)
	for _, player := range squad {
		playerStats := BatsmanStatsFor(balls, player)
		if playerStats.Balls > 0 || playerStats.IsOut {
			stats[player] = playerStats
		}
	}
	return stats
}

// AllBowlerStats computes bowling lines for the whole squad, keeping only
// players who have bowled.
func AllBowlerStats(balls []Ball, squad []string) map[string]BowlerStats {
	stats := make(map[string]BowlerStats)
	for _, player := range squad {
		playerStats := BowlerStatsFor(balls, player)
		if playerStats.Balls > 0 || playerStats.Overs > 0 {
			stats[player] = playerStats
		}
	}
	return stats
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
