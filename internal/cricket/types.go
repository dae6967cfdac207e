package cricket

// ExtrasType classifies a delivery's extra, if any.
type ExtrasType string

const (
	ExtrasNone   ExtrasType = "NONE"
	ExtrasWide   ExtrasType = "WD"
	ExtrasNoBall ExtrasType = "NB"
	ExtrasBye    ExtrasType = "BYE"
	ExtrasLegBye ExtrasType = "LB"
)

type WicketKind string

const (
	WicketBowled    WicketKind = "bowled"
	WicketCaught    WicketKind = "caught"
	WicketRunOut    WicketKind = "run_out"
	WicketLbw       WicketKind = "lbw"
	WicketStumped   WicketKind = "stumped"
	WicketHitWicket WicketKind = "hit_wicket"
)

type MatchStatus string

const (
	StatusNotStarted   MatchStatus = "NOT_STARTED"
	StatusLive         MatchStatus = "LIVE"
	StatusInningsBreak MatchStatus = "INNINGS_BREAK"
	StatusCompleted    MatchStatus = "COMPLETED"
)

type ResultType string

const (
	ResultRuns     ResultType = "runs"
	ResultWickets  ResultType = "wickets"
	ResultTie      ResultType = "tie"
	ResultNoResult ResultType = "no_result"
)

// Ball is one delivery's recorded outcome. Immutable once appended to the
// match history; only ever removed by undoing the most recent delivery.
// Striker, non-striker and bowler are snapshotted at the moment of the
// delivery so that statistics and undo can replay the history without any
// other context.
type Ball struct {
	BallNumber int `json:"ballNumber"`
	OverNumber int `json:"overNumber"`
	BallInOver int `json:"ballInOver"`

	RunsScored    int `json:"runsScored"`
	RunsByBatsman int `json:"runsByBatsman"`
	ExtraRuns     int `json:"extraRuns"`

	IsWide   bool `json:"isWide"`
	IsNoBall bool `json:"isNoBall"`
	IsBye    bool `json:"isBye"`
	IsLegBye bool `json:"isLegBye"`

	IsWicket   bool        `json:"isWicket"`
	WicketKind *WicketKind `json:"wicketKind,omitempty"`
	PlayerOut  *string     `json:"playerOut,omitempty"`
	Fielder    *string     `json:"fielder,omitempty"`

	Striker    string `json:"striker"`
	NonStriker string `json:"nonStriker"`
	Bowler     string `json:"bowler"`
	IsFreeHit  bool   `json:"isFreeHit"`

	PartnershipRuns int `json:"partnershipRuns"`
}

// IsLegal reports whether the delivery counts toward the over.
func (b Ball) IsLegal() bool {
	return !b.IsWide && !b.IsNoBall
}

// MatchState is the live state of the innings in progress. It is replaced
// wholesale on every delivery and on undo. Nil player fields mean a
// selection is required before the next delivery may be processed.
type MatchState struct {
	TotalRuns          int `json:"totalRuns"`
	TotalWickets       int `json:"totalWickets"`
	LegalBalls         int `json:"legalBalls"`
	OversBowled        int `json:"oversBowled"`
	BallsInCurrentOver int `json:"ballsInCurrentOver"`

	CurrentStriker    *string `json:"currentStriker"`
	CurrentNonStriker *string `json:"currentNonStriker"`
	CurrentBowler     *string `json:"currentBowler"`

	IsFreeHit bool `json:"isFreeHit"`

	BattingOrder     []string `json:"battingOrder"`
	NextBatsmanIndex int      `json:"nextBatsmanIndex"`

	LastOverBowler *string `json:"lastOverBowler"`

	CurrentPartnershipRuns  int `json:"currentPartnershipRuns"`
	CurrentPartnershipBalls int `json:"currentPartnershipBalls"`
}

// NewMatchState returns the zeroed state used at the start of an innings.
func NewMatchState(battingOrder []string) MatchState {
	if battingOrder == nil {
		battingOrder = []string{}
	}
	return MatchState{BattingOrder: battingOrder}
}

type MatchMeta struct {
	TeamA           string      `json:"teamA"`
	TeamB           string      `json:"teamB"`
	OversPerInnings int         `json:"oversPerInnings"`
	Status          MatchStatus `json:"status"`
	Innings         int         `json:"innings"`
	BattingTeam     string      `json:"battingTeam"`
	BowlingTeam     string      `json:"bowlingTeam"`

	TargetScore     *int        `json:"targetScore,omitempty"`
	WinningTeam     *string     `json:"winningTeam,omitempty"`
	MatchResult     *string     `json:"matchResult,omitempty"`
	MatchResultType *ResultType `json:"matchResultType,omitempty"`
}

// Squads holds the ordered player-name lists for each team.
type Squads struct {
	TeamA []string `json:"teamA"`
	TeamB []string `json:"teamB"`
}

// BattingSquad returns the squad of the team currently batting, per meta.
func (s Squads) BattingSquad(meta MatchMeta) []string {
	if meta.BattingTeam == meta.TeamA {
		return s.TeamA
	}
	return s.TeamB
}

func (s Squads) BowlingSquad(meta MatchMeta) []string {
	if meta.BattingTeam == meta.TeamA {
		return s.TeamB
	}
	return s.TeamA
}

// Lock records which admin session currently owns scoring rights for a
// match. There is no compare-and-swap; the last write wins and the
// single-scorer discipline is a social contract, not a transactional one.
type Lock struct {
	HolderID   string `json:"holderId"`
	HolderName string `json:"holderName"`
	AcquiredAt int64  `json:"acquiredAtEpochMs"`
}

// InningsData is the frozen snapshot of a completed innings, computed once
// by the innings manager and never mutated afterward.
type InningsData struct {
	BattingTeam        string                  `json:"battingTeam"`
	BowlingTeam        string                  `json:"bowlingTeam"`
	TotalRuns          int                     `json:"totalRuns"`
	TotalWickets       int                     `json:"totalWickets"`
	OversBowled        int                     `json:"oversBowled"`
	BallsInCurrentOver int                     `json:"ballsInCurrentOver"`
	LegalBalls         int                     `json:"legalBalls"`
	FallOfWickets      []FallOfWicket          `json:"fallOfWickets"`
	Partnerships       []Partnership           `json:"partnerships"`
	BatsmanStats       map[string]BatsmanStats `json:"batsmanStats"`
	BowlerStats        map[string]BowlerStats  `json:"bowlerStats"`
	Extras             Extras                  `json:"extras"`
}

// MatchData is the aggregate match document persisted at matches/{matchId}.
type MatchData struct {
	MatchID   string `json:"matchId"`
	CreatedBy string `json:"createdBy"`
	Lock      *Lock  `json:"lock,omitempty"`

	TournamentID *string `json:"tournamentId,omitempty"`
	FixtureID    *string `json:"fixtureId,omitempty"`

	Meta   MatchMeta  `json:"meta"`
	Squads Squads     `json:"squads"`
	State  MatchState `json:"state"`
	Balls  []Ball     `json:"balls"`

	Innings1 *InningsData `json:"innings1,omitempty"`
	Innings2 *InningsData `json:"innings2,omitempty"`

	LastUpdatedAt int64 `json:"lastUpdatedAt"`
}
