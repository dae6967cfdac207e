package tournament

import "fmt"

type FixtureStatus string

const (
	FixtureScheduled FixtureStatus = "SCHEDULED"
	FixtureLive      FixtureStatus = "LIVE"
	FixtureCompleted FixtureStatus = "COMPLETED"
)

// Fixture is one scheduled pairing within a group. MatchID links to the
// match document once the fixture has been started.
type Fixture struct {
	ID      string        `json:"id"`
	TeamAID string        `json:"teamA_id"`
	TeamBID string        `json:"teamB_id"`
	Group   string        `json:"group"`
	Status  FixtureStatus `json:"status"`
	MatchID *string       `json:"matchId,omitempty"`
}

// State is the tournament document persisted at tournaments/{tournamentId}.
type State struct {
	Config struct {
		Groups struct {
			GroupA []string `json:"groupA"`
			GroupB []string `json:"groupB"`
		} `json:"groups"`
		IsSetupComplete bool `json:"isSetupComplete"`
	} `json:"config"`
	Fixtures map[string]Fixture `json:"fixtures"`
}

// GenerateGroupFixtures produces a single round robin for the group: every
// unordered pair of teams exactly once, with a fixture ID deterministic from
// the group label and the pair.
func GenerateGroupFixtures(groupTeams []string, groupLabel string) []Fixture {
	fixtures := make([]Fixture, 0)
	for i := 0; i < len(groupTeams); i++ {
		for j := i + 1; j < len(groupTeams); j++ {
			fixtures = append(fixtures, Fixture{
				ID:      fmt.Sprintf("fix_%s_%s_%s", groupLabel, groupTeams[i], groupTeams[j]),
				TeamAID: groupTeams[i],
				TeamBID: groupTeams[j],
				Group:   groupLabel,
				Status:  FixtureScheduled,
			})
		}
	}
	return fixtures
}
