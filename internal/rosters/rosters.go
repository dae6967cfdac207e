// Package rosters bundles the static team and player reference data used
// when starting tournament fixture matches. The data ships with the binary;
// it is reference material, not live state.
package rosters

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed teams.json players.json
var dataFS embed.FS

type Team struct {
	TeamID    string `json:"team_id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type Player struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	TeamID   string `json:"team_id"`
	Role     string `json:"role"`
}

type Rosters struct {
	teamsByID map[string]Team
	players   []Player
}

// Load parses the embedded reference data. Called once at startup; a parse
// failure means a broken build, not a runtime condition.
func Load() (*Rosters, error) {
	teamBytes, err := dataFS.ReadFile("teams.json")
	if err != nil {
		return nil, err
	}
	var teams []Team
	if err := json.Unmarshal(teamBytes, &teams); err != nil {
		return nil, fmt.Errorf("parsing teams.json: %w", err)
	}

	playerBytes, err := dataFS.ReadFile("players.json")
	if err != nil {
		return nil, err
	}
	var players []Player
	if err := json.Unmarshal(playerBytes, &players); err != nil {
		return nil, fmt.Errorf("parsing players.json: %w", err)
	}

	teamsByID := make(map[string]Team, len(teams))
	for _, t := range teams {
		teamsByID[t.TeamID] = t
	}

	return &Rosters{
		teamsByID: teamsByID,
		players:   players,
	}, nil
}

func (r *Rosters) Team(teamID string) (Team, bool) {
	team, ok := r.teamsByID[teamID]
	return team, ok
}

func (r *Rosters) TeamIDs() []string {
	ids := make([]string, 0, len(r.teamsByID))
	for id := range r.teamsByID {
		ids = append(ids, id)
	}
	return ids
}

// Squad returns the player names of one team, in roster order.
func (r *Rosters) Squad(teamID string) []string {
	squad := make([]string, 0)
	for _, p := range r.players {
		if p.TeamID == teamID {
			squad = append(squad, p.Name)
		}
	}
	return squad
}
