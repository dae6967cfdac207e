package rosters

import (
	"testing"

	"CricketScoreApi/internal/assert"
)

func TestLoad(t *testing.T) {
	r, err := Load()
	assert.NilError(t, err)
	assert.Equal(t, len(r.TeamIDs()), 8)
}

func TestTeam(t *testing.T) {
	r, err := Load()
	assert.NilError(t, err)

	team, ok := r.Team("t_titans")
	assert.Equal(t, ok, true)
	assert.Equal(t, team.TeamID, "t_titans")
	assert.Equal(t, team.Name != "", true)

	_, ok = r.Team("t_unknown")
	assert.Equal(t, ok, false)
}

func TestSquad(t *testing.T) {
	r, err := Load()
	assert.NilError(t, err)

	for _, teamID := range r.TeamIDs() {
		squad := r.Squad(teamID)
		assert.Equal(t, len(squad), 8)
	}

	assert.Equal(t, len(r.Squad("t_unknown")), 0)
}
