// shared/models/team_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTeam() *Team {
	return &Team{
		ID:              "t1",
		Name:            "Reds",
		PresidentID:     "a",
		VicePresidentID: "b",
		CaptainIDs:      []string{"c"},
		RosterIDs:       []string{"a", "b", "c", "d"},
	}
}

func TestRoleOf(t *testing.T) {
	team := sampleTeam()

	role, ok := team.RoleOf("a")
	require.True(t, ok)
	require.Equal(t, RolePresident, role)

	role, ok = team.RoleOf("b")
	require.True(t, ok)
	require.Equal(t, RoleVicePresident, role)

	role, ok = team.RoleOf("c")
	require.True(t, ok)
	require.Equal(t, RoleCaptain, role)

	role, ok = team.RoleOf("d")
	require.True(t, ok)
	require.Equal(t, RolePlayer, role)

	_, ok = team.RoleOf("ghost")
	require.False(t, ok)
}

func TestIsLeader(t *testing.T) {
	team := sampleTeam()
	require.True(t, team.IsLeader("a"))
	require.True(t, team.IsLeader("b"))
	require.False(t, team.IsLeader("c"))
	require.False(t, team.IsLeader(""))
}

func TestRemoveFromRoster(t *testing.T) {
	team := sampleTeam()
	team.RemoveFromRoster("b")

	require.Equal(t, []string{"a", "c", "d"}, team.RosterIDs)
	require.Empty(t, team.VicePresidentID)

	team.RemoveFromRoster("c")
	require.Equal(t, []string{"a", "d"}, team.RosterIDs)
	require.Empty(t, team.CaptainIDs)
}

func TestClearFlagsKeepsRoster(t *testing.T) {
	team := sampleTeam()
	team.ClearFlags("c")

	require.Empty(t, team.CaptainIDs)
	require.Contains(t, team.RosterIDs, "c")
}

func TestRoleValid(t *testing.T) {
	require.True(t, RolePlayer.Valid())
	require.True(t, RolePresident.Valid())
	require.False(t, Role("COACH").Valid())
}
