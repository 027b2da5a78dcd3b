// team/service/rolechange_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"github.com/stretchr/testify/require"
)

func rosterFixture() *fixture {
	fx := newFixture()
	fx.addTeam(&models.Team{
		ID: "t1", Name: "Reds", NameLower: "reds",
		PresidentID:     "a",
		VicePresidentID: "b",
		CaptainIDs:      []string{"c"},
		RosterIDs:       []string{"a", "b", "c", "d"},
	})
	return fx
}

func TestChangeRoleTransferPresidency(t *testing.T) {
	fx := rosterFixture()

	team, err := fx.roles.ChangeRole(context.Background(), "a", "c", models.RolePresident)
	require.NoError(t, err)

	require.Equal(t, "c", team.PresidentID)
	require.Empty(t, team.CaptainIDs, "target's captain flag is cleared")
	require.Contains(t, team.RosterIDs, "a", "old president stays on the roster")

	role, ok := team.RoleOf("a")
	require.True(t, ok)
	require.Equal(t, models.RolePlayer, role)
	require.Equal(t, models.RolePresident, fx.users.users["c"].TeamMembership.Role)
	require.Equal(t, models.RolePlayer, fx.users.users["a"].TeamMembership.Role)
}

func TestChangeRoleVicePresidentCannotTransferPresidency(t *testing.T) {
	fx := rosterFixture()

	_, err := fx.roles.ChangeRole(context.Background(), "b", "c", models.RolePresident)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "a", fx.teams.teams["t1"].PresidentID)
}

func TestChangeRoleVicePresidentMayPromoteCaptain(t *testing.T) {
	fx := rosterFixture()

	team, err := fx.roles.ChangeRole(context.Background(), "b", "d", models.RoleCaptain)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, team.CaptainIDs)
	require.Equal(t, models.RoleCaptain, fx.users.users["d"].TeamMembership.Role)
}

func TestChangeRoleAssignVicePresidentDemotesPrevious(t *testing.T) {
	fx := rosterFixture()

	team, err := fx.roles.ChangeRole(context.Background(), "a", "c", models.RoleVicePresident)
	require.NoError(t, err)

	require.Equal(t, "c", team.VicePresidentID)
	require.Empty(t, team.CaptainIDs)
	require.Equal(t, models.RoleVicePresident, fx.users.users["c"].TeamMembership.Role)
	require.Equal(t, models.RolePlayer, fx.users.users["b"].TeamMembership.Role, "previous VP demoted to player")

	role, ok := team.RoleOf("b")
	require.True(t, ok)
	require.Equal(t, models.RolePlayer, role)
}

func TestChangeRoleDemoteToPlayer(t *testing.T) {
	fx := rosterFixture()

	team, err := fx.roles.ChangeRole(context.Background(), "a", "c", models.RolePlayer)
	require.NoError(t, err)
	require.Empty(t, team.CaptainIDs)
	require.Equal(t, models.RolePlayer, fx.users.users["c"].TeamMembership.Role)
}

func TestChangeRolePresidentTargetRejected(t *testing.T) {
	fx := rosterFixture()

	_, err := fx.roles.ChangeRole(context.Background(), "b", "a", models.RoleCaptain)
	require.ErrorIs(t, err, ErrValidation)
}

func TestChangeRolePlayerActorUnauthorized(t *testing.T) {
	fx := rosterFixture()

	_, err := fx.roles.ChangeRole(context.Background(), "d", "c", models.RolePlayer)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestChangeRoleTargetNotOnRoster(t *testing.T) {
	fx := rosterFixture()

	_, err := fx.roles.ChangeRole(context.Background(), "a", "ghost", models.RoleCaptain)
	require.ErrorIs(t, err, ErrNotAMember)
}

func TestChangeRoleUnknownRole(t *testing.T) {
	fx := rosterFixture()

	_, err := fx.roles.ChangeRole(context.Background(), "a", "d", models.Role("COACH"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestChangeRoleNoOpWhenUnchanged(t *testing.T) {
	fx := rosterFixture()
	before := fx.teams.teams["t1"].Version

	team, err := fx.roles.ChangeRole(context.Background(), "a", "c", models.RoleCaptain)
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, team.CaptainIDs)
	require.Equal(t, before, fx.teams.teams["t1"].Version, "no write for a no-op role change")
}

func TestChangeRolePartialFailureReportsRepairPath(t *testing.T) {
	fx := rosterFixture()
	fx.users.failSets = 100

	_, err := fx.roles.ChangeRole(context.Background(), "a", "d", models.RoleCaptain)
	var pf *PartialFailureError
	require.ErrorAs(t, err, &pf)
	require.Equal(t, "finishLeave", pf.RetryOp)
	require.Equal(t, []string{"d"}, pf.UserIDs)

	// The team document already carries the promotion.
	require.Contains(t, fx.teams.teams["t1"].CaptainIDs, "d")
}

func TestChangeRoleTransferPartialFailureNamesBothMirrors(t *testing.T) {
	fx := rosterFixture()
	// Both mirror writes fail: the new president's and the demoted old
	// president's.
	fx.users.failSets = 2 * userWriteRetries

	_, err := fx.roles.ChangeRole(context.Background(), "a", "d", models.RolePresident)
	var pf *PartialFailureError
	require.ErrorAs(t, err, &pf)
	require.Equal(t, "finishLeave", pf.RetryOp)
	require.Equal(t, []string{"d", "a"}, pf.UserIDs)

	// The team document already carries the transfer; both mirrors lag.
	require.Equal(t, "d", fx.teams.teams["t1"].PresidentID)
	require.Equal(t, models.RolePlayer, fx.users.users["d"].TeamMembership.Role)
	require.Equal(t, models.RolePresident, fx.users.users["a"].TeamMembership.Role)

	// Repairing each named user converges both mirrors.
	require.NoError(t, fx.membership.FinishLeave(context.Background(), "d"))
	require.NoError(t, fx.membership.FinishLeave(context.Background(), "a"))
	require.Equal(t, models.RolePresident, fx.users.users["d"].TeamMembership.Role)
	require.Equal(t, models.RolePlayer, fx.users.users["a"].TeamMembership.Role)
}
