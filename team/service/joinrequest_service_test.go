// team/service/joinrequest_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"github.com/stretchr/testify/require"
)

func admissionFixture() *fixture {
	fx := newFixture()
	fx.addTeam(&models.Team{
		ID: "t1", Name: "Reds", NameLower: "reds",
		PresidentID:     "a",
		VicePresidentID: "b",
		RosterIDs:       []string{"a", "b"},
	})
	fx.addUser("u")
	return fx
}

func TestCreateJoinRequest(t *testing.T) {
	fx := admissionFixture()

	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)
	require.Equal(t, models.JoinRequestPending, req.Status)
	require.Equal(t, "t1", req.TeamID)
	require.Equal(t, "u", req.UserID)
	require.NotNil(t, req.CreatedAt)
}

func TestCreateJoinRequestAlreadyMember(t *testing.T) {
	fx := admissionFixture()

	_, err := fx.join.Create(context.Background(), "b", "t1")
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestCreateJoinRequestDuplicatePending(t *testing.T) {
	fx := admissionFixture()

	_, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)
	_, err = fx.join.Create(context.Background(), "u", "t1")
	require.ErrorIs(t, err, ErrRequestPending)
}

func TestCreateJoinRequestTeamMissing(t *testing.T) {
	fx := admissionFixture()

	_, err := fx.join.Create(context.Background(), "u", "nope")
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestApproveJoinRequest(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	require.NoError(t, fx.join.Approve(context.Background(), req.ID, "a"))

	team := fx.teams.teams["t1"]
	require.Contains(t, team.RosterIDs, "u")
	membership := fx.users.users["u"].TeamMembership
	require.NotNil(t, membership)
	require.Equal(t, "t1", membership.TeamID)
	require.Equal(t, models.RolePlayer, membership.Role)

	stored := fx.reqs.requests[req.ID]
	require.Equal(t, models.JoinRequestApproved, stored.Status)
	require.Equal(t, "a", stored.ResponseBy)
}

func TestApproveJoinRequestByVicePresident(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	require.NoError(t, fx.join.Approve(context.Background(), req.ID, "b"))
	require.Contains(t, fx.teams.teams["t1"].RosterIDs, "u")
}

func TestApproveJoinRequestNonLeader(t *testing.T) {
	fx := admissionFixture()
	fx.teams.teams["t1"].RosterIDs = append(fx.teams.teams["t1"].RosterIDs, "d")
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	err = fx.join.Approve(context.Background(), req.ID, "d")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.NotContains(t, fx.teams.teams["t1"].RosterIDs, "u")
}

func TestApproveJoinRequestRequesterJoinedElsewhere(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	// Requester joins another team while the request sits pending.
	fx.addTeam(&models.Team{ID: "t2", Name: "Blues", NameLower: "blues", PresidentID: "x", RosterIDs: []string{"x", "u"}})

	err = fx.join.Approve(context.Background(), req.ID, "a")
	require.ErrorIs(t, err, ErrRequesterJoinedElsewhere)
	require.NotContains(t, fx.teams.teams["t1"].RosterIDs, "u", "roster untouched on stale approval")
	require.Equal(t, models.JoinRequestPending, fx.reqs.requests[req.ID].Status)
}

func TestApproveJoinRequestAlreadyDecided(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)
	require.NoError(t, fx.join.Reject(context.Background(), req.ID, "a"))

	err = fx.join.Approve(context.Background(), req.ID, "a")
	require.ErrorIs(t, err, ErrRequestNotPending)
}

func TestRejectJoinRequest(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	require.NoError(t, fx.join.Reject(context.Background(), req.ID, "a"))

	require.Equal(t, models.JoinRequestRejected, fx.reqs.requests[req.ID].Status)
	require.NotContains(t, fx.teams.teams["t1"].RosterIDs, "u")
	require.Nil(t, fx.users.users["u"].TeamMembership)
}

func TestRejectJoinRequestNonLeader(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	err = fx.join.Reject(context.Background(), req.ID, "u")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCancelJoinRequest(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	require.NoError(t, fx.join.Cancel(context.Background(), req.ID, "u"))
	require.NotContains(t, fx.reqs.requests, req.ID)
}

func TestCancelJoinRequestOnlyRequester(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	err = fx.join.Cancel(context.Background(), req.ID, "a")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Contains(t, fx.reqs.requests, req.ID)
}

func TestListPendingRequiresLeader(t *testing.T) {
	fx := admissionFixture()
	_, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)

	reqs, err := fx.join.ListPending(context.Background(), "t1", "a")
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	_, err = fx.join.ListPending(context.Background(), "t1", "u")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestApproveJoinRequestPartialFailure(t *testing.T) {
	fx := admissionFixture()
	req, err := fx.join.Create(context.Background(), "u", "t1")
	require.NoError(t, err)
	fx.users.failSets = 100

	err = fx.join.Approve(context.Background(), req.ID, "a")
	var pf *PartialFailureError
	require.ErrorAs(t, err, &pf)

	// The roster add committed; the mirror is repaired by finishLeave.
	require.Contains(t, fx.teams.teams["t1"].RosterIDs, "u")
	fx.users.failSets = 0
	require.NoError(t, fx.membership.FinishLeave(context.Background(), "u"))
	require.Equal(t, models.RolePlayer, fx.users.users["u"].TeamMembership.Role)
}
