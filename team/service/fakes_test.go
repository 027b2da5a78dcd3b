// team/service/fakes_test.go
package service

import (
	"context"
	"errors"

	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"github.com/pablisEsp/PlayScore-sub000/team/store"
)

// Map-backed fakes implementing the store interfaces, with the same sentinel
// errors and version semantics as the Mongo stores. Failure counters inject
// write errors to exercise the partial-failure and contention paths.

var errInjected = errors.New("injected store failure")

type fixture struct {
	teams      *fakeTeamStore
	users      *fakeUserStore
	reqs       *fakeRequestStore
	pub        *fakePublisher
	membership *MembershipService
	roles      *RoleChangeService
	join       *JoinRequestService
}

func newFixture() *fixture {
	fx := &fixture{
		teams: newFakeTeamStore(),
		users: newFakeUserStore(),
		reqs:  newFakeRequestStore(),
		pub:   &fakePublisher{},
	}
	fx.membership = NewMembershipService(fx.teams, fx.users, fx.pub)
	fx.roles = NewRoleChangeService(fx.teams, fx.users, fx.pub)
	fx.join = NewJoinRequestService(fx.teams, fx.users, fx.reqs, fx.pub)
	return fx
}

func (fx *fixture) addUser(id string) {
	fx.users.users[id] = &models.User{ID: id, Username: id}
}

// addTeam stores the team and mirrors each roster member's membership the way
// the services would have written it.
func (fx *fixture) addTeam(team *models.Team) {
	if team.Version == 0 {
		team.Version = 1
	}
	fx.teams.teams[team.ID] = copyTeam(team)
	for _, id := range team.RosterIDs {
		role, _ := team.RoleOf(id)
		fx.users.users[id] = &models.User{
			ID:             id,
			Username:       id,
			TeamMembership: &models.TeamMembership{TeamID: team.ID, Role: role},
		}
	}
}

type fakeTeamStore struct {
	teams            map[string]*models.Team
	updateMismatches int // next N versioned writes report a version mismatch
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{teams: make(map[string]*models.Team)}
}

func (f *fakeTeamStore) GetTeam(_ context.Context, teamID string) (*models.Team, error) {
	team, ok := f.teams[teamID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyTeam(team), nil
}

func (f *fakeTeamStore) FindTeamByMember(_ context.Context, userID string) (*models.Team, error) {
	for _, team := range f.teams {
		if team.HasMember(userID) {
			return copyTeam(team), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTeamStore) InsertTeam(_ context.Context, team *models.Team) error {
	if _, exists := f.teams[team.ID]; exists {
		return store.ErrDuplicate
	}
	for _, t := range f.teams {
		if t.NameLower == team.NameLower {
			return store.ErrDuplicate
		}
	}
	f.teams[team.ID] = copyTeam(team)
	return nil
}

func (f *fakeTeamStore) UpdateTeamVersioned(_ context.Context, team *models.Team) error {
	cur, ok := f.teams[team.ID]
	if !ok || cur.Version != team.Version {
		return store.ErrVersionMismatch
	}
	if f.updateMismatches > 0 {
		f.updateMismatches--
		return store.ErrVersionMismatch
	}
	team.Version++
	f.teams[team.ID] = copyTeam(team)
	return nil
}

func (f *fakeTeamStore) DeleteTeamVersioned(_ context.Context, teamID string, version int64) error {
	cur, ok := f.teams[teamID]
	if !ok || cur.Version != version {
		return store.ErrVersionMismatch
	}
	delete(f.teams, teamID)
	return nil
}

type fakeUserStore struct {
	users     map[string]*models.User
	failSets  int // next N SetMembership calls fail
	failClear int // next N ClearMembership calls fail
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(user), nil
}

func (f *fakeUserStore) SetMembership(_ context.Context, userID string, membership *models.TeamMembership) error {
	if f.failSets > 0 {
		f.failSets--
		return errInjected
	}
	user, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	m := *membership
	user.TeamMembership = &m
	return nil
}

func (f *fakeUserStore) ClearMembership(_ context.Context, userID string) error {
	if f.failClear > 0 {
		f.failClear--
		return errInjected
	}
	user, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.TeamMembership = nil
	return nil
}

type fakeRequestStore struct {
	requests map[string]*models.JoinRequest
	order    []string
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[string]*models.JoinRequest)}
}

func (f *fakeRequestStore) InsertRequest(_ context.Context, req *models.JoinRequest) error {
	for _, r := range f.requests {
		if r.TeamID == req.TeamID && r.UserID == req.UserID && r.Status == models.JoinRequestPending {
			return store.ErrDuplicate
		}
	}
	r := *req
	f.requests[req.ID] = &r
	f.order = append(f.order, req.ID)
	return nil
}

func (f *fakeRequestStore) GetRequest(_ context.Context, requestID string) (*models.JoinRequest, error) {
	req, ok := f.requests[requestID]
	if !ok {
		return nil, store.ErrNotFound
	}
	r := *req
	return &r, nil
}

func (f *fakeRequestStore) ListPendingByTeam(_ context.Context, teamID string) ([]models.JoinRequest, error) {
	var reqs []models.JoinRequest
	for _, id := range f.order {
		if req, ok := f.requests[id]; ok && req.TeamID == teamID && req.Status == models.JoinRequestPending {
			reqs = append(reqs, *req)
		}
	}
	return reqs, nil
}

func (f *fakeRequestStore) MarkDecided(_ context.Context, requestID string, status models.JoinRequestStatus, responderID string) error {
	req, ok := f.requests[requestID]
	if !ok || req.Status != models.JoinRequestPending {
		return store.ErrVersionMismatch
	}
	req.Status = status
	req.ResponseBy = responderID
	return nil
}

func (f *fakeRequestStore) DeletePending(_ context.Context, requestID string) error {
	req, ok := f.requests[requestID]
	if !ok || req.Status != models.JoinRequestPending {
		return store.ErrVersionMismatch
	}
	delete(f.requests, requestID)
	return nil
}

type fakePublisher struct {
	teamEvents    int
	userEvents    int
	requestEvents int
}

func (f *fakePublisher) TeamChanged(context.Context, string)     { f.teamEvents++ }
func (f *fakePublisher) UserChanged(context.Context, string)     { f.userEvents++ }
func (f *fakePublisher) RequestsChanged(context.Context, string) { f.requestEvents++ }

func copyTeam(t *models.Team) *models.Team {
	c := *t
	c.CaptainIDs = append([]string(nil), t.CaptainIDs...)
	c.RosterIDs = append([]string(nil), t.RosterIDs...)
	return &c
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.TeamMembership != nil {
		m := *u.TeamMembership
		c.TeamMembership = &m
	}
	return &c
}
