// team/service/membership_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"github.com/pablisEsp/PlayScore-sub000/team/store"
)

// MembershipService orchestrates team lifecycle and roster membership. Every
// multi-document operation writes the Team record first: it is the source of
// truth during a partial failure, and the User membership mirror is repaired
// by FinishLeave.
type MembershipService struct {
	teams TeamStore
	users UserStore
	pub   Publisher
}

// NewMembershipService creates a new MembershipService instance.
func NewMembershipService(teams TeamStore, users UserStore, pub Publisher) *MembershipService {
	return &MembershipService{
		teams: teams,
		users: users,
		pub:   pub,
	}
}

// CreateTeam creates a team with the founder as sole roster member and
// president. Name uniqueness is case-insensitive, enforced by the store's
// unique index rather than a racy pre-check.
func (ms *MembershipService) CreateTeam(ctx context.Context, founderID, name, description string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if founderID == "" || name == "" {
		return nil, fmt.Errorf("%w: founder id and team name are required", ErrValidation)
	}

	founder, err := ms.users.GetUser(ctx, founderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("service failed to load founder: %w", err)
	}
	if founder.TeamMembership != nil {
		return nil, ErrAlreadyMember
	}

	// Cancellation is honored only before the first write.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	team := &models.Team{
		ID:          uuid.New().String(),
		Name:        name,
		NameLower:   strings.ToLower(name),
		Description: description,
		PresidentID: founderID,
		CaptainIDs:  []string{},
		RosterIDs:   []string{founderID},
		CreatedAt:   &now,
		UpdatedAt:   &now,
		Version:     1,
	}
	if err := ms.teams.InsertTeam(ctx, team); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrTeamNameTaken
		}
		return nil, fmt.Errorf("service failed to create team: %w", err)
	}

	membership := &models.TeamMembership{TeamID: team.ID, Role: models.RolePresident}
	if err := retryWrite("set founder membership", func() error {
		return ms.users.SetMembership(ctx, founderID, membership)
	}); err != nil {
		// The Team document exists without its membership mirror; FinishLeave
		// reconciles it once the user record is reachable again.
		return team, &PartialFailureError{Op: "createTeam", TeamID: team.ID, UserIDs: []string{founderID}, RetryOp: "finishLeave", Err: err}
	}

	ms.pub.TeamChanged(ctx, team.ID)
	ms.pub.UserChanged(ctx, founderID)
	log.Printf("INFO: Team '%s' (%s) created by %s.", team.Name, team.ID, founderID)
	return team, nil
}

// LeaveTeam removes the user from their team. The sole member disbands the
// team entirely; a departing president hands the presidency to the successor
// chosen by nextPresident; anyone else is simply removed.
func (ms *MembershipService) LeaveTeam(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	user, err := ms.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("service failed to load user: %w", err)
	}
	if user.TeamMembership == nil {
		return ErrNotAMember
	}
	teamID := user.TeamMembership.TeamID

	var (
		deleted   bool
		successor string
	)
	err = withTeam(ctx, ms.teams, teamID, func(team *models.Team) error {
		deleted, successor = false, ""
		if !team.HasMember(userID) {
			return ErrNotAMember
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(team.RosterIDs) == 1 {
			// Sole member: the team must not outlive its roster.
			deleted = true
			return ms.teams.DeleteTeamVersioned(ctx, team.ID, team.Version)
		}
		if team.PresidentID == userID {
			next, err := nextPresident(team, userID)
			if err != nil {
				return err
			}
			successor = next
			team.PresidentID = next
			team.ClearFlags(next)
		}
		team.RemoveFromRoster(userID)
		return ms.teams.UpdateTeamVersioned(ctx, team)
	})
	if err != nil {
		return err
	}

	// The team write committed; everything below is derived state. Each user
	// whose mirror write fails is named so the repair targets them directly.
	var (
		firstErr error
		stale    []string
	)
	if successor != "" {
		membership := &models.TeamMembership{TeamID: teamID, Role: models.RolePresident}
		if err := retryWrite("promote successor membership", func() error {
			return ms.users.SetMembership(ctx, successor, membership)
		}); err != nil {
			firstErr = err
			stale = append(stale, successor)
		} else {
			ms.pub.UserChanged(ctx, successor)
		}
	}
	if err := retryWrite("clear departing membership", func() error {
		return ms.users.ClearMembership(ctx, userID)
	}); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		stale = append(stale, userID)
	}
	if firstErr != nil {
		return &PartialFailureError{Op: "leaveTeam", TeamID: teamID, UserIDs: stale, RetryOp: "finishLeave", Err: firstErr}
	}

	ms.pub.TeamChanged(ctx, teamID)
	ms.pub.UserChanged(ctx, userID)
	if deleted {
		log.Printf("INFO: Team %s disbanded after its last member %s left.", teamID, userID)
	} else {
		log.Printf("INFO: User %s left team %s.", userID, teamID)
	}
	return nil
}

// KickMember removes the target from the actor's team. Only the president or
// vice president may kick, and the president can never be the target.
func (ms *MembershipService) KickMember(ctx context.Context, actorID, targetID string) error {
	if actorID == "" || targetID == "" {
		return fmt.Errorf("%w: actor id and target id are required", ErrValidation)
	}
	actor, err := ms.users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("service failed to load actor: %w", err)
	}
	if actor.TeamMembership == nil {
		return ErrUnauthorized
	}
	teamID := actor.TeamMembership.TeamID

	err = withTeam(ctx, ms.teams, teamID, func(team *models.Team) error {
		// Leadership is checked against the team document, not the actor's
		// mirror, so a stale mirror can never grant authority.
		if !team.IsLeader(actorID) {
			return ErrUnauthorized
		}
		if team.PresidentID == targetID {
			return ErrCannotKickPresident
		}
		if !team.HasMember(targetID) {
			return ErrNotAMember
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		team.RemoveFromRoster(targetID)
		return ms.teams.UpdateTeamVersioned(ctx, team)
	})
	if err != nil {
		return err
	}

	if err := retryWrite("clear kicked membership", func() error {
		return ms.users.ClearMembership(ctx, targetID)
	}); err != nil {
		return &PartialFailureError{Op: "kickMember", TeamID: teamID, UserIDs: []string{targetID}, RetryOp: "finishLeave", Err: err}
	}

	ms.pub.TeamChanged(ctx, teamID)
	ms.pub.UserChanged(ctx, targetID)
	log.Printf("INFO: User %s kicked from team %s by %s.", targetID, teamID, actorID)
	return nil
}

// FinishLeave reconciles a user's membership mirror against the authoritative
// team document after a PartialFailureError. Idempotent: it clears a mirror
// whose team no longer exists or no longer lists the user, rewrites a mirror
// whose role drifted, and no-ops otherwise.
func (ms *MembershipService) FinishLeave(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	user, err := ms.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("service failed to load user: %w", err)
	}
	if user.TeamMembership == nil {
		// A roster write may have landed without its mirror (e.g. an approve
		// that failed between the two writes). The roster query finds it.
		team, err := ms.teams.FindTeamByMember(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("service failed to find team for user: %w", err)
		}
		role, _ := team.RoleOf(userID)
		if err := ms.users.SetMembership(ctx, userID, &models.TeamMembership{TeamID: team.ID, Role: role}); err != nil {
			return fmt.Errorf("service failed to restore membership: %w", err)
		}
		ms.pub.UserChanged(ctx, userID)
		log.Printf("INFO: Restored missing membership for user %s on team %s.", userID, team.ID)
		return nil
	}

	team, err := ms.teams.GetTeam(ctx, user.TeamMembership.TeamID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("service failed to load team: %w", err)
	}

	if team != nil {
		role, ok := team.RoleOf(userID)
		if ok {
			if role == user.TeamMembership.Role {
				return nil
			}
			membership := &models.TeamMembership{TeamID: team.ID, Role: role}
			if err := ms.users.SetMembership(ctx, userID, membership); err != nil {
				return fmt.Errorf("service failed to repair membership role: %w", err)
			}
			ms.pub.UserChanged(ctx, userID)
			log.Printf("INFO: Repaired membership role for user %s on team %s (%s).", userID, team.ID, role)
			return nil
		}
	}

	if err := ms.users.ClearMembership(ctx, userID); err != nil {
		return fmt.Errorf("service failed to clear stale membership: %w", err)
	}
	ms.pub.UserChanged(ctx, userID)
	log.Printf("INFO: Cleared stale membership for user %s.", userID)
	return nil
}

// GetTeam retrieves the current state of a team.
func (ms *MembershipService) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrValidation)
	}
	team, err := ms.teams.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to get team: %w", err)
	}
	return team, nil
}

// GetTeamForUser retrieves the user together with their current team, or a
// nil team when the user is unaffiliated.
func (ms *MembershipService) GetTeamForUser(ctx context.Context, userID string) (*models.User, *models.Team, error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	user, err := ms.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("service failed to get user: %w", err)
	}
	if user.TeamMembership == nil {
		return user, nil, nil
	}
	team, err := ms.teams.GetTeam(ctx, user.TeamMembership.TeamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Mirror points at a disbanded team; report unaffiliated and let
			// FinishLeave clean the mirror up.
			return user, nil, nil
		}
		return nil, nil, fmt.Errorf("service failed to get team: %w", err)
	}
	return user, team, nil
}
