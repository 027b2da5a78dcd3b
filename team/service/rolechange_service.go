// team/service/rolechange_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"github.com/pablisEsp/PlayScore-sub000/team/store"
)

// RoleChangeService authorizes and applies role promotions and demotions,
// including the irreversible president-transfer path.
type RoleChangeService struct {
	teams TeamStore
	users UserStore
	pub   Publisher
}

// NewRoleChangeService creates a new RoleChangeService instance.
func NewRoleChangeService(teams TeamStore, users UserStore, pub Publisher) *RoleChangeService {
	return &RoleChangeService{
		teams: teams,
		users: users,
		pub:   pub,
	}
}

// ChangeRole assigns newRole to the target member of the actor's team.
//
// Authorization: the president may assign any role; the vice president may
// assign any role except PRESIDENT. Transferring the presidency demotes the
// acting president to PLAYER (they stay on the roster) and clears whatever
// flag the target held. Assigning VICE_PRESIDENT demotes a previous vice
// president to PLAYER. The current president's own role can change only
// through the transfer path.
func (rs *RoleChangeService) ChangeRole(ctx context.Context, actorID, targetID string, newRole models.Role) (*models.Team, error) {
	if actorID == "" || targetID == "" {
		return nil, fmt.Errorf("%w: actor id and target id are required", ErrValidation)
	}
	if !newRole.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, newRole)
	}

	actor, err := rs.users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("service failed to load actor: %w", err)
	}
	if actor.TeamMembership == nil {
		return nil, ErrUnauthorized
	}
	teamID := actor.TeamMembership.TeamID

	var (
		result      *models.Team
		demotedPrev string // previous president or vice president demoted to PLAYER
		changed     bool
	)
	err = withTeam(ctx, rs.teams, teamID, func(team *models.Team) error {
		result, demotedPrev, changed = team, "", false
		if !team.HasMember(targetID) {
			return ErrNotAMember
		}

		if newRole == models.RolePresident {
			if team.PresidentID != actorID {
				return ErrUnauthorized
			}
			if targetID == actorID {
				return nil // already the president, nothing to do
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			demotedPrev = team.PresidentID
			team.ClearFlags(targetID)
			team.PresidentID = targetID
			changed = true
			return rs.teams.UpdateTeamVersioned(ctx, team)
		}

		if !team.IsLeader(actorID) {
			return ErrUnauthorized
		}
		if team.PresidentID == targetID {
			return fmt.Errorf("%w: the presidency changes only via a transfer to a new president", ErrValidation)
		}
		current, _ := team.RoleOf(targetID)
		if current == newRole {
			return nil // no-op
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch newRole {
		case models.RoleVicePresident:
			if prev := team.VicePresidentID; prev != "" && prev != targetID {
				demotedPrev = prev
			}
			team.ClearFlags(targetID)
			team.VicePresidentID = targetID
		case models.RoleCaptain:
			team.ClearFlags(targetID)
			team.CaptainIDs = append(team.CaptainIDs, targetID)
		case models.RolePlayer:
			team.ClearFlags(targetID)
		}
		changed = true
		return rs.teams.UpdateTeamVersioned(ctx, team)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return result, nil
	}

	// Team write committed; mirror the new roles onto the user records. Each
	// user whose mirror write fails is named so the repair targets them
	// directly.
	var (
		firstErr error
		stale    []string
	)
	if err := retryWrite("set target membership", func() error {
		return rs.users.SetMembership(ctx, targetID, &models.TeamMembership{TeamID: teamID, Role: newRole})
	}); err != nil {
		firstErr = err
		stale = append(stale, targetID)
	} else {
		rs.pub.UserChanged(ctx, targetID)
	}
	if demotedPrev != "" {
		if err := retryWrite("demote previous holder membership", func() error {
			return rs.users.SetMembership(ctx, demotedPrev, &models.TeamMembership{TeamID: teamID, Role: models.RolePlayer})
		}); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			stale = append(stale, demotedPrev)
		} else {
			rs.pub.UserChanged(ctx, demotedPrev)
		}
	}
	if firstErr != nil {
		return result, &PartialFailureError{Op: "changeRole", TeamID: teamID, UserIDs: stale, RetryOp: "finishLeave", Err: firstErr}
	}

	rs.pub.TeamChanged(ctx, teamID)
	log.Printf("INFO: User %s is now %s of team %s (changed by %s).", targetID, newRole, teamID, actorID)
	return result, nil
}
