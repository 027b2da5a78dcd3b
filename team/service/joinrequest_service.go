// team/service/joinrequest_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"github.com/pablisEsp/PlayScore-sub000/team/store"
)

// JoinRequestService governs the admission state machine: a PENDING request
// is approved or rejected by a team leader, or cancelled (deleted) by the
// requester. APPROVED and REJECTED are terminal.
type JoinRequestService struct {
	teams    TeamStore
	users    UserStore
	requests JoinRequestStore
	pub      Publisher
}

// NewJoinRequestService creates a new JoinRequestService instance.
func NewJoinRequestService(teams TeamStore, users UserStore, requests JoinRequestStore, pub Publisher) *JoinRequestService {
	return &JoinRequestService{
		teams:    teams,
		users:    users,
		requests: requests,
		pub:      pub,
	}
}

// Create files a join request from a teamless user. The one-pending-request
// rule per (team, user) is enforced by the store's partial unique index, not
// a racy pre-check.
func (js *JoinRequestService) Create(ctx context.Context, userID, teamID string) (*models.JoinRequest, error) {
	if userID == "" || teamID == "" {
		return nil, fmt.Errorf("%w: user id and team id are required", ErrValidation)
	}

	user, err := js.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("service failed to load requester: %w", err)
	}
	if user.TeamMembership != nil {
		return nil, ErrAlreadyMember
	}
	if _, err := js.teams.GetTeam(ctx, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to load team: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	req := &models.JoinRequest{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		UserID:    userID,
		Status:    models.JoinRequestPending,
		CreatedAt: &now,
	}
	if err := js.requests.InsertRequest(ctx, req); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrRequestPending
		}
		return nil, fmt.Errorf("service failed to create join request: %w", err)
	}

	js.pub.RequestsChanged(ctx, teamID)
	log.Printf("INFO: User %s requested to join team %s (request %s).", userID, teamID, req.ID)
	return req, nil
}

// Approve admits the requester to the team as a PLAYER. The responder must
// lead the team, and the requester must still be teamless at decision time;
// a requester who joined elsewhere meanwhile fails the approval and leaves
// the roster untouched.
func (js *JoinRequestService) Approve(ctx context.Context, requestID, responderID string) error {
	req, err := js.loadPending(ctx, requestID)
	if err != nil {
		return err
	}

	requester, err := js.users.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("service failed to load requester: %w", err)
	}
	// Time has passed since the request was filed; re-validate.
	alreadyHere := false
	if m := requester.TeamMembership; m != nil {
		if m.TeamID != req.TeamID {
			return ErrRequesterJoinedElsewhere
		}
		// Membership already points at this team: an earlier approval got as
		// far as the user write. Skip the roster work and finish the request.
		alreadyHere = true
	}

	err = withTeam(ctx, js.teams, req.TeamID, func(team *models.Team) error {
		if !team.IsLeader(responderID) {
			return ErrUnauthorized
		}
		if team.HasMember(req.UserID) {
			return nil // roster write already landed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		team.RosterIDs = append(team.RosterIDs, req.UserID)
		return js.teams.UpdateTeamVersioned(ctx, team)
	})
	if err != nil {
		return err
	}

	if !alreadyHere {
		if err := retryWrite("set requester membership", func() error {
			return js.users.SetMembership(ctx, req.UserID, &models.TeamMembership{TeamID: req.TeamID, Role: models.RolePlayer})
		}); err != nil {
			return &PartialFailureError{Op: "approveJoinRequest", TeamID: req.TeamID, UserIDs: []string{req.UserID}, RetryOp: "finishLeave", Err: err}
		}
	}

	if err := retryWrite("mark request approved", func() error {
		err := js.requests.MarkDecided(ctx, requestID, models.JoinRequestApproved, responderID)
		if errors.Is(err, store.ErrVersionMismatch) {
			// Decided or deleted concurrently; the admission itself stands.
			log.Printf("WARN: Join request %s was decided concurrently.", requestID)
			return nil
		}
		return err
	}); err != nil {
		return &PartialFailureError{Op: "approveJoinRequest", TeamID: req.TeamID, UserIDs: []string{req.UserID}, RetryOp: "approve", Err: err}
	}

	js.pub.TeamChanged(ctx, req.TeamID)
	js.pub.UserChanged(ctx, req.UserID)
	js.pub.RequestsChanged(ctx, req.TeamID)
	log.Printf("INFO: Join request %s approved by %s; user %s joined team %s.", requestID, responderID, req.UserID, req.TeamID)
	return nil
}

// Reject marks the request REJECTED. Leaders only; no roster change.
func (js *JoinRequestService) Reject(ctx context.Context, requestID, responderID string) error {
	req, err := js.loadPending(ctx, requestID)
	if err != nil {
		return err
	}

	team, err := js.teams.GetTeam(ctx, req.TeamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("service failed to load team: %w", err)
	}
	if !team.IsLeader(responderID) {
		return ErrUnauthorized
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := js.requests.MarkDecided(ctx, requestID, models.JoinRequestRejected, responderID); err != nil {
		if errors.Is(err, store.ErrVersionMismatch) {
			return ErrRequestNotPending
		}
		return fmt.Errorf("service failed to reject join request: %w", err)
	}

	js.pub.RequestsChanged(ctx, req.TeamID)
	log.Printf("INFO: Join request %s rejected by %s.", requestID, responderID)
	return nil
}

// Cancel deletes a still-PENDING request. Only the requester may cancel.
func (js *JoinRequestService) Cancel(ctx context.Context, requestID, requesterID string) error {
	req, err := js.loadPending(ctx, requestID)
	if err != nil {
		return err
	}
	if req.UserID != requesterID {
		return ErrUnauthorized
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := js.requests.DeletePending(ctx, requestID); err != nil {
		if errors.Is(err, store.ErrVersionMismatch) {
			return ErrRequestNotPending
		}
		return fmt.Errorf("service failed to cancel join request: %w", err)
	}

	js.pub.RequestsChanged(ctx, req.TeamID)
	log.Printf("INFO: Join request %s cancelled by requester %s.", requestID, requesterID)
	return nil
}

// ListPending returns the team's open requests for its leaders.
func (js *JoinRequestService) ListPending(ctx context.Context, teamID, responderID string) ([]models.JoinRequest, error) {
	if teamID == "" || responderID == "" {
		return nil, fmt.Errorf("%w: team id and responder id are required", ErrValidation)
	}
	team, err := js.teams.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to load team: %w", err)
	}
	if !team.IsLeader(responderID) {
		return nil, ErrUnauthorized
	}
	reqs, err := js.requests.ListPendingByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("service failed to list pending requests: %w", err)
	}
	return reqs, nil
}

func (js *JoinRequestService) loadPending(ctx context.Context, requestID string) (*models.JoinRequest, error) {
	if requestID == "" {
		return nil, fmt.Errorf("%w: request id is required", ErrValidation)
	}
	req, err := js.requests.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("service failed to load join request: %w", err)
	}
	if req.Status != models.JoinRequestPending {
		return nil, ErrRequestNotPending
	}
	return req, nil
}
