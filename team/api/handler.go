// team/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pablisEsp/PlayScore-sub000/shared/api"
	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"github.com/pablisEsp/PlayScore-sub000/team/service"
)

// TeamAPIHandlers holds references to the services that handle business logic.
type TeamAPIHandlers struct {
	Membership   *service.MembershipService
	RoleChanges  *service.RoleChangeService
	JoinRequests *service.JoinRequestService
	Timeout      time.Duration
}

// NewTeamAPIHandlers is the constructor for the API handlers.
func NewTeamAPIHandlers(ms *service.MembershipService, rs *service.RoleChangeService, js *service.JoinRequestService, timeout time.Duration) *TeamAPIHandlers {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TeamAPIHandlers{
		Membership:   ms,
		RoleChanges:  rs,
		JoinRequests: js,
		Timeout:      timeout,
	}
}

// RegisterRoutes attaches all team-service routes to the router.
func (h *TeamAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/teams", h.CreateTeamHandler).Methods(http.MethodPost)
	router.HandleFunc("/teams/leave", h.LeaveTeamHandler).Methods(http.MethodPost)
	router.HandleFunc("/teams/finish-leave", h.FinishLeaveHandler).Methods(http.MethodPost)
	router.HandleFunc("/teams/{teamId}", h.GetTeamHandler).Methods(http.MethodGet)
	router.HandleFunc("/teams/kick", h.KickMemberHandler).Methods(http.MethodPost)
	router.HandleFunc("/teams/roles", h.ChangeRoleHandler).Methods(http.MethodPut)
	router.HandleFunc("/teams/{teamId}/join-requests", h.ListJoinRequestsHandler).Methods(http.MethodGet)
	router.HandleFunc("/users/{userId}/team", h.GetUserTeamHandler).Methods(http.MethodGet)
	router.HandleFunc("/join-requests", h.CreateJoinRequestHandler).Methods(http.MethodPost)
	router.HandleFunc("/join-requests/{requestId}/approve", h.ApproveJoinRequestHandler).Methods(http.MethodPost)
	router.HandleFunc("/join-requests/{requestId}/reject", h.RejectJoinRequestHandler).Methods(http.MethodPost)
	router.HandleFunc("/join-requests/{requestId}", h.CancelJoinRequestHandler).Methods(http.MethodDelete)
}

// --- Request/Response DTOs ---

type CreateTeamRequest struct {
	FounderID   string `json:"founderId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LeaveTeamRequest struct {
	UserID string `json:"userId"`
}

type KickMemberRequest struct {
	ActorID      string `json:"actorId"`
	TargetUserID string `json:"targetUserId"`
}

type ChangeRoleRequest struct {
	ActorID      string      `json:"actorId"`
	TargetUserID string      `json:"targetUserId"`
	NewRole      models.Role `json:"newRole"`
}

type CreateJoinRequestRequest struct {
	UserID string `json:"userId"`
	TeamID string `json:"teamId"`
}

type RespondJoinRequestRequest struct {
	ResponderID string `json:"responderId"`
}

type UserTeamResponse struct {
	User *models.User `json:"user"`
	Team *models.Team `json:"team,omitempty"`
}

// PartialFailureResponse reports an operation whose authoritative write
// committed but whose dependent writes need the named repair call, once per
// listed user.
type PartialFailureResponse struct {
	Message string       `json:"message"`
	RetryOp string       `json:"retryOp"`
	UserIDs []string     `json:"userIds"`
	TeamID  string       `json:"teamId"`
	Team    *models.Team `json:"team,omitempty"`
}

// --- Handler Methods ---

// CreateTeamHandler handles requests to create a new team.
// POST /teams
func (h *TeamAPIHandlers) CreateTeamHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	team, err := h.Membership.CreateTeam(ctx, req.FounderID, req.Name, req.Description)
	if err != nil {
		var pf *service.PartialFailureError
		if errors.As(err, &pf) {
			// The team exists; only the founder's membership mirror is behind.
			api.WriteJSON(w, http.StatusCreated, PartialFailureResponse{
				Message: "Team created with warnings; membership record pending",
				RetryOp: pf.RetryOp,
				UserIDs: pf.UserIDs,
				TeamID:  pf.TeamID,
				Team:    team,
			})
			return
		}
		h.writeServiceError(w, err, "create team")
		return
	}
	api.WriteJSON(w, http.StatusCreated, team)
}

// GetTeamHandler handles requests for a team's current state.
// GET /teams/{teamId}
func (h *TeamAPIHandlers) GetTeamHandler(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	team, err := h.Membership.GetTeam(ctx, teamID)
	if err != nil {
		h.writeServiceError(w, err, "get team")
		return
	}
	api.WriteJSON(w, http.StatusOK, team)
}

// GetUserTeamHandler handles requests for a user's current team and role.
// GET /users/{userId}/team
func (h *TeamAPIHandlers) GetUserTeamHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	user, team, err := h.Membership.GetTeamForUser(ctx, userID)
	if err != nil {
		h.writeServiceError(w, err, "get user team")
		return
	}
	api.WriteJSON(w, http.StatusOK, UserTeamResponse{User: user, Team: team})
}

// LeaveTeamHandler handles requests to leave the caller's team.
// POST /teams/leave
func (h *TeamAPIHandlers) LeaveTeamHandler(w http.ResponseWriter, r *http.Request) {
	var req LeaveTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Membership.LeaveTeam(ctx, req.UserID); err != nil {
		if h.writePartialFailure(w, err, "Left team with warnings; membership record pending") {
			return
		}
		h.writeServiceError(w, err, "leave team")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Left team"})
}

// FinishLeaveHandler repairs a membership mirror after a partial failure.
// POST /teams/finish-leave
func (h *TeamAPIHandlers) FinishLeaveHandler(w http.ResponseWriter, r *http.Request) {
	var req LeaveTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Membership.FinishLeave(ctx, req.UserID); err != nil {
		h.writeServiceError(w, err, "finish leave")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Membership reconciled"})
}

// KickMemberHandler handles requests to remove a member from a team.
// POST /teams/kick
func (h *TeamAPIHandlers) KickMemberHandler(w http.ResponseWriter, r *http.Request) {
	var req KickMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Membership.KickMember(ctx, req.ActorID, req.TargetUserID); err != nil {
		if h.writePartialFailure(w, err, "Member kicked with warnings; membership record pending") {
			return
		}
		h.writeServiceError(w, err, "kick member")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Member kicked"})
}

// ChangeRoleHandler handles role promotions and demotions, including the
// president transfer.
// PUT /teams/roles
func (h *TeamAPIHandlers) ChangeRoleHandler(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	team, err := h.RoleChanges.ChangeRole(ctx, req.ActorID, req.TargetUserID, req.NewRole)
	if err != nil {
		var pf *service.PartialFailureError
		if errors.As(err, &pf) {
			api.WriteJSON(w, http.StatusOK, PartialFailureResponse{
				Message: "Role changed with warnings; membership records pending",
				RetryOp: pf.RetryOp,
				UserIDs: pf.UserIDs,
				TeamID:  pf.TeamID,
				Team:    team,
			})
			return
		}
		h.writeServiceError(w, err, "change role")
		return
	}
	api.WriteJSON(w, http.StatusOK, team)
}

// CreateJoinRequestHandler handles a prospective member's join request.
// POST /join-requests
func (h *TeamAPIHandlers) CreateJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateJoinRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	created, err := h.JoinRequests.Create(ctx, req.UserID, req.TeamID)
	if err != nil {
		h.writeServiceError(w, err, "create join request")
		return
	}
	api.WriteJSON(w, http.StatusCreated, created)
}

// ListJoinRequestsHandler lists a team's pending requests for its leaders.
// GET /teams/{teamId}/join-requests?responderId=...
func (h *TeamAPIHandlers) ListJoinRequestsHandler(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]
	responderID := r.URL.Query().Get("responderId")

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	reqs, err := h.JoinRequests.ListPending(ctx, teamID, responderID)
	if err != nil {
		h.writeServiceError(w, err, "list join requests")
		return
	}
	api.WriteJSON(w, http.StatusOK, reqs)
}

// ApproveJoinRequestHandler admits the requester to the team.
// POST /join-requests/{requestId}/approve
func (h *TeamAPIHandlers) ApproveJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]
	var req RespondJoinRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.JoinRequests.Approve(ctx, requestID, req.ResponderID); err != nil {
		if h.writePartialFailure(w, err, "Request approved with warnings; follow-up record pending") {
			return
		}
		h.writeServiceError(w, err, "approve join request")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Join request approved"})
}

// RejectJoinRequestHandler marks a request rejected.
// POST /join-requests/{requestId}/reject
func (h *TeamAPIHandlers) RejectJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]
	var req RespondJoinRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.JoinRequests.Reject(ctx, requestID, req.ResponderID); err != nil {
		h.writeServiceError(w, err, "reject join request")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Join request rejected"})
}

// CancelJoinRequestHandler deletes a pending request on the requester's behalf.
// DELETE /join-requests/{requestId}?requesterId=...
func (h *TeamAPIHandlers) CancelJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]
	requesterID := r.URL.Query().Get("requesterId")

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.JoinRequests.Cancel(ctx, requestID, requesterID); err != nil {
		h.writeServiceError(w, err, "cancel join request")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Join request cancelled"})
}

// writePartialFailure writes the completed-with-warnings response for
// operations whose team write committed. Returns false when err is not a
// partial failure.
func (h *TeamAPIHandlers) writePartialFailure(w http.ResponseWriter, err error, message string) bool {
	var pf *service.PartialFailureError
	if !errors.As(err, &pf) {
		return false
	}
	api.WriteJSON(w, http.StatusOK, PartialFailureResponse{
		Message: message,
		RetryOp: pf.RetryOp,
		UserIDs: pf.UserIDs,
		TeamID:  pf.TeamID,
	})
	return true
}

// writeServiceError maps service-layer errors to HTTP status codes.
func (h *TeamAPIHandlers) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		api.WriteBadRequest(w, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		api.WriteForbidden(w, err.Error())
	case errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrNotAMember):
		api.WriteNotFound(w, err.Error())
	case errors.Is(err, service.ErrTeamNameTaken),
		errors.Is(err, service.ErrRequestPending),
		errors.Is(err, service.ErrRequestNotPending),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrRequesterJoinedElsewhere),
		errors.Is(err, service.ErrCannotKickPresident),
		errors.Is(err, service.ErrContention):
		api.WriteConflict(w, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		api.WriteError(w, http.StatusRequestTimeout, "Request cancelled")
	default:
		log.Printf("ERROR: Failed to %s: %v", op, err)
		api.WriteInternalServerError(w, "Internal server error")
	}
}
