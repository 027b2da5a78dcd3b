// team/service/interfaces.go
package service

import (
	"context"

	"github.com/pablisEsp/PlayScore-sub000/shared/models"
)

// TeamStore is the slice of the team collection the services consume.
// Versioned writes fail with store.ErrVersionMismatch when the document
// changed since it was read.
type TeamStore interface {
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)
	FindTeamByMember(ctx context.Context, userID string) (*models.Team, error)
	InsertTeam(ctx context.Context, team *models.Team) error
	UpdateTeamVersioned(ctx context.Context, team *models.Team) error
	DeleteTeamVersioned(ctx context.Context, teamID string, version int64) error
}

// UserStore reads user profiles and writes their team membership mirror.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SetMembership(ctx context.Context, userID string, membership *models.TeamMembership) error
	ClearMembership(ctx context.Context, userID string) error
}

// JoinRequestStore persists join requests and their admission transitions.
type JoinRequestStore interface {
	InsertRequest(ctx context.Context, req *models.JoinRequest) error
	GetRequest(ctx context.Context, requestID string) (*models.JoinRequest, error)
	ListPendingByTeam(ctx context.Context, teamID string) ([]models.JoinRequest, error)
	MarkDecided(ctx context.Context, requestID string, status models.JoinRequestStatus, responderID string) error
	DeletePending(ctx context.Context, requestID string) error
}

// Publisher broadcasts change events so reactive consumers can refresh their
// current-team / current-user / pending-request views. Implementations are
// best-effort and must not fail the calling operation.
type Publisher interface {
	TeamChanged(ctx context.Context, teamID string)
	UserChanged(ctx context.Context, userID string)
	RequestsChanged(ctx context.Context, teamID string)
}
