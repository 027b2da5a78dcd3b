// shared/models/joinrequest.go
package models

import "time"

// JoinRequestStatus is the admission state of a join request.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestRejected JoinRequestStatus = "REJECTED"
)

// JoinRequest is a prospective member's request to join a team. At most one
// PENDING request exists per (team, user), enforced by a partial unique index.
// APPROVED and REJECTED are terminal; a PENDING request may also be deleted by
// its requester.
type JoinRequest struct {
	ID         string            `bson:"_id" json:"id"`
	TeamID     string            `bson:"team_id" json:"teamId"`
	UserID     string            `bson:"user_id" json:"userId"`
	Status     JoinRequestStatus `bson:"status" json:"status"`
	CreatedAt  *time.Time        `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	ResponseAt *time.Time        `bson:"response_at,omitempty" json:"responseAt,omitempty"`
	ResponseBy string            `bson:"response_by,omitempty" json:"responseBy,omitempty"`
}
