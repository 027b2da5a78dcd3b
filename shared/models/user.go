// shared/models/user.go
package models

import "time"

// Role is the position a user holds inside their team.
type Role string

const (
	RolePlayer        Role = "PLAYER"
	RoleCaptain       Role = "CAPTAIN"
	RoleVicePresident Role = "VICE_PRESIDENT"
	RolePresident     Role = "PRESIDENT"
)

// Valid reports whether the role is one of the four known positions.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleCaptain, RoleVicePresident, RolePresident:
		return true
	}
	return false
}

// TeamMembership mirrors the role a user holds in the team referenced by
// TeamID. It is written only in lock-step with a Team roster mutation and is
// absent while the user belongs to no team.
type TeamMembership struct {
	TeamID string `bson:"team_id" json:"teamId"`
	Role   Role   `bson:"role" json:"role"`
}

// User represents a user profile stored persistently in MongoDB. Identity
// fields are owned by the auth service; this service only writes
// TeamMembership.
type User struct {
	ID             string          `bson:"_id" json:"id"`
	Username       string          `bson:"username" json:"username"`
	TeamMembership *TeamMembership `bson:"team_membership,omitempty" json:"teamMembership,omitempty"`
	CreatedAt      *time.Time      `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}
