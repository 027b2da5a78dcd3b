// team/service/errors.go
package service

import (
	"fmt"
	"strings"
)

// Custom errors for clear communication to the API layer.
var (
	ErrValidation               = fmt.Errorf("invalid input")
	ErrUnauthorized             = fmt.Errorf("actor is not authorized for this action")
	ErrTeamNotFound             = fmt.Errorf("team not found")
	ErrUserNotFound             = fmt.Errorf("user not found")
	ErrRequestNotFound          = fmt.Errorf("join request not found")
	ErrTeamNameTaken            = fmt.Errorf("team name already taken")
	ErrRequestPending           = fmt.Errorf("a pending join request already exists for this team")
	ErrRequestNotPending        = fmt.Errorf("join request is no longer pending")
	ErrAlreadyMember            = fmt.Errorf("user already belongs to a team")
	ErrRequesterJoinedElsewhere = fmt.Errorf("requester joined a team after the request was created")
	ErrNotAMember               = fmt.Errorf("user is not a member of the team")
	ErrCannotKickPresident      = fmt.Errorf("the president cannot be kicked")
	ErrContention               = fmt.Errorf("team was modified concurrently, retries exhausted")
	// ErrNoSuccessor is unreachable while the sole-member branch is handled
	// before succession runs; retained as a defensive case.
	ErrNoSuccessor = fmt.Errorf("no successor available for the presidency")
)

// PartialFailureError reports that the authoritative Team write committed but
// a dependent User or JoinRequest write did not, even after bounded retries.
// RetryOp names the idempotent repair path; UserIDs lists every user whose
// write actually failed, so the repair must be invoked once per listed user.
type PartialFailureError struct {
	Op      string // operation that partially completed
	TeamID  string
	UserIDs []string // users whose records still need repair
	RetryOp string
	Err     error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially completed for users %s on team %s, retry via %s: %v",
		e.Op, strings.Join(e.UserIDs, ", "), e.TeamID, e.RetryOp, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
