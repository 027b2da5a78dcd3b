// shared/models/team.go
package models

import "time"

// Team represents a team document stored persistently in MongoDB.
// Version increments on every write and is the filter for conditional updates.
type Team struct {
	ID              string     `bson:"_id" json:"id"`
	Name            string     `bson:"name" json:"name"`
	NameLower       string     `bson:"name_lower" json:"-"` // unique index, case-insensitive name checks
	Description     string     `bson:"description,omitempty" json:"description,omitempty"`
	PresidentID     string     `bson:"president_id" json:"presidentId"`
	VicePresidentID string     `bson:"vice_president_id,omitempty" json:"vicePresidentId,omitempty"`
	CaptainIDs      []string   `bson:"captain_ids" json:"captainIds"`
	RosterIDs       []string   `bson:"roster_ids" json:"rosterIds"`
	CreatedAt       *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
	Version         int64      `bson:"version" json:"-"`
}

// HasMember reports whether the user id appears in the roster.
func (t *Team) HasMember(userID string) bool {
	for _, id := range t.RosterIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsCaptain reports whether the user id holds a captain flag.
func (t *Team) IsCaptain(userID string) bool {
	for _, id := range t.CaptainIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsLeader reports whether the user is the president or vice president.
func (t *Team) IsLeader(userID string) bool {
	return userID != "" && (t.PresidentID == userID || t.VicePresidentID == userID)
}

// RoleOf returns the role the user holds in this team. The second return is
// false when the user is not on the roster at all.
func (t *Team) RoleOf(userID string) (Role, bool) {
	if !t.HasMember(userID) {
		return "", false
	}
	switch {
	case t.PresidentID == userID:
		return RolePresident, true
	case t.VicePresidentID == userID:
		return RoleVicePresident, true
	case t.IsCaptain(userID):
		return RoleCaptain, true
	default:
		return RolePlayer, true
	}
}

// ClearFlags removes any captain or vice-president flag the user holds,
// leaving their roster membership untouched.
func (t *Team) ClearFlags(userID string) {
	t.CaptainIDs = removeID(t.CaptainIDs, userID)
	if t.VicePresidentID == userID {
		t.VicePresidentID = ""
	}
}

// RemoveFromRoster deletes the user id from the roster and captain lists and
// clears the VP slot if held, preserving insertion order of the remainder.
func (t *Team) RemoveFromRoster(userID string) {
	t.RosterIDs = removeID(t.RosterIDs, userID)
	t.CaptainIDs = removeID(t.CaptainIDs, userID)
	if t.VicePresidentID == userID {
		t.VicePresidentID = ""
	}
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
