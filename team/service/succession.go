// team/service/succession.go
package service

import "github.com/pablisEsp/PlayScore-sub000/shared/models"

// nextPresident selects the successor when the president departs. Priority:
// the vice president, then the first captain in roster-insertion order, then
// the first remaining roster member in insertion order, always excluding the
// departing user. Pure; the sole-member branch is handled by the caller, so a
// successor exists whenever this runs.
func nextPresident(team *models.Team, departingID string) (string, error) {
	if team.VicePresidentID != "" && team.VicePresidentID != departingID {
		return team.VicePresidentID, nil
	}
	for _, id := range team.RosterIDs {
		if id != departingID && team.IsCaptain(id) {
			return id, nil
		}
	}
	for _, id := range team.RosterIDs {
		if id != departingID {
			return id, nil
		}
	}
	return "", ErrNoSuccessor
}
