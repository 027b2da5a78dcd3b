// team/service/retry.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"github.com/pablisEsp/PlayScore-sub000/team/store"
)

const (
	// teamWriteRetries caps the optimistic-concurrency loop on team documents.
	teamWriteRetries = 5
	// userWriteRetries caps the silent retries of a dependent user write
	// before the operation surfaces a PartialFailureError.
	userWriteRetries = 3
	retryBackoff     = 25 * time.Millisecond
)

// withTeam runs fn against a freshly-read team until fn's conditional write
// lands. fn performs the versioned write itself and lets
// store.ErrVersionMismatch bubble up to request another attempt; any other
// error aborts the loop. The team document is the serialization point for all
// concurrent mutations, so losing the version race just means re-reading and
// recomputing.
func withTeam(ctx context.Context, teams TeamStore, teamID string, fn func(team *models.Team) error) error {
	for attempt := 0; attempt < teamWriteRetries; attempt++ {
		team, err := teams.GetTeam(ctx, teamID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTeamNotFound
			}
			return err
		}

		err = fn(team)
		if errors.Is(err, store.ErrVersionMismatch) {
			log.Printf("WARN: Team %s changed concurrently (attempt %d/%d), retrying.", teamID, attempt+1, teamWriteRetries)
			time.Sleep(retryBackoff * time.Duration(attempt+1))
			continue
		}
		return err
	}
	return ErrContention
}

// retryWrite retries a dependent (non-authoritative) write a bounded number
// of times. The caller wraps the final error into a PartialFailureError.
func retryWrite(op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < userWriteRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Printf("WARN: %s failed (attempt %d/%d): %v", op, attempt+1, userWriteRetries, err)
		time.Sleep(retryBackoff)
	}
	return err
}
