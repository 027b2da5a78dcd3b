// team/store/team_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TeamStore represents the MongoDB data store for team documents.
type TeamStore struct {
	collection *mongo.Collection
}

// NewTeamStore creates a new TeamStore instance.
func NewTeamStore(collection *mongo.Collection) *TeamStore {
	return &TeamStore{
		collection: collection,
	}
}

// EnsureIndexes creates the unique index backing case-insensitive team name
// uniqueness. Safe to call on every startup.
func (ts *TeamStore) EnsureIndexes(ctx context.Context) error {
	_, err := ts.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name_lower", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create team name index: %w", err)
	}
	return nil
}

// GetTeam retrieves a team document by its id.
func (ts *TeamStore) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	var team models.Team
	filter := bson.M{"_id": teamID}
	err := ts.collection.FindOne(ctx, filter).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}
	return &team, nil
}

// FindTeamByMember retrieves the team whose roster contains the user. Users
// belong to at most one team, so a single document is expected.
func (ts *TeamStore) FindTeamByMember(ctx context.Context, userID string) (*models.Team, error) {
	var team models.Team
	filter := bson.M{"roster_ids": userID}
	err := ts.collection.FindOne(ctx, filter).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find team for member %s: %w", userID, err)
	}
	return &team, nil
}

// InsertTeam inserts a new team document. The name_lower unique index rejects
// a second team with the same case-folded name.
func (ts *TeamStore) InsertTeam(ctx context.Context, team *models.Team) error {
	_, err := ts.collection.InsertOne(ctx, team)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert team %s: %w", team.ID, err)
	}
	return nil
}

// UpdateTeamVersioned replaces the team document conditionally on the version
// it was read at. The stored document gets team.Version+1; the caller's copy
// is bumped to match on success. A vanished or concurrently-modified document
// surfaces as ErrVersionMismatch so the caller can re-read and retry.
func (ts *TeamStore) UpdateTeamVersioned(ctx context.Context, team *models.Team) error {
	now := time.Now()
	filter := bson.M{"_id": team.ID, "version": team.Version}
	update := bson.M{"$set": bson.M{
		"name":              team.Name,
		"name_lower":        team.NameLower,
		"description":       team.Description,
		"president_id":      team.PresidentID,
		"vice_president_id": team.VicePresidentID,
		"captain_ids":       team.CaptainIDs,
		"roster_ids":        team.RosterIDs,
		"updated_at":        &now,
		"version":           team.Version + 1,
	}}
	res, err := ts.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update team %s: %w", team.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionMismatch
	}
	team.Version++
	team.UpdatedAt = &now
	return nil
}

// DeleteTeamVersioned removes the team document conditionally on its version.
func (ts *TeamStore) DeleteTeamVersioned(ctx context.Context, teamID string, version int64) error {
	filter := bson.M{"_id": teamID, "version": version}
	res, err := ts.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete team %s: %w", teamID, err)
	}
	if res.DeletedCount == 0 {
		return ErrVersionMismatch
	}
	return nil
}
