// team/store/user_store.go
package store

import (
	"context"
	"fmt"

	"github.com/pablisEsp/PlayScore-sub000/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore represents the MongoDB data store for user profiles. Identity
// fields are written by the auth service; this store only reads profiles and
// writes the team_membership subdocument.
type UserStore struct {
	collection *mongo.Collection
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(collection *mongo.Collection) *UserStore {
	return &UserStore{
		collection: collection,
	}
}

// GetUser retrieves a user profile by id.
func (us *UserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	filter := bson.M{"_id": userID}
	err := us.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &user, nil
}

// SetMembership writes the user's team_membership subdocument.
func (us *UserStore) SetMembership(ctx context.Context, userID string, membership *models.TeamMembership) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$set": bson.M{"team_membership": membership}}
	res, err := us.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set membership for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearMembership removes the user's team_membership subdocument. Clearing an
// already-absent membership succeeds, which keeps the partial-failure repair
// paths idempotent.
func (us *UserStore) ClearMembership(ctx context.Context, userID string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$unset": bson.M{"team_membership": ""}}
	res, err := us.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to clear membership for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
