// team/store/joinrequest_store.go
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

// JoinRequestStore represents the MongoDB data store for join requests.
type JoinRequestStore struct {
	collection *mongo.Collection
}

// NewJoinRequestStore creates a new JoinRequestStore instance.
func NewJoinRequestStore(collection *mongo.Collection) *JoinRequestStore {
	return &JoinRequestStore{
		collection: collection,
	}
}

// EnsureIndexes creates the partial unique index that allows at most one
// PENDING request per (team, user). Safe to call on every startup.
func (js *JoinRequestStore) EnsureIndexes(ctx context.Context) error {
	_, err := js.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": string(models.JoinRequestPending)}),
	})
	if err != nil {
		return fmt.Errorf("failed to create join request index: %w", err)
	}
	return nil
}

// InsertRequest inserts a new join request. The partial unique index rejects
// a second PENDING request for the same (team, user).
func (js *JoinRequestStore) InsertRequest(ctx context.Context, req *models.JoinRequest) error {
	_, err := js.collection.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert join request %s: %w", req.ID, err)
	}
	return nil
}

// GetRequest retrieves a join request by id.
func (js *JoinRequestStore) GetRequest(ctx context.Context, requestID string) (*models.JoinRequest, error) {
	var req models.JoinRequest
	filter := bson.M{"_id": requestID}
	err := js.collection.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get join request %s: %w", requestID, err)
	}
	return &req, nil
}

// ListPendingByTeam retrieves all PENDING requests for a team, oldest first.
func (js *JoinRequestStore) ListPendingByTeam(ctx context.Context, teamID string) ([]models.JoinRequest, error) {
	filter := bson.M{"team_id": teamID, "status": string(models.JoinRequestPending)}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := js.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests for team %s: %w", teamID, err)
	}
	defer cursor.Close(ctx)

	var reqs []models.JoinRequest
	if err = cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode pending requests for team %s: %w", teamID, err)
	}
	return reqs, nil
}

// MarkDecided moves a request from PENDING to APPROVED or REJECTED, recording
// who decided and when. The status filter makes the transition conditional:
// a request already decided (or deleted) surfaces as ErrVersionMismatch.
func (js *JoinRequestStore) MarkDecided(ctx context.Context, requestID string, status models.JoinRequestStatus, responderID string) error {
	now := time.Now()
	filter := bson.M{"_id": requestID, "status": string(models.JoinRequestPending)}
	update := bson.M{"$set": bson.M{
		"status":      string(status),
		"response_at": &now,
		"response_by": responderID,
	}}
	res, err := js.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark join request %s %s: %w", requestID, status, err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionMismatch
	}
	return nil
}

// DeletePending removes a request only while it is still PENDING.
func (js *JoinRequestStore) DeletePending(ctx context.Context, requestID string) error {
	filter := bson.M{"_id": requestID, "status": string(models.JoinRequestPending)}
	res, err := js.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete join request %s: %w", requestID, err)
	}
	if res.DeletedCount == 0 {
		return ErrVersionMismatch
	}
	return nil
}
