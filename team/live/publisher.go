// team/live/publisher.go
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel name formats. Reactive consumers subscribe to the entities they
// render and re-fetch current state when an event arrives.
const (
	TeamChannelFormat     = "playscore:team:{%s}"
	UserChannelFormat     = "playscore:user:{%s}"
	RequestsChannelFormat = "playscore:team:{%s}:requests"
)

// Event is the payload published on every change channel.
type Event struct {
	Kind   string    `json:"kind"` // "team", "user" or "requests"
	TeamID string    `json:"teamId,omitempty"`
	UserID string    `json:"userId,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher broadcasts change events over Redis pub/sub. Publishing is
// best-effort: a failed publish is logged and never fails the operation that
// triggered it.
type Publisher struct {
	redisClient redis.UniversalClient
}

// NewPublisher creates a new Publisher instance.
func NewPublisher(redisClient redis.UniversalClient) *Publisher {
	return &Publisher{
		redisClient: redisClient,
	}
}

// TeamChanged announces that the team document was created, mutated or deleted.
func (p *Publisher) TeamChanged(ctx context.Context, teamID string) {
	p.publish(ctx, TeamChannel(teamID), Event{Kind: "team", TeamID: teamID, At: time.Now()})
}

// UserChanged announces that the user's team membership changed.
func (p *Publisher) UserChanged(ctx context.Context, userID string) {
	p.publish(ctx, UserChannel(userID), Event{Kind: "user", UserID: userID, At: time.Now()})
}

// RequestsChanged announces that the team's pending join requests changed.
func (p *Publisher) RequestsChanged(ctx context.Context, teamID string) {
	p.publish(ctx, RequestsChannel(teamID), Event{Kind: "requests", TeamID: teamID, At: time.Now()})
}

// TeamChannel returns the pub/sub channel carrying a team's change events.
func TeamChannel(teamID string) string {
	return fmt.Sprintf(TeamChannelFormat, teamID)
}

// UserChannel returns the pub/sub channel carrying a user's membership events.
func UserChannel(userID string) string {
	return fmt.Sprintf(UserChannelFormat, userID)
}

// RequestsChannel returns the channel carrying a team's join-request events.
func RequestsChannel(teamID string) string {
	return fmt.Sprintf(RequestsChannelFormat, teamID)
}

func (p *Publisher) publish(ctx context.Context, channel string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("ERROR: Failed to marshal live event for channel %s: %v", channel, err)
		return
	}
	if err := p.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("WARN: Failed to publish live event on %s: %v", channel, err)
	}
}
