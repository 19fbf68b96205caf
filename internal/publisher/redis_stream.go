package publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/dugout/internal/store"
)

// GameResultStream carries finished and rescheduled fixtures to downstream
// consumers (notification workers, the dashboard's live feed).
const GameResultStream = "kbo.games.results"

// RedisStreamPublisher publishes game result events to a Redis stream.
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a publisher over an existing client.
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client}
}

// PublishGameResult appends one fixture update to the result stream.
func (p *RedisStreamPublisher) PublishGameResult(ctx context.Context, game *store.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: GameResultStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// NotifyGameUpdate lets the publisher sit directly on the sync pipeline's
// notifier list. Publish failures are logged, not propagated: a dead
// stream must not fail a scrape.
func (p *RedisStreamPublisher) NotifyGameUpdate(ctx context.Context, game *store.Game) {
	if err := p.PublishGameResult(ctx, game); err != nil {
		log.Printf("⚠️ failed to publish game result for %s vs %s: %v", game.AwayTeam, game.HomeTeam, err)
	}
}
