package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// defaultTTL bounds staleness if an invalidation is lost.
const defaultTTL = 10 * time.Minute

// Redis caches completion flags in a shared Redis so every instance sees the
// same projection. Backend errors are logged and treated as misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedis(client *redis.Client, log zerolog.Logger) *Redis {
	return &Redis{client: client, ttl: defaultTTL, log: log}
}

func key(visitID uuid.UUID) string {
	return "visit:completion:" + visitID.String()
}

func (c *Redis) Get(ctx context.Context, visitID uuid.UUID) (bool, bool) {
	v, err := c.client.Get(ctx, key(visitID)).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("visit_id", visitID.String()).Msg("completion cache get failed")
		return false, false
	}
	return v == "1", true
}

func (c *Redis) Set(ctx context.Context, visitID uuid.UUID, complete bool) {
	v := "0"
	if complete {
		v = "1"
	}
	if err := c.client.Set(ctx, key(visitID), v, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("visit_id", visitID.String()).Msg("completion cache set failed")
	}
}

func (c *Redis) Invalidate(ctx context.Context, visitID uuid.UUID) {
	if err := c.client.Del(ctx, key(visitID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("visit_id", visitID.String()).Msg("completion cache invalidate failed")
	}
}
