package redis_client

import (
	"context"

	"github.com/nysselive/nysselive/pkg/config"
	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// Connect establishes the shared redis client. Callers skip this entirely
// when no address is configured; the query cache then stays in process.
func Connect(cfg config.RedisConfig) error {
	Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	statusCmd := Client.Ping(context.Background())
	if err := statusCmd.Err(); err != nil {
		return err
	}

	return nil
}
