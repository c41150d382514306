package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

// InitRedis connects the shared client and verifies the connection.
func InitRedis(redisAddress string, redisUsername string, redisPassword string) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Str("addr", redisAddress).Msg("failed to connect to redis")
		return err
	}
	log.Info().Str("addr", redisAddress).Msg("connected to redis")
	return nil
}
