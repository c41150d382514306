package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/CuelineHQ/cueline/internal/db"
	"github.com/CuelineHQ/cueline/internal/http/middleware"
	"github.com/CuelineHQ/cueline/internal/playback"
	redisclient "github.com/CuelineHQ/cueline/internal/redis"
)

func main() {
	// .env is optional; system env wins either way
	_ = godotenv.Load()
	env := LoadEnvironment()

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	// playback state lives in Redis when configured; in-memory otherwise
	// (state then does not survive a server restart)
	var states playback.StateStore
	if env.RedisAddress != "" {
		if err := redisclient.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword); err != nil {
			log.Fatal().Err(err).Msg("redis init")
		}
		states = playback.NewRedisStateStore(redisclient.Rdb)
	} else {
		log.Warn().Msg("REDIS_ADDRESS not set, playback state is in-memory only")
		states = playback.NewMemoryStateStore()
	}

	// MQTT fan-out is optional
	if env.MQTTBrokerURL != "" {
		if err := middleware.InitMQTT(env.MQTTBrokerURL, "cueline-server"); err != nil {
			log.Fatal().Err(err).Msg("mqtt init")
		}
		defer middleware.CleanupMQTT()
	}

	store := db.NewStore()
	manager := playback.NewManager(store, states, func(rundownID int, snap playback.Snapshot) {
		middleware.PublishRundownEvent(rundownID, snap)
	})

	r := gin.Default()
	RegisterRoutes(r, store, manager)

	log.Info().Str("addr", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
