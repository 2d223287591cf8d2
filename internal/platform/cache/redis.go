package cache

import (
	"context"

	"codeclash/internal/platform/config"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Connect opens the redis client backing the proxy rate limiter.
func Connect() *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("could not connect to redis: %v", err)
	}
	log.Info("connected to redis")
	return rdb
}

func Close(rdb *redis.Client) {
	if rdb != nil {
		rdb.Close()
		log.Info("redis connection closed")
	}
}
