package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gem-enterprise/gemhub/global"
)

// InitRedis connects the cache and stores it in global.RedisDB. An empty address leaves
// caching disabled.
func InitRedis() error {
	redisConf := AppConfig.Redis
	if redisConf.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     redisConf.Addr,
		Password: redisConf.Password,
		DB:       redisConf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	global.RedisDB = client
	return nil
}
