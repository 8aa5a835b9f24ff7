package redis

import (
	redisclient "github.com/redis/go-redis/v9"

	"example.com/storefront/pkg/global"
)

func NewClient() *redisclient.Client {
	return redisclient.NewClient(&redisclient.Options{
		Addr:     global.GetRedisAddress(),
		Password: global.GetEnvOrDefault("REDIS_PASSWORD", ""),
		DB:       0,
		Protocol: 2,
	})
}
