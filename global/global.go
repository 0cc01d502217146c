package global

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// DB and RedisDB stay nil when their config sections are empty; callers check before use.
var (
	DB      *gorm.DB
	RedisDB *redis.Client
)
