package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gem-enterprise/gemhub/global"
)

const (
	depDisabled = "disabled"
	depUp       = "up"
	depDown     = "down"
)

// Health provides an unauthenticated liveness endpoint for container orchestrators.
// Optional backends are reported but never fail the check.
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"database":  databaseStatus(ctx),
		"cache":     cacheStatus(ctx),
	})
}

func databaseStatus(ctx context.Context) string {
	if global.DB == nil {
		return depDisabled
	}
	sqlDB, err := global.DB.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return depDown
	}
	return depUp
}

func cacheStatus(ctx context.Context) string {
	if global.RedisDB == nil {
		return depDisabled
	}
	if err := global.RedisDB.Ping(ctx).Err(); err != nil {
		return depDown
	}
	return depUp
}
