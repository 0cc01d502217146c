package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/gem-enterprise/gemhub/bots"
	"github.com/gem-enterprise/gemhub/global"
)

func dispatchKey(persona string) string {
	return "bots:" + persona + ":updates"
}

func incrDispatch(ctx context.Context, persona string) error {
	if global.RedisDB == nil {
		return nil
	}
	return global.RedisDB.Incr(ctx, dispatchKey(persona)).Err()
}

func dispatchCount(ctx context.Context, persona string) (int64, error) {
	count, err := global.RedisDB.Get(ctx, dispatchKey(persona)).Result()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return strconv.ParseInt(count, 10, 64)
}

type personaStats struct {
	bots.Persona
	Configured bool   `json:"configured"`
	Updates    *int64 `json:"updates,omitempty"`
}

// GetBotStats lists the personas and, when the cache is available, how many updates each
// has handled.
func (ctl *Controller) GetBotStats(c *gin.Context) {
	ctx := c.Request.Context()
	names := []bots.Persona{}
	names = append(names, ctl.Bots.Personas()...)
	names = append(names, bots.Persona{Name: bots.Fallback})

	out := make([]personaStats, 0, len(names))
	for _, p := range names {
		st := personaStats{Persona: p, Configured: p.Credential != "" || p.Name == bots.Fallback}
		if global.RedisDB != nil {
			n, err := dispatchCount(ctx, string(p.Name))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			st.Updates = &n
		}
		out = append(out, st)
	}
	c.JSON(http.StatusOK, gin.H{"bots": out})
}
