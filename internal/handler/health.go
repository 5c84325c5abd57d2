package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports connectivity of the backing services. Returns 503 when
// either Postgres or Redis is unreachable so the load balancer stops
// routing traffic here.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		postgres := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			postgres = "error"
		}

		redisState := "connected"
		if err := rdb.Ping(ctx).Err(); err != nil {
			redisState = "error"
		}

		status := http.StatusOK
		if postgres != "connected" || redisState != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":       status == http.StatusOK,
			"servicio": "taller-backend",
			"db":       postgres,
			"redis":    redisState,
		})
	}
}
