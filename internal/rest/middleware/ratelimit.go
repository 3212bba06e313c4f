package middleware

import (
	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CronRateLimitMiddleware bounds how often the cron endpoints can fire.
// The sweep walks every user, so an aggressive external scheduler (or a
// stuck retry loop) must not be able to stack runs on top of each other.
func CronRateLimitMiddleware(r rate.Limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(r, burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			err := ierr.NewError("cron trigger rate exceeded").
				WithHint("A sweep was triggered too recently, retry later").
				Mark(ierr.ErrSystem)
			c.AbortWithStatusJSON(429, ierr.NewErrorResponse(err))
			return
		}
		c.Next()
	}
}
