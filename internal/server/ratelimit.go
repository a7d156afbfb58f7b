package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	auth "kyri56xcaesar/pms-collab/internal/authmw"
)

// chatLimiter bounds how fast one caller may post chat messages. Callers are
// keyed by identity, or by client ip when none was resolved.
func chatLimiter(r rate.Limit, b int) gin.HandlerFunc {
	var visitors = make(map[string]*rate.Limiter)
	var mu sync.Mutex

	getVisitor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, exists := visitors[key]
		if !exists {
			limiter = rate.NewLimiter(r, b)
			visitors[key] = limiter
		}
		return limiter
	}

	return func(c *gin.Context) {
		key, ok := auth.CallerID(c)
		if !ok {
			key = "ip:" + c.ClientIP()
		}
		if !getVisitor(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
