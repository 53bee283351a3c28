package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"PetPal/pkg/response"
)

// NewRateLimitStore keeps counters in Redis when a client is given, so
// limits hold across restarts, and in memory otherwise.
func NewRateLimitStore(rdb *redis.Client, window time.Duration, limit uint) ratelimit.Store {
	if rdb != nil {
		return ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: rdb,
			Rate:        window,
			Limit:       limit,
		})
	}
	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  window,
		Limit: limit,
	})
}

func clientIP(c *gin.Context) string {
	ip := strings.TrimSpace(c.ClientIP())
	if ip == "" {
		host, _, _ := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
		ip = host
	}
	return ip
}

// rateKey buckets authenticated callers by user and everyone else by IP.
func rateKey(c *gin.Context) string {
	if uid := CurrentUserID(c); uid != 0 {
		return "user:" + strconv.FormatUint(uint64(uid), 10)
	}
	return "ip:" + clientIP(c)
}

func RateLimit(store ratelimit.Store) gin.HandlerFunc {
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc: rateKey,
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			retry := int(time.Until(info.ResetTime).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			response.Abort(c, http.StatusTooManyRequests, response.CodeRateLimited, "too many requests")
		},
	})
}
