package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	smemory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/http/respond"
)

const rateLimitPrefix = "society_ratelimit"

// RateLimitStore holds limiter counters and the redis client behind them, if any.
type RateLimitStore struct {
	limiter.Store
	client *redis.Client
}

// NewRateLimitStore returns a redis-backed store when redisURL is set and a
// process-local one otherwise.
func NewRateLimitStore(ctx context.Context, redisURL string) (*RateLimitStore, error) {
	if redisURL == "" {
		return &RateLimitStore{Store: smemory.NewStore()}, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("init redis rate limit store: %w", err)
	}
	return &RateLimitStore{Store: store, client: client}, nil
}

// Close releases the redis client.
func (s *RateLimitStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// RateLimit builds a per-client-IP limiter for the named bucket. rate uses the
// limiter format, e.g. "5-M" for five requests a minute.
func RateLimit(store limiter.Store, name, rate string, log *zap.Logger) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse %s rate %q: %w", name, rate, err)
	}
	mw := stdlib.NewMiddleware(limiter.New(store, parsed),
		stdlib.WithKeyGetter(func(r *http.Request) string {
			return name + ":" + clientIP(r)
		}),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			log.Warn("rate limit reached", zap.String("bucket", name), zap.String("path", r.URL.Path))
			respond.Error(w, http.StatusTooManyRequests, "too many requests, try again later")
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("rate limit store failed", zap.String("bucket", name), zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "rate limiter unavailable")
		}),
	)
	return mw.Handler, nil
}

// OnPath applies mw only to requests for path.
func OnPath(path string, mw func(http.Handler) http.Handler, next http.Handler) http.Handler {
	limited := mw(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == path {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
