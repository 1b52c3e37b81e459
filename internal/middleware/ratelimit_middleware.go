package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"noteapp/pkg/response"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	perMinute int
	limit     rate.Limit
	burst     int

	mu      sync.Mutex
	clients map[string]*client
	stop    chan struct{}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMinute per IP with a burst of the same size.
// Call Stop on shutdown.
func NewRateLimiter(requestsPerMinute int, cleanupInterval time.Duration) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	rl := &RateLimiter{
		perMinute: requestsPerMinute,
		limit:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:     requestsPerMinute,
		clients:   make(map[string]*client),
		stop:      make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go rl.cleanup(cleanupInterval)
	}
	return rl
}

func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			retryAfter := 60.0 / float64(rl.perMinute)
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter)+1))
			response.TooManyRequests(w, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if now.Sub(c.lastSeen) > 10*time.Minute {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
