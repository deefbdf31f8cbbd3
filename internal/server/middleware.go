package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"hallkal/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Request-ID", reqID)

		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.IncHTTPRequest(r.URL.Path, http.StatusText(rec.status))
	})
}

// limiterIdleTTL is how long a client entry may sit unused before it is
// dropped from the limiter map.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client address. Idle entries
// are evicted so the map stays bounded by the set of recently active
// clients.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	r         rate.Limit
	burst     int
	lastPrune time.Time
}

func newIPRateLimiter(perSec, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:  make(map[string]*clientLimiter),
		r:         rate.Limit(perSec),
		burst:     burst,
		lastPrune: time.Now(),
	}
}

func (l *ipRateLimiter) limiterFor(addr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > limiterIdleTTL {
		l.pruneLocked(now)
	}

	entry, ok := l.limiters[host]
	if !ok {
		entry = &clientLimiter{lim: rate.NewLimiter(l.r, l.burst)}
		l.limiters[host] = entry
	}
	entry.lastSeen = now
	return entry.lim
}

// pruneLocked drops entries idle longer than the TTL. Caller holds mu.
func (l *ipRateLimiter) pruneLocked(now time.Time) {
	for host, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.limiters, host)
		}
	}
	l.lastPrune = now
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiterFor(r.RemoteAddr).Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
