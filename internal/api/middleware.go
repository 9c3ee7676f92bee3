package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/auth"
	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
)

// Authenticate rejects requests without a valid bearer token and stores the
// caller in the request context.
func Authenticate(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := verifier.Verify(auth.BearerToken(r))
			if err != nil {
				respondWithError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// requireOwner returns the authenticated caller's id, writing a 401 when the
// request was not authenticated.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, err := auth.OwnerID(r.Context())
	if err != nil {
		respondWithError(w, err)
		return "", false
	}
	return ownerID, true
}

// OwnerRateLimiter keeps one token bucket per owner.
type OwnerRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ownerLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	lastGC   time.Time
}

type ownerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewOwnerRateLimiter allows perMinute requests per owner with the given
// burst. A non-positive perMinute disables limiting.
func NewOwnerRateLimiter(perMinute, burst int) *OwnerRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	return &OwnerRateLimiter{
		limiters: make(map[string]*ownerLimiter),
		limit:    limit,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		lastGC:   time.Now(),
	}
}

// Allow reports whether ownerID may make another request now.
func (l *OwnerRateLimiter) Allow(ownerID string) bool {
	if l.limit == rate.Inf {
		return true
	}
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > l.idleTTL {
		for id, ol := range l.limiters {
			if now.Sub(ol.lastSeen) > l.idleTTL {
				delete(l.limiters, id)
			}
		}
		l.lastGC = now
	}

	ol, ok := l.limiters[ownerID]
	if !ok {
		ol = &ownerLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ownerID] = ol
	}
	ol.lastSeen = now
	return ol.limiter.AllowN(now, 1)
}

// Middleware answers 429 once the caller's bucket is empty. It must run after
// Authenticate.
func (l *OwnerRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := requireOwner(w, r)
		if !ok {
			return
		}
		if !l.Allow(ownerID) {
			slog.Info("Rate limit exceeded", "owner_id", ownerID, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondWithError(w, fmt.Errorf("%w: owner %s", app_errors.ErrRateLimited, ownerID))
			return
		}
		next.ServeHTTP(w, r)
	})
}
