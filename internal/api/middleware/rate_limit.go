package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	apiContext "complyhr/internal/api/context"
	"complyhr/internal/pkg/clientinfo"
	"complyhr/internal/pkg/errors"
	"complyhr/internal/platform/tenant"
)

type RateLimiter struct {
	store *sync.Map // map[string]*Bucket
	now   func() time.Time
	done  chan struct{}

	// TrustProxy keys anonymous callers by X-Forwarded-For instead of the peer address.
	TrustProxy bool
}

type Bucket struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
	lastAccess time.Time
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		store: &sync.Map{},
		now:   time.Now,
		done:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			now := rl.now()
			rl.store.Range(func(key, value interface{}) bool {
				bucket := value.(*Bucket)
				bucket.mu.Lock()
				if now.Sub(bucket.lastAccess) > 10*time.Minute {
					rl.store.Delete(key)
				}
				bucket.mu.Unlock()
				return true
			})
		}
	}
}

// Allow takes one token from key's bucket, refilling at limit per minute.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	now := rl.now()

	val, _ := rl.store.LoadOrStore(key, &Bucket{
		tokens:     limit,
		lastRefill: now,
		lastAccess: now,
	})

	bucket := val.(*Bucket)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now

	elapsed := now.Sub(bucket.lastRefill)
	refillRate := float64(limit) / 60.0
	refillTokens := int(elapsed.Seconds() * refillRate)

	if refillTokens > 0 {
		if bucket.tokens+refillTokens > limit {
			bucket.tokens = limit
		} else {
			bucket.tokens += refillTokens
		}
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

// Limit keys authenticated requests by company and everything else by client IP.
func (rl *RateLimiter) Limit(scope string, perMinute int) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if perMinute <= 0 {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientinfo.RemoteIP(r, rl.TrustProxy) + ":" + scope
			if tc, ok := r.Context().Value(apiContext.Tenant).(tenant.Context); ok {
				key = "company:" + tc.CompanyID + ":" + scope
			}

			if !rl.Allow(key, perMinute) {
				w.Header().Set("Retry-After", strconv.Itoa(60/perMinute+1))
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
				return
			}

			next(w, r)
		}
	}
}
