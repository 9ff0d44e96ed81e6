package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const msgTooManyRequests = "Too many requests. Please try again later."

const rateWindow = time.Minute

// RateLimitOptions configures a RateLimiter.
type RateLimitOptions struct {
	// PerMinute is the number of requests accepted per client in any rolling
	// minute.
	PerMinute int
	// TrustedProxies is the number of reverse proxies that append to
	// X-Forwarded-For. With zero the header is ignored and the peer address
	// is the client.
	TrustedProxies int
	// SweepInterval is how often idle clients are forgotten. Defaults to
	// five minutes.
	SweepInterval time.Duration
	Now           func() time.Time
}

// RateLimiter throttles contact submissions per client with a sliding
// one-minute window. Call Stop to end the background sweep.
type RateLimiter struct {
	opts RateLimitOptions

	mu   sync.Mutex
	hits map[string][]time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewRateLimiter(opts RateLimitOptions) *RateLimiter {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rl := &RateLimiter{
		opts: opts,
		hits: make(map[string][]time.Time),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the sweep goroutine and waits for it. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

func (rl *RateLimiter) sweepLoop() {
	defer close(rl.done)
	ticker := time.NewTicker(rl.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops clients with no request inside the window.
func (rl *RateLimiter) sweep() {
	cutoff := rl.opts.Now().Add(-rateWindow)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, hits := range rl.hits {
		if hits = within(hits, cutoff); len(hits) == 0 {
			delete(rl.hits, key)
		} else {
			rl.hits[key] = hits
		}
	}
}

// clients reports the number of tracked clients.
func (rl *RateLimiter) clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.hits)
}

// take records a request for key unless the window is full, in which case it
// returns how long until the oldest request leaves the window.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	now := rl.opts.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	hits := within(rl.hits[key], now.Add(-rateWindow))
	if len(hits) >= rl.opts.PerMinute {
		rl.hits[key] = hits
		return false, hits[0].Add(rateWindow).Sub(now)
	}
	rl.hits[key] = append(hits, now)
	return true, 0
}

// within keeps the timestamps after cutoff. hits is ordered oldest first.
func within(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.clientKey(r)
		ok, wait := rl.take(key)
		if !ok {
			slog.InfoContext(r.Context(), "rate limited", "client", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(max(int(wait/time.Second)+1, 1)))
			writeError(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey picks the address the limit applies to. Entries of
// X-Forwarded-For left of the ones written by trusted proxies are supplied by
// the client and never used.
func (rl *RateLimiter) clientKey(r *http.Request) string {
	n := rl.opts.TrustedProxies
	if n <= 0 {
		return peerHost(r)
	}
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return peerHost(r)
	}
	parts := strings.Split(xff, ",")
	idx := len(parts) - n
	if idx < 0 {
		return peerHost(r)
	}
	if ip := strings.TrimSpace(parts[idx]); ip != "" {
		return ip
	}
	return peerHost(r)
}
