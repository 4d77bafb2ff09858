// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a keyed token-bucket limiter. It is safe for concurrent use.
//
// Each key gets `burst` requests immediately and regains one every
// `every`. Idle keys are evicted by a background sweep until Stop.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   time.Duration
	burst   int
	idle    time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing burst requests per key, refilled one per every.
func New(burst int, every time.Duration) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		every:   every,
		burst:   burst,
		idle:    every * time.Duration(burst) * 2,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *Limiter) get(key string) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = l.now()
	return b
}

// Allow reports whether a request for key may proceed, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get(key).lim.AllowN(l.now(), 1)
}

// Remaining returns the whole tokens currently available for key.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		return l.burst
	}
	n := int(b.lim.TokensAt(l.now()))
	if n < 0 {
		return 0
	}
	return n
}

// Reset forgets key, restoring its full burst.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Stop ends the background sweep.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) cleanupLoop() {
	interval := l.idle
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// X-Forwarded-For (first entry) and X-Real-IP win over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter limits sign-in attempts per client IP and per email.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// LoginConfig sets both login limits.
type LoginConfig struct {
	IPBurst    int
	IPEvery    time.Duration
	EmailBurst int
	EmailEvery time.Duration
}

// DefaultLoginConfig allows 20 attempts per IP (one back every 30s)
// and 5 per email (one back every 3 minutes).
var DefaultLoginConfig = LoginConfig{
	IPBurst:    20,
	IPEvery:    30 * time.Second,
	EmailBurst: 5,
	EmailEvery: 3 * time.Minute,
}

// NewLoginLimiter creates a LoginLimiter. Zero fields take defaults.
func NewLoginLimiter(cfg LoginConfig) *LoginLimiter {
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = DefaultLoginConfig.IPBurst
	}
	if cfg.IPEvery <= 0 {
		cfg.IPEvery = DefaultLoginConfig.IPEvery
	}
	if cfg.EmailBurst <= 0 {
		cfg.EmailBurst = DefaultLoginConfig.EmailBurst
	}
	if cfg.EmailEvery <= 0 {
		cfg.EmailEvery = DefaultLoginConfig.EmailEvery
	}
	return &LoginLimiter{
		ip:    New(cfg.IPBurst, cfg.IPEvery),
		email: New(cfg.EmailBurst, cfg.EmailEvery),
	}
}

// Check reports whether the attempt may proceed. When it may not, the
// second value names the exhausted limit ("ip" or "email").
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "ip"
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		if !ll.email.Allow(email) {
			return false, "email"
		}
	}
	return true, ""
}

// ResetEmail clears the email limit after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	ll.email.Reset(strings.ToLower(strings.TrimSpace(email)))
}

// Stop ends both background sweeps.
func (ll *LoginLimiter) Stop() {
	ll.ip.Stop()
	ll.email.Stop()
}
