// Package timeouts provides centralized timeout values for handler operations.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads, sign-in lookups
//   - Medium: list queries and single writes
//   - Long: exports and PDF rendering
//   - StatWait: how long the dashboard waits for stat cards before
//     rendering them as loading
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultMedium   = 10 * time.Second
	DefaultLong     = 30 * time.Second
	DefaultStatWait = 750 * time.Millisecond
)

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Long     time.Duration
	StatWait time.Duration
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() Config {
	return Config{
		Ping:     DefaultPing,
		Short:    DefaultShort,
		Medium:   DefaultMedium,
		Long:     DefaultLong,
		StatWait: DefaultStatWait,
	}
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(current)
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for simple single-document operations.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium returns the timeout for list queries and writes.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long returns the timeout for exports and rendering.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// StatWait returns how long the dashboard waits for its stat cards.
func StatWait() time.Duration { return get(func(c Config) time.Duration { return c.StatWait }) }

// Configure overrides the non-zero values in cfg. Call it during startup
// before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	current = merge(current, cfg)
}

func merge(base, over Config) Config {
	pick := func(b, o time.Duration) time.Duration {
		if o > 0 {
			return o
		}
		return b
	}
	return Config{
		Ping:     pick(base.Ping, over.Ping),
		Short:    pick(base.Short, over.Short),
		Medium:   pick(base.Medium, over.Medium),
		Long:     pick(base.Long, over.Long),
		StatWait: pick(base.StatWait, over.StatWait),
	}
}

// Reset restores every timeout to its default. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// ConfigureFromEnv reads HRMS_TIMEOUT_{PING,SHORT,MEDIUM,LONG,STAT_WAIT}
// as Go durations ("2s", "500ms"). Invalid or non-positive values are
// ignored. It returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for name, dst := range map[string]*time.Duration{
		"HRMS_TIMEOUT_PING":      &cfg.Ping,
		"HRMS_TIMEOUT_SHORT":     &cfg.Short,
		"HRMS_TIMEOUT_MEDIUM":    &cfg.Medium,
		"HRMS_TIMEOUT_LONG":      &cfg.Long,
		"HRMS_TIMEOUT_STAT_WAIT": &cfg.StatWait,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the deadline was exceeded.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "payroll export")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
