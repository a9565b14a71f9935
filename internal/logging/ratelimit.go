package logging

import (
	"log/slog"
	"sync"
	"time"
)

// RateLimitedWarner logs at most one warning per key per window
// (default one minute). Transient I/O failures should be swallowed
// past that point, not the daemon itself.
type RateLimitedWarner struct {
	log    *slog.Logger
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

func NewRateLimitedWarner(log *slog.Logger, window time.Duration) *RateLimitedWarner {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitedWarner{log: log, window: window, last: make(map[string]time.Time)}
}

func (r *RateLimitedWarner) Warn(key, msg string, args ...any) {
	r.mu.Lock()
	now := time.Now()
	prev, ok := r.last[key]
	if ok && now.Sub(prev) < r.window {
		r.mu.Unlock()
		return
	}
	r.last[key] = now
	r.mu.Unlock()

	r.log.Warn(msg, args...)
}
