package approval

import (
	"sync"
	"time"
)

// pruneEvery bounds how often the full sweep over idle keys runs.
const pruneEvery = 256

// Limiter bounds how often one account may attempt decisions. It is
// injected per coordinator instance so tests (and future shards) get
// isolated state.
type Limiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	attempts map[string][]time.Time
	calls    int
	nowFunc  func() time.Time
}

// NewLimiter allows max attempts per key within window. max <= 0
// disables limiting.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:      max,
		window:   window,
		attempts: make(map[string][]time.Time),
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit.
func (l *Limiter) Allow(key string) bool {
	if l.max <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	cutoff := now.Add(-l.window)
	l.calls++
	if l.calls%pruneEvery == 0 {
		l.prune(cutoff)
	}

	kept := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.attempts[key] = kept
		return false
	}
	l.attempts[key] = append(kept, now)
	return true
}

// prune deletes keys whose recorded attempts all fell out of the
// window, so one-off keys do not pin map entries forever.
func (l *Limiter) prune(cutoff time.Time) {
	for key, times := range l.attempts {
		kept := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(l.attempts, key)
			continue
		}
		l.attempts[key] = kept
	}
}
