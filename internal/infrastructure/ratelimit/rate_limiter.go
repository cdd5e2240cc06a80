package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionCreateRoom  = "create_room"
	ActionAPI         = "api"
)

// Rule is a token bucket: Burst tokens, one refilled every Every.
type Rule struct {
	Every time.Duration
	Burst int
}

var DefaultRules = map[string]Rule{
	ActionSendMessage: {Every: 6 * time.Second, Burst: 10},
	ActionCreateRoom:  {Every: 12 * time.Minute, Burst: 5},
	ActionAPI:         {Every: time.Second, Burst: 60},
}

var fallbackRule = Rule{Every: 3 * time.Second, Burst: 20}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one bucket per key and action.
type RateLimiter struct {
	rules   map[string]Rule
	buckets map[string]*bucket
	mutex   sync.Mutex
	now     func() time.Time
}

func NewRateLimiter(rules map[string]Rule) *RateLimiter {
	if rules == nil {
		rules = DefaultRules
	}
	return &RateLimiter{
		rules:   rules,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (rl *RateLimiter) ruleFor(action string) Rule {
	if rule, ok := rl.rules[action]; ok {
		return rule
	}
	return fallbackRule
}

// Allow consumes a token for key/action. When none is available it reports
// how long until one is.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	now := rl.now()

	rl.mutex.Lock()
	b, ok := rl.buckets[key+":"+action]
	if !ok {
		rule := rl.ruleFor(action)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(rule.Every), rule.Burst)}
		rl.buckets[key+":"+action] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.ruleFor(action).Every
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Tokens reports the tokens currently available for key/action.
func (rl *RateLimiter) Tokens(key, action string) float64 {
	rl.mutex.Lock()
	b, ok := rl.buckets[key+":"+action]
	rl.mutex.Unlock()
	if !ok {
		return float64(rl.ruleFor(action).Burst)
	}
	return b.limiter.TokensAt(rl.now())
}

// Cleanup drops buckets idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	now := rl.now()
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine prunes idle buckets until stop is closed.
func (rl *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-stop:
				return
			}
		}
	}()
}
