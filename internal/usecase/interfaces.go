package usecase

import (
	"context"
	"time"
)

// TaskDispatcher runs work after the request that triggered it has returned.
type TaskDispatcher interface {
	Submit(name string, run func(ctx context.Context) error) bool
}

type RateLimiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// ObjectStore is the fallback home of uploaded images.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

func allow(limiter RateLimiter, key, action string) (bool, time.Duration) {
	if limiter == nil {
		return true, 0
	}
	return limiter.Allow(key, action)
}
