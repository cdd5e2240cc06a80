package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Policy bounds how long a transient store failure is retried.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

var Default = Policy{
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     2 * time.Second,
	MaxElapsed:      5 * time.Second,
}

// IsTransient reports whether err is a store failure worth retrying. NotFound,
// PermissionDenied, AlreadyExists and friends are answers, not outages.
func IsTransient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
		return true
	}
	return false
}

// budget is the elapsed-time cap of p. backoff treats zero as "retry forever",
// so an unset or negative cap falls back to the default.
func (p Policy) budget() time.Duration {
	if p.MaxElapsed <= 0 {
		return Default.MaxElapsed
	}
	return p.MaxElapsed
}

// Do runs op until it succeeds, fails with a non-transient error, ctx ends or
// the policy's elapsed budget is spent. The last error is returned as-is.
func Do(ctx context.Context, p Policy, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = p.budget()

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}
