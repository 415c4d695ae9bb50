package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Breakers tracks one circuit breaker per remote host (or S3 bucket).
// Once a host fails enough times in a row, further fetches from it fail
// with gobreaker.ErrOpenState until the cooldown passes.
type Breakers struct {
	failures uint32
	cooldown time.Duration

	mu    sync.Mutex
	hosts map[string]*gobreaker.CircuitBreaker[io.ReadCloser]
}

// NewBreakers trips a host after failures consecutive failed fetches and
// probes it again after cooldown.
func NewBreakers(failures uint32, cooldown time.Duration) *Breakers {
	if failures == 0 {
		failures = 1
	}
	return &Breakers{
		failures: failures,
		cooldown: cooldown,
		hosts:    make(map[string]*gobreaker.CircuitBreaker[io.ReadCloser]),
	}
}

// State reports the breaker state for host. Unknown hosts are closed.
func (b *Breakers) State(host string) gobreaker.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	cb, ok := b.hosts[host]
	if !ok {
		return gobreaker.StateClosed
	}
	return cb.State()
}

func (b *Breakers) breaker(host string) *gobreaker.CircuitBreaker[io.ReadCloser] {
	b.mu.Lock()
	defer b.mu.Unlock()
	cb, ok := b.hosts[host]
	if !ok {
		cb = gobreaker.NewCircuitBreaker[io.ReadCloser](gobreaker.Settings{
			Name:    host,
			Timeout: b.cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= b.failures
			},
			IsSuccessful: hostHealthy,
		})
		b.hosts[host] = cb
	}
	return cb
}

func (b *Breakers) fetch(host string, fn func() (io.ReadCloser, error)) (io.ReadCloser, error) {
	if b == nil {
		return fn()
	}
	rc, err := b.breaker(host).Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("skipping %s: %w", host, err)
	}
	return rc, err
}

// hostHealthy reports whether err says nothing about the host itself: a
// missing object or a cancelled request does not count against it.
func hostHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code < 500
	}
	var nsk *s3types.NoSuchKey
	return errors.As(err, &nsk)
}
