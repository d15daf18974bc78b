// Package resilience wraps calls to remote collaborators (the document store
// and the event broker) with bounded retries and a per-operation circuit
// breaker.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Executor struct {
	policy Policy

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewExecutor(policy Policy) *Executor {
	return &Executor{
		policy:   policy.withDefaults(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Do runs fn under the retry policy. When the breaker for operation is open
// fn is not called and the breaker error is returned.
func (e *Executor) Do(ctx context.Context, operation string, classify Classifier, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("resilience: nil call")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "remote"
	}
	classify = WithContext(classify)

	if !e.policy.Breaker.Enabled {
		return e.retry(ctx, op, classify, fn)
	}
	_, err := e.breaker(op, classify).Execute(func() (struct{}, error) {
		return struct{}{}, e.retry(ctx, op, classify, fn)
	})
	return err
}

func (e *Executor) retry(ctx context.Context, op string, classify Classifier, fn func(context.Context) error) error {
	wait := e.policy.Backoff
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !classify(err).Retry || attempt >= e.policy.Attempts {
			return err
		}

		slog.Warn("remote_call_retry",
			"operation", op,
			"attempt", attempt,
			"max_attempts", e.policy.Attempts,
			"backoff_ms", wait.Milliseconds(),
			"error", err,
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		wait = min(time.Duration(float64(wait)*e.policy.Multiplier), e.policy.MaxBackoff)
	}
}

func (e *Executor) breaker(op string, classify Classifier) *gobreaker.CircuitBreaker[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[op]; ok {
		return cb
	}
	bp := e.policy.Breaker
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        op,
		MaxRequests: bp.HalfOpenCalls,
		Timeout:     bp.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= bp.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= bp.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).CountFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[op] = cb
	return cb
}
