package resilience

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"
)

// Verdict tells the executor whether to retry an error and whether it counts
// against the circuit breaker.
type Verdict struct {
	Retry        bool
	CountFailure bool
}

var (
	Permanent = Verdict{Retry: false, CountFailure: true}
	Transient = Verdict{Retry: true, CountFailure: true}
	// Ignored errors are neither retried nor held against the remote side.
	Ignored = Verdict{Retry: false, CountFailure: false}
)

type Classifier func(err error) Verdict

// WithContext makes cancellation and deadline errors Ignored before deferring
// to next.
func WithContext(next Classifier) Classifier {
	if next == nil {
		next = func(error) Verdict { return Permanent }
	}
	return func(err error) Verdict {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Ignored
		}
		return next(err)
	}
}

// HTTPStatus classifies a response status code of a failed call. Throttling
// and server errors are Transient, other client errors are Ignored.
func HTTPStatus(code int) Verdict {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return Transient
	}
	if code >= 500 {
		return Transient
	}
	if code >= 400 {
		return Ignored
	}
	return Permanent
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
