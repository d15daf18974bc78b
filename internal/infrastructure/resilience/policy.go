package resilience

import "time"

// Policy bounds how a remote call is retried and when its circuit opens.
type Policy struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
	Multiplier float64

	Breaker BreakerPolicy
}

type BreakerPolicy struct {
	Enabled       bool
	MinRequests   uint32
	FailureRatio  float64
	OpenFor       time.Duration
	HalfOpenCalls uint32
}

// DefaultPolicy suits file uploads: a handful of attempts with backoff of
// seconds, and a breaker that opens after most of a batch has failed.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   4,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 8 * time.Second,
		Multiplier: 2.0,
		Breaker: BreakerPolicy{
			Enabled:       true,
			MinRequests:   5,
			FailureRatio:  0.6,
			OpenFor:       30 * time.Second,
			HalfOpenCalls: 1,
		},
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.Backoff <= 0 {
		p.Backoff = def.Backoff
	}
	if p.MaxBackoff < p.Backoff {
		p.MaxBackoff = max(p.Backoff, def.MaxBackoff)
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}

	b := &p.Breaker
	if b.MinRequests == 0 {
		b.MinRequests = def.Breaker.MinRequests
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		b.FailureRatio = def.Breaker.FailureRatio
	}
	if b.OpenFor <= 0 {
		b.OpenFor = def.Breaker.OpenFor
	}
	if b.HalfOpenCalls == 0 {
		b.HalfOpenCalls = def.Breaker.HalfOpenCalls
	}
	return p
}
