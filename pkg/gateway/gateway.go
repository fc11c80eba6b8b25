package gateway

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ChargeRequest describes a single payment attempt sent to a gateway.
type ChargeRequest struct {
	AmountCents int64
	Method      string // credit_card | debit_card | bank_transfer
}

// ChargeResult is the settlement outcome of one attempt. Reference is set on
// every attempt, declined ones included, so failures stay traceable.
type ChargeResult struct {
	Outcome           string // completed | failed
	Reference         string
	AuthorizationCode string // completed only
	FeeCents          int64  // completed only
	DeclineReason     string // failed only
	ProcessedAt       time.Time
}

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// ErrUnsupportedMethod is returned before any simulated work happens.
var ErrUnsupportedMethod = errors.New("unsupported payment method")

// Provider executes payment charges against a gateway.
type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// Clock supplies current time and timers so tests can run without real delays.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// RandomSource supplies the randomness behind outcome selection and latency.
// *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// NewRandomSource returns a seeded pseudo-random source.
func NewRandomSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}
