package gateway

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SandboxConfig tunes the simulated gateway.
type SandboxConfig struct {
	DeclineRate float64       // probability of a decline, e.g. 0.05
	FeePercent  float64       // processing fee as percent of amount, e.g. 2.9
	MinLatency  time.Duration // simulated network round-trip bounds
	MaxLatency  time.Duration
}

// SandboxProvider emulates a payment gateway: it waits a randomized latency,
// then either settles the charge (with a processing fee and an authorization
// code) or declines it. No network calls are made.
type SandboxProvider struct {
	cfg   SandboxConfig
	clock Clock

	mu  sync.Mutex // rng is not safe for concurrent use
	rng RandomSource
}

func NewSandboxProvider(cfg SandboxConfig, clock Clock, rng RandomSource) *SandboxProvider {
	if clock == nil {
		clock = SystemClock
	}
	if rng == nil {
		rng = NewRandomSource(time.Now().UnixNano())
	}
	return &SandboxProvider{cfg: cfg, clock: clock, rng: rng}
}

const declineReasonInsufficientFunds = "insufficient_funds"

func (p *SandboxProvider) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if !validMethod(req.Method) {
		return nil, ErrUnsupportedMethod
	}

	latency, declined := p.draw()

	// The latency is a suspension point: only this request waits, nothing
	// else is locked. Cancelling the context abandons the charge before any
	// outcome is produced.
	select {
	case <-p.clock.After(latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	res := &ChargeResult{
		Reference:   "TXN_" + uuid.NewString(),
		ProcessedAt: p.clock.Now(),
	}
	if declined {
		res.Outcome = OutcomeFailed
		res.DeclineReason = declineReasonInsufficientFunds
		return res, nil
	}
	res.Outcome = OutcomeCompleted
	res.FeeCents = int64(math.Round(float64(req.AmountCents) * p.cfg.FeePercent / 100))
	res.AuthorizationCode = p.authCode()
	return res, nil
}

// draw picks the simulated latency and outcome under the rng lock so
// concurrent charges each get an independent sample.
func (p *SandboxProvider) draw() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	latency := p.cfg.MinLatency
	if span := p.cfg.MaxLatency - p.cfg.MinLatency; span > 0 {
		latency += time.Duration(p.rng.Intn(int(span)))
	}
	return latency, p.rng.Float64() < p.cfg.DeclineRate
}

func (p *SandboxProvider) authCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("AUTH-%06X", p.rng.Intn(1<<24))
}

func validMethod(m string) bool {
	switch m {
	case "credit_card", "debit_card", "bank_transfer":
		return true
	}
	return false
}
