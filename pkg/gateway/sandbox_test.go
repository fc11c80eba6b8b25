package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock fires timers immediately so tests never wait.
type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time { return f.now }

func (f fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- f.now.Add(d)
	return ch
}

// stuckClock never fires, to exercise context cancellation.
type stuckClock struct {
	fakeClock
}

func (stuckClock) After(d time.Duration) <-chan time.Time { return nil }

// scriptedRand returns a fixed sequence: Intn values first-in-first-out, same
// for Float64. The sandbox draws Intn (latency), then Float64 (outcome), then
// Intn again (auth code) on success.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0] % n
	if len(r.ints) > 1 {
		r.ints = r.ints[1:]
	}
	return v
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	if len(r.floats) > 1 {
		r.floats = r.floats[1:]
	}
	return v
}

func testConfig() SandboxConfig {
	return SandboxConfig{
		DeclineRate: 0.05,
		FeePercent:  2.9,
		MinLatency:  1 * time.Millisecond,
		MaxLatency:  3 * time.Millisecond,
	}
}

func TestChargeCompleted(t *testing.T) {
	now := time.Date(2025, 7, 18, 9, 0, 0, 0, time.UTC)
	rng := &scriptedRand{ints: []int{0, 0xABCDEF}, floats: []float64{0.99}}
	p := NewSandboxProvider(testConfig(), fakeClock{now: now}, rng)

	res, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 75000, Method: "credit_card"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.True(t, strings.HasPrefix(res.Reference, "TXN_"))
	assert.Equal(t, "AUTH-ABCDEF", res.AuthorizationCode)
	assert.Equal(t, int64(2175), res.FeeCents) // 2.9% of 75000
	assert.Empty(t, res.DeclineReason)
	assert.Equal(t, now, res.ProcessedAt)
}

func TestChargeDeclined(t *testing.T) {
	rng := &scriptedRand{ints: []int{0}, floats: []float64{0.01}} // below the 5% decline rate
	p := NewSandboxProvider(testConfig(), fakeClock{now: time.Now()}, rng)

	res, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 75000, Method: "debit_card"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "insufficient_funds", res.DeclineReason)
	assert.Empty(t, res.AuthorizationCode)
	assert.Zero(t, res.FeeCents)
	// Declined attempts still get a traceable reference.
	assert.True(t, strings.HasPrefix(res.Reference, "TXN_"))
}

func TestChargeFeeRounding(t *testing.T) {
	rng := &scriptedRand{ints: []int{0, 1}, floats: []float64{0.99}}
	p := NewSandboxProvider(testConfig(), fakeClock{now: time.Now()}, rng)

	res, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 99, Method: "bank_transfer"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.FeeCents) // 2.871 rounds to 3
}

func TestChargeUnsupportedMethod(t *testing.T) {
	p := NewSandboxProvider(testConfig(), fakeClock{now: time.Now()}, &scriptedRand{ints: []int{0}, floats: []float64{0.99}})

	res, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 100, Method: "cash"})
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.Nil(t, res)
}

func TestChargeContextCancelled(t *testing.T) {
	p := NewSandboxProvider(testConfig(), stuckClock{}, &scriptedRand{ints: []int{0}, floats: []float64{0.99}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Charge(ctx, ChargeRequest{AmountCents: 100, Method: "credit_card"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestChargeUniqueReferences(t *testing.T) {
	rng := &scriptedRand{ints: []int{0, 1}, floats: []float64{0.99}}
	p := NewSandboxProvider(testConfig(), fakeClock{now: time.Now()}, rng)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		res, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 100, Method: "credit_card"})
		require.NoError(t, err)
		assert.False(t, seen[res.Reference])
		seen[res.Reference] = true
	}
}

func TestChargeLatencyWithinBounds(t *testing.T) {
	cfg := testConfig()
	rng := &scriptedRand{ints: []int{int(cfg.MaxLatency)}, floats: []float64{0.99}} // Intn wraps into [0, span)
	start := time.Now()
	p := NewSandboxProvider(cfg, SystemClock, rng)

	_, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 100, Method: "credit_card"})
	require.NoError(t, err)
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, cfg.MinLatency)
	assert.Less(t, elapsed, 10*cfg.MaxLatency) // generous upper bound for slow CI
}
