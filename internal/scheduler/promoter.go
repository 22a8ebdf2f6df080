package scheduler

import (
	"context"
	"log"
	"time"
)

// Gate is satisfied by admission.Service.
type Gate interface {
	ActiveCount(ctx context.Context) (int, error)
	ActivateWaiting(ctx context.Context, count int) error
}

// TokenPromoter periodically tops the ACTIVE token population up to the
// configured slot count.  The gate itself serializes the promotion
// against other instances, so running a promoter per instance is safe,
// just redundant.
type TokenPromoter struct {
	gate      Gate
	maxActive int
	interval  time.Duration
}

// NewTokenPromoter wires the promoter.
func NewTokenPromoter(gate Gate, maxActive int, interval time.Duration) *TokenPromoter {
	if gate == nil {
		panic("nil gate passed to NewTokenPromoter")
	}
	return &TokenPromoter{gate: gate, maxActive: maxActive, interval: interval}
}

// Run ticks until ctx is cancelled.
func (p *TokenPromoter) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick promotes as many waiters as there are free admission slots.
func (p *TokenPromoter) Tick(ctx context.Context) {
	active, err := p.gate.ActiveCount(ctx)
	if err != nil {
		log.Printf("promoter: active count failed: %v", err)
		return
	}
	slots := p.maxActive - active
	if slots <= 0 {
		return
	}
	if err := p.gate.ActivateWaiting(ctx, slots); err != nil {
		log.Printf("promoter: promotion failed: %v", err)
	}
}
