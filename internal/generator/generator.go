// =============================================================================
// txgen - Record Generator
// =============================================================================
//
// This package builds random transaction records. It has two leaf
// operations:
//   - Kind:   picks one of the five transaction kinds, uniformly.
//   - Record: builds one record around a picked kind.
//
// RANDOMNESS:
//   Every Generator owns its random source. Nothing here touches process-wide
//   random state, so a generator built with a fixed seed always yields the
//   same sequence of records.
//
// RANGES:
//   client is drawn from [0, ClientMax] and tx from [0, TxMax]; both upper
//   bounds are inclusive. amount is drawn from (0, AmountMax) for deposits
//   and withdrawals and is exactly 0 for every other kind.
//
// =============================================================================

package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/ginjaninja78/txgen/internal/types"
)

// =============================================================================
// BOUNDS
// =============================================================================

// Bounds holds the sampling ranges.
type Bounds struct {
	// ClientMax is the inclusive upper bound for client ids.
	ClientMax int

	// TxMax is the inclusive upper bound for transaction ids.
	TxMax int

	// AmountMax is the exclusive upper bound for amounts.
	AmountMax float64
}

// DefaultBounds returns the stock ranges: clients 0..10000, transactions
// 0..100000 and amounts below 100000.
func DefaultBounds() Bounds {
	return Bounds{
		ClientMax: 10_000,
		TxMax:     100_000,
		AmountMax: 100_000,
	}
}

// Validate checks that every range is usable.
func (b Bounds) Validate() error {
	if b.ClientMax < 0 {
		return fmt.Errorf("client max must be >= 0, got %d", b.ClientMax)
	}
	if b.TxMax < 0 {
		return fmt.Errorf("tx max must be >= 0, got %d", b.TxMax)
	}
	if !(b.AmountMax > 0) {
		return fmt.Errorf("amount max must be > 0, got %v", b.AmountMax)
	}
	return nil
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator produces random records from its own random source.
type Generator struct {
	rng    *rand.Rand
	bounds Bounds
	seed   uint64
}

// New returns a generator drawing from rng. The caller keeps ownership of the
// source and must not share it across goroutines.
func New(rng *rand.Rand, bounds Bounds) *Generator {
	return &Generator{rng: rng, bounds: bounds}
}

// NewSeeded returns a generator backed by a PCG source. A zero seed picks a
// fresh random seed; Seed reports the one in use either way.
func NewSeeded(seed uint64, bounds Bounds) *Generator {
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	g := New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), bounds)
	g.seed = seed
	return g
}

// Seed returns the seed used by NewSeeded, or 0 for a caller-supplied source.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Bounds returns the sampling ranges.
func (g *Generator) Bounds() Bounds {
	return g.bounds
}

// Kind returns one of the five transaction kinds with probability 1/5 each.
func (g *Generator) Kind() types.Kind {
	return types.Kinds[g.rng.IntN(len(types.Kinds))]
}

// Record builds one random record.
func (g *Generator) Record() types.Record {
	kind := g.Kind()

	rec := types.Record{
		Type:   kind,
		Client: g.rng.IntN(g.bounds.ClientMax + 1),
		Tx:     g.rng.IntN(g.bounds.TxMax + 1),
	}

	if kind.CarriesAmount() {
		rec.Amount = g.amount()
	}

	return rec
}

// amount draws from (0, AmountMax). Float64 can return exactly 0, which would
// make a deposit indistinguishable from a dispute, so that draw is repeated.
func (g *Generator) amount() float64 {
	for {
		if v := g.rng.Float64() * g.bounds.AmountMax; v > 0 {
			return v
		}
	}
}
