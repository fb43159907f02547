package models

import (
	"errors"
	"fmt"
)

// Tier is an abstract quality/cost class for a model call, decoupled from
// any vendor-specific model identifier.
type Tier string

const (
	// TierPrimary is the default tier for open-ended generation.
	TierPrimary Tier = "primary"

	// TierFast is the cheapest, most-available tier. It is the terminal
	// tier: its fallback chain is always empty.
	TierFast Tier = "fast"

	// TierDeep is the highest-quality, most expensive tier.
	TierDeep Tier = "deep"
)

// Tiers lists all valid tiers.
var Tiers = []Tier{TierPrimary, TierFast, TierDeep}

// Valid reports whether t is a member of the closed tier enumeration.
func (t Tier) Valid() bool {
	switch t {
	case TierPrimary, TierFast, TierDeep:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (t Tier) String() string {
	return string(t)
}

var (
	// ErrUnknownTier is returned when a tier is outside the enumeration.
	ErrUnknownTier = errors.New("unknown tier")

	// ErrTierNotMapped is returned when a tier has no configured model.
	// This is a configuration defect, never retried.
	ErrTierNotMapped = errors.New("tier has no configured model")
)

// TierConfig maps tiers to concrete model identifiers and fallback chains.
// It is constructed once at startup, validated, and never mutated after,
// so it is safe to share across goroutines without locking.
type TierConfig struct {
	// Models maps each tier to the concrete model identifier it resolves to.
	Models map[Tier]string

	// Chains maps each tier to the ordered list of tiers attempted after
	// that tier's retries are exhausted. Later entries are progressively
	// cheaper and more available.
	Chains map[Tier][]Tier
}

// DefaultTierConfig returns the reference fallback chains with no model
// mappings. Model identifiers come from external configuration.
func DefaultTierConfig() *TierConfig {
	return &TierConfig{
		Models: make(map[Tier]string),
		Chains: map[Tier][]Tier{
			TierDeep:    {TierPrimary, TierFast},
			TierPrimary: {TierFast},
			TierFast:    {},
		},
	}
}

// Resolve maps a tier to its concrete model identifier.
func (c *TierConfig) Resolve(tier Tier) (string, error) {
	if !tier.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	model, ok := c.Models[tier]
	if !ok || model == "" {
		return "", fmt.Errorf("%w: %q", ErrTierNotMapped, tier)
	}
	return model, nil
}

// Plan returns the ordered sequence of tiers to attempt for a request:
// the requested tier first, then its configured chain. The requested tier
// is never skipped.
func (c *TierConfig) Plan(tier Tier) []Tier {
	chain := c.Chains[tier]
	plan := make([]Tier, 0, len(chain)+1)
	plan = append(plan, tier)
	plan = append(plan, chain...)
	return plan
}

// Validate checks the structural invariants of the tier configuration:
// every tier resolves to a model, no chain contains its own tier, no chain
// entry is outside the enumeration, no cycles, and the fast tier is
// terminal (empty chain).
func (c *TierConfig) Validate() error {
	for _, tier := range Tiers {
		if _, err := c.Resolve(tier); err != nil {
			return err
		}
	}

	if chain := c.Chains[TierFast]; len(chain) != 0 {
		return fmt.Errorf("tier %q must have an empty fallback chain", TierFast)
	}

	for tier, chain := range c.Chains {
		if !tier.Valid() {
			return fmt.Errorf("%w: %q in chain configuration", ErrUnknownTier, tier)
		}
		seen := map[Tier]bool{tier: true}
		for _, next := range chain {
			if !next.Valid() {
				return fmt.Errorf("%w: %q in chain for %q", ErrUnknownTier, next, tier)
			}
			if seen[next] {
				return fmt.Errorf("fallback chain for %q repeats tier %q", tier, next)
			}
			seen[next] = true
		}
	}

	return nil
}
