package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTierConfig() *TierConfig {
	cfg := DefaultTierConfig()
	cfg.Models[TierPrimary] = "gpt-4o"
	cfg.Models[TierFast] = "gpt-4o-mini"
	cfg.Models[TierDeep] = "o1"
	return cfg
}

func TestTier_Valid(t *testing.T) {
	tests := []struct {
		tier Tier
		want bool
	}{
		{TierPrimary, true},
		{TierFast, true},
		{TierDeep, true},
		{Tier(""), false},
		{Tier("turbo"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tier.Valid())
		})
	}
}

func TestTierConfig_Resolve(t *testing.T) {
	cfg := validTierConfig()

	model, err := cfg.Resolve(TierPrimary)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", model)

	_, err = cfg.Resolve(Tier("bogus"))
	assert.ErrorIs(t, err, ErrUnknownTier)

	delete(cfg.Models, TierDeep)
	_, err = cfg.Resolve(TierDeep)
	assert.ErrorIs(t, err, ErrTierNotMapped)
}

func TestTierConfig_Plan(t *testing.T) {
	cfg := validTierConfig()

	tests := []struct {
		name string
		tier Tier
		want []Tier
	}{
		{
			name: "deep falls through primary to fast",
			tier: TierDeep,
			want: []Tier{TierDeep, TierPrimary, TierFast},
		},
		{
			name: "primary falls back to fast",
			tier: TierPrimary,
			want: []Tier{TierPrimary, TierFast},
		},
		{
			name: "fast is terminal",
			tier: TierFast,
			want: []Tier{TierFast},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := cfg.Plan(tt.tier)
			assert.Equal(t, tt.want, plan)

			// The requested tier is always first and no tier repeats.
			require.NotEmpty(t, plan)
			assert.Equal(t, tt.tier, plan[0])
			seen := map[Tier]bool{}
			for _, tr := range plan {
				assert.False(t, seen[tr], "tier %q repeated in plan", tr)
				seen[tr] = true
			}
		})
	}
}

func TestTierConfig_Validate(t *testing.T) {
	t.Run("reference config is valid", func(t *testing.T) {
		assert.NoError(t, validTierConfig().Validate())
	})

	t.Run("missing model mapping", func(t *testing.T) {
		cfg := validTierConfig()
		cfg.Models[TierFast] = ""
		assert.ErrorIs(t, cfg.Validate(), ErrTierNotMapped)
	})

	t.Run("fast tier must be terminal", func(t *testing.T) {
		cfg := validTierConfig()
		cfg.Chains[TierFast] = []Tier{TierPrimary}
		assert.Error(t, cfg.Validate())
	})

	t.Run("chain containing itself", func(t *testing.T) {
		cfg := validTierConfig()
		cfg.Chains[TierDeep] = []Tier{TierDeep, TierFast}
		assert.Error(t, cfg.Validate())
	})

	t.Run("chain with unknown tier", func(t *testing.T) {
		cfg := validTierConfig()
		cfg.Chains[TierPrimary] = []Tier{Tier("turbo")}
		assert.ErrorIs(t, cfg.Validate(), ErrUnknownTier)
	})

	t.Run("chain with repeated tier", func(t *testing.T) {
		cfg := validTierConfig()
		cfg.Chains[TierDeep] = []Tier{TierPrimary, TierPrimary}
		assert.Error(t, cfg.Validate())
	})
}
