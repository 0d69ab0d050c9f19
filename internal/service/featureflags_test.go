package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureFlags_FallbackWhenUnset(t *testing.T) {
	flags := NewFeatureFlags()

	assert.True(t, flags.Enabled(FlagCacheHeaders, true))
	assert.False(t, flags.Enabled(FlagCacheHeaders, false))
}

func TestFeatureFlags_ReadsEnvironment(t *testing.T) {
	t.Setenv("FEATURE_CACHE_HEADERS", "false")
	t.Setenv("FEATURE_MODERATION_ANALYTICS", "1")

	flags := NewFeatureFlags()

	assert.False(t, flags.Enabled(FlagCacheHeaders, true))
	assert.True(t, flags.Enabled(FlagAnalytics, false))
}

func TestFeatureFlags_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("FEATURE_CACHE_HEADERS", "maybe")

	flags := NewFeatureFlags()

	assert.True(t, flags.Enabled(FlagCacheHeaders, true))
}

func TestFeatureFlags_OverrideWinsOverEnv(t *testing.T) {
	t.Setenv("FEATURE_CACHE_HEADERS", "true")

	flags := NewFeatureFlags()
	flags.Set(FlagCacheHeaders, false)

	assert.False(t, flags.Enabled(FlagCacheHeaders, true))
}
