package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabledBooleanValues(t *testing.T) {
	m := NewManager("scribe=on,legacy_search=off,beta=true,old_feed=false")

	assert.True(t, m.Enabled("scribe", 1))
	assert.True(t, m.Enabled("beta", 1))
	assert.False(t, m.Enabled("legacy_search", 1))
	assert.False(t, m.Enabled("old_feed", 1))
	assert.False(t, m.Enabled("unknown", 1))
}

func TestEnabledPercentageRollout(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))

	// Deterministic per user.
	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42))
	}

	// Anonymous users never land in a partial rollout.
	assert.False(t, m.Enabled("canary", 0))
}

func TestNewManagerSkipsMalformedEntries(t *testing.T) {
	m := NewManager(" dangling , scribe = on ,=off,empty=")

	assert.True(t, m.Enabled("scribe", 1))
	assert.False(t, m.Enabled("dangling", 1))
	assert.False(t, m.Enabled("empty", 1))
}

func TestNilManagerIsAllOff(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled("scribe", 1))
}
