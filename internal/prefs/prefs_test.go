package prefs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdash/internal/cachestore"
	"marketdash/internal/prefs"
)

func TestLoadDefaultsOnFirstRun(t *testing.T) {
	t.Parallel()
	store := cachestore.New(cachestore.NewMemory())

	m := prefs.Load(store)
	p := m.Current()
	assert.Equal(t, prefs.ThemeLight, p.Theme)
	assert.True(t, m.NotificationsEnabled("favorites"))
	assert.True(t, m.NotificationsEnabled("news"))
}

func TestMutationsPersistAcrossLoads(t *testing.T) {
	t.Parallel()
	store := cachestore.New(cachestore.NewMemory())

	m := prefs.Load(store)
	m.SetTheme(prefs.ThemeDark)
	m.SetNotification("favorites", false)

	// A fresh manager over the same store sees the flushed blob.
	m2 := prefs.Load(store)
	assert.Equal(t, prefs.ThemeDark, m2.Current().Theme)
	assert.False(t, m2.NotificationsEnabled("favorites"))
	assert.True(t, m2.NotificationsEnabled("news"))
}

func TestLoadRepairsCorruptBlob(t *testing.T) {
	t.Parallel()
	store := cachestore.New(cachestore.NewMemory())
	store.Set("app-preferences", map[string]any{"theme": "neon", "notifications": nil})

	m := prefs.Load(store)
	assert.Equal(t, prefs.ThemeLight, m.Current().Theme)
	assert.True(t, m.NotificationsEnabled("favorites"))
}

func TestUnknownFeatureDefaultsOn(t *testing.T) {
	t.Parallel()
	store := cachestore.New(cachestore.NewMemory())

	m := prefs.Load(store)
	assert.True(t, m.NotificationsEnabled("price-alerts"))
}

func TestCurrentReturnsACopy(t *testing.T) {
	t.Parallel()
	store := cachestore.New(cachestore.NewMemory())

	m := prefs.Load(store)
	p := m.Current()
	p.Notifications["news"] = false

	require.True(t, m.NotificationsEnabled("news"))
}
