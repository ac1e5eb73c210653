// Package prefs holds the application preferences blob: theme plus
// per-feature notification toggles. The blob lives in the cache store
// under one key, is loaded once at startup (defaults on first run), and
// is written back whole on every change. It is an explicitly constructed
// object handed to whoever needs it, not ambient global state.
package prefs

import (
	"sync"

	"marketdash/internal/cachestore"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences is the persisted blob.
type Preferences struct {
	Theme         Theme           `json:"theme"`
	Notifications map[string]bool `json:"notifications"`
}

const cacheKey = "app-preferences"

func defaults() Preferences {
	return Preferences{
		Theme: ThemeLight,
		Notifications: map[string]bool{
			"favorites": true,
			"news":      true,
		},
	}
}

// Manager owns the in-session copy and flushes every mutation.
type Manager struct {
	store *cachestore.Store

	mu sync.Mutex
	p  Preferences
}

// Load reads the blob or starts from defaults when absent or corrupt.
func Load(store *cachestore.Store) *Manager {
	p := cachestore.Get(store, cacheKey, defaults())
	if p.Notifications == nil {
		p.Notifications = defaults().Notifications
	}
	if p.Theme != ThemeLight && p.Theme != ThemeDark {
		p.Theme = ThemeLight
	}
	return &Manager{store: store, p: p}
}

func (m *Manager) Current() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := m.p
	cp.Notifications = make(map[string]bool, len(m.p.Notifications))
	for k, v := range m.p.Notifications {
		cp.Notifications[k] = v
	}
	return cp
}

func (m *Manager) SetTheme(t Theme) {
	m.mu.Lock()
	m.p.Theme = t
	cp := m.p
	m.mu.Unlock()
	m.store.Set(cacheKey, cp)
}

func (m *Manager) SetNotification(feature string, on bool) {
	m.mu.Lock()
	if m.p.Notifications == nil {
		m.p.Notifications = map[string]bool{}
	}
	m.p.Notifications[feature] = on
	cp := m.p
	m.mu.Unlock()
	m.store.Set(cacheKey, cp)
}

// NotificationsEnabled reports one feature toggle, defaulting to on for
// unknown features.
func (m *Manager) NotificationsEnabled(feature string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.p.Notifications[feature]
	if !ok {
		return true
	}
	return v
}
