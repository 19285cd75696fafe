package feedback

import (
	"fmt"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// Settings are the player's cue preferences.
type Settings struct {
	Sound   bool    `yaml:"sound"`
	Speech  bool    `yaml:"speech"`
	Haptics bool    `yaml:"haptics"`
	Volume  float64 `yaml:"volume"` // 0.0 to 1.0
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{Sound: true, Speech: true, Haptics: true, Volume: 0.8}
}

const (
	settingsObject   = "settings"
	settingsProperty = "cues"
)

// SettingsStore keeps Settings in memory and, when it has a gdata manager,
// on disk.
type SettingsStore struct {
	mu       sync.RWMutex
	manager  *gdata.Manager
	settings Settings
}

// OpenSettings opens the gdata store for appName and loads saved settings.
// If the store cannot be opened the settings stay in memory.
func OpenSettings(appName string) (*SettingsStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return NewSettingsStore(nil), fmt.Errorf("open settings store: %w", err)
	}
	s := NewSettingsStore(m)
	return s, s.Load()
}

// NewSettingsStore creates a store with default settings. A nil manager
// keeps settings in memory only.
func NewSettingsStore(m *gdata.Manager) *SettingsStore {
	return &SettingsStore{manager: m, settings: DefaultSettings()}
}

// Load reads saved settings. Missing or unreadable data leaves the
// defaults in place.
func (s *SettingsStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = DefaultSettings()
	if s.manager == nil || !s.manager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}
	data, err := s.manager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	loaded.Volume = clampVolume(loaded.Volume)
	s.settings = loaded
	return nil
}

// Get returns the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update applies fn to the settings and saves them.
func (s *SettingsStore) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	fn(&next)
	next.Volume = clampVolume(next.Volume)
	s.settings = next

	if s.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.manager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), 1)
}
