package memory

import (
	"sync"

	"github.com/custodia-labs/pagefix/internal/adapters/driven/config"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory only. Save and Load are no-ops.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) raw(key string) any {
	val, _ := s.Get(key)
	return val
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string { return config.AsString(s.raw(key)) }

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int { return config.AsInt(s.raw(key)) }

// GetFloat retrieves a float configuration value.
func (s *ConfigStore) GetFloat(key string) float64 { return config.AsFloat(s.raw(key)) }

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool { return config.AsBool(s.raw(key)) }

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	return config.AsStringSlice(s.raw(key))
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path returns ":memory:".
func (s *ConfigStore) Path() string { return ":memory:" }
