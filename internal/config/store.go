package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/promptdeck/promptdeck/internal/providers"
	"github.com/promptdeck/promptdeck/internal/store"
)

// ErrInvalidKey is returned when a settings key contains invalid characters.
var ErrInvalidKey = errors.New("invalid settings key")

// ValidateKey checks if a settings key contains only allowed characters.
// Valid keys contain: letters, digits, dots, underscores, and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	if key[0] == '.' || key[len(key)-1] == '.' {
		return fmt.Errorf("%w: key cannot start or end with a dot", ErrInvalidKey)
	}
	return nil
}

// Store provides access to runtime-editable settings.
type Store interface {
	// Get returns a single entry by key, or nil when absent.
	Get(key string) (*Entry, error)

	// Set creates or updates an entry.
	Set(key string, value any, description string) error

	// GetAll returns all entries.
	GetAll() (map[string]Entry, error)

	// GetByPrefix returns entries whose key matches the prefix.
	GetByPrefix(prefix string) (map[string]Entry, error)

	// Delete removes an entry.
	Delete(key string) error
}

// Entry represents a single settings entry.
type Entry struct {
	Key         string `json:"key"`
	Value       any    `json:"value"`
	Description string `json:"description"`
}

// storedEntry is the persisted shape of one entry value.
type storedEntry struct {
	Value       any    `json:"value"`
	Description string `json:"description"`
}

// SettingsStore implements Store over the data store's settings map.
type SettingsStore struct {
	data *store.Store
}

// NewSettingsStore creates a settings store backed by the data store.
func NewSettingsStore(data *store.Store) *SettingsStore {
	return &SettingsStore{data: data}
}

// Get returns a single entry by key.
func (s *SettingsStore) Get(key string) (*Entry, error) {
	raw, err := s.data.Setting(key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var se storedEntry
	if err := json.Unmarshal([]byte(raw), &se); err != nil {
		// Tolerate plain-string values written outside the settings API.
		return &Entry{Key: key, Value: raw}, nil
	}
	return &Entry{Key: key, Value: se.Value, Description: se.Description}, nil
}

// Set creates or updates an entry.
func (s *SettingsStore) Set(key string, value any, description string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	raw, err := json.Marshal(storedEntry{Value: value, Description: description})
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.data.SetSetting(key, string(raw))
}

// GetAll returns all entries.
func (s *SettingsStore) GetAll() (map[string]Entry, error) {
	all := s.data.AllSettings()
	result := make(map[string]Entry, len(all))
	for key, raw := range all {
		var se storedEntry
		if err := json.Unmarshal([]byte(raw), &se); err != nil {
			result[key] = Entry{Key: key, Value: raw}
			continue
		}
		result[key] = Entry{Key: key, Value: se.Value, Description: se.Description}
	}
	return result, nil
}

// GetByPrefix returns entries matching the prefix.
func (s *SettingsStore) GetByPrefix(prefix string) (map[string]Entry, error) {
	all, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	result := make(map[string]Entry)
	for key, entry := range all {
		if strings.HasPrefix(key, prefix) {
			result[key] = entry
		}
	}
	return result, nil
}

// Delete removes an entry by key.
func (s *SettingsStore) Delete(key string) error {
	return s.data.DeleteSetting(key)
}

// Verify interface
var _ Store = (*SettingsStore)(nil)

// StoreToProviderRegistryConfig builds a provider registry config from
// the settings store, resolving ${ENV_VAR} references in API keys.
// Settings keys follow "providers.<name>.<field>".
func StoreToProviderRegistryConfig(s Store) (providers.RegistryConfig, error) {
	cfg := providers.RegistryConfig{
		Providers: make(map[string]providers.ProviderConfig),
	}

	entries, err := s.GetByPrefix("providers.")
	if err != nil {
		return cfg, fmt.Errorf("failed to get settings: %w", err)
	}

	grouped := make(map[string]map[string]any)
	for key, entry := range entries {
		remainder := strings.TrimPrefix(key, "providers.")
		parts := strings.SplitN(remainder, ".", 2)
		if len(parts) != 2 {
			continue
		}
		name, field := parts[0], parts[1]
		if grouped[name] == nil {
			grouped[name] = make(map[string]any)
		}
		grouped[name][field] = entry.Value
	}

	for name, fields := range grouped {
		cfg.Providers[name] = providers.ProviderConfig{
			Type:         getString(fields, "type"),
			APIKey:       ResolveEnvVars(getString(fields, "api_key")),
			BaseURL:      getString(fields, "base_url"),
			DefaultModel: getString(fields, "model"),
			Enabled:      getBool(fields, "enabled"),
		}
	}

	return cfg, nil
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getBool(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
