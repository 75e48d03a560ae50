package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoDefault is returned when no default value exists for a config key.
var ErrNoDefault = errors.New("no default exists")

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8180,
		},
		Store: StoreCfg{
			Seed: true,
		},
		Providers: map[string]ProviderCfg{
			"gemini": {
				Type:    "openai-compatible",
				APIKey:  "${GEMINI_API_KEY}",
				BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
				Model:   "gemini-2.5-flash",
				Enabled: true,
			},
			"groq": {
				Type:    "openai-compatible",
				APIKey:  "${GROQ_API_KEY}",
				BaseURL: "https://api.groq.com/openai/v1",
				Model:   "llama-3.3-70b-versatile",
				Enabled: true,
			},
			"ollama": {
				Type:    "ollama",
				BaseURL: "http://localhost:11434",
				Model:   "llama3",
				Enabled: true,
			},
			"huggingface": {
				Type:    "simulated",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
	}
}

// DefaultEntries returns the default settings entries. These are seeded
// into the settings store on first run and can be edited at runtime
// through the settings API.
func DefaultEntries() []Entry {
	return []Entry{
		// Gemini
		{
			Key:         "providers.gemini.type",
			Value:       "openai-compatible",
			Description: "Provider type for Gemini",
		},
		{
			Key:         "providers.gemini.api_key",
			Value:       "${GEMINI_API_KEY}",
			Description: "Gemini API key (uses environment variable)",
		},
		{
			Key:         "providers.gemini.base_url",
			Value:       "https://generativelanguage.googleapis.com/v1beta/openai",
			Description: "Gemini OpenAI-compatible endpoint",
		},
		{
			Key:         "providers.gemini.model",
			Value:       "gemini-2.5-flash",
			Description: "Default model for Gemini",
		},
		{
			Key:         "providers.gemini.enabled",
			Value:       true,
			Description: "Whether the Gemini provider is enabled",
		},

		// Groq
		{
			Key:         "providers.groq.type",
			Value:       "openai-compatible",
			Description: "Provider type for Groq",
		},
		{
			Key:         "providers.groq.api_key",
			Value:       "${GROQ_API_KEY}",
			Description: "Groq API key (uses environment variable)",
		},
		{
			Key:         "providers.groq.base_url",
			Value:       "https://api.groq.com/openai/v1",
			Description: "Groq OpenAI-compatible endpoint",
		},
		{
			Key:         "providers.groq.model",
			Value:       "llama-3.3-70b-versatile",
			Description: "Default model for Groq",
		},
		{
			Key:         "providers.groq.enabled",
			Value:       true,
			Description: "Whether the Groq provider is enabled",
		},

		// Ollama
		{
			Key:         "providers.ollama.type",
			Value:       "ollama",
			Description: "Provider type for the local Ollama daemon",
		},
		{
			Key:         "providers.ollama.base_url",
			Value:       "http://localhost:11434",
			Description: "Base URL of the local Ollama daemon",
		},
		{
			Key:         "providers.ollama.model",
			Value:       "llama3",
			Description: "Default model for Ollama",
		},
		{
			Key:         "providers.ollama.enabled",
			Value:       true,
			Description: "Whether the Ollama provider is enabled",
		},

		// HuggingFace (no backend integration; simulated responses)
		{
			Key:         "providers.huggingface.type",
			Value:       "simulated",
			Description: "Provider type for HuggingFace (simulated)",
		},
		{
			Key:         "providers.huggingface.enabled",
			Value:       true,
			Description: "Whether the simulated HuggingFace provider is enabled",
		},

		// Playground defaults
		{
			Key:         "defaults.provider",
			Value:       "gemini",
			Description: "Default provider for new playground sessions",
		},
		{
			Key:         "defaults.model",
			Value:       "gemini-2.5-flash",
			Description: "Default model for new playground sessions",
		},
	}
}

// SeedDefaults seeds default settings entries into the store. This is
// idempotent: existing entries are not overwritten.
func SeedDefaults(store Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	seeded := 0
	skipped := 0
	for _, entry := range DefaultEntries() {
		existing, err := store.Get(entry.Key)
		if err != nil {
			return fmt.Errorf("failed to check key %q: %w", entry.Key, err)
		}
		if existing != nil {
			skipped++
			continue
		}
		if err := store.Set(entry.Key, entry.Value, entry.Description); err != nil {
			return fmt.Errorf("failed to seed key %q: %w", entry.Key, err)
		}
		seeded++
	}

	if seeded > 0 {
		logger.Info("seeded default settings entries", "seeded", seeded, "skipped", skipped)
	}
	return nil
}

// GetDefault returns the default entry for a settings key, or nil.
func GetDefault(key string) *Entry {
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry
		}
	}
	return nil
}

// ResetToDefault resets a settings key to its default value. Returns
// ErrNoDefault if no default exists for the key.
func ResetToDefault(store Store, key string) error {
	def := GetDefault(key)
	if def == nil {
		return fmt.Errorf("%w for key %q", ErrNoDefault, key)
	}
	return store.Set(key, def.Value, def.Description)
}
