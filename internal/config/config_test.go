package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/promptdeck/promptdeck/internal/store"
)

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("PD_TEST_KEY", "secret-value")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple substitution", "${PD_TEST_KEY}", "secret-value"},
		{"embedded", "prefix-${PD_TEST_KEY}-suffix", "prefix-secret-value-suffix"},
		{"unset variable", "${PD_UNSET_VAR}", ""},
		{"no reference", "plain", "plain"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnvVars(tt.input); got != tt.want {
				t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	valid := []string{"providers.gemini.api_key", "defaults.provider", "a-b_c.d1"}
	for _, key := range valid {
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) = %v, want nil", key, err)
		}
	}

	invalid := []string{"", ".leading", "trailing.", "has space", "semi;colon"}
	for _, key := range invalid {
		if err := ValidateKey(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ValidateKey(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestToProviderRegistryConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "resolved-key")

	cfg := DefaultConfig()
	reg := cfg.ToProviderRegistryConfig()

	gemini, ok := reg.Providers["gemini"]
	if !ok {
		t.Fatal("gemini missing from registry config")
	}
	if gemini.APIKey != "resolved-key" {
		t.Errorf("APIKey = %q, want env-resolved value", gemini.APIKey)
	}
	if gemini.Type != "openai-compatible" {
		t.Errorf("Type = %q", gemini.Type)
	}

	ollama := reg.Providers["ollama"]
	if ollama.Type != "ollama" || ollama.BaseURL == "" {
		t.Errorf("ollama config = %+v", ollama)
	}

	if reg.Providers["huggingface"].Type != "simulated" {
		t.Error("huggingface should be the simulated provider")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	content := string(raw)
	if !strings.HasPrefix(content, "# Promptdeck configuration") {
		t.Error("header comment missing")
	}
	for _, want := range []string{"providers:", "gemini:", "${GEMINI_API_KEY}", "server:"} {
		if !strings.Contains(content, want) {
			t.Errorf("default config missing %q", want)
		}
	}
}

func newSettingsStore(t *testing.T) *SettingsStore {
	t.Helper()
	data, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "data.json")})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	return NewSettingsStore(data)
}

func TestSettingsStore(t *testing.T) {
	s := newSettingsStore(t)

	t.Run("get missing returns nil", func(t *testing.T) {
		entry, err := s.Get("nope")
		if err != nil || entry != nil {
			t.Errorf("Get() = %+v, %v", entry, err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		if err := s.Set("providers.gemini.api_key", "k", "key"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		entry, err := s.Get("providers.gemini.api_key")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if entry.Value != "k" || entry.Description != "key" {
			t.Errorf("entry = %+v", entry)
		}
	})

	t.Run("invalid key rejected", func(t *testing.T) {
		if err := s.Set("bad key", "v", ""); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Set() error = %v, want ErrInvalidKey", err)
		}
	})

	t.Run("prefix filter", func(t *testing.T) {
		s.Set("providers.groq.api_key", "g", "")
		s.Set("defaults.provider", "gemini", "")
		byPrefix, err := s.GetByPrefix("providers.")
		if err != nil {
			t.Fatalf("GetByPrefix() error = %v", err)
		}
		if len(byPrefix) != 2 {
			t.Errorf("GetByPrefix() returned %d entries, want 2", len(byPrefix))
		}
	})

	t.Run("delete", func(t *testing.T) {
		s.Set("tmp.key", "v", "")
		if err := s.Delete("tmp.key"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		entry, _ := s.Get("tmp.key")
		if entry != nil {
			t.Error("entry present after delete")
		}
	})
}

func TestSeedDefaultsAndReset(t *testing.T) {
	s := newSettingsStore(t)

	if err := SeedDefaults(s, nil); err != nil {
		t.Fatalf("SeedDefaults() error = %v", err)
	}

	entry, err := s.Get("providers.gemini.type")
	if err != nil || entry == nil {
		t.Fatalf("Get() after seed = %+v, %v", entry, err)
	}
	if entry.Value != "openai-compatible" {
		t.Errorf("Value = %v", entry.Value)
	}

	t.Run("seeding is idempotent", func(t *testing.T) {
		s.Set("providers.gemini.model", "custom-model", "")
		if err := SeedDefaults(s, nil); err != nil {
			t.Fatalf("SeedDefaults() error = %v", err)
		}
		entry, _ := s.Get("providers.gemini.model")
		if entry.Value != "custom-model" {
			t.Errorf("seed overwrote user value: %v", entry.Value)
		}
	})

	t.Run("reset to default", func(t *testing.T) {
		if err := ResetToDefault(s, "providers.gemini.model"); err != nil {
			t.Fatalf("ResetToDefault() error = %v", err)
		}
		entry, _ := s.Get("providers.gemini.model")
		if entry.Value != "gemini-2.5-flash" {
			t.Errorf("Value after reset = %v", entry.Value)
		}
		if err := ResetToDefault(s, "no.such.key"); !errors.Is(err, ErrNoDefault) {
			t.Errorf("ResetToDefault(unknown) = %v, want ErrNoDefault", err)
		}
	})
}

func TestStoreToProviderRegistryConfig(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "groq-secret")
	s := newSettingsStore(t)

	s.Set("providers.groq.type", "openai-compatible", "")
	s.Set("providers.groq.api_key", "${GROQ_API_KEY}", "")
	s.Set("providers.groq.base_url", "https://api.groq.com/openai/v1", "")
	s.Set("providers.groq.model", "llama-3.3-70b-versatile", "")
	s.Set("providers.groq.enabled", true, "")

	reg, err := StoreToProviderRegistryConfig(s)
	if err != nil {
		t.Fatalf("StoreToProviderRegistryConfig() error = %v", err)
	}

	groq, ok := reg.Providers["groq"]
	if !ok {
		t.Fatal("groq missing")
	}
	if groq.APIKey != "groq-secret" {
		t.Errorf("APIKey = %q, want env-resolved", groq.APIKey)
	}
	if !groq.Enabled {
		t.Error("Enabled = false")
	}
	if groq.DefaultModel != "llama-3.3-70b-versatile" {
		t.Errorf("DefaultModel = %q", groq.DefaultModel)
	}
}
