package providers

import (
	"testing"
)

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry()

	mock := &MockProvider{NameVal: "test"}
	r.Register("test", mock)

	t.Run("get registered", func(t *testing.T) {
		p, err := r.Get("test")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if p.Name() != "test" {
			t.Errorf("Name() = %q, want %q", p.Name(), "test")
		}
	})

	t.Run("get missing", func(t *testing.T) {
		if _, err := r.Get("missing"); err == nil {
			t.Error("Get() expected error for unknown provider")
		}
	})

	t.Run("has", func(t *testing.T) {
		if !r.Has("test") {
			t.Error("Has(test) = false, want true")
		}
		if r.Has("missing") {
			t.Error("Has(missing) = true, want false")
		}
	})

	t.Run("list", func(t *testing.T) {
		names := r.List()
		if len(names) != 1 || names[0] != "test" {
			t.Errorf("List() = %v, want [test]", names)
		}
	})

	t.Run("unregister", func(t *testing.T) {
		r.Unregister("test")
		if r.Has("test") {
			t.Error("Has(test) = true after Unregister")
		}
	})
}

func TestNewRegistryFromConfig(t *testing.T) {
	cfg := RegistryConfig{
		Providers: map[string]ProviderConfig{
			"gemini": {
				Type:         "openai-compatible",
				APIKey:       "key-1",
				BaseURL:      "https://example.com/v1",
				DefaultModel: "gemini-2.5-flash",
				Enabled:      true,
			},
			"ollama": {
				Type:         "ollama",
				BaseURL:      "http://localhost:11434",
				DefaultModel: "llama3",
				Enabled:      true,
			},
			"huggingface": {
				Type:    "simulated",
				Enabled: true,
			},
			"disabled": {
				Type:    "simulated",
				Enabled: false,
			},
			"unknown": {
				Type:    "bogus",
				Enabled: true,
			},
		},
	}

	r := NewRegistryFromConfig(cfg)

	if !r.Has("gemini") {
		t.Error("expected gemini to be registered")
	}
	if !r.Has("ollama") {
		t.Error("expected ollama to be registered")
	}
	if !r.Has("huggingface") {
		t.Error("expected huggingface to be registered")
	}
	if r.Has("disabled") {
		t.Error("disabled provider should not be registered")
	}
	if r.Has("unknown") {
		t.Error("unknown provider type should not be registered")
	}

	t.Run("cloud provider without key still registers", func(t *testing.T) {
		r := NewRegistryFromConfig(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"gemini": {Type: "openai-compatible", Enabled: true},
			},
		})
		if !r.Has("gemini") {
			t.Fatal("provider with missing key should still register")
		}
	})
}

func TestRegistryReload(t *testing.T) {
	r := NewRegistryFromConfig(RegistryConfig{
		Providers: map[string]ProviderConfig{
			"gemini": {Type: "openai-compatible", APIKey: "old-key", Enabled: true},
			"ollama": {Type: "ollama", BaseURL: "http://localhost:11434", Enabled: true},
		},
	})

	before, err := r.Get("gemini")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	r.Reload(RegistryConfig{
		Providers: map[string]ProviderConfig{
			"gemini": {Type: "openai-compatible", APIKey: "new-key", Enabled: true},
			"groq":   {Type: "openai-compatible", APIKey: "groq-key", Enabled: true},
		},
	})

	t.Run("removed provider unregistered", func(t *testing.T) {
		if r.Has("ollama") {
			t.Error("ollama should be unregistered after reload")
		}
	})

	t.Run("new provider registered", func(t *testing.T) {
		if !r.Has("groq") {
			t.Error("groq should be registered after reload")
		}
	})

	t.Run("changed provider recreated", func(t *testing.T) {
		after, err := r.Get("gemini")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if before == after {
			t.Error("provider with changed key should be recreated")
		}
	})

	t.Run("unchanged provider kept", func(t *testing.T) {
		current, _ := r.Get("gemini")
		r.Reload(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"gemini": {Type: "openai-compatible", APIKey: "new-key", Enabled: true},
				"groq":   {Type: "openai-compatible", APIKey: "groq-key", Enabled: true},
			},
		})
		again, _ := r.Get("gemini")
		if current != again {
			t.Error("provider with unchanged config should not be recreated")
		}
	})
}
