package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds references to LLM providers. It supports config-driven
// instantiation, hot-reload, and thread-safe access.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	logger    *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers a provider by name.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
	if r.logger != nil {
		r.logger.Info("registered provider", "name", name)
	}
}

// Unregister removes a provider by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, name)
	if r.logger != nil {
		r.logger.Info("unregistered provider", "name", name)
	}
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", name)
	}
	return p, nil
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Has checks if a provider is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

// Providers returns a copy of the registered provider map.
func (r *Registry) Providers() map[string]Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]Provider, len(r.providers))
	for name, p := range r.providers {
		result[name] = p
	}
	return result
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	// Providers maps provider names to their config.
	Providers map[string]ProviderConfig
}

// ProviderConfig describes one provider entry with its resolved API key.
type ProviderConfig struct {
	Type         string // "openai-compatible", "ollama", "simulated"
	APIKey       string // resolved API key (cloud providers)
	BaseURL      string // endpoint base URL
	DefaultModel string
	Enabled      bool
}

// NewRegistryFromConfig creates a registry with providers based on
// configuration. Disabled providers are skipped; a provider with a missing
// credential is still registered so callers get a ConfigError pointing at
// settings rather than "provider not found".
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	r.applyConfig(cfg)
	return r
}

// Reload updates the registry based on new configuration. Providers that
// are no longer configured are unregistered; providers with changed
// settings are re-created.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)

	for name, provCfg := range cfg.Providers {
		if !provCfg.Enabled {
			continue
		}
		want[name] = true

		existing, hasExisting := r.providers[name]
		if !hasExisting || needsUpdate(existing, provCfg) {
			p := createProvider(name, provCfg)
			if p != nil {
				r.providers[name] = p
				if r.logger != nil {
					if hasExisting {
						r.logger.Info("updated provider", "name", name, "type", provCfg.Type)
					} else {
						r.logger.Info("registered provider", "name", name, "type", provCfg.Type)
					}
				}
			}
		}
	}

	for name := range r.providers {
		if !want[name] {
			delete(r.providers, name)
			if r.logger != nil {
				r.logger.Info("unregistered provider", "name", name)
			}
		}
	}
}

// applyConfig applies configuration without locking (used during init).
func (r *Registry) applyConfig(cfg RegistryConfig) {
	for name, provCfg := range cfg.Providers {
		if !provCfg.Enabled {
			continue
		}
		p := createProvider(name, provCfg)
		if p != nil {
			r.providers[name] = p
		}
	}
}

// createProvider creates a provider based on provider type.
func createProvider(name string, cfg ProviderConfig) Provider {
	switch cfg.Type {
	case "openai-compatible":
		return NewCloudProvider(CloudConfig{
			Name:         name,
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.DefaultModel,
		})
	case "ollama":
		return NewOllamaProvider(OllamaConfig{
			Name:         name,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.DefaultModel,
		})
	case "simulated":
		return NewSimulatedProvider(SimulatedConfig{Name: name})
	default:
		return nil
	}
}

// needsUpdate checks if a provider needs to be recreated for new config.
func needsUpdate(p Provider, cfg ProviderConfig) bool {
	switch c := p.(type) {
	case *CloudProvider:
		return c.apiKey != cfg.APIKey || c.defaultModel != cfg.DefaultModel
	case *OllamaProvider:
		return c.baseURL != cfg.BaseURL || c.defaultModel != cfg.DefaultModel
	case *SimulatedProvider:
		return false
	default:
		return true
	}
}
