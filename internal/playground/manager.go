package playground

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/internal/providers"
)

// ManagerConfig configures a session manager.
type ManagerConfig struct {
	Registry        *providers.Registry
	Logger          *slog.Logger
	DefaultProvider string
	DefaultModel    string
	Transcriber     Transcriber
}

// Manager owns the live playground sessions, keyed by session id. Each
// session is independent; no state is shared between them.
type Manager struct {
	registry        *providers.Registry
	logger          *slog.Logger
	defaultProvider string
	defaultModel    string
	transcriber     Transcriber

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry:        cfg.Registry,
		logger:          logger,
		defaultProvider: cfg.DefaultProvider,
		defaultModel:    cfg.DefaultModel,
		transcriber:     cfg.Transcriber,
		sessions:        make(map[string]*Session),
	}
}

// Create registers a new session. Empty provider/model fall back to the
// manager defaults.
func (m *Manager) Create(provider, model string) *Session {
	if provider == "" {
		provider = m.defaultProvider
	}
	if model == "" {
		model = m.defaultModel
	}

	s := NewSession(SessionConfig{
		ID:          uuid.New().String(),
		Registry:    m.registry,
		Logger:      m.logger,
		Provider:    provider,
		Model:       model,
		Transcriber: m.transcriber,
	})

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Info("created playground session", "session", s.ID(), "provider", provider, "model", model)
	return s
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return s, nil
}

// Delete closes and removes a session. Unknown ids are a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		m.logger.Info("deleted playground session", "session", id)
	}
}

// List returns the ids of all live sessions.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
