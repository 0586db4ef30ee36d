package connector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Manager owns the single active connector for the process. It is built
// once at startup and handed to every request handler explicitly; there
// is no ambient global. The active slot is written once (at connect) and
// read thereafter, so the mutex mostly guards against a disconnect racing
// a late request during shutdown.
//
// The manager is also where the statement safety policy is enforced:
// connectors execute whatever they are given, Execute gates it first.
type Manager struct {
	registry *Registry
	logger   *slog.Logger

	mu        sync.RWMutex
	active    Connector
	policy    *SafetyPolicy
	connected bool
}

// NewManager creates a manager over the given registry.
func NewManager(registry *Registry, logger *slog.Logger) *Manager {
	return &Manager{
		registry: registry,
		logger:   logger,
	}
}

// ConnectWithDSN resolves the DSN against the registry and connects the
// matching connector. It fails fast with NoMatchingConnector when no
// registered dialect accepts the string. A manager connects at most once
// per process lifetime; swapping backends mid-session is not supported.
func (m *Manager) ConnectWithDSN(ctx context.Context, dsn, initScript string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return &Error{Kind: ErrKindConnectionFailed, Message: "a connector is already active; disconnect first"}
	}

	c := m.registry.ForDSN(dsn)
	if c == nil {
		return &Error{
			Kind:    ErrKindNoMatchingConnector,
			Message: "no registered connector accepts this connection string",
		}
	}

	desc := c.Descriptor()
	m.logger.Info("connecting", "dialect", desc.ID, "backend", desc.DisplayName)

	if err := c.Connect(ctx, dsn, initScript); err != nil {
		return fmt.Errorf("connect %s: %w", desc.ID, err)
	}

	m.active = c
	m.policy = SafetyPolicyFor(desc.ID)
	m.connected = true
	return nil
}

// Disconnect closes the active connector. Calling it when nothing is
// connected is a no-op.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	if err := m.active.Disconnect(ctx); err != nil {
		return err
	}
	m.connected = false
	return nil
}

// Current returns the active connector. It fails loudly, never returning
// nil, when called before a successful ConnectWithDSN.
func (m *Manager) Current() (Connector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected || m.active == nil {
		return nil, &Error{Kind: ErrKindNotInitialized, Message: "connector manager used before connect"}
	}
	return m.active, nil
}

// Connected reports whether a connector is active.
func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Execute applies the active dialect's statement safety policy and then
// delegates to the connector. This is the only execution path the
// protocol layer uses.
func (m *Manager) Execute(ctx context.Context, statement string) (*SQLResult, error) {
	m.mu.RLock()
	c, policy, connected := m.active, m.policy, m.connected
	m.mu.RUnlock()

	if !connected || c == nil {
		return nil, &Error{Kind: ErrKindNotInitialized, Message: "connector manager used before connect"}
	}
	if err := policy.Check(statement); err != nil {
		return nil, err
	}
	return c.ExecuteSQL(ctx, statement)
}
