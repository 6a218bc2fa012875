package security

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hollowmere/ashfall/internal/crypto"
)

// movementPurpose separates the movement-auth key domain from any other
// key derived off the same master secret.
const movementPurpose = "ashfall/movement-auth/v1"

// Manager provisions and serves per-entity movement secrets. The master
// secret never signs anything directly: a movement key is derived from it
// once, and each session gets its own secret bound to (entity, session).
type Manager struct {
	movementKey []byte

	mu      sync.RWMutex
	secrets map[uint32][]byte
}

// NewManager derives the movement key from the master secret.
func NewManager(masterSecret []byte) (*Manager, error) {
	key, err := crypto.DeriveKey(masterSecret, movementPurpose, 32)
	if err != nil {
		return nil, fmt.Errorf("security manager: %w", err)
	}
	return &Manager{
		movementKey: key,
		secrets:     make(map[uint32][]byte),
	}, nil
}

// BindSession derives the movement secret for an entity's session, stores
// it for validation, and returns it for delivery to the client. Binding a
// new session replaces the previous secret, so stale clients fail auth.
func (m *Manager) BindSession(entityID uint32, sessionID string) []byte {
	secret := crypto.ComputeAuthToken(m.movementKey, []byte(fmt.Sprintf("%d:%s", entityID, sessionID)))

	m.mu.Lock()
	m.secrets[entityID] = secret
	m.mu.Unlock()

	slog.Debug("movement secret bound", "entity_id", entityID, "session_id", sessionID)
	return secret
}

// MovementSecret returns the provisioned secret for an entity. The second
// return is false when no session is bound, which callers must treat as a
// server-side provisioning failure, not a client error.
func (m *Manager) MovementSecret(entityID uint32) ([]byte, bool) {
	m.mu.RLock()
	secret, ok := m.secrets[entityID]
	m.mu.RUnlock()
	return secret, ok
}

// Revoke drops an entity's movement secret, failing all further packets
// until a new session is bound.
func (m *Manager) Revoke(entityID uint32) {
	m.mu.Lock()
	delete(m.secrets, entityID)
	m.mu.Unlock()
}

// BoundCount returns the number of entities with a live secret.
func (m *Manager) BoundCount() int {
	m.mu.RLock()
	n := len(m.secrets)
	m.mu.RUnlock()
	return n
}
