package gameserver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hollowmere/ashfall/internal/model"
	"github.com/hollowmere/ashfall/internal/security"
)

// Session is one entity's movement session: a fresh identity per login, the
// session-bound signing secret, and the monotonic move counter clients fold
// into each token.
type Session struct {
	EntityID  uint32
	ID        string
	Secret    []byte
	CreatedAt time.Time

	lastActive  atomic.Int64 // unix ms
	moveCounter atomic.Uint64
}

// Touch marks the session active.
func (s *Session) Touch(now time.Time) {
	s.lastActive.Store(now.UnixMilli())
}

// LastActive returns the last activity time.
func (s *Session) LastActive() time.Time {
	return time.UnixMilli(s.lastActive.Load())
}

// NextMoveCounter increments and returns the per-session move counter.
func (s *Session) NextMoveCounter() uint64 {
	return s.moveCounter.Add(1)
}

// SignMovement assembles authenticated packet data for one step, the way a
// client would. Server-side this backs tests and simulated movers.
func (s *Session) SignMovement(current, target model.Position, at time.Time) MovementAuthData {
	d := MovementAuthData{
		EntityID:    s.EntityID,
		SessionID:   s.ID,
		Timestamp:   at.UnixMilli(),
		MoveCounter: s.NextMoveCounter(),
	}
	d.Token = BuildMovementToken(s.Secret, d, current, target)
	return d
}

// SessionManager tracks movement sessions. Opening a session binds a fresh
// secret in the security manager; closing or expiring it revokes the secret
// so stale clients fail authentication immediately.
type SessionManager struct {
	sessions sync.Map // map[uint32]*Session
	security *security.Manager
	ttl      time.Duration

	// OnClose, when set, runs for every closed or expired session. The
	// wiring layer uses it to drop per-entity validator state.
	OnClose func(entityID uint32)
}

// NewSessionManager creates a session manager with the given idle TTL.
func NewSessionManager(sec *security.Manager, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SessionManager{security: sec, ttl: ttl}
}

// Open starts a movement session for an entity, replacing any previous one.
func (sm *SessionManager) Open(entityID uint32) *Session {
	now := time.Now()
	s := &Session{
		EntityID:  entityID,
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	s.Secret = sm.security.BindSession(entityID, s.ID)
	s.Touch(now)
	sm.sessions.Store(entityID, s)

	slog.Info("movement session opened", "entity_id", entityID, "session_id", s.ID)
	return s
}

// Get returns the live session for an entity.
func (sm *SessionManager) Get(entityID uint32) (*Session, bool) {
	val, ok := sm.sessions.Load(entityID)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// Close ends an entity's session and revokes its secret.
func (sm *SessionManager) Close(entityID uint32) {
	if _, ok := sm.sessions.LoadAndDelete(entityID); !ok {
		return
	}
	sm.security.Revoke(entityID)
	if sm.OnClose != nil {
		sm.OnClose(entityID)
	}
	slog.Info("movement session closed", "entity_id", entityID)
}

// CleanExpired closes sessions idle longer than the TTL and returns how
// many were dropped.
func (sm *SessionManager) CleanExpired(now time.Time) int {
	closed := 0
	sm.sessions.Range(func(key, value any) bool {
		s := value.(*Session)
		if now.Sub(s.LastActive()) > sm.ttl {
			sm.Close(key.(uint32))
			closed++
		}
		return true
	})
	return closed
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	count := 0
	sm.sessions.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Run sweeps expired sessions until ctx is canceled. Intended to run under
// the server's errgroup.
func (sm *SessionManager) Run(ctx context.Context) error {
	interval := sm.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := sm.CleanExpired(time.Now()); n > 0 {
				slog.Info("expired movement sessions closed", "count", n)
			}
		}
	}
}
