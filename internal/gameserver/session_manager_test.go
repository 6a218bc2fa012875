package gameserver

import (
	"bytes"
	"testing"
	"time"

	"github.com/hollowmere/ashfall/internal/crypto"
	"github.com/hollowmere/ashfall/internal/model"
	"github.com/hollowmere/ashfall/internal/security"
)

func newTestSessionManager(t *testing.T, ttl time.Duration) (*SessionManager, *security.Manager) {
	t.Helper()
	sec, err := security.NewManager([]byte("test-master-secret"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return NewSessionManager(sec, ttl), sec
}

func TestSessionManager_OpenAndGet(t *testing.T) {
	sm, sec := newTestSessionManager(t, time.Minute)

	s := sm.Open(7)
	if s.EntityID != 7 {
		t.Errorf("EntityID = %d, want 7", s.EntityID)
	}
	if s.ID == "" {
		t.Error("session ID is empty")
	}

	got, ok := sm.Get(7)
	if !ok || got.ID != s.ID {
		t.Fatalf("Get(7) = %v, %v; want the opened session", got, ok)
	}

	secret, ok := sec.MovementSecret(7)
	if !ok {
		t.Fatal("no movement secret bound for entity 7")
	}
	if !bytes.Equal(secret, s.Secret) {
		t.Error("session secret differs from the bound movement secret")
	}
	if sm.Count() != 1 {
		t.Errorf("Count = %d, want 1", sm.Count())
	}
}

func TestSessionManager_ReopenReplacesSecret(t *testing.T) {
	sm, sec := newTestSessionManager(t, time.Minute)

	first := sm.Open(7)
	second := sm.Open(7)

	if first.ID == second.ID {
		t.Fatal("reopened session kept the old session ID")
	}
	if bytes.Equal(first.Secret, second.Secret) {
		t.Fatal("reopened session kept the old secret")
	}

	secret, ok := sec.MovementSecret(7)
	if !ok {
		t.Fatal("no movement secret after reopen")
	}
	if !bytes.Equal(secret, second.Secret) {
		t.Error("bound secret is not the reopened session's secret")
	}
	if sm.Count() != 1 {
		t.Errorf("Count after reopen = %d, want 1", sm.Count())
	}
}

func TestSessionManager_Close(t *testing.T) {
	sm, sec := newTestSessionManager(t, time.Minute)

	var closed []uint32
	sm.OnClose = func(entityID uint32) { closed = append(closed, entityID) }

	sm.Open(7)
	sm.Close(7)

	if _, ok := sm.Get(7); ok {
		t.Error("session still retrievable after close")
	}
	if _, ok := sec.MovementSecret(7); ok {
		t.Error("movement secret still bound after close")
	}
	if len(closed) != 1 || closed[0] != 7 {
		t.Errorf("OnClose calls = %v, want [7]", closed)
	}

	// Closing again is a no-op and must not re-fire the hook.
	sm.Close(7)
	if len(closed) != 1 {
		t.Errorf("OnClose fired %d times after double close, want 1", len(closed))
	}
}

func TestSessionManager_CleanExpired(t *testing.T) {
	sm, _ := newTestSessionManager(t, time.Minute)

	var closed []uint32
	sm.OnClose = func(entityID uint32) { closed = append(closed, entityID) }

	now := time.Now()
	stale := sm.Open(1)
	sm.Open(2)
	active := sm.Open(3)

	stale.Touch(now.Add(-2 * time.Minute))
	active.Touch(now)

	if got := sm.CleanExpired(now); got != 1 {
		t.Fatalf("CleanExpired = %d, want 1", got)
	}
	if _, ok := sm.Get(1); ok {
		t.Error("stale session survived CleanExpired")
	}
	if sm.Count() != 2 {
		t.Errorf("Count after clean = %d, want 2", sm.Count())
	}
	if len(closed) != 1 || closed[0] != 1 {
		t.Errorf("OnClose calls = %v, want [1]", closed)
	}
}

func TestSession_MoveCounterMonotonic(t *testing.T) {
	sm, _ := newTestSessionManager(t, time.Minute)
	s := sm.Open(7)

	for want := uint64(1); want <= 5; want++ {
		if got := s.NextMoveCounter(); got != want {
			t.Fatalf("NextMoveCounter = %d, want %d", got, want)
		}
	}
}

func TestSession_SignMovement(t *testing.T) {
	sm, _ := newTestSessionManager(t, time.Minute)
	s := sm.Open(7)

	current := model.NewPosition(1, 1, 0)
	target := model.NewPosition(2, 1, 0)
	at := time.UnixMilli(testNowMS)

	d1 := s.SignMovement(current, target, at)
	d2 := s.SignMovement(current, target, at)

	if d1.MoveCounter+1 != d2.MoveCounter {
		t.Errorf("move counters %d, %d are not consecutive", d1.MoveCounter, d2.MoveCounter)
	}
	if d1.Timestamp != testNowMS {
		t.Errorf("Timestamp = %d, want %d", d1.Timestamp, testNowMS)
	}
	for _, d := range []MovementAuthData{d1, d2} {
		if !crypto.VerifyAuthToken(s.Secret, CanonicalMessage(d, current, target), d.Token) {
			t.Error("signed packet does not verify under the session secret")
		}
	}
}
