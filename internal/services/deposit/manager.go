package deposit

import (
	"context"
	"sync"
	"time"

	"cardvault/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSessionTTL bounds how long an idle dialog stays open before
// the server reclaims it.
const DefaultSessionTTL = 15 * time.Minute

type managedSession struct {
	session  *Session
	userID   uint
	deadline time.Time
}

// Manager tracks the open deposit sessions of all users. Each session
// is keyed by an opaque id handed to the client when the dialog opens.
// It is safe for concurrent use.
type Manager struct {
	deps SessionDeps
	ttl  time.Duration

	mu       sync.Mutex
	sessions map[string]*managedSession
}

// NewManager creates a session manager. A zero ttl falls back to
// DefaultSessionTTL.
func NewManager(deps SessionDeps, ttl time.Duration) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		deps:     deps,
		ttl:      ttl,
		sessions: make(map[string]*managedSession),
	}
}

// Open starts a new session for the card and returns its id. The
// session is detached from the opening request's context so the
// in-flight wallet and fee fetches survive the response being written.
func (m *Manager) Open(userID uint, card *models.VirtualCard) (string, *Session) {
	s := NewSession(m.deps, userID, card)
	s.Open(context.Background())

	id := uuid.NewString()

	m.mu.Lock()
	m.reapLocked()
	m.sessions[id] = &managedSession{
		session:  s,
		userID:   userID,
		deadline: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()

	return id, s
}

// Get returns the session with the given id. Ownership is enforced so
// one user cannot drive another user's dialog.
func (m *Manager) Get(id string, userID uint) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms, ok := m.sessions[id]
	if !ok || ms.userID != userID {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(ms.deadline) {
		ms.session.Close()
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	ms.deadline = time.Now().Add(m.ttl)
	return ms.session, nil
}

// Close cancels a session and forgets it. Closing an unknown or
// foreign id is a no-op.
func (m *Manager) Close(id string, userID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms, ok := m.sessions[id]
	if !ok || ms.userID != userID {
		return
	}
	ms.session.Close()
	delete(m.sessions, id)
}

// Forget drops a session that has already finished, without cancelling
// it again. Used after a successful submission closes the session.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// reapLocked drops expired sessions. Called opportunistically so an
// abandoned dialog cannot hold its goroutines forever.
func (m *Manager) reapLocked() {
	now := time.Now()
	for id, ms := range m.sessions {
		if now.After(ms.deadline) {
			ms.session.Close()
			delete(m.sessions, id)
		}
	}
}
