package sessionrepo

import (
	"context"
	"sync"
	"time"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/repository"
	"github.com/creditmitra/loanflow/pkg/common"
)

type memoryEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

// memoryStore is the demo-default session backing: an in-process map with
// lazy expiry. A zero TTL disables expiry.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) repository.SessionStore {
	return &memoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
	}
}

func (m *memoryStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok || m.expired(entry) {
		return nil, common.ErrSessionNotFound
	}

	clone := *entry.session
	return &clone, nil
}

func (m *memoryStore) GetOrCreate(ctx context.Context, sessionID, customerID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.sessions[sessionID]; ok && !m.expired(entry) {
		clone := *entry.session
		return &clone, nil
	}

	session := &domain.Session{
		ID:         sessionID,
		CustomerID: customerID,
		Stage:      domain.StageInit,
	}
	m.sessions[sessionID] = memoryEntry{session: session, expiresAt: m.deadline()}

	clone := *session
	return &clone, nil
}

func (m *memoryStore) Save(ctx context.Context, session *domain.Session) error {
	clone := *session

	m.mu.Lock()
	m.sessions[session.ID] = memoryEntry{session: &clone, expiresAt: m.deadline()}
	m.mu.Unlock()

	return nil
}

func (m *memoryStore) deadline() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(m.ttl)
}

func (m *memoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)
}
