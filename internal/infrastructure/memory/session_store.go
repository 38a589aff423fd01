package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ScanSessionRepository = (*SessionStore)(nil)

type storedSession struct {
	data      []byte
	expiresAt time.Time
}

// SessionStore sesiones de escaneo en memoria con expiración. Se guardan serializadas
// para que cada Get devuelva una copia independiente.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
	now      func() time.Time
}

// NewSessionStore crea un almacén vacío.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]storedSession), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session *inventory.ScanSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = storedSession{data: data, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*inventory.ScanSession, error) {
	s.mu.Lock()
	stored, ok := s.sessions[id]
	if ok && !s.now().Before(stored.expiresAt) {
		delete(s.sessions, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var session inventory.ScanSession
	if err := json.Unmarshal(stored.data, &session); err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
