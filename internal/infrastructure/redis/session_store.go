package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ScanSessionRepository = (*SessionStore)(nil)

const sessionKeyPrefix = "ledger:scan-session:"

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// SessionStore guarda las sesiones de escaneo como JSON con expiración.
type SessionStore struct {
	client *goredis.Client
}

// NewSessionStore construye el almacén sobre un cliente existente.
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

// Save sobrescribe la sesión y renueva su TTL.
func (s *SessionStore) Save(ctx context.Context, session *inventory.ScanSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	return nil
}

// Get devuelve nil, nil si la sesión no existe o expiró.
func (s *SessionStore) Get(ctx context.Context, id string) (*inventory.ScanSession, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	var session inventory.ScanSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decodificar sesión: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("eliminar sesión: %w", err)
	}
	return nil
}
