// Package session keeps the signed-in user record in a browser-profile
// key-value storage and decides which pages that record may open.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"crudtask/internal/models"
)

// Storage keys of the signed-in user record and the login flag.
const (
	KeyUser       = "user"
	KeyIsLoggedIn = "isLoggedIn"
)

// Storage is the persistent key-value area owned by one browser profile.
type Storage interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

// Manager reads and writes the session record through a Storage.
type Manager struct {
	storage Storage
	logger  *slog.Logger
}

// NewManager wraps storage.
func NewManager(storage Storage, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{storage: storage, logger: logger}
}

// Load returns the stored session or nil when there is none. A record that
// does not decode is cleared and reported as absent.
func (m *Manager) Load(ctx context.Context) (*models.Session, error) {
	raw, ok, err := m.storage.Read(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.UserID == "" {
		m.logger.Warn("discarding malformed session record", slog.Any("error", err))
		if err := m.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &s, nil
}

// Save stores s as the active session.
func (m *Manager) Save(ctx context.Context, s models.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.storage.Write(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := m.storage.Write(ctx, KeyIsLoggedIn, "true"); err != nil {
		return fmt.Errorf("write login flag: %w", err)
	}
	return nil
}

// Clear removes the session record and the login flag.
func (m *Manager) Clear(ctx context.Context) error {
	for _, key := range []string{KeyUser, KeyIsLoggedIn} {
		if err := m.storage.Clear(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// MemoryStorage is a Storage kept in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (s *MemoryStorage) Read(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStorage) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
