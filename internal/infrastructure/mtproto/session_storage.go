package mtproto

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/gotd/td/session"
)

// MemorySessionStorage implements session.Storage on a byte slice so the
// session can be exported as a portable token.
type MemorySessionStorage struct {
	mu   sync.Mutex
	data []byte
}

// NewMemorySessionStorage returns storage preloaded with data (may be nil).
func NewMemorySessionStorage(data []byte) *MemorySessionStorage {
	return &MemorySessionStorage{data: data}
}

func (s *MemorySessionStorage) LoadSession(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.data) == 0 {
		return nil, session.ErrNotFound
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemorySessionStorage) StoreSession(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}

// Token encodes the stored session.
func (s *MemorySessionStorage) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.data) == 0 {
		return "", fmt.Errorf("session is empty")
	}
	return base64.URLEncoding.EncodeToString(s.data), nil
}

// DecodeToken reverses Token.
func DecodeToken(token string) ([]byte, error) {
	if token == "" {
		return nil, fmt.Errorf("session token is empty")
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	return data, nil
}
