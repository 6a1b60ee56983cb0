package s3

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps staged media in process when object storage is disabled.
// Session archiving is a no-op.
type MemoryStore struct {
	mu    sync.Mutex
	media map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{media: make(map[string][]byte)}
}

func (m *MemoryStore) ArchiveSession(context.Context, int64, string, int, string) error {
	return nil
}

func (m *MemoryStore) PutMedia(_ context.Context, userID int64, _ string, data []byte) (string, error) {
	key := "media/" + strconv.FormatInt(userID, 10) + "/" + uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.media[key] = append([]byte(nil), data...)
	return key, nil
}

func (m *MemoryStore) GetMedia(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.media[key]
	if !ok {
		return nil, fmt.Errorf("media %s not found", key)
	}
	return data, nil
}

func (m *MemoryStore) DeleteMedia(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.media, key)
	return nil
}
