package bulk

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle identifies a running task so its owner can stop it.
type Handle struct {
	ID        string
	UserID    int64
	Kind      Kind
	StartedAt time.Time
	cancel    context.CancelFunc
}

func newHandle(userID int64, kind Kind, cancel context.CancelFunc) *Handle {
	return &Handle{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		StartedAt: time.Now(),
		cancel:    cancel,
	}
}

// Registry maps a user to their running task.
type Registry struct {
	mu    sync.Mutex
	tasks map[int64]*Handle
}

func NewRegistry() *Registry {
	return &Registry{tasks: make(map[int64]*Handle)}
}

// Register records a task for userID. An existing entry is overwritten and
// can no longer be stopped through the registry.
func (r *Registry) Register(userID int64, kind Kind, cancel context.CancelFunc) *Handle {
	h := newHandle(userID, kind, cancel)

	r.mu.Lock()
	r.tasks[userID] = h
	r.mu.Unlock()
	return h
}

// TryRegister records a task only if the user has none.
func (r *Registry) TryRegister(userID int64, kind Kind, cancel context.CancelFunc) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[userID]; exists {
		return nil, false
	}
	h := newHandle(userID, kind, cancel)
	r.tasks[userID] = h
	return h, true
}

func (r *Registry) Get(userID int64) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.tasks[userID]
	return h, ok
}

// Stop cancels and removes the user's task. The entry is gone when Stop
// returns; a remote call already in flight may still complete.
func (r *Registry) Stop(userID int64) (*Handle, bool) {
	r.mu.Lock()
	h, ok := r.tasks[userID]
	if ok {
		delete(r.tasks, userID)
	}
	r.mu.Unlock()

	if ok && h.cancel != nil {
		h.cancel()
	}
	return h, ok
}

// Remove deletes the entry only if it still belongs to task id.
func (r *Registry) Remove(userID int64, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.tasks[userID]; ok && h.ID == id {
		delete(r.tasks, userID)
	}
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
