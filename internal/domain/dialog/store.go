package dialog

import (
	"sync"
	"time"
)

// Store keeps at most one State per user. Step and UpdatedAt of a stored
// State change only through Touch.
type Store struct {
	mu     sync.Mutex
	states map[int64]*State
}

func NewStore() *Store {
	return &Store{states: make(map[int64]*State)}
}

func (s *Store) Get(userID int64) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	return st, ok
}

func (s *Store) Put(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.UserID] = st
}

// Delete removes and returns the user's state.
func (s *Store) Delete(userID int64) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if ok {
		delete(s.states, userID)
	}
	return st, ok
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Idle lists users whose state was last touched before cutoff.
func (s *Store) Idle(cutoff time.Time) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for id, st := range s.states {
		if st.UpdatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Touch records activity on st and moves it to step when step is set.
func (s *Store) Touch(st *State, step Step, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step != "" {
		st.Step = step
	}
	st.UpdatedAt = at
}

// IdleSince reports whether st was last touched before cutoff.
func (s *Store) IdleSince(st *State, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return st.UpdatedAt.Before(cutoff)
}

// Peek returns the kind and step of the user's state.
func (s *Store) Peek(userID int64) (Kind, Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if !ok {
		return "", "", false
	}
	return st.Kind, st.Step, true
}
