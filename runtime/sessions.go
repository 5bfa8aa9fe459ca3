package runtime

import (
	"code-lab/domain"
	"sync"
)

// SessionRegistry owns the connection -> (room, name) binding.
// It is a leaf: it never touches rooms or sinks, and every operation
// is an idempotent no-op on unknown connection ids.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]domain.Session)}
}

// Connect creates an unbound session for a freshly accepted connection.
func (r *SessionRegistry) Connect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[connID]; !ok {
		r.sessions[connID] = domain.Session{ConnID: connID}
	}
}

// Bind replaces any prior binding for connID and returns the previous
// one so the caller can clean it up.
func (r *SessionRegistry) Bind(connID string, roomID domain.RoomID, name string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, had := r.sessions[connID]
	r.sessions[connID] = domain.Session{ConnID: connID, Room: roomID, Name: name}
	return prev, had
}

// Unbind removes and returns the binding.
func (r *SessionRegistry) Unbind(connID string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, had := r.sessions[connID]
	delete(r.sessions, connID)
	return prev, had
}

func (r *SessionRegistry) Lookup(connID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	return s, ok
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
