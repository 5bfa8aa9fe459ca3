package runtime

import (
	"code-lab/contract"
	"code-lab/domain"
	"sync"
)

type Set map[string]struct{}

// Registry resolves broadcast recipients. It tracks every connection's
// sink and which connections are currently inside each room.
type Registry struct {
	mu        sync.RWMutex
	sinks     map[string]contract.EventSink // connID -> sink
	roomConns map[domain.RoomID]Set         // roomID -> connIDs
}

var _ contract.IRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		sinks:     make(map[string]contract.EventSink),
		roomConns: make(map[domain.RoomID]Set),
	}
}

// Register installs the connection's sink. Called once per accepted
// connection, before any command for it is handled.
func (r *Registry) Register(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[connID] = sink
}

// Deregister drops the sink. Room membership is expected to have been
// cleared through Exit by the lifecycle handler already.
func (r *Registry) Deregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, connID)
}

// Enter assigns the connection to a room, initializing the room entry on
// the fly.
func (r *Registry) Enter(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roomConns[roomID]; !ok {
		r.roomConns[roomID] = make(Set)
	}
	r.roomConns[roomID][connID] = struct{}{}
}

// Exit removes the connection from the room, cleaning up empty sets so
// abandoned rooms don't leak entries.
func (r *Registry) Exit(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns, ok := r.roomConns[roomID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.roomConns, roomID)
	}
}

func (r *Registry) SinkFor(connID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[connID]
	return sink, ok
}

// RoomSinks resolves the active sinks for a room, skipping exceptConnID
// when non-empty. Returns nil when the room has no connected members.
func (r *Registry) RoomSinks(roomID domain.RoomID, exceptConnID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns, ok := r.roomConns[roomID]
	if !ok {
		return nil
	}
	var active []contract.EventSink
	for connID := range conns {
		if connID == exceptConnID {
			continue
		}
		if sink, exists := r.sinks[connID]; exists {
			active = append(active, sink)
		}
	}
	return active
}
