package runtime

import (
	"code-lab/domain"
	"sync"

	"github.com/samber/lo"
)

// RoomRegistry owns the set of live rooms. The registry lock only guards
// the map itself; each room serializes its own mutations, so writers to
// unrelated rooms never contend.
//
// Invariant: a room with zero members is removed from the map in the same
// critical section that emptied it. Callers never observe an orphaned room.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomID]*domain.Room)}
}

// GetOrCreate returns the room for id, creating it with default document
// and language when unknown. Concurrent first-joins of the same id get
// the same *Room.
func (r *RoomRegistry) GetOrCreate(roomID domain.RoomID) *domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		return room
	}
	room := domain.NewRoom(roomID)
	r.rooms[roomID] = room
	return room
}

// AddMember claims a membership slot. It reports false when the room is
// absent, which can happen when a concurrent last-leave deleted the room
// between the caller's GetOrCreate and this call.
func (r *RoomRegistry) AddMember(roomID domain.RoomID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	room.AddMember(name)
	return true
}

// RemoveMember releases name's slot and deletes the room when that
// empties it. It returns the remaining member count and whether the room
// existed at all.
func (r *RoomRegistry) RemoveMember(roomID domain.RoomID, name string) (remaining int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, found := r.rooms[roomID]
	if !found {
		return 0, false
	}
	remaining = room.RemoveMember(name)
	if remaining == 0 {
		delete(r.rooms, roomID)
	}
	return remaining, true
}

// WithRoom runs fn against the room when it exists and reports whether it
// did. Every handler that tolerates late events against a just-emptied
// room goes through here, so the silent-drop semantics live in one place.
func (r *RoomRegistry) WithRoom(roomID domain.RoomID, fn func(*domain.Room)) bool {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	fn(room)
	return true
}

// SetDocument applies a last-write-wins edit. changed is false when the
// text was already current, ok is false when the room is absent.
func (r *RoomRegistry) SetDocument(roomID domain.RoomID, text string) (changed, ok bool) {
	ok = r.WithRoom(roomID, func(room *domain.Room) {
		changed = room.SetDocument(text)
	})
	return changed, ok
}

func (r *RoomRegistry) SetLanguage(roomID domain.RoomID, tag string) bool {
	return r.WithRoom(roomID, func(room *domain.Room) {
		room.SetLanguage(tag)
	})
}

func (r *RoomRegistry) SetLastOutput(roomID domain.RoomID, output string) bool {
	return r.WithRoom(roomID, func(room *domain.Room) {
		room.SetLastOutput(output)
	})
}

func (r *RoomRegistry) Snapshot(roomID domain.RoomID) (snap domain.RoomSnapshot, ok bool) {
	ok = r.WithRoom(roomID, func(room *domain.Room) {
		snap = room.Snapshot()
	})
	return snap, ok
}

func (r *RoomRegistry) Members(roomID domain.RoomID) []string {
	var members []string
	r.WithRoom(roomID, func(room *domain.Room) {
		members = room.Members()
	})
	return members
}

func (r *RoomRegistry) Exists(roomID domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID]
	return ok
}

func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Snapshots returns a copy of every live room's state, for the debug
// endpoint and the tester.
func (r *RoomRegistry) Snapshots() []domain.RoomSnapshot {
	r.mu.RLock()
	rooms := lo.Values(r.rooms)
	r.mu.RUnlock()
	return lo.Map(rooms, func(room *domain.Room, _ int) domain.RoomSnapshot {
		return room.Snapshot()
	})
}
