package domain

import (
	"sync"

	"github.com/samber/lo"
)

type RoomID string

const (
	DefaultDocument = "// start code here"
	DefaultLanguage = "python3"
)

// Room is one collaborative document and its live membership.
// A Room never persists: it is created on first join and destroyed
// by the registry the moment its member set becomes empty.
//
// All mutating methods take the room's own lock, so concurrent writers
// to the same room are serialized without blocking unrelated rooms.
type Room struct {
	ID RoomID

	mu         sync.Mutex
	members    map[string]struct{}
	document   string
	language   string
	lastOutput string
}

// RoomSnapshot is an immutable copy of a room's visible state,
// safe to hand to a joining connection.
type RoomSnapshot struct {
	ID         RoomID
	Members    []string
	Document   string
	Language   string
	LastOutput string
}

func NewRoom(id RoomID) *Room {
	return &Room{
		ID:       id,
		members:  make(map[string]struct{}),
		document: DefaultDocument,
		language: DefaultLanguage,
	}
}

// AddMember claims a membership slot for name. A name maps to at most
// one slot per room, so re-adding an existing name is a no-op.
func (r *Room) AddMember(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[name] = struct{}{}
}

// RemoveMember releases the slot for name and reports how many members remain.
func (r *Room) RemoveMember(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, name)
	return len(r.members)
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Members returns the current member names. Order is unspecified.
func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Keys(r.members)
}

// SetDocument applies a last-write-wins edit and reports whether
// the stored text actually changed.
func (r *Room) SetDocument(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.document == text {
		return false
	}
	r.document = text
	return true
}

func (r *Room) SetLanguage(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.language = tag
}

func (r *Room) SetLastOutput(output string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastOutput = output
}

func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSnapshot{
		ID:         r.ID,
		Members:    lo.Keys(r.members),
		Document:   r.document,
		Language:   r.language,
		LastOutput: r.lastOutput,
	}
}
