package runtime

import (
	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
	"log/slog"
	"sync"
	"time"
)

type typingKey struct {
	room domain.RoomID
	name string
}

type typingEntry struct {
	gen   uint64
	timer *time.Timer
}

// TypingTracker holds the ephemeral "who is typing" markers. One live
// timer exists per (room, name); refreshing a marker cancels the prior
// timer before installing a new one, so a stale expiry can never clear
// a newer marker.
//
// The generation counter closes the AfterFunc race: a timer that fires
// after it was replaced finds a different generation under the key and
// gives up.
type TypingTracker struct {
	log        *slog.Logger
	dispatcher contract.IDispatcher
	window     time.Duration

	mu      sync.Mutex
	nextGen uint64
	entries map[typingKey]typingEntry
}

func NewTypingTracker(log *slog.Logger, dispatcher contract.IDispatcher, window time.Duration) *TypingTracker {
	return &TypingTracker{
		log:        log,
		dispatcher: dispatcher,
		window:     window,
		entries:    make(map[typingKey]typingEntry),
	}
}

// MarkTyping records or refreshes the marker for (roomID, name) and
// schedules its expiry.
func (t *TypingTracker) MarkTyping(roomID domain.RoomID, name string) {
	key := typingKey{room: roomID, name: name}

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.entries[key]; ok {
		prev.timer.Stop()
	}
	t.nextGen++
	gen := t.nextGen
	timer := time.AfterFunc(t.window, func() {
		t.expire(key, gen)
	})
	t.entries[key] = typingEntry{gen: gen, timer: timer}
}

func (t *TypingTracker) expire(key typingKey, gen uint64) {
	t.mu.Lock()
	entry, ok := t.entries[key]
	if !ok || entry.gen != gen {
		// Superseded by a newer marker or already cleared.
		t.mu.Unlock()
		return
	}
	delete(t.entries, key)
	t.mu.Unlock()

	t.dispatcher.ToRoom(key.room, event.TypingCleared{UserName: key.name})
}

// Clear stops and removes the marker for (roomID, name) without emitting
// anything. Called synchronously from leave/disconnect handling so no
// timer outlives its owning connection.
func (t *TypingTracker) Clear(roomID domain.RoomID, name string) {
	key := typingKey{room: roomID, name: name}

	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[key]; ok {
		entry.timer.Stop()
		delete(t.entries, key)
	}
}

// Pending reports whether a live marker exists for (roomID, name).
func (t *TypingTracker) Pending(roomID domain.RoomID, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[typingKey{room: roomID, name: name}]
	return ok
}
