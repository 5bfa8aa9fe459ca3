package runtime

import (
	"code-lab/domain"
	"code-lab/domain/event"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopSink struct{}

func (nopSink) Consume(ctx context.Context, e event.Event) error {
	return nil
}

func TestRegistry_OneRoomOneConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomID := domain.RoomID("r1")
	sink := nopSink{}

	// Given no connection is registered
	req.Nil(registry.RoomSinks(roomID, ""))

	// When a connection registers and enters a room
	registry.Register(connID, sink)
	registry.Enter(connID, roomID)

	// Then it is resolvable both directly and through the room
	got, ok := registry.SinkFor(connID)
	req.True(ok)
	req.Equal(sink, got)
	req.Len(registry.RoomSinks(roomID, ""), 1)
}

func TestRegistry_RoomSinksExcludesSender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sender := uuid.NewString()
	other := uuid.NewString()
	roomID := domain.RoomID("r1")

	registry.Register(sender, nopSink{})
	registry.Register(other, nopSink{})
	registry.Enter(sender, roomID)
	registry.Enter(other, roomID)

	req.Len(registry.RoomSinks(roomID, ""), 2)
	req.Len(registry.RoomSinks(roomID, sender), 1)
}

func TestRegistry_ExitCleansEmptyRoom(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomID := domain.RoomID("r1")

	// Given a connection inside a room
	registry.Register(connID, nopSink{})
	registry.Enter(connID, roomID)

	// When it exits and deregisters
	registry.Exit(connID, roomID)
	registry.Deregister(connID)

	// Then no sink is resolvable and the room entry is gone
	_, ok := registry.SinkFor(connID)
	req.False(ok)
	req.Nil(registry.RoomSinks(roomID, ""))
}

func TestRegistry_ExitUnknownRoomIsNoop(t *testing.T) {
	registry := NewRegistry()
	registry.Exit(uuid.NewString(), "ghost")
}
