package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_Defaults(t *testing.T) {
	req := require.New(t)

	room := NewRoom("r1")

	snap := room.Snapshot()
	req.Equal(RoomID("r1"), snap.ID)
	req.Empty(snap.Members)
	req.Equal(DefaultDocument, snap.Document)
	req.Equal(DefaultLanguage, snap.Language)
	req.Empty(snap.LastOutput)
}

func TestRoom_MembershipSlots(t *testing.T) {
	req := require.New(t)
	room := NewRoom("r1")

	// Given two members, one of them added twice
	room.AddMember("alice")
	room.AddMember("bob")
	room.AddMember("alice")

	// Then a name claims at most one slot
	req.Equal(2, room.MemberCount())
	req.ElementsMatch([]string{"alice", "bob"}, room.Members())

	// When members leave
	remaining := room.RemoveMember("alice")
	req.Equal(1, remaining)
	remaining = room.RemoveMember("bob")
	req.Equal(0, remaining)
}

func TestRoom_SetDocument_LastWriteWins(t *testing.T) {
	req := require.New(t)
	room := NewRoom("r1")

	// When a new text is applied
	req.True(room.SetDocument("print(1)"))

	// Then re-applying the identical text reports no change
	req.False(room.SetDocument("print(1)"))

	// And a later write unconditionally replaces it
	req.True(room.SetDocument("print(2)"))
	req.Equal("print(2)", room.Snapshot().Document)
}

func TestRoom_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	room := NewRoom("r1")
	room.AddMember("alice")

	snap := room.Snapshot()
	snap.Members[0] = "mallory"

	req.ElementsMatch([]string{"alice"}, room.Members())
}
