package domain

// Session binds one live connection to at most one room and display name.
// Room and Name are empty while the connection is merely connected.
type Session struct {
	ConnID string
	Room   RoomID
	Name   string
}

// Joined reports whether the session currently claims a room.
func (s Session) Joined() bool {
	return s.Room != ""
}
