package core

// State is the in-memory container behind a Service. It is not safe for
// concurrent use; the Hub owns it and touches it from a single goroutine.
type State struct {
	Conns *ConnectionRegistry
	Rooms *RoomDirectory
	Logs  *MessageLog
}

// NewState returns an empty state container.
func NewState() *State {
	return &State{
		Conns: NewConnectionRegistry(),
		Rooms: NewRoomDirectory(),
		Logs:  NewMessageLog(),
	}
}

// Transport delivers events to connections. BroadcastToRoom reaches every
// connection currently bound to room.
type Transport interface {
	SendTo(connID string, ev *Event)
	BroadcastToRoom(room string, ev *Event)
}
