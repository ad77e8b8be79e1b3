package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom claims a room and binds the client to it.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom binds the client to an existing room.
	CommandJoinRoom
	// CommandSendRoomMessage appends to the client's room log.
	CommandSendRoomMessage
	// CommandGetUsers asks for a room's roster and log.
	CommandGetUsers
	// CommandGetOwner asks who created a room.
	CommandGetOwner
	// CommandGetHistory mirrors a room's log to its members.
	CommandGetHistory
	// CommandResetHistory clears a room's log.
	CommandResetHistory
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Room     string
	Username string
	Text     string
}
