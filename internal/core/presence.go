package core

// Presence is the roster and log of a room at one point in time.
type Presence struct {
	Room     string
	Users    []Member
	Messages []Entry
}

// PresenceBroadcaster emits a room's roster to its members. It only reads state.
type PresenceBroadcaster struct {
	conns     *ConnectionRegistry
	logs      *MessageLog
	transport Transport
}

// NewPresenceBroadcaster builds a broadcaster over state.
func NewPresenceBroadcaster(state *State, transport Transport) *PresenceBroadcaster {
	return &PresenceBroadcaster{
		conns:     state.Conns,
		logs:      state.Logs,
		transport: transport,
	}
}

// Snapshot computes the current presence of room.
func (p *PresenceBroadcaster) Snapshot(room string) Presence {
	return Presence{
		Room:     room,
		Users:    p.conns.MembersOf(room),
		Messages: p.logs.Entries(room),
	}
}

// Broadcast sends the presence of room to all of its members.
func (p *PresenceBroadcaster) Broadcast(room string) {
	p.transport.BroadcastToRoom(room, usersListEvent(p.Snapshot(room)))
}

func usersListEvent(pr Presence) *Event {
	return &Event{
		Kind:     EventUsersList,
		Status:   StatusOK,
		Room:     pr.Room,
		Users:    pr.Users,
		Messages: pr.Messages,
	}
}
