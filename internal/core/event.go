package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventCreate answers a create request.
	EventCreate EventKind = iota
	// EventJoin answers a failed join, or announces a successful one to the room.
	EventJoin
	// EventPreviousMessages replays the room log to a new member.
	EventPreviousMessages
	// EventUsersList carries the room roster and log.
	EventUsersList
	// EventSelection carries the room's selection set.
	EventSelection
	// EventRoomMessage delivers a chat message to the room.
	EventRoomMessage
	// EventUserLeft is the departure notice sent when a member disconnects.
	EventUserLeft
	// EventRoomOwner answers an owner query.
	EventRoomOwner
	// EventRoomHistory mirrors the room log to all members.
	EventRoomHistory
	// EventHistoryReset acknowledges a log reset.
	EventHistoryReset
)

var eventKindNames = [...]string{
	EventCreate:           "create",
	EventJoin:             "join",
	EventPreviousMessages: "previous_messages",
	EventUsersList:        "users_list",
	EventSelection:        "selection",
	EventRoomMessage:      "message",
	EventUserLeft:         "user_left",
	EventRoomOwner:        "room_owner",
	EventRoomHistory:      "room_history",
	EventHistoryReset:     "history_reset",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind         EventKind
	Status       int
	Msg          string
	Room         string
	ConnectionID string
	User         string
	Message      Entry
	Messages     []Entry
	Users        []Member
	Selected     []string
	Owner        string
	OwnerKnown   bool
	Error        *CoreError // set when Status is StatusBadRequest
}

// Failed reports whether the event answers a rejected request.
func (e *Event) Failed() bool {
	return e.Status != StatusOK
}
