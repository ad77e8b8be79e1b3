package proto

import (
	"bytes"
	"encoding/json"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeCreate              = "create"
	InboundTypeJoin                = "join"
	InboundTypeMessage             = "message"
	InboundTypeGetUsers            = "getUsers"
	InboundTypeRoomOwner           = "roomOwner"
	InboundTypePreviousRoomMessage = "getPreviousRoomMessage"
	InboundTypeResetMessage        = "resetMessage"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventCreate                 = "create"
	EventJoin                   = "join"
	EventPreviousMessages       = "previousMessages"
	EventUsersList              = "usersList"
	EventSelection              = "NumberSelectedUser"
	EventMessage                = "message"
	EventRoomOwnerName          = "roomOwnerName"
	EventPreviousMessagesOfRoom = "previousMessagesOfRoom"
	EventResetMessage           = "resetMessage"
)

// JoinData is the payload of create and join.
type JoinData struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// DecodeString reads a payload that is either a bare JSON string or an object
// holding the value under key. Absent or null data yields "".
func DecodeString(raw json.RawMessage, key string) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	v, ok := obj[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return "", nil
	}
	if err := json.Unmarshal(v, &s); err != nil {
		return "", err
	}
	return s, nil
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Entry is a log line on the wire: [sender, text].
type Entry [2]string

// User is a room member on the wire.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// StatusData answers with a bare status, optionally with a reason.
type StatusData struct {
	Status int    `json:"status"`
	Msg    string `json:"msg,omitempty"`
}

// CreateData answers a create request.
type CreateData struct {
	Status       int    `json:"status"`
	Msg          string `json:"msg"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// JoinAnnouncement answers a failed join or announces a successful one.
type JoinAnnouncement struct {
	Status       int    `json:"status"`
	Msg          string `json:"msg"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// UsersListData is the roster and log of a room.
type UsersListData struct {
	Status   int     `json:"status"`
	Room     string  `json:"room"`
	Users    []User  `json:"users"`
	Messages []Entry `json:"messages"`
}

// SelectionData lists the usernames currently selected in a room.
type SelectionData struct {
	Status int      `json:"status"`
	Data   []string `json:"data"`
}

// RoomOwnerData answers an owner query. OwnerUserName is null for unknown rooms.
type RoomOwnerData struct {
	Status        int     `json:"status"`
	OwnerUserName *string `json:"ownerUserName"`
}

// RoomHistoryData mirrors a room's log to its members.
type RoomHistoryData struct {
	Status           int     `json:"status"`
	PreviousMessages []Entry `json:"previousMessages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
