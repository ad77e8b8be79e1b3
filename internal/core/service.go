package core

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	msgRoomInUse      = "Room is in use"
	msgRoomCreated    = "Room created successfully"
	msgRoomInvalid    = "RoomName is Invalid"
	msgRoomIDRequired = "Room ID required"
)

// RoomView is a read-only summary of an open room.
type RoomView struct {
	Name      string
	Owner     string
	CreatedAt time.Time
	Users     []Member
	Messages  []Entry
	Selected  []string
}

// Service runs the room session protocol: binding connections to rooms,
// maintaining room logs and deciding who receives which event.
//
// Service is not safe for concurrent use. Every call is one unit of work that
// reads state, mutates it and emits events; callers must serialize them (the
// Hub runs them on its event loop).
type Service struct {
	state     *State
	presence  *PresenceBroadcaster
	transport Transport
	log       *zerolog.Logger
}

// NewService creates a service over state that emits through transport.
func NewService(state *State, transport Transport, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		state:     state,
		presence:  NewPresenceBroadcaster(state, transport),
		transport: transport,
		log:       logger,
	}
}

// Create claims room for username and binds connID to it.
// Missing fields abort silently.
func (s *Service) Create(connID, room, username string) error {
	if room == "" || username == "" {
		return ErrBadRequest
	}

	if err := s.state.Rooms.TryClaim(room, username); err != nil {
		s.transport.SendTo(connID, &Event{
			Kind:   EventCreate,
			Status: StatusBadRequest,
			Msg:    msgRoomInUse,
			Room:   room,
			Error:  coreError(ErrCodeRoomInUse, msgRoomInUse),
		})
		return err
	}

	s.bind(connID, room, username)
	s.log.Info().Str("room", room).Str("owner", username).Str("conn_id", connID).Msg("room created")

	s.transport.SendTo(connID, &Event{
		Kind:         EventCreate,
		Status:       StatusOK,
		Msg:          msgRoomCreated,
		Room:         room,
		ConnectionID: connID,
	})
	return nil
}

// Join binds connID to an existing room, then sends the roster to the room,
// the log replay to the joiner and the join announcement to the room.
func (s *Service) Join(connID, room, username string) error {
	if room == "" || username == "" {
		return ErrBadRequest
	}

	if !s.state.Rooms.Exists(room) {
		s.transport.SendTo(connID, &Event{
			Kind:   EventJoin,
			Status: StatusBadRequest,
			Msg:    msgRoomInvalid,
			Room:   room,
			Error:  coreError(ErrCodeRoomNotFound, msgRoomInvalid),
		})
		return ErrRoomNotFound
	}

	s.bind(connID, room, username)
	s.log.Debug().Str("room", room).Str("user", username).Str("conn_id", connID).Msg("joined room")

	s.presence.Broadcast(room)
	s.transport.SendTo(connID, &Event{
		Kind:     EventPreviousMessages,
		Status:   StatusOK,
		Room:     room,
		Messages: s.state.Logs.Entries(room),
	})
	s.transport.BroadcastToRoom(room, &Event{
		Kind:         EventJoin,
		Status:       StatusOK,
		Msg:          fmt.Sprintf("%s has joined the room", username),
		Room:         room,
		User:         username,
		ConnectionID: connID,
	})
	return nil
}

// Disconnect drops connID. The room it left gets a departure notice and the
// new roster; an emptied room is released along with its log.
func (s *Service) Disconnect(connID string) error {
	id, ok := s.state.Conns.Unbind(connID)
	if !ok {
		return ErrNotBound
	}
	s.leave(id)
	return nil
}

// SendMessage appends text to the sender's room log, then broadcasts the
// selection set followed by the message itself.
func (s *Service) SendMessage(connID, text string) error {
	id, ok := s.state.Conns.Lookup(connID)
	if !ok {
		return ErrNotBound
	}

	s.state.Logs.Append(id.Room, id.Username, text)
	s.log.Debug().Str("room", id.Room).Str("user", id.Username).Int("len", len(text)).Msg("message appended")

	s.transport.BroadcastToRoom(id.Room, &Event{
		Kind:     EventSelection,
		Status:   StatusOK,
		Room:     id.Room,
		Selected: s.state.Logs.SelectionSet(id.Room),
	})
	s.transport.BroadcastToRoom(id.Room, &Event{
		Kind:    EventRoomMessage,
		Status:  StatusOK,
		Room:    id.Room,
		User:    id.Username,
		Message: Entry{Sender: id.Username, Text: text},
	})
	return nil
}

// GetUsers answers the requester with the roster and log of room.
func (s *Service) GetUsers(connID, room string) error {
	if room == "" {
		return s.rejectBlankRoom(connID)
	}
	s.transport.SendTo(connID, usersListEvent(s.presence.Snapshot(room)))
	return nil
}

// GetOwner answers the requester with the owner of room. Unknown rooms are
// answered with OwnerKnown unset, not with a failure.
func (s *Service) GetOwner(connID, room string) error {
	if room == "" {
		return s.rejectBlankRoom(connID)
	}
	owner, known := s.state.Rooms.OwnerOf(room)
	s.transport.SendTo(connID, &Event{
		Kind:       EventRoomOwner,
		Status:     StatusOK,
		Room:       room,
		Owner:      owner,
		OwnerKnown: known,
	})
	return nil
}

// GetHistory broadcasts the log of room to all of its members, whether or not
// the requester is one of them.
func (s *Service) GetHistory(connID, room string) error {
	if room == "" {
		return s.rejectBlankRoom(connID)
	}
	s.transport.BroadcastToRoom(room, &Event{
		Kind:     EventRoomHistory,
		Status:   StatusOK,
		Room:     room,
		Messages: s.state.Logs.Entries(room),
	})
	return nil
}

// ResetHistory clears the log of room and acknowledges it to the room.
// Membership and ownership are left as they are.
func (s *Service) ResetHistory(connID, room string) error {
	if room == "" {
		return s.rejectBlankRoom(connID)
	}
	s.state.Logs.Clear(room)
	s.log.Info().Str("room", room).Str("conn_id", connID).Msg("room history reset")
	s.transport.BroadcastToRoom(room, &Event{
		Kind:   EventHistoryReset,
		Status: StatusOK,
		Room:   room,
	})
	return nil
}

// Handle dispatches a client command to the matching operation.
func (s *Service) Handle(connID string, cmd *Command) error {
	switch cmd.Kind {
	case CommandCreateRoom:
		return s.Create(connID, cmd.Room, cmd.Username)
	case CommandJoinRoom:
		return s.Join(connID, cmd.Room, cmd.Username)
	case CommandSendRoomMessage:
		return s.SendMessage(connID, cmd.Text)
	case CommandGetUsers:
		return s.GetUsers(connID, cmd.Room)
	case CommandGetOwner:
		return s.GetOwner(connID, cmd.Room)
	case CommandGetHistory:
		return s.GetHistory(connID, cmd.Room)
	case CommandResetHistory:
		return s.ResetHistory(connID, cmd.Room)
	default:
		return fmt.Errorf("%w: unknown command kind %d", ErrBadRequest, cmd.Kind)
	}
}

// Room returns a summary of an open room.
func (s *Service) Room(name string) (RoomView, bool) {
	r, ok := s.state.Rooms.Get(name)
	if !ok {
		return RoomView{}, false
	}
	return s.view(r), true
}

// Rooms returns summaries of all open rooms sorted by name.
func (s *Service) Rooms() []RoomView {
	rooms := s.state.Rooms.List()
	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, s.view(r))
	}
	return out
}

func (s *Service) view(r Room) RoomView {
	return RoomView{
		Name:      r.Name,
		Owner:     r.Owner,
		CreatedAt: r.CreatedAt,
		Users:     s.state.Conns.MembersOf(r.Name),
		Messages:  s.state.Logs.Entries(r.Name),
		Selected:  s.state.Logs.SelectionSet(r.Name),
	}
}

// bind attaches connID to room. A connection already bound elsewhere leaves
// its previous room first so that room's roster and teardown stay correct.
func (s *Service) bind(connID, room, username string) {
	if prev, ok := s.state.Conns.Lookup(connID); ok && prev.Room != room {
		s.state.Conns.Unbind(connID)
		s.leave(prev)
	}
	s.state.Conns.Bind(connID, username, room)
}

// leave runs the departure sequence for an identity that was just unbound.
// The roster goes out before the emptiness check.
func (s *Service) leave(id Identity) {
	s.log.Debug().Str("room", id.Room).Str("user", id.Username).Msg("left room")

	s.transport.BroadcastToRoom(id.Room, &Event{
		Kind:   EventUserLeft,
		Status: StatusOK,
		Msg:    fmt.Sprintf("%s has left the room", id.Username),
		Room:   id.Room,
		User:   id.Username,
	})
	s.presence.Broadcast(id.Room)

	if len(s.state.Conns.MembersOf(id.Room)) == 0 {
		s.state.Rooms.Release(id.Room)
		s.state.Logs.Clear(id.Room)
		s.log.Info().Str("room", id.Room).Msg("room is empty and released")
	}
}

func (s *Service) rejectBlankRoom(connID string) error {
	s.transport.SendTo(connID, &Event{
		Kind:   EventUsersList,
		Status: StatusBadRequest,
		Msg:    msgRoomIDRequired,
		Error:  coreError(ErrCodeRoomIDRequired, msgRoomIDRequired),
	})
	return ErrRoomIDRequired
}
