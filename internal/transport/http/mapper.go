package http

import (
	"encoding/json"

	"github.com/vovakirdan/roomsession-server/internal/core"
	"github.com/vovakirdan/roomsession-server/internal/proto"
)

const (
	errCodeInvalidMessage = "invalid_message"
	errCodeRateLimited    = "rate_limited"
)

// inboundToCommand maps a client frame to a core command. Malformed frames
// produce a protocol error for the sender and never end the connection.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeCreate, proto.InboundTypeJoin:
		var join proto.JoinData
		if len(inbound.Data) > 0 {
			if err := json.Unmarshal(inbound.Data, &join); err != nil {
				return nil, invalidData(inbound.Type)
			}
		}
		kind := core.CommandJoinRoom
		if inbound.Type == proto.InboundTypeCreate {
			kind = core.CommandCreateRoom
		}
		return &core.Command{Kind: kind, Room: join.Room, Username: join.Username}, nil
	case proto.InboundTypeMessage:
		text, err := proto.DecodeString(inbound.Data, "text")
		if err != nil {
			return nil, invalidData(inbound.Type)
		}
		return &core.Command{Kind: core.CommandSendRoomMessage, Text: text}, nil
	case proto.InboundTypeGetUsers, proto.InboundTypeRoomOwner,
		proto.InboundTypePreviousRoomMessage, proto.InboundTypeResetMessage:
		room, err := proto.DecodeString(inbound.Data, "room")
		if err != nil {
			return nil, invalidData(inbound.Type)
		}
		return &core.Command{Kind: roomQueryKinds[inbound.Type], Room: room}, nil
	default:
		return nil, &proto.Error{Code: errCodeInvalidMessage, Msg: "unknown message type"}
	}
}

var roomQueryKinds = map[string]core.CommandKind{
	proto.InboundTypeGetUsers:            core.CommandGetUsers,
	proto.InboundTypeRoomOwner:           core.CommandGetOwner,
	proto.InboundTypePreviousRoomMessage: core.CommandGetHistory,
	proto.InboundTypeResetMessage:        core.CommandResetHistory,
}

func invalidData(msgType string) *proto.Error {
	return &proto.Error{Code: errCodeInvalidMessage, Msg: "invalid data for " + msgType}
}

// outboundFromEvent renders a core event. Failed events keep their status
// payload and also carry the error code in the envelope.
func outboundFromEvent(event *core.Event) proto.Outbound {
	out := eventPayload(event)
	if event.Error != nil && out.Error == nil {
		out.Error = &proto.Error{Code: event.Error.Code, Msg: event.Error.Message}
	}
	return out
}

func eventPayload(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventCreate:
		return eventFrame(proto.EventCreate, proto.CreateData{
			Status:       event.Status,
			Msg:          event.Msg,
			ConnectionID: event.ConnectionID,
		})
	case core.EventJoin:
		return eventFrame(proto.EventJoin, proto.JoinAnnouncement{
			Status:       event.Status,
			Msg:          event.Msg,
			ConnectionID: event.ConnectionID,
		})
	case core.EventPreviousMessages:
		return eventFrame(proto.EventPreviousMessages, entriesToProto(event.Messages))
	case core.EventUsersList:
		if event.Failed() {
			return eventFrame(proto.EventUsersList, proto.StatusData{Status: event.Status, Msg: event.Msg})
		}
		return eventFrame(proto.EventUsersList, proto.UsersListData{
			Status:   event.Status,
			Room:     event.Room,
			Users:    membersToProto(event.Users),
			Messages: entriesToProto(event.Messages),
		})
	case core.EventSelection:
		selected := event.Selected
		if selected == nil {
			selected = []string{}
		}
		return eventFrame(proto.EventSelection, proto.SelectionData{Status: event.Status, Data: selected})
	case core.EventRoomMessage:
		return eventFrame(proto.EventMessage, proto.Entry{event.Message.Sender, event.Message.Text})
	case core.EventUserLeft:
		return eventFrame(proto.EventMessage, event.Msg)
	case core.EventRoomOwner:
		data := proto.RoomOwnerData{Status: event.Status}
		if event.OwnerKnown {
			owner := event.Owner
			data.OwnerUserName = &owner
		}
		return eventFrame(proto.EventRoomOwnerName, data)
	case core.EventRoomHistory:
		return eventFrame(proto.EventPreviousMessagesOfRoom, proto.RoomHistoryData{
			Status:           event.Status,
			PreviousMessages: entriesToProto(event.Messages),
		})
	case core.EventHistoryReset:
		return eventFrame(proto.EventResetMessage, proto.StatusData{Status: event.Status})
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}

func eventFrame(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func entriesToProto(entries []core.Entry) []proto.Entry {
	out := make([]proto.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, proto.Entry{e.Sender, e.Text})
	}
	return out
}

func membersToProto(members []core.Member) []proto.User {
	out := make([]proto.User, 0, len(members))
	for _, m := range members {
		out = append(out, proto.User{ID: m.ConnectionID, Username: m.Username})
	}
	return out
}
