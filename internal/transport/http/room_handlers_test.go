package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/vovakirdan/roomsession-server/internal/proto"
)

func TestRoomHandlersReflectLiveRooms(t *testing.T) {
	ts := startTestServer(t, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, ts)
	sendFrame(ctx, t, conn, proto.InboundTypeCreate, proto.JoinData{Room: "lobby", Username: "alice"})
	nextFrame(ctx, t, conn, proto.EventCreate)
	sendFrame(ctx, t, conn, proto.InboundTypeMessage, "3")
	nextFrame(ctx, t, conn, proto.EventSelection)
	nextFrame(ctx, t, conn, proto.EventMessage)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	var rooms []RoomSummary
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if len(rooms) != 1 || rooms[0].Name != "lobby" || rooms[0].Owner != "alice" || rooms[0].Members != 1 {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
	if rooms[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set: %+v", rooms[0])
	}

	resp, err = ts.Client().Get(ts.URL + "/api/rooms/lobby")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	var detail RoomDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode room: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if len(detail.Users) != 1 || len(detail.Messages) != 1 || len(detail.Selected) != 1 || detail.Selected[0] != "alice" {
		t.Fatalf("unexpected room detail: %+v", detail)
	}
}

func TestRoomHandlersUnknownRoom(t *testing.T) {
	ts := startTestServer(t, testConfig())

	resp, err := ts.Client().Get(ts.URL + "/api/rooms/ghost")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "room not found" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}
