package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomsession-server/internal/proto"
)

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to create the room with")
	room := flag.String("room", fmt.Sprintf("smoke-%d", time.Now().UnixNano()), "room name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", msgType, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", msgType, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeCreate, proto.JoinData{Room: *room, Username: *user}); err != nil {
		return err
	}

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if f.Error != nil {
			return fmt.Errorf("server error %s: %s", f.Error.Code, f.Error.Msg)
		}
		fmt.Printf("event=%s data=%s\n", f.Event, f.Data)

		switch f.Event {
		case proto.EventCreate:
			var created proto.CreateData
			if err := json.Unmarshal(f.Data, &created); err != nil {
				return fmt.Errorf("unmarshal create: %w", err)
			}
			if created.Status != 200 {
				return fmt.Errorf("create failed: %s", created.Msg)
			}
			if err := send(proto.InboundTypeMessage, *text); err != nil {
				return err
			}
		case proto.EventMessage:
			var entry proto.Entry
			if err := json.Unmarshal(f.Data, &entry); err != nil {
				return fmt.Errorf("unmarshal message: %w", err)
			}
			if entry[0] != *user || entry[1] != *text {
				return fmt.Errorf("unexpected echo %v", entry)
			}
			fmt.Println("smoke test passed")
			return nil
		}
	}
}
