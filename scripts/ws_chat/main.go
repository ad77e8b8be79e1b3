package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

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
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "general", "room to enter")
	create := flag.Bool("create", false, "create the room instead of joining it")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	enter := proto.InboundTypeJoin
	if *create {
		enter = proto.InboundTypeCreate
	}
	if err := send(ctx, conn, enter, proto.JoinData{Room: *room, Username: *user}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type messages and press Enter to send. Commands: /users /owner /history /reset /clear. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *room)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, msgType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msgType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		if f.Error != nil {
			fmt.Printf("! %s: %s\n", f.Error.Code, f.Error.Msg)
			continue
		}
		printEvent(f)
	}
}

func printEvent(f frame) {
	switch f.Event {
	case proto.EventMessage:
		var entry proto.Entry
		if err := json.Unmarshal(f.Data, &entry); err == nil {
			fmt.Printf("%s: %s\n", entry[0], entry[1])
			return
		}
		var notice string
		if err := json.Unmarshal(f.Data, &notice); err == nil {
			fmt.Printf("* %s\n", notice)
			return
		}
	case proto.EventSelection:
		var sel proto.SelectionData
		if err := json.Unmarshal(f.Data, &sel); err == nil {
			fmt.Printf("* selected: %s\n", strings.Join(sel.Data, ", "))
			return
		}
	case proto.EventUsersList:
		var users proto.UsersListData
		if err := json.Unmarshal(f.Data, &users); err == nil && users.Status == 200 {
			names := make([]string, 0, len(users.Users))
			for _, u := range users.Users {
				names = append(names, u.Username)
			}
			fmt.Printf("* in %s: %s\n", users.Room, strings.Join(names, ", "))
			return
		}
	case proto.EventRoomOwnerName:
		var owner proto.RoomOwnerData
		if err := json.Unmarshal(f.Data, &owner); err == nil {
			if owner.OwnerUserName == nil {
				fmt.Println("* owner: unknown")
			} else {
				fmt.Printf("* owner: %s\n", *owner.OwnerUserName)
			}
			return
		}
	}
	fmt.Printf("event=%s data=%s\n", f.Event, f.Data)
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	commands := map[string]string{
		"/users":   proto.InboundTypeGetUsers,
		"/owner":   proto.InboundTypeRoomOwner,
		"/history": proto.InboundTypePreviousRoomMessage,
		"/reset":   proto.InboundTypeResetMessage,
	}

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var err error
			switch {
			case text == "/clear":
				// An empty message withdraws this user's selection.
				err = send(ctx, conn, proto.InboundTypeMessage, "")
			case commands[text] != "":
				err = send(ctx, conn, commands[text], room)
			default:
				err = send(ctx, conn, proto.InboundTypeMessage, text)
			}
			if err != nil {
				log.Printf("%v", err)
				return
			}
		}
	}
}
