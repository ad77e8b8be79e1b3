package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestHubCreateJoinMessageAndLeave(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	alice := NewClient("a", 0)
	bob := NewClient("b", 0)

	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby", Username: "alice"}
	created := mustEvent(t, alice.Events, EventCreate)
	if created.Status != StatusOK || created.ConnectionID != "a" {
		t.Fatalf("unexpected create event: %+v", created)
	}

	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby", Username: "bob"}
	roster := mustEvent(t, bob.Events, EventUsersList)
	if len(roster.Users) != 2 {
		t.Fatalf("expected 2 members, got %+v", roster.Users)
	}
	replay := mustEvent(t, bob.Events, EventPreviousMessages)
	if len(replay.Messages) != 0 {
		t.Fatalf("expected empty replay, got %+v", replay.Messages)
	}
	joinEv := mustEvent(t, alice.Events, EventJoin)
	if joinEv.User != "bob" || joinEv.ConnectionID != "b" {
		t.Fatalf("unexpected join event: %+v", joinEv)
	}

	alice.Commands <- &Command{Kind: CommandSendRoomMessage, Text: "hi"}
	sel := mustEvent(t, bob.Events, EventSelection)
	if !slices.Equal(sel.Selected, []string{"alice"}) {
		t.Fatalf("unexpected selection: %+v", sel.Selected)
	}
	msgEv := mustEvent(t, bob.Events, EventRoomMessage)
	if msgEv.Message.Text != "hi" || msgEv.Message.Sender != "alice" || msgEv.Room != "lobby" {
		t.Fatalf("unexpected message event: %+v", msgEv)
	}

	hub.UnregisterClient(bob)
	leftEv := mustEvent(t, alice.Events, EventUserLeft)
	if leftEv.User != "bob" || leftEv.Room != "lobby" {
		t.Fatalf("unexpected leave event: %+v", leftEv)
	}
	after := mustEvent(t, alice.Events, EventUsersList)
	if len(after.Users) != 1 || after.Users[0].Username != "alice" {
		t.Fatalf("unexpected roster after leave: %+v", after.Users)
	}

	// Unregistering closes the client's queue.
	for range bob.Events {
	}

	room, ok, err := hub.Room(ctx, "lobby")
	if err != nil || !ok {
		t.Fatalf("room lookup: ok=%v err=%v", ok, err)
	}
	if room.Owner != "alice" || len(room.Users) != 1 {
		t.Fatalf("unexpected room view: %+v", room)
	}
}

func TestHubCreateConflictProducesFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	alice := NewClient("a", 0)
	bob := NewClient("b", 0)
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby", Username: "alice"}
	mustEvent(t, alice.Events, EventCreate)

	bob.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby", Username: "bob"}
	ev := mustEvent(t, bob.Events, EventCreate)
	if ev.Error == nil || ev.Error.Code != ErrCodeRoomInUse {
		t.Fatalf("expected room_in_use error, got %+v", ev)
	}
}

func TestHubJoinUnknownRoomError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	alice := NewClient("a", 0)
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "ghost", Username: "alice"}

	ev := mustEvent(t, alice.Events, EventJoin)
	if ev.Error == nil || ev.Error.Code != ErrCodeRoomNotFound {
		t.Fatalf("expected room_not_found error, got %+v", ev)
	}
}

func TestHubLastClientReleasesRoom(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	alice := NewClient("a", 0)
	hub.RegisterClient(alice)
	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby", Username: "alice"}
	mustEvent(t, alice.Events, EventCreate)

	hub.UnregisterClient(alice)

	rooms, err := hub.Rooms(ctx)
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}
	if len(rooms) != 0 {
		t.Fatalf("expected no open rooms, got %+v", rooms)
	}
}

func TestHubQueryAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if _, err := hub.Rooms(context.Background()); err != ErrHubStopped {
		t.Fatalf("expected ErrHubStopped, got %v", err)
	}
}

func TestHubInterleavedMessagesKeepLogOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	const perSender = 50
	names := []string{"alice", "bob", "carol"}
	clients := make([]*Client, len(names))
	for i, name := range names {
		clients[i] = NewClient(name, len(names)*perSender*2+32)
		hub.RegisterClient(clients[i])
	}

	clients[0].Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby", Username: "alice"}
	mustEvent(t, clients[0].Events, EventCreate)
	for i := 1; i < len(clients); i++ {
		clients[i].Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby", Username: names[i]}
		mustEvent(t, clients[i].Events, EventPreviousMessages)
	}

	var wg sync.WaitGroup
	for i, c := range clients {
		wg.Add(1)
		go func(c *Client, name string) {
			defer wg.Done()
			for n := 0; n < perSender; n++ {
				c.Commands <- &Command{Kind: CommandSendRoomMessage, Text: fmt.Sprintf("%s-%d", name, n)}
			}
		}(c, names[i])
	}
	wg.Wait()

	total := len(names) * perSender
	seen := make([][]Entry, len(clients))
	for i, c := range clients {
		for len(seen[i]) < total {
			select {
			case ev := <-c.Events:
				if ev.Kind == EventRoomMessage {
					seen[i] = append(seen[i], ev.Message)
				}
			case <-ctx.Done():
				t.Fatalf("%s saw %d of %d messages", names[i], len(seen[i]), total)
			}
		}
	}

	room, ok, err := hub.Room(ctx, "lobby")
	if err != nil || !ok {
		t.Fatalf("room lookup: ok=%v err=%v", ok, err)
	}
	if len(room.Messages) != total {
		t.Fatalf("expected %d log entries, got %d", total, len(room.Messages))
	}
	for i := range clients {
		if !slices.Equal(seen[i], room.Messages) {
			t.Fatalf("%s saw messages out of log order", names[i])
		}
	}

	next := make(map[string]int)
	for _, e := range room.Messages {
		if want := fmt.Sprintf("%s-%d", e.Sender, next[e.Sender]); e.Text != want {
			t.Fatalf("expected %q from %s, got %q", want, e.Sender, e.Text)
		}
		next[e.Sender]++
	}
}

func TestHubStopClosesClientQueues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	alice := NewClient("a", 0)
	if err := hub.RegisterClient(alice); err != nil {
		t.Fatalf("register: %v", err)
	}
	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby", Username: "alice"}
	mustEvent(t, alice.Events, EventCreate)

	cancel()
	<-stopped

	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-alice.Events:
			if !ok {
				if err := hub.RegisterClient(NewClient("b", 0)); err != ErrHubStopped {
					t.Fatalf("expected ErrHubStopped, got %v", err)
				}
				return
			}
		case <-timeout:
			t.Fatal("client queue was not closed on hub stop")
		}
	}
}
