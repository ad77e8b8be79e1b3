package core

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// delivery is one event as received by one connection.
type delivery struct {
	to string
	ev *Event
}

// recorder is a Transport that resolves rooms the same way the hub does and
// keeps every delivery in order.
type recorder struct {
	state *State
	log   []delivery
}

func newTestService(t *testing.T) (*Service, *State, *recorder) {
	t.Helper()

	state := NewState()
	rec := &recorder{state: state}
	return NewService(state, rec, nil), state, rec
}

func (r *recorder) SendTo(connID string, ev *Event) {
	r.log = append(r.log, delivery{to: connID, ev: ev})
}

func (r *recorder) BroadcastToRoom(room string, ev *Event) {
	for _, m := range r.state.Conns.MembersOf(room) {
		r.log = append(r.log, delivery{to: m.ConnectionID, ev: ev})
	}
}

// events returns what connID received, in order.
func (r *recorder) events(connID string) []*Event {
	var out []*Event
	for _, d := range r.log {
		if d.to == connID {
			out = append(out, d.ev)
		}
	}
	return out
}

func (r *recorder) kinds(connID string) []EventKind {
	var out []EventKind
	for _, ev := range r.events(connID) {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *recorder) reset() {
	r.log = nil
}
