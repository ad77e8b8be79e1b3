package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// ErrHubStopped is returned by queries issued after the hub's loop has exited.
var ErrHubStopped = errors.New("hub stopped")

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub owns the room state and processes every client operation on a single
// goroutine, so each operation runs to completion before the next starts.
type Hub struct {
	state   *State
	svc     *Service
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	queries    chan func(*Service)
	done       chan struct{}

	log *zerolog.Logger
}

// NewHub creates a new hub with empty state.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		state:      NewState(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		queries:    make(chan func(*Service)),
		done:       make(chan struct{}),
		log:        logger,
	}
	h.svc = NewService(h.state, h, logger)
	return h
}

// Run processes hub traffic until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.log.Info().Int("clients", len(h.clients)).Msg("hub shutting down")
			h.closeClients()
			return
		case c := <-h.register:
			h.handleRegister(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case cc := <-h.commands:
			h.handleCommand(cc)
		case q := <-h.queries:
			q(h.svc)
		}
	}
}

// RegisterClient adds a client; its Commands are processed once registered.
// It returns ErrHubStopped when the loop is no longer running.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// UnregisterClient disconnects a client. Its Events channel is closed.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Rooms lists open rooms as seen by the event loop.
func (h *Hub) Rooms(ctx context.Context) ([]RoomView, error) {
	var rooms []RoomView
	err := h.query(ctx, func(s *Service) { rooms = s.Rooms() })
	return rooms, err
}

// Room returns one open room as seen by the event loop.
func (h *Hub) Room(ctx context.Context, name string) (RoomView, bool, error) {
	var (
		room RoomView
		ok   bool
	)
	err := h.query(ctx, func(s *Service) { room, ok = s.Room(name) })
	return room, ok, err
}

func (h *Hub) query(ctx context.Context, fn func(*Service)) error {
	finished := make(chan struct{})
	wrapped := func(s *Service) {
		defer close(finished)
		fn(s)
	}
	select {
	case h.queries <- wrapped:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// SendTo queues ev for one client. Must only be called from the event loop.
func (h *Hub) SendTo(connID string, ev *Event) {
	if c, ok := h.clients[connID]; ok {
		h.deliver(c, ev)
	}
}

// BroadcastToRoom queues ev for every client bound to room. Must only be
// called from the event loop.
func (h *Hub) BroadcastToRoom(room string, ev *Event) {
	for _, m := range h.state.Conns.MembersOf(room) {
		if c, ok := h.clients[m.ConnectionID]; ok {
			h.deliver(c, ev)
		}
	}
}

func (h *Hub) deliver(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
		h.log.Warn().Str("conn_id", c.ID).Stringer("event", ev.Kind).Msg("client event queue full, dropping event")
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Client) {
	if _, exists := h.clients[c.ID]; exists {
		h.log.Warn().Str("conn_id", c.ID).Msg("client already registered")
		return
	}
	h.clients[c.ID] = c
	h.log.Info().Str("conn_id", c.ID).Msg("client connected")
	go h.forward(ctx, c)
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	if err := h.svc.Disconnect(c.ID); err != nil && !errors.Is(err, ErrNotBound) {
		h.log.Warn().Err(err).Str("conn_id", c.ID).Msg("disconnect")
	}
	delete(h.clients, c.ID)
	close(c.done)
	close(c.Events)
	h.log.Info().Str("conn_id", c.ID).Msg("client disconnected")
}

// closeClients ends every client queue so their writers stop when the loop exits.
func (h *Hub) closeClients() {
	for id, c := range h.clients {
		close(c.done)
		close(c.Events)
		delete(h.clients, id)
	}
}

func (h *Hub) handleCommand(cc clientCommand) {
	if _, ok := h.clients[cc.client.ID]; !ok {
		return
	}
	err := h.svc.Handle(cc.client.ID, cc.cmd)
	if err != nil {
		h.log.Debug().Err(err).Str("conn_id", cc.client.ID).Int("kind", int(cc.cmd.Kind)).Msg("command rejected")
	}
}

// forward feeds one client's commands into the event loop in order.
// Unregister does not wait for it, so a command still queued here when the
// client disconnects is dropped.
func (h *Hub) forward(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			if cmd == nil {
				continue
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
