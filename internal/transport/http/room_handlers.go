package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsession-server/internal/core"
	"github.com/vovakirdan/roomsession-server/internal/proto"
)

// RoomHandlers provides read-only HTTP handlers over the live room state.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomSummary represents a room in list responses.
type RoomSummary struct {
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Members   int       `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomDetail represents a single room with its roster and log.
type RoomDetail struct {
	Name      string        `json:"name"`
	Owner     string        `json:"owner"`
	CreatedAt time.Time     `json:"created_at"`
	Users     []proto.User  `json:"users"`
	Messages  []proto.Entry `json:"messages"`
	Selected  []string      `json:"selected"`
}

// ListRooms returns all open rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service unavailable"})
		return
	}

	response := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		response = append(response, RoomSummary{
			Name:      r.Name,
			Owner:     r.Owner,
			Members:   len(r.Users),
			CreatedAt: r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetRoom returns one open room.
// GET /api/rooms/:room
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	name := c.Param("room")

	room, ok, err := h.hub.Room(c.Request.Context(), name)
	if err != nil {
		h.log.Error().Err(err).Str("room", name).Msg("failed to get room")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service unavailable"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	c.JSON(http.StatusOK, RoomDetail{
		Name:      room.Name,
		Owner:     room.Owner,
		CreatedAt: room.CreatedAt,
		Users:     membersToProto(room.Users),
		Messages:  entriesToProto(room.Messages),
		Selected:  room.Selected,
	})
}
