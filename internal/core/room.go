package core

import (
	"sort"
	"time"
)

// RoomState tags a room name as claimed or not.
type RoomState int

const (
	// RoomAbsent means no one holds the name.
	RoomAbsent RoomState = iota
	// RoomOpen means the name is claimed by an owner and has (or just had) members.
	RoomOpen
)

func (s RoomState) String() string {
	switch s {
	case RoomOpen:
		return "open"
	default:
		return "absent"
	}
}

// Room is a claimed room name and who claimed it.
type Room struct {
	Name      string
	Owner     string
	State     RoomState
	CreatedAt time.Time
}

// RoomDirectory tracks which room names are claimed and by whom.
type RoomDirectory struct {
	rooms map[string]*Room
	now   func() time.Time
}

// NewRoomDirectory constructs an empty directory.
func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		rooms: make(map[string]*Room),
		now:   time.Now,
	}
}

// TryClaim opens room with username as owner. Any existing claim wins,
// including one held by the same username.
func (d *RoomDirectory) TryClaim(room, username string) error {
	if d.State(room) == RoomOpen {
		return ErrRoomInUse
	}
	d.rooms[room] = &Room{
		Name:      room,
		Owner:     username,
		State:     RoomOpen,
		CreatedAt: d.now(),
	}
	return nil
}

// State reports whether room is open.
func (d *RoomDirectory) State(room string) RoomState {
	if r, ok := d.rooms[room]; ok {
		return r.State
	}
	return RoomAbsent
}

// Exists reports whether room is claimed.
func (d *RoomDirectory) Exists(room string) bool {
	return d.State(room) == RoomOpen
}

// OwnerOf returns the owner of room. ok is false when the room is unknown.
func (d *RoomDirectory) OwnerOf(room string) (owner string, ok bool) {
	r, exists := d.rooms[room]
	if !exists {
		return "", false
	}
	return r.Owner, true
}

// Release drops the claim on room. Returns true if the room was open.
func (d *RoomDirectory) Release(room string) bool {
	if _, ok := d.rooms[room]; !ok {
		return false
	}
	delete(d.rooms, room)
	return true
}

// Get returns a copy of the room entry.
func (d *RoomDirectory) Get(room string) (Room, bool) {
	r, ok := d.rooms[room]
	if !ok {
		return Room{}, false
	}
	return *r, true
}

// List returns all open rooms sorted by name.
func (d *RoomDirectory) List() []Room {
	out := make([]Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
