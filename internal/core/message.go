package core

// Entry is one line of a room's message log.
type Entry struct {
	Sender string
	Text   string
}

// Member is a connection currently bound to a room.
type Member struct {
	ConnectionID string
	Username     string
}

// Identity is what a connection declared when it created or joined a room.
type Identity struct {
	Username string
	Room     string
}
