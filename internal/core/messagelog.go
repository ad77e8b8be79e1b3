package core

// roomLog is the append-only log of one room. latest tracks the most recent
// text per sender so the selection set does not need a full scan per message.
type roomLog struct {
	entries []Entry
	senders []string
	latest  map[string]string
}

// MessageLog holds one ordered log per room. Logs are unbounded.
type MessageLog struct {
	logs map[string]*roomLog
}

// NewMessageLog returns an empty message log.
func NewMessageLog() *MessageLog {
	return &MessageLog{logs: make(map[string]*roomLog)}
}

// Append adds an entry to the end of room's log, creating the log if needed.
func (m *MessageLog) Append(room, sender, text string) {
	l, ok := m.logs[room]
	if !ok {
		l = &roomLog{latest: make(map[string]string)}
		m.logs[room] = l
	}
	l.entries = append(l.entries, Entry{Sender: sender, Text: text})
	if _, seen := l.latest[sender]; !seen {
		l.senders = append(l.senders, sender)
	}
	l.latest[sender] = text
}

// Entries returns a copy of room's log. It is empty, not nil, when no log exists.
func (m *MessageLog) Entries(room string) []Entry {
	l, ok := m.logs[room]
	if !ok {
		return []Entry{}
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Has reports whether a log exists for room.
func (m *MessageLog) Has(room string) bool {
	_, ok := m.logs[room]
	return ok
}

// SelectionSet returns the senders whose most recent entry has non-empty
// text, in order of their first appearance in the log.
func (m *MessageLog) SelectionSet(room string) []string {
	selected := make([]string, 0)
	l, ok := m.logs[room]
	if !ok {
		return selected
	}
	for _, sender := range l.senders {
		if l.latest[sender] != "" {
			selected = append(selected, sender)
		}
	}
	return selected
}

// Clear removes room's log.
func (m *MessageLog) Clear(room string) {
	delete(m.logs, room)
}

// Selection derives the selection set from a full log by keeping the latest
// entry per sender and then dropping empty ones.
func Selection(entries []Entry) []string {
	latest := make(map[string]string, len(entries))
	senders := make([]string, 0)
	for _, e := range entries {
		if _, seen := latest[e.Sender]; !seen {
			senders = append(senders, e.Sender)
		}
		latest[e.Sender] = e.Text
	}
	selected := make([]string, 0, len(senders))
	for _, s := range senders {
		if latest[s] != "" {
			selected = append(selected, s)
		}
	}
	return selected
}
