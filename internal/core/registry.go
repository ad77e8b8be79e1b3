package core

// ConnectionRegistry maps live connections to the identity they are bound to.
// Iteration follows the order in which connections were first bound.
type ConnectionRegistry struct {
	order      []string
	identities map[string]Identity
}

// NewConnectionRegistry returns an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		identities: make(map[string]Identity),
	}
}

// Bind inserts or overwrites the identity of connID. Rebinding keeps the
// connection's original position.
func (r *ConnectionRegistry) Bind(connID, username, room string) {
	if _, exists := r.identities[connID]; !exists {
		r.order = append(r.order, connID)
	}
	r.identities[connID] = Identity{Username: username, Room: room}
}

// Unbind removes connID and returns the identity it held.
func (r *ConnectionRegistry) Unbind(connID string) (Identity, bool) {
	id, ok := r.identities[connID]
	if !ok {
		return Identity{}, false
	}
	delete(r.identities, connID)
	for i, c := range r.order {
		if c == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return id, true
}

// Lookup returns the identity bound to connID.
func (r *ConnectionRegistry) Lookup(connID string) (Identity, bool) {
	id, ok := r.identities[connID]
	return id, ok
}

// MembersOf lists the connections bound to room, computed from live state.
func (r *ConnectionRegistry) MembersOf(room string) []Member {
	members := make([]Member, 0)
	for _, connID := range r.order {
		id := r.identities[connID]
		if id.Room == room {
			members = append(members, Member{ConnectionID: connID, Username: id.Username})
		}
	}
	return members
}

// Len returns the number of bound connections.
func (r *ConnectionRegistry) Len() int {
	return len(r.identities)
}
