package matchmaking

// Conn is one live client connection as seen by the matchmaking core. The
// gateway owns the underlying socket; the core only pushes events through it
// and never closes it.
type Conn interface {
	// SendMatched notifies the connection that its user was paired.
	SendMatched(sessionID string) error

	// SendChat delivers a relayed chat message.
	SendChat(text string) error

	// SendPartnerLeft notifies the connection that the session's other
	// member is gone.
	SendPartnerLeft() error
}

// ConnRegistry maps a user identifier to the set of live connections for
// that user. A user may hold several connections at once (duplicate tabs).
// "user has a live connection" is exactly "an entry exists here".
//
// ConnRegistry is not safe for concurrent use on its own; the owning
// Service serializes access.
type ConnRegistry struct {
	conns map[string]map[Conn]struct{}
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		conns: make(map[string]map[Conn]struct{}),
	}
}

// Add registers a live connection under a user identifier. Adding with an
// empty userID is a no-op.
func (r *ConnRegistry) Add(userID string, conn Conn) {
	if userID == "" || conn == nil {
		return
	}
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[userID] = set
	}
	set[conn] = struct{}{}
}

// Remove drops one connection. When the user's last connection goes away
// the mapping entry is removed entirely. Unknown users and connections are
// no-ops.
func (r *ConnRegistry) Remove(userID string, conn Conn) {
	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// Handles returns the live connections for a user, or nil if the user has
// none.
func (r *ConnRegistry) Handles(userID string) []Conn {
	set, ok := r.conns[userID]
	if !ok {
		return nil
	}
	handles := make([]Conn, 0, len(set))
	for conn := range set {
		handles = append(handles, conn)
	}
	return handles
}

// Alive reports whether the user has at least one live connection.
func (r *ConnRegistry) Alive(userID string) bool {
	return len(r.conns[userID]) > 0
}
