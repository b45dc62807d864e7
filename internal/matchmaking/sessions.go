package matchmaking

import "github.com/google/uuid"

// Session binds two users relaying messages to each other. Conns holds the
// connections that joined the session's delivery group; membership there is
// independent of the user pair (a user's second tab may never join).
type Session struct {
	ID    string
	UserA string
	UserB string
	Conns map[Conn]struct{}
}

// Other returns the session member paired with userID, or "" when userID is
// not a member.
func (s *Session) Other(userID string) string {
	switch userID {
	case s.UserA:
		return s.UserB
	case s.UserB:
		return s.UserA
	default:
		return ""
	}
}

// SessionRegistry maps session identifiers to active sessions, with a
// by-user index so leave/disconnect can find the partner without a scan.
//
// SessionRegistry is not safe for concurrent use on its own; the owning
// Service serializes access.
type SessionRegistry struct {
	sessions map[string]*Session
	byUser   map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		byUser:   make(map[string]*Session),
	}
}

// Create stores a fresh session for the pair and returns it. Session
// identifiers are random v4 UUIDs, unique for the process lifetime.
func (r *SessionRegistry) Create(userA, userB string) *Session {
	s := &Session{
		ID:    uuid.New().String(),
		UserA: userA,
		UserB: userB,
		Conns: make(map[Conn]struct{}),
	}
	r.sessions[s.ID] = s
	r.byUser[userA] = s
	r.byUser[userB] = s
	return s
}

// Get returns the session with the given identifier.
func (r *SessionRegistry) Get(sessionID string) (*Session, bool) {
	s, ok := r.sessions[sessionID]
	return s, ok
}

// ByUser returns the session the user is a member of, if any.
func (r *SessionRegistry) ByUser(userID string) (*Session, bool) {
	s, ok := r.byUser[userID]
	return s, ok
}

// Destroy removes the session and its index entries. Unknown identifiers
// are a no-op.
func (r *SessionRegistry) Destroy(sessionID string) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)
	delete(r.byUser, s.UserA)
	delete(r.byUser, s.UserB)
}

// Len returns the number of active sessions.
func (r *SessionRegistry) Len() int {
	return len(r.sessions)
}
