package matchmaking

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

// MatchStatus is the outcome of a match request.
type MatchStatus string

const (
	StatusWaiting MatchStatus = "waiting"
	StatusMatched MatchStatus = "matched"
)

// MatchResult is returned to the synchronous request path. SessionID is set
// only when Status is StatusMatched.
type MatchResult struct {
	Status    MatchStatus `json:"status"`
	SessionID string      `json:"sessionId,omitempty"`
}

var (
	// ErrEmptyUserID rejects match requests without a user identifier.
	ErrEmptyUserID = errors.New("userId is required")

	// ErrCorruptEntry signals a dequeued waiting entry with no user
	// identifier, which the registries should make impossible.
	ErrCorruptEntry = errors.New("corrupted waiting entry")
)

// DefaultMaxMessageLen bounds relayed chat messages, in runes, after
// trimming.
const DefaultMaxMessageLen = 500

// Service is the matchmaking core: the pairing engine and the session relay
// over the connection, waiting and session registries. Every registry read
// and write happens under one mutex, so no two events ever interleave
// mid-mutation and the pool/session invariants hold across any schedule of
// connection events and HTTP requests.
type Service struct {
	mu       sync.Mutex
	conns    *ConnRegistry
	pool     *WaitingPool
	sessions *SessionRegistry

	maxMessageLen int
	logger        *slog.Logger
}

func NewService(maxMessageLen int, logger *slog.Logger) *Service {
	if maxMessageLen <= 0 {
		maxMessageLen = DefaultMaxMessageLen
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		conns:         NewConnRegistry(),
		pool:          NewWaitingPool(),
		sessions:      NewSessionRegistry(),
		maxMessageLen: maxMessageLen,
		logger:        logger,
	}
}

// Register adds a live connection for a user. Empty user identifiers are
// ignored.
func (s *Service) Register(userID string, conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conns.Add(userID, conn)
}

// Unregister drops a connection. When it was the user's last one, any
// session the user belonged to ends exactly as an explicit leave would:
// the partner is notified and the session is destroyed. Waiting pool
// entries are left for the lazy sweep.
func (s *Service) Unregister(userID string, conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conns.Remove(userID, conn)

	if sess, ok := s.sessions.ByUser(userID); ok {
		if s.conns.Alive(userID) {
			// Other tabs remain; just stop delivering to this one.
			delete(sess.Conns, conn)
			return
		}
		s.endSessionLocked(sess, userID)
	}
}

// RequestMatch pairs the requester with the earliest compatible waiting
// user, or queues the requester. On a match both users are notified on
// every live connection, and the session identifier is also returned for
// the synchronous caller.
//
// A requester already in a session abandons it first (the partner gets
// partner-left), so no user is ever a member of two sessions.
func (s *Service) RequestMatch(userID string, interests []string) (MatchResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return MatchResult{}, ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions.ByUser(userID); ok {
		s.endSessionLocked(sess, userID)
	}

	entry, found := s.pool.FindAndRemove(userID, interests, s.conns.Alive)
	if !found {
		s.pool.Enqueue(userID, interests)
		s.logger.Debug("user queued", "userID", userID, "waiting", s.pool.Len())
		return MatchResult{Status: StatusWaiting}, nil
	}
	if entry.UserID == "" {
		return MatchResult{}, ErrCorruptEntry
	}

	// The requester may have been queued by an earlier waiting request;
	// a session member must not linger in the pool.
	s.pool.Remove(userID)

	sess := s.sessions.Create(entry.UserID, userID)
	s.logger.Info("matched", "sessionID", sess.ID, "userA", entry.UserID, "userB", userID)

	s.notifyMatchedLocked(entry.UserID, sess.ID)
	s.notifyMatchedLocked(userID, sess.ID)

	return MatchResult{Status: StatusMatched, SessionID: sess.ID}, nil
}

// Join adds a connection to a session's delivery group. Unknown sessions
// are ignored; the session may already have ended by the time the client's
// join event arrives.
func (s *Service) Join(sessionID string, conn Conn) {
	if conn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		s.logger.Debug("join for unknown session", "sessionID", sessionID)
		return
	}
	sess.Conns[conn] = struct{}{}
}

// Relay forwards a chat message to every connection joined to the session
// except the sender. Empty or whitespace-only messages, overlong messages
// and unknown sessions are dropped silently; the relay has no error channel
// back to the sender.
func (s *Service) Relay(sessionID string, sender Conn, text string) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > s.maxMessageLen {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	for conn := range sess.Conns {
		if conn == sender {
			continue
		}
		if err := conn.SendChat(text); err != nil {
			s.logger.Debug("chat delivery failed", "sessionID", sessionID, "error", err)
		}
	}
}

// Leave ends a session on behalf of one member: the partner is notified on
// every live connection and the session is destroyed. Leaving an unknown
// or already-ended session is a no-op.
func (s *Service) Leave(sessionID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	if userID != sess.UserA && userID != sess.UserB {
		s.logger.Warn("leave from non-member", "sessionID", sessionID, "userID", userID)
		return
	}
	s.endSessionLocked(sess, userID)
}

// Connected reports whether the user has at least one live connection.
func (s *Service) Connected(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conns.Alive(userID)
}

// Waiting reports whether the user currently sits in the waiting pool.
func (s *Service) Waiting(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pool.Contains(userID)
}

// SessionCount returns the number of active sessions.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Len()
}

// endSessionLocked notifies the partner of the leaving user and destroys
// the session. Callers hold s.mu.
func (s *Service) endSessionLocked(sess *Session, leavingUserID string) {
	partner := sess.Other(leavingUserID)
	for _, conn := range s.conns.Handles(partner) {
		if err := conn.SendPartnerLeft(); err != nil {
			s.logger.Debug("partner-left delivery failed", "sessionID", sess.ID, "userID", partner, "error", err)
		}
	}
	s.sessions.Destroy(sess.ID)
	s.logger.Info("session ended", "sessionID", sess.ID, "leftBy", leavingUserID)
}

// notifyMatchedLocked fans the matched event out to every live connection
// of a user. Delivery is fire-and-forget. Callers hold s.mu.
func (s *Service) notifyMatchedLocked(userID, sessionID string) {
	for _, conn := range s.conns.Handles(userID) {
		if err := conn.SendMatched(sessionID); err != nil {
			s.logger.Debug("matched delivery failed", "sessionID", sessionID, "userID", userID, "error", err)
		}
	}
}
