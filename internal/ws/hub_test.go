package ws

import (
	"encoding/json"
	"testing"
	"time"

	"pairchat/internal/matchmaking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSocket is an in-memory Socket; the pumps are not started in these
// tests, so only the interface needs satisfying.
type mockSocket struct {
	closed bool
}

func (m *mockSocket) ReadMessage() (int, []byte, error) { return 0, nil, nil }

func (m *mockSocket) WriteMessage(messageType int, d []byte) error { return nil }

func (m *mockSocket) SetReadLimit(limit int64) {}

func (m *mockSocket) SetReadDeadline(t time.Time) error { return nil }

func (m *mockSocket) SetWriteDeadline(t time.Time) error { return nil }

func (m *mockSocket) SetPongHandler(h func(string) error) {}

func (m *mockSocket) Close() error { m.closed = true; return nil }

func newTestHub() *Hub {
	service := matchmaking.NewService(matchmaking.DefaultMaxMessageLen, nil)
	return NewHub(service, nil, nil)
}

// attach creates a client and places it in the hub as a live connection,
// bypassing the network handshake.
func attach(h *Hub) *Client {
	c := NewClient(h, &mockSocket{})
	h.clients[c] = true
	return c
}

// queued drains and decodes every message sitting in the client's send
// buffer.
func queued(t *testing.T, c *Client) []*Message {
	t.Helper()
	var out []*Message
	for {
		select {
		case data := <-c.send:
			var m Message
			require.NoError(t, json.Unmarshal(data, &m))
			out = append(out, &m)
		default:
			return out
		}
	}
}

func register(h *Hub, c *Client, userID string) {
	h.dispatch(c, &Message{Type: MessageTypeRegister, Data: map[string]interface{}{"userId": userID}})
}

func TestDispatchRegister(t *testing.T) {
	h := newTestHub()
	c := attach(h)

	register(h, c, "u1")

	assert.Equal(t, "u1", c.userID)
	assert.True(t, h.service.Connected("u1"))
}

func TestDispatchRegisterWithProfile(t *testing.T) {
	h := newTestHub()
	c := attach(h)

	h.dispatch(c, &Message{Type: MessageTypeRegister, Data: map[string]interface{}{
		"profile": map[string]interface{}{"userId": "u1"},
	}})

	assert.Equal(t, "u1", c.userID)
	assert.True(t, h.service.Connected("u1"))
}

func TestDispatchRegisterWithoutUserID(t *testing.T) {
	h := newTestHub()
	c := attach(h)

	h.dispatch(c, &Message{Type: MessageTypeRegister, Data: map[string]interface{}{}})

	assert.Empty(t, c.userID)
	msgs := queued(t, c)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageTypeError, msgs[0].Type)
}

func TestDispatchRejectsServerEvents(t *testing.T) {
	h := newTestHub()
	c := attach(h)

	h.dispatch(c, &Message{Type: MessageTypeMatched})

	msgs := queued(t, c)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageTypeError, msgs[0].Type)
}

func TestChatFlowThroughHub(t *testing.T) {
	h := newTestHub()
	c1 := attach(h)
	c2 := attach(h)

	register(h, c1, "u1")
	register(h, c2, "u2")

	// Pair the two users the way the HTTP endpoint would.
	res, err := h.service.RequestMatch("u1", []string{"music"})
	require.NoError(t, err)
	require.Equal(t, matchmaking.StatusWaiting, res.Status)
	res, err = h.service.RequestMatch("u2", []string{"music"})
	require.NoError(t, err)
	require.Equal(t, matchmaking.StatusMatched, res.Status)

	// Both connections got the async matched push.
	m1 := queued(t, c1)
	require.Len(t, m1, 1)
	assert.Equal(t, MessageTypeMatched, m1[0].Type)
	assert.Equal(t, res.SessionID, m1[0].Data["sessionId"])
	m2 := queued(t, c2)
	require.Len(t, m2, 1)
	assert.Equal(t, res.SessionID, m2[0].Data["sessionId"])

	// Join and chat over the websocket events.
	join := map[string]interface{}{"sessionId": res.SessionID}
	h.dispatch(c1, &Message{Type: MessageTypeJoinRoom, Data: join})
	h.dispatch(c2, &Message{Type: MessageTypeJoinRoom, Data: join})

	h.dispatch(c1, &Message{Type: MessageTypeSendMessage, Data: map[string]interface{}{
		"sessionId": res.SessionID,
		"message":   "hi there",
	}})

	assert.Empty(t, queued(t, c1), "sender must not see its own message")
	recv := queued(t, c2)
	require.Len(t, recv, 1)
	assert.Equal(t, MessageTypeReceiveMessage, recv[0].Type)
	assert.Equal(t, "hi there", recv[0].Data["message"])

	// Leave notifies the partner and kills the session.
	h.dispatch(c2, &Message{Type: MessageTypeLeaveRoom, Data: join})
	left := queued(t, c1)
	require.Len(t, left, 1)
	assert.Equal(t, MessageTypePartnerLeft, left[0].Type)
	assert.Equal(t, 0, h.service.SessionCount())
}

func TestUnregisterTriggersImplicitLeave(t *testing.T) {
	h := newTestHub()
	c1 := attach(h)
	c2 := attach(h)

	register(h, c1, "u1")
	register(h, c2, "u2")

	_, err := h.service.RequestMatch("u1", nil)
	require.NoError(t, err)
	res, err := h.service.RequestMatch("u2", nil)
	require.NoError(t, err)
	require.Equal(t, matchmaking.StatusMatched, res.Status)
	queued(t, c1)
	queued(t, c2)

	h.unregisterClient(c1)

	assert.False(t, h.service.Connected("u1"))
	left := queued(t, c2)
	require.Len(t, left, 1)
	assert.Equal(t, MessageTypePartnerLeft, left[0].Type)
	assert.Equal(t, 0, h.service.SessionCount())
}

func TestUnregisterAnonymousClient(t *testing.T) {
	h := newTestHub()
	c := attach(h)

	// A client that never registered tears down without side effects.
	h.unregisterClient(c)
	assert.NotContains(t, h.clients, c)

	// Double unregister is a no-op.
	h.unregisterClient(c)
}

func TestClientPushAfterSendChannelClosed(t *testing.T) {
	h := newTestHub()
	c := attach(h)

	c.closeSendChannel()
	assert.ErrorIs(t, c.SendChat("late"), ErrClientDisconnected)
}
