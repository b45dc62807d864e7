package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; covers a 500-rune chat
	// message plus the JSON envelope
	maxMessageSize = 4096

	// Outgoing message buffer per connection
	sendBufferSize = 256
)

var ErrClientDisconnected = errors.New("client disconnected")

// Socket is the subset of *websocket.Conn the client needs; tests
// substitute an in-memory implementation.
type Socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Client is one live websocket connection. Its user identifier is unknown
// until the register event arrives; after that the hub goroutine is the
// only reader and writer of userID.
type Client struct {
	id     string
	hub    *Hub
	conn   Socket
	send   chan []byte
	userID string

	closed     int32 // atomic flag, connection torn down
	sendClosed int32 // atomic flag, send channel closed
}

func NewClient(hub *Hub, conn Socket) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *Client) GetID() string {
	return c.id
}

// SendMatched implements matchmaking.Conn.
func (c *Client) SendMatched(sessionID string) error {
	return c.push(NewMatchedMessage(sessionID))
}

// SendChat implements matchmaking.Conn.
func (c *Client) SendChat(text string) error {
	return c.push(NewReceiveMessage(text))
}

// SendPartnerLeft implements matchmaking.Conn.
func (c *Client) SendPartnerLeft() error {
	return c.push(NewPartnerLeftMessage())
}

func (c *Client) sendError(code, message string) {
	if err := c.push(NewErrorMessage(code, message)); err != nil {
		slog.Debug("error event not delivered", "clientID", c.id, "error", err)
	}
}

// push queues a message for the write pump without blocking. A full buffer
// means the reader is gone or hopelessly slow, so the connection is
// dropped rather than stalling the caller.
func (c *Client) push(msg *Message) error {
	if c.isClosed() || atomic.LoadInt32(&c.sendClosed) == 1 {
		return ErrClientDisconnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		slog.Warn("send buffer full, dropping client", "clientID", c.id, "userID", c.userID)
		c.closeSendChannel()
		return ErrClientDisconnected
	}
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Client) close() {
	atomic.CompareAndSwapInt32(&c.closed, 0, 1)
}

func (c *Client) closeSendChannel() {
	if atomic.CompareAndSwapInt32(&c.sendClosed, 0, 1) {
		close(c.send)
	}
}

// readPump reads client events off the socket and hands them to the hub.
// One goroutine per connection; it owns reads and triggers teardown.
func (c *Client) readPump() {
	defer func() {
		c.close()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		if err := c.conn.Close(); err != nil {
			slog.Debug("error closing connection", "clientID", c.id, "error", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket error", "clientID", c.id, "userID", c.userID, "error", err)
			} else {
				slog.Debug("websocket closed", "clientID", c.id, "userID", c.userID, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Debug("unparseable client event", "clientID", c.id, "error", err)
			c.sendError("INVALID_MESSAGE", "invalid message format")
			continue
		}
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		msg.Timestamp = time.Now().Unix()

		select {
		case c.hub.inbound <- &ClientMessage{Client: c, Message: &msg}:
		case <-c.hub.ctx.Done():
			return
		}
	}
}

// writePump drains the send buffer onto the socket and keeps the
// connection alive with pings. One goroutine per connection; it owns
// writes.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("write failed", "clientID", c.id, "userID", c.userID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("ping failed", "clientID", c.id, "userID", c.userID, "error", err)
				return
			}
		}
	}
}
