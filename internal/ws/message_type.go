package ws

import (
	"time"

	"github.com/google/uuid"
)

// MessageType identifies a websocket event using a custom enum type for
// better type safety.
type MessageType string

const (
	// Client to server
	MessageTypeRegister    MessageType = "register"
	MessageTypeJoinRoom    MessageType = "join-room"
	MessageTypeSendMessage MessageType = "send-message"
	MessageTypeLeaveRoom   MessageType = "leave-room"

	// Server to client
	MessageTypeMatched        MessageType = "matched"
	MessageTypeReceiveMessage MessageType = "receive-message"
	MessageTypePartnerLeft    MessageType = "partner-left"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the MessageType.
func (mt MessageType) String() string {
	return string(mt)
}

// IsClientEvent reports whether the type is one a client may send.
func (mt MessageType) IsClientEvent() bool {
	switch mt {
	case MessageTypeRegister, MessageTypeJoinRoom, MessageTypeSendMessage, MessageTypeLeaveRoom:
		return true
	default:
		return false
	}
}

// Message is the wire envelope for every websocket event, in both
// directions.
type Message struct {
	ID        string                 `json:"id"`
	Type      MessageType            `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	UserID    string                 `json:"userId,omitempty"`
}

// NewMessage creates a message with the specified type and data.
func NewMessage(msgType MessageType, userID string, data map[string]interface{}) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}

// NewMatchedMessage notifies a client that it was paired into a session.
func NewMatchedMessage(sessionID string) *Message {
	return NewMessage(MessageTypeMatched, "", map[string]interface{}{
		"sessionId": sessionID,
	})
}

// NewReceiveMessage carries a relayed chat message to a client.
func NewReceiveMessage(text string) *Message {
	return NewMessage(MessageTypeReceiveMessage, "", map[string]interface{}{
		"message": text,
	})
}

// NewPartnerLeftMessage notifies the remaining session member that the
// partner is gone. It carries no payload.
func NewPartnerLeftMessage() *Message {
	return NewMessage(MessageTypePartnerLeft, "", nil)
}

// NewErrorMessage reports a malformed client event.
func NewErrorMessage(code, message string) *Message {
	return NewMessage(MessageTypeError, "", map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

// StringField extracts a string value from an event payload, empty when
// absent or not a string.
func StringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}

// ExtractUserID pulls the user identifier out of a register payload. The
// client sends either a bare identifier or a locally stored profile object
// containing one.
func ExtractUserID(data map[string]interface{}) string {
	if id := StringField(data, "userId"); id != "" {
		return id
	}
	if profile, ok := data["profile"].(map[string]interface{}); ok {
		return StringField(profile, "userId")
	}
	return ""
}
