package ws

import (
	"context"
	"log/slog"

	"pairchat/internal/matchmaking"
	"pairchat/internal/services"
)

// ClientMessage pairs a decoded event with the connection it arrived on.
type ClientMessage struct {
	Client  *Client
	Message *Message
}

// Hub is the connection gateway: it owns every live websocket client and
// translates their events into matchmaking calls. All dispatch happens on
// the Run goroutine, so client state such as userID needs no extra locking
// here; registry state is guarded inside the service.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from new connections
	register chan *Client

	// Unregister requests from closing connections
	unregister chan *Client

	// Decoded events from client read pumps
	inbound chan *ClientMessage

	service *matchmaking.Service

	// Presence mirror; may be nil, every call is best effort
	presence *services.RedisService

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
}

func NewHub(service *matchmaking.Service, presence *services.RedisService, logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *ClientMessage, 64),
		service:    service,
		presence:   presence,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("client connected", "clientID", client.id)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case clientMsg := <-h.inbound:
			h.dispatch(clientMsg.Client, clientMsg.Message)

		case <-h.ctx.Done():
			h.logger.Info("websocket hub shutting down")
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// dispatch routes one client event into the matchmaking core.
func (h *Hub) dispatch(client *Client, msg *Message) {
	if !msg.Type.IsClientEvent() {
		client.sendError("INVALID_TYPE", "unknown event type: "+msg.Type.String())
		return
	}

	switch msg.Type {
	case MessageTypeRegister:
		userID := ExtractUserID(msg.Data)
		if userID == "" {
			client.sendError("INVALID_REGISTER", "register requires a userId")
			return
		}
		client.userID = userID
		h.service.Register(userID, client)
		h.logger.Info("client registered", "clientID", client.id, "userID", userID)
		h.setOnline(userID)

	case MessageTypeJoinRoom:
		h.service.Join(StringField(msg.Data, "sessionId"), client)

	case MessageTypeSendMessage:
		h.service.Relay(StringField(msg.Data, "sessionId"), client, StringField(msg.Data, "message"))

	case MessageTypeLeaveRoom:
		h.service.Leave(StringField(msg.Data, "sessionId"), client.userID)
	}
}

// unregisterClient tears one connection down. The service performs the
// implicit leave when this was the user's last connection.
func (h *Hub) unregisterClient(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	client.closeSendChannel()

	if client.userID == "" {
		h.logger.Debug("anonymous client disconnected", "clientID", client.id)
		return
	}

	h.service.Unregister(client.userID, client)
	h.logger.Info("client disconnected", "clientID", client.id, "userID", client.userID)

	if !h.service.Connected(client.userID) {
		h.setOffline(client.userID)
	}
}

func (h *Hub) setOnline(userID string) {
	if h.presence == nil {
		return
	}
	if err := h.presence.SetUserOnline(h.ctx, userID); err != nil {
		h.logger.Error("failed to set user online", "userID", userID, "error", err)
	}
}

func (h *Hub) setOffline(userID string) {
	if h.presence == nil {
		return
	}
	if err := h.presence.SetUserOffline(h.ctx, userID); err != nil {
		h.logger.Error("failed to set user offline", "userID", userID, "error", err)
	}
}
