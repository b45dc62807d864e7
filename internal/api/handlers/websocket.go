package handlers

import (
	"pairchat/internal/ws"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket upgrades the request and attaches the connection to the
// hub. Identification happens on the connection itself via the register
// event, so the endpoint takes no parameters.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	ws.ServeWS(h.hub, c.Writer, c.Request)
}
