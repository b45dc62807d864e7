package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"pairchat/internal/matchmaking"
	"pairchat/pkg/response"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	service *matchmaking.Service
}

func NewMatchHandler(service *matchmaking.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

// joinQueueRequest is the synchronous match request body. Interests is a
// pointer so that an absent list can be told apart from an empty one; an
// empty list is valid input.
type joinQueueRequest struct {
	UserID    string    `json:"userId"`
	Interests *[]string `json:"interests"`
}

// JoinQueue handles POST /queue: pair the caller with a waiting user or
// queue them. The matched session id also reaches both users
// asynchronously over their websocket connections.
func (h *MatchHandler) JoinQueue(c *gin.Context) {
	var req joinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": response.ErrInvalidBody})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": response.ErrUserIDRequired})
		return
	}
	if req.Interests == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": response.ErrInterestsRequired})
		return
	}

	result, err := h.service.RequestMatch(req.UserID, *req.Interests)
	if err != nil {
		if errors.Is(err, matchmaking.ErrEmptyUserID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": response.ErrUserIDRequired})
			return
		}
		slog.Error("match request failed", "userID", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": response.ErrInternal})
		return
	}

	c.JSON(http.StatusOK, result)
}
