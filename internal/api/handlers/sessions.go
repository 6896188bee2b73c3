package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vahan-ai/chat-gateway/internal/api/dto"
)

// SessionHandler mints chat session identifiers.
type SessionHandler struct{}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// NewSession handles the GET /session_id endpoint.
// @Summary Mint a fresh chat session identifier
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse "Session identifier"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /session_id [get]
func (h *SessionHandler) NewSession(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SessionResponse{
		SessionID: uuid.NewString(),
	})
}
