package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/vahan-ai/chat-gateway/internal/api/middleware"
	"github.com/vahan-ai/chat-gateway/internal/services/auth"
	"github.com/vahan-ai/chat-gateway/internal/services/chat"
	"github.com/vahan-ai/chat-gateway/internal/services/registry"
)

const (
	writeTimeout     = 10 * time.Second
	closeGracePeriod = time.Second
	maxMessageBytes  = 64 * 1024
)

// ChatHandler runs the WebSocket chat endpoint.
type ChatHandler struct {
	auth         *auth.Service
	registry     *registry.Registry
	orchestrator *chat.Orchestrator
	upgrader     websocket.Upgrader
	logger       zerolog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(authService *auth.Service, reg *registry.Registry, orchestrator *chat.Orchestrator, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		auth:         authService,
		registry:     reg,
		orchestrator: orchestrator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin enforcement is handled by the CORS layer for the rest
			// of the API; the socket carries its own credential check.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("handler", "chat").Logger(),
	}
}

// Chat handles the GET /chat WebSocket endpoint. The upgrade is accepted
// unconditionally; authorization happens on the open socket so a rejected
// client receives a proper close frame instead of a failed handshake.
func (h *ChatHandler) Chat(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer ws.Close()

	sessionID := c.Query("session_id")
	token := middleware.BearerToken(c)
	if token == "" {
		token = c.Query("token")
	}

	subjectID, err := h.auth.Authorize(c.Request.Context(), token)
	if err != nil || sessionID == "" {
		h.closePolicyViolation(ws, "unauthorized")
		return
	}

	conn := registry.NewConnection(subjectID, sessionID)
	if superseded := h.registry.Register(conn); superseded != nil {
		h.logger.Info().
			Str("user_id", subjectID).
			Str("session_id", sessionID).
			Msg("existing connection superseded")
	}
	defer func() {
		conn.Close()
		h.registry.Unregister(conn)
	}()

	h.logger.Info().
		Str("user_id", subjectID).
		Str("session_id", sessionID).
		Msg("chat connection established")

	go h.writePump(ws, conn)

	h.readLoop(c.Request.Context(), ws, conn)
}

// readLoop reads messages one at a time and answers each before reading the
// next. A turn already in flight finishes even if the client disconnects, so
// its transcript and memory writes are never lost.
func (h *ChatHandler) readLoop(ctx context.Context, ws *websocket.Conn, conn *registry.Connection) {
	ws.SetReadLimit(maxMessageBytes)

	for {
		msgType, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn().Err(err).Str("session_id", conn.SessionID).Msg("websocket read error")
			}
			return
		}
		if msgType != websocket.TextMessage || len(payload) == 0 {
			continue
		}

		turnCtx := context.WithoutCancel(ctx)
		reply := h.orchestrator.HandleTurn(turnCtx, conn.SubjectID, conn.SessionID, string(payload))
		if !conn.Send(reply) {
			h.logger.Warn().Str("session_id", conn.SessionID).Msg("reply dropped, connection closed or backlogged")
			return
		}
	}
}

// writePump drains the connection's outbound queue onto the socket.
func (h *ChatHandler) writePump(ws *websocket.Conn, conn *registry.Connection) {
	for {
		select {
		case <-conn.Done():
			return
		case message := <-conn.Outbound():
			ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				h.logger.Warn().Err(err).Str("session_id", conn.SessionID).Msg("websocket write failed")
				conn.Close()
				return
			}
		}
	}
}

// closePolicyViolation sends close code 1008 and shuts the socket.
func (h *ChatHandler) closePolicyViolation(ws *websocket.Conn, reason string) {
	deadline := time.Now().Add(closeGracePeriod)
	message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	if err := ws.WriteControl(websocket.CloseMessage, message, deadline); err != nil {
		h.logger.Debug().Err(err).Msg("failed to send close frame")
	}
}
