package handlers_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vahan-ai/chat-gateway/internal/api/handlers"
	"github.com/vahan-ai/chat-gateway/internal/core/vector"
	"github.com/vahan-ai/chat-gateway/internal/domain/models"
	rediscache "github.com/vahan-ai/chat-gateway/internal/infrastructure/cache/redis"
	"github.com/vahan-ai/chat-gateway/internal/services/assembler"
	"github.com/vahan-ai/chat-gateway/internal/services/auth"
	"github.com/vahan-ai/chat-gateway/internal/services/chat"
	"github.com/vahan-ai/chat-gateway/internal/services/history"
	"github.com/vahan-ai/chat-gateway/internal/services/metrics"
	"github.com/vahan-ai/chat-gateway/internal/services/registry"
	"github.com/vahan-ai/chat-gateway/tests/mocks"
)

type chatFixture struct {
	server *httptest.Server
	token  string
}

func setupChatServer(t *testing.T, generatorReply string) *chatFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)

	cache, err := rediscache.NewCache(rediscache.Config{
		Host: mr.Host(),
		Port: mr.Port(),
	})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mocks.MockUsersCollection{}
	users.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash)}, nil)

	authService, err := auth.NewService(users, cache, "test-secret", time.Hour, zerolog.Nop())
	require.NoError(t, err)

	creds, err := authService.Login(context.Background(), "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	embedder := &mocks.MockEmbedder{}
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)

	store := &mocks.MockVectorStore{}
	store.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]vector.Match{}, nil)
	store.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	generator := &mocks.MockGenerator{}
	generator.On("Generate", mock.Anything, mock.Anything).Return(generatorReply, nil)

	hist := history.NewService(cache, 10, zerolog.Nop())
	asm := assembler.NewService(embedder, store, hist, 10, 5, zerolog.Nop())
	eval := metrics.NewEvaluator(cache, embedder, zerolog.Nop())
	orch := chat.NewOrchestrator(asm, generator, embedder, store, hist, eval, zerolog.Nop())

	handler := handlers.NewChatHandler(authService, registry.NewRegistry(zerolog.Nop()), orch, zerolog.Nop())

	router := gin.New()
	router.GET("/api/v1/chat", handler.Chat)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		cache.Close()
		mr.Close()
	})

	return &chatFixture{server: server, token: creds.AccessToken}
}

func (f *chatFixture) wsURL(query string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/chat" + query
}

func TestChat_AuthorizedExchange(t *testing.T) {
	f := setupChatServer(t, "Hello back!")

	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("?session_id=session-1&token="+f.token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("Hello there")))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Hello back!", string(payload))
}

func TestChat_MissingTokenClosedWithPolicyViolation(t *testing.T) {
	f := setupChatServer(t, "unused")

	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("?session_id=session-1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestChat_MissingSessionClosedWithPolicyViolation(t *testing.T) {
	f := setupChatServer(t, "unused")

	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("?token="+f.token), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestChat_BearerHeaderAccepted(t *testing.T) {
	f := setupChatServer(t, "via header")

	header := map[string][]string{"Authorization": {"Bearer " + f.token}}
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("?session_id=session-1"), header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "via header", string(payload))
}
