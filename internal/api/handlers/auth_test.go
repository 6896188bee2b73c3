package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vahan-ai/chat-gateway/internal/api/handlers"
	"github.com/vahan-ai/chat-gateway/internal/api/middleware"
	domainerrors "github.com/vahan-ai/chat-gateway/internal/domain/errors"
	"github.com/vahan-ai/chat-gateway/internal/domain/models"
	rediscache "github.com/vahan-ai/chat-gateway/internal/infrastructure/cache/redis"
	"github.com/vahan-ai/chat-gateway/internal/services/auth"
	"github.com/vahan-ai/chat-gateway/tests/mocks"
)

func setupAuthRouter(t *testing.T, users *mocks.MockUsersCollection) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)

	cache, err := rediscache.NewCache(rediscache.Config{
		Host: mr.Host(),
		Port: mr.Port(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	authService, err := auth.NewService(users, cache, "test-secret", time.Hour, zerolog.Nop())
	require.NoError(t, err)

	handler := handlers.NewAuthHandler(authService)
	authMw := middleware.NewAuthMiddleware(authService)

	router := gin.New()
	router.POST("/auth/signup", handler.Signup)
	router.POST("/auth/login", handler.Login)
	router.POST("/auth/logout", authMw.Authenticate(), handler.Logout)
	return router
}

func postJSON(router *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignup_Created(t *testing.T) {
	users := &mocks.MockUsersCollection{}
	users.On("Insert", mock.Anything, mock.Anything).Return(nil)
	router := setupAuthRouter(t, users)

	w := postJSON(router, "/auth/signup", `{"email":"alice@example.com","password":"s3cretpass"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestSignup_InvalidBody(t *testing.T) {
	router := setupAuthRouter(t, &mocks.MockUsersCollection{})

	w := postJSON(router, "/auth/signup", `{"email":"not-an-email","password":"short"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_DuplicateEmailConflict(t *testing.T) {
	users := &mocks.MockUsersCollection{}
	users.On("Insert", mock.Anything, mock.Anything).
		Return(domainerrors.NewConflictError("email already registered", "alice@example.com"))
	router := setupAuthRouter(t, users)

	w := postJSON(router, "/auth/signup", `{"email":"alice@example.com","password":"s3cretpass"}`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_IssuesToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mocks.MockUsersCollection{}
	users.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash)}, nil)
	router := setupAuthRouter(t, users)

	w := postJSON(router, "/auth/login", `{"email":"alice@example.com","password":"s3cretpass"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		UserID      string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "bearer", body.TokenType)
	assert.Equal(t, "user-1", body.UserID)
}

func TestLogin_WrongPasswordUnauthorized(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mocks.MockUsersCollection{}
	users.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash)}, nil)
	router := setupAuthRouter(t, users)

	w := postJSON(router, "/auth/login", `{"email":"alice@example.com","password":"wrong-pass"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_RequiresAuthAndRevokes(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mocks.MockUsersCollection{}
	users.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash)}, nil)
	router := setupAuthRouter(t, users)

	login := postJSON(router, "/auth/login", `{"email":"alice@example.com","password":"s3cretpass"}`, nil)
	require.Equal(t, http.StatusOK, login.Code)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &body))

	headers := map[string]string{"Authorization": "Bearer " + body.AccessToken}

	w := postJSON(router, "/auth/logout", "", headers)
	assert.Equal(t, http.StatusOK, w.Code)

	// The revoked credential no longer authorizes.
	w = postJSON(router, "/auth/logout", "", headers)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_WithoutTokenUnauthorized(t *testing.T) {
	router := setupAuthRouter(t, &mocks.MockUsersCollection{})

	w := postJSON(router, "/auth/logout", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
