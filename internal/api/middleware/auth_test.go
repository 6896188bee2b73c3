package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vahan-ai/chat-gateway/internal/api/middleware"
	"github.com/vahan-ai/chat-gateway/internal/domain/models"
	rediscache "github.com/vahan-ai/chat-gateway/internal/infrastructure/cache/redis"
	"github.com/vahan-ai/chat-gateway/internal/services/auth"
	"github.com/vahan-ai/chat-gateway/tests/mocks"
)

func setupRouter(t *testing.T) (*gin.Engine, string) {
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

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mocks.MockUsersCollection{}
	users.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash)}, nil)

	authService, err := auth.NewService(users, cache, "test-secret", time.Hour, zerolog.Nop())
	require.NoError(t, err)

	creds, err := authService.Login(context.Background(), "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	router := gin.New()
	authMw := middleware.NewAuthMiddleware(authService)
	router.GET("/protected", authMw.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": middleware.GetSubjectID(c)})
	})

	return router, creds.AccessToken
}

func TestAuthenticate_ValidToken(t *testing.T) {
	router, token := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	router, token := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", token) // no Bearer prefix
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
