package history_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rediscache "github.com/vahan-ai/chat-gateway/internal/infrastructure/cache/redis"
	"github.com/vahan-ai/chat-gateway/internal/services/history"
)

func setupService(t *testing.T, window int) *history.Service {
	t.Helper()

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

	return history.NewService(cache, window, zerolog.Nop())
}

func TestAppend_PreservesOrderAndPrefixes(t *testing.T) {
	svc := setupService(t, 10)
	ctx := context.Background()

	require.NoError(t, svc.AppendUserLine(ctx, "user-1", "session-1", "hello"))
	require.NoError(t, svc.AppendReplyLine(ctx, "user-1", "session-1", "hi there"))
	require.NoError(t, svc.AppendUserLine(ctx, "user-1", "session-1", "how are you?"))
	require.NoError(t, svc.AppendReplyLine(ctx, "user-1", "session-1", "doing well"))

	lines, err := svc.All(ctx, "user-1", "session-1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"User: hello",
		"Chatbot: hi there",
		"User: how are you?",
		"Chatbot: doing well",
	}, lines)
}

func TestRecent_ReturnsNewestLines(t *testing.T) {
	svc := setupService(t, 4)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.AppendUserLine(ctx, "user-1", "session-1", fmt.Sprintf("message %d", i)))
	}

	recent, err := svc.Recent(ctx, "user-1", "session-1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"User: message 6",
		"User: message 7",
		"User: message 8",
		"User: message 9",
	}, recent)
}

func TestRecent_ShortTranscript(t *testing.T) {
	svc := setupService(t, 10)
	ctx := context.Background()

	require.NoError(t, svc.AppendUserLine(ctx, "user-1", "session-1", "only message"))

	recent, err := svc.Recent(ctx, "user-1", "session-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"User: only message"}, recent)
}

func TestRecent_EmptyTranscript(t *testing.T) {
	svc := setupService(t, 10)

	recent, err := svc.Recent(context.Background(), "user-1", "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestTranscripts_AreIsolatedPerSession(t *testing.T) {
	svc := setupService(t, 10)
	ctx := context.Background()

	require.NoError(t, svc.AppendUserLine(ctx, "user-1", "session-a", "in a"))
	require.NoError(t, svc.AppendUserLine(ctx, "user-1", "session-b", "in b"))
	require.NoError(t, svc.AppendUserLine(ctx, "user-2", "session-a", "other user"))

	lines, err := svc.All(ctx, "user-1", "session-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"User: in a"}, lines)

	n, err := svc.Len(ctx, "user-1", "session-b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
