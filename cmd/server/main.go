// Package main is the entry point for the chat gateway.
// @title Chat Gateway API
// @version 1.0
// @description Real-time retrieval-augmented chat service with credential-based access control

// @host localhost:8080
// @BasePath /api/v1
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vahan-ai/chat-gateway/internal/api/handlers"
	"github.com/vahan-ai/chat-gateway/internal/api/middleware"
	"github.com/vahan-ai/chat-gateway/internal/api/routes"
	"github.com/vahan-ai/chat-gateway/internal/config"
	"github.com/vahan-ai/chat-gateway/internal/core/cache"
	"github.com/vahan-ai/chat-gateway/internal/core/docdb"
	rediscache "github.com/vahan-ai/chat-gateway/internal/infrastructure/cache/redis"
	"github.com/vahan-ai/chat-gateway/internal/infrastructure/docdb/mongodb"
	openaillm "github.com/vahan-ai/chat-gateway/internal/infrastructure/llm/openai"
	weaviatestore "github.com/vahan-ai/chat-gateway/internal/infrastructure/vector/weaviate"
	"github.com/vahan-ai/chat-gateway/internal/services/assembler"
	"github.com/vahan-ai/chat-gateway/internal/services/auth"
	"github.com/vahan-ai/chat-gateway/internal/services/chat"
	"github.com/vahan-ai/chat-gateway/internal/services/history"
	"github.com/vahan-ai/chat-gateway/internal/services/knowledge"
	"github.com/vahan-ai/chat-gateway/internal/services/metrics"
	"github.com/vahan-ai/chat-gateway/internal/services/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Log)

	ctx := context.Background()

	cacheClient, err := createCacheClient(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache client")
	}
	defer cacheClient.Close()

	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	defer docDBClient.Close(ctx)

	if err := docDBClient.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	vectorStore, err := weaviatestore.NewStore(weaviatestore.Config{URL: cfg.Vector.URL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vector store")
	}

	llmClient, err := openaillm.NewClient(openaillm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize llm client")
	}

	authService, err := auth.NewService(docDBClient.Users(), cacheClient, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth service")
	}

	historyService := history.NewService(cacheClient, cfg.Chat.HistoryWindow, log.Logger)
	assemblerService := assembler.NewService(llmClient, vectorStore, historyService, cfg.Chat.DocTopK, cfg.Chat.HistoryTopK, log.Logger)
	evaluator := metrics.NewEvaluator(cacheClient, llmClient, log.Logger)
	orchestrator := chat.NewOrchestrator(assemblerService, llmClient, llmClient, vectorStore, historyService, evaluator, log.Logger)
	knowledgeService := knowledge.NewService(llmClient, vectorStore, docDBClient.Documents(), log.Logger)
	connRegistry := registry.NewRegistry(log.Logger)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	loggingMw := middleware.NewLoggingMiddleware(log.Logger)
	errorMw := middleware.NewErrorMiddleware()
	authMw := middleware.NewAuthMiddleware(authService)

	routesCfg := &routes.Config{
		HealthHandler:    handlers.NewHealthHandler(cacheClient, docDBClient, vectorStore),
		AuthHandler:      handlers.NewAuthHandler(authService),
		ChatHandler:      handlers.NewChatHandler(authService, connRegistry, orchestrator, log.Logger),
		SessionHandler:   handlers.NewSessionHandler(),
		DocumentsHandler: handlers.NewDocumentsHandler(knowledgeService),
		MetricsHandler:   handlers.NewMetricsHandler(evaluator),
		AuthMiddleware:   authMw,
	}
	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw, middleware.DefaultCORSConfig())

	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// createCacheClient creates a cache client based on the configuration.
func createCacheClient(cfg config.CacheConfig) (cache.Cache, error) {
	switch cache.Type(cfg.Type) {
	case cache.TypeRedis:
		return rediscache.NewCache(rediscache.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.TTL,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported cache type")
		return nil, nil
	}
}

// createDocDBClient creates a document database client based on the configuration.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	switch docdb.Type(cfg.Type) {
	case docdb.TypeMongoDB:
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported docdb type")
		return nil, nil
	}
}
