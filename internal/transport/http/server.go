package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"communerag/internal/ai"
	appsvc "communerag/internal/app"
	"communerag/internal/bootstrap"
	"communerag/internal/cache"
	"communerag/internal/chunker"
	"communerag/internal/config"
	"communerag/internal/embedder"
	"communerag/internal/platform/rabbitmq"
	"communerag/internal/repository"
	"communerag/internal/router"
	"communerag/internal/transport/http/handler"
	"communerag/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	engine.GET("/healthz", healthHandler.Check)

	aiClient := ai.NewClient(ai.ClientConfig{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Timeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	emb := embedder.New(aiClient, cfg.LLM.EmbeddingModel, cfg.Retrieval.BatchSize)
	queryRouter := router.New(
		router.NewKeywordMatcher(cfg.Retrieval.TriggerKeywords),
		aiClient,
		cfg.ModelForVariant(ai.ModelSmall),
		cfg.App.OrgName,
	)
	split, err := chunker.New(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	interactionRepo := repository.NewInteractionRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)
	apiClientRepo := repository.NewAPIClientRepository(app.MySQL)

	askService := appsvc.NewAskService(
		queryRouter,
		emb,
		aiClient,
		app.IndexHolder,
		rabbitmq.NewInteractionPublisher(app.MQConn, cfg.RabbitMQ.InteractionQueue),
		cache.NewAnswerCache(app.Redis, time.Duration(cfg.Redis.AnswerTTLSeconds)*time.Second),
		askOptions(cfg),
	)
	indexService := appsvc.NewIndexService(
		split, emb, documentRepo, app.IndexHolder,
		cfg.Index.DocsDir, cfg.Index.VectorsPath, cfg.Index.ChunksPath,
	)
	authService := appsvc.NewAuthService(
		apiClientRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	feedbackService := appsvc.NewFeedbackService(interactionRepo)

	authHandler := handler.NewAuthHandler(authService)
	askHandler := handler.NewAskHandler(askService, time.Duration(cfg.App.QueryTimeoutSeconds)*time.Second)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	documentHandler := handler.NewDocumentHandler(documentRepo)
	adminHandler := handler.NewAdminHandler(indexService)

	v1 := engine.Group("/api/v1")
	v1.POST("/auth/token", authHandler.Token)

	authed := v1.Group("")
	authed.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	authed.POST("/ask", askHandler.Ask)
	authed.POST("/feedback", feedbackHandler.Submit)
	authed.GET("/documents", documentHandler.List)
	authed.POST("/admin/reindex", adminHandler.Reindex)

	return engine, nil
}

func askOptions(cfg *config.Config) appsvc.AskOptions {
	return appsvc.AskOptions{
		OrgName:         cfg.App.OrgName,
		SmallModel:      cfg.LLM.SmallModel,
		LargeModel:      cfg.LLM.LargeModel,
		DefaultVariant:  ai.ModelVariant(cfg.LLM.DefaultVariant),
		DefaultTopK:     cfg.Retrieval.TopK,
		DefaultMinScore: cfg.Retrieval.MinScore,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
	}
}
