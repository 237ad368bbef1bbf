package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/QuirkyNerd/medical-rag-assistant/config"
	"github.com/QuirkyNerd/medical-rag-assistant/controller"
	"github.com/QuirkyNerd/medical-rag-assistant/services"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Chroma holds the medical reference corpus the chat endpoint retrieves
	// from.
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	collection, err := getOrCreateCollection(chromaClient, cfg.CollectionName)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	gemini, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiVisionModel, cfg.GeminiChatModel)
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini service: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaURL, cfg.EmbeddingModel)
	retriever := services.NewRetrievalService(collection, embedder, cfg.RetrievalTopK)
	extraction := services.NewExtractionService(gemini)
	chat := services.NewChatService(retriever, gemini)
	reportController := controller.NewReportController(extraction, chat)

	// Keep the reference corpus in sync in the background.
	if cfg.ReferenceDir != "" {
		indexer := services.NewReferenceIndexer(collection, embedder)
		indexCtx := context.Background()
		go indexer.ScanAndIndexDirectory(indexCtx, cfg.ReferenceDir)
		go indexer.WatchDirectory(indexCtx, cfg.ReferenceDir)
	}

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Medical Report Assistant",
			"version": "1.0.0",
		})
	})

	// JSON bodies carry the upload as base64, so allow for the ~4/3
	// inflation plus envelope overhead on top of the raw file cap.
	maxBody := int64(cfg.MaxUploadMB)*1024*1024*4/3 + 64*1024

	apiV1 := router.Group("/api/v1")
	apiV1.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		c.Next()
	})
	{
		apiV1.POST("/extract", reportController.ExtractReport) // analyze an uploaded report
		apiV1.POST("/chat", reportController.Chat)             // streamed consultation answer
	}

	log.Printf("Medical report assistant starting on http://localhost:%s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST http://localhost:%s/api/v1/extract", cfg.Port)
	log.Printf("  POST http://localhost:%s/api/v1/chat", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// getOrCreateCollection ensures the reference collection exists.
func getOrCreateCollection(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s'...", collectionName)

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Medical reference document corpus"),
				chromago.NewStringAttribute("created_by", "report_assistant"),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully got/created collection '%s'", collectionName)
	return collection, nil
}
