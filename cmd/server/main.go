package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doc-collab-server/internal/access"
	"doc-collab-server/internal/author"
	"doc-collab-server/internal/chat"
	"doc-collab-server/internal/config"
	"doc-collab-server/internal/db"
	"doc-collab-server/internal/doctree"
	"doc-collab-server/internal/document"
	"doc-collab-server/internal/logger"
	"doc-collab-server/internal/middleware"
	"doc-collab-server/internal/notify"
	"doc-collab-server/internal/response"
	"doc-collab-server/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Initialize Redis
	cache := redis.New(config.AppConfig.RedisAddress)

	// Load the named-response table
	respTable, err := response.Load(config.AppConfig.ErrorTablePath)
	if err != nil {
		log.Fatalf("error loading response table: %v", err)
	}

	// Outbound notification worker
	notifier := notify.NewNotifier(
		notify.NewClient(config.AppConfig.NotifyAddress),
		notify.NewQueue(4),
	)
	defer notifier.Shutdown()

	// Initialize repository
	authorRepo := author.NewRepository(db.AppDb)
	accessRepo := access.NewRepository(db.AppDb)
	docRepo := document.NewRepository(db.AppDb)
	treeRepo := doctree.NewRepository(db.AppDb)
	chatRepo := chat.NewRepository(db.AppDb)
	// Initialize service
	authorService := author.NewService(authorRepo, cache, notifier)
	docProvider := document.NewProvider(docRepo)
	accessEngine := access.NewEngine(accessRepo, docProvider, authorService, notifier, config.AppConfig.FrontendAddress)
	docService := document.NewService(docRepo, accessEngine)
	treeService := doctree.NewService(treeRepo, accessEngine, docProvider)
	chatService := chat.NewService(chatRepo, authorService)
	// Initialize handler
	authorHandler := author.NewHandler(authorService, respTable)
	accessHandler := access.NewHandler(accessEngine, respTable)
	docHandler := document.NewHandler(docService, respTable)
	treeHandler := doctree.NewHandler(treeService, respTable)
	chatHandler := chat.NewHandler(chatService, respTable)

	// Initialize Gin router
	router := gin.Default()

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.ErrorHandler(respTable))
	router.Use(middleware.Identify(authorService))

	// Author routes
	router.POST("/author/", authorHandler.Register)
	router.GET("/author/", authorHandler.Search)
	router.GET("/author/:id", authorHandler.Show)
	router.PUT("/author/:id", authorHandler.Edit)
	router.GET("/reveal/", authorHandler.Reveal)
	router.GET("/check/author", authorHandler.CheckEmail)
	router.POST("/check/author", authorHandler.Activate)
	router.POST("/auth/", authorHandler.Login)

	// Document routes. Gin requires one name for the first wildcard
	// segment, so the two-segment form reads the role out of :id.
	router.GET("/doc/:id/:author_id", docHandler.ListByRole)
	router.POST("/doc/:id/:author_id", docHandler.Create)
	router.GET("/doc/:id", docHandler.Show)
	router.PUT("/doc/:id", docHandler.Edit)
	router.DELETE("/doc/:id", docHandler.Delete)
	router.GET("/batch/query/doc", docHandler.Search)
	router.POST("/batch/query/doc", docHandler.BatchQuery)
	router.POST("/batch/delete/doc", docHandler.BatchDelete)

	// Access routes
	router.GET("/invite/", accessHandler.Query)
	router.POST("/invite/", accessHandler.Grant)
	router.GET("/invite/link", accessHandler.InviteLink)
	router.DELETE("/kick/:doc_id/:author_id", accessHandler.Revoke)

	// Doc tree routes
	router.GET("/doctree/:author_id", treeHandler.Show)
	router.POST("/doctree/:author_id", treeHandler.Save)

	// Chat routes
	router.GET("/chat/", chatHandler.ListOrGet)
	router.POST("/chat/", chatHandler.Send)
	router.GET("/chat/:id", chatHandler.Show)
	router.GET("/records/", chatHandler.History)
	router.GET("/message/", chatHandler.Search)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		lg := logger.Get()
		lg.Info().Str("port", serverPort).Msg("server listening")
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
