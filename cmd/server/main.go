package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/wirechat/messenger/internal/api"
	"github.com/wirechat/messenger/internal/cassandra"
	"github.com/wirechat/messenger/internal/config"
	"github.com/wirechat/messenger/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// One client for the whole process; stores share it by reference.
	client := cassandra.NewClient(cassandra.Config{
		Host:       cfg.CassandraHost,
		Port:       cfg.CassandraPort,
		Keyspace:   cfg.CassandraKeyspace,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		Timeout:    cfg.QueryTimeout,
	})
	if err := client.ConnectWithRetry(context.Background()); err != nil {
		log.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	defer client.Close()

	messageStore := store.NewMessageStore(client)
	conversationStore := store.NewConversationStore(client)

	messageHandler := api.NewMessageHandler(messageStore, conversationStore)
	conversationHandler := api.NewConversationHandler(conversationStore)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiRoutes := router.Group("/api")
	{
		apiRoutes.POST("/messages", messageHandler.SendMessage)
		apiRoutes.GET("/conversations/:conversationID", conversationHandler.GetConversation)
		apiRoutes.GET("/conversations/:conversationID/messages", messageHandler.GetConversationMessages)
		apiRoutes.GET("/conversations/:conversationID/messages/latest", messageHandler.GetLatestMessages)
		apiRoutes.PUT("/conversations/:conversationID/messages/:messageID/read", messageHandler.MarkMessageRead)
		apiRoutes.GET("/users/:userID/conversations", conversationHandler.GetUserConversations)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
