package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/reelcut/internal/api"
	"github.com/bobarin/reelcut/internal/config"
	"github.com/bobarin/reelcut/internal/db"
	"github.com/bobarin/reelcut/internal/export"
	"github.com/bobarin/reelcut/internal/kv"
	"github.com/bobarin/reelcut/internal/queue"
	"github.com/bobarin/reelcut/internal/worker"
)

func main() {
	log.Println("Starting Reelcut API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Session state store shares the Redis instance with the queue
	kvs, err := kv.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to session store: %v", err)
	}
	defer kvs.Close()

	// Render backend client
	render := export.NewClient(cfg.RenderBackendURL, cfg.RenderAPIKey)

	// Editor sessions
	sessions := api.NewSessions(database, kvs, api.SessionConfig{
		HistoryCap:   cfg.HistoryCap,
		CanvasWidth:  cfg.CanvasWidth,
		CanvasHeight: cfg.CanvasHeight,
		FrameRate:    cfg.FrameRate,
		AssetsDir:    cfg.AssetsDir,
		FontsDir:     cfg.FontsDir,
		TextBGDark:   cfg.TextBGDark,
		TextBGLight:  cfg.TextBGLight,
	})
	defer sessions.CloseAll()

	// Create API handler
	handler := api.NewHandler(database, q, kvs, render, sessions, export.Options{
		Width:   cfg.CanvasWidth,
		Height:  cfg.CanvasHeight,
		FPS:     cfg.FrameRate,
		DarkBG:  cfg.TextBGDark,
		LightBG: cfg.TextBGLight,
	})
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		w := worker.New(database, q, render, kvs)

		var workerCtx context.Context
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
