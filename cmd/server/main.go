package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpattn/cabletrack/internal/config"
	"github.com/rpattn/cabletrack/internal/db"
	"github.com/rpattn/cabletrack/internal/export"
	"github.com/rpattn/cabletrack/internal/ingestion"
	"github.com/rpattn/cabletrack/internal/middleware"
	"github.com/rpattn/cabletrack/internal/repository"
	"github.com/rpattn/cabletrack/internal/snapshot"

	"github.com/rs/cors"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConfig, serverConfig, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	conn, err := db.NewConnection(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn.Pool, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	uploadRepo := repository.NewUploadRepository(conn.Pool)
	runRepo := repository.NewImportRunRepository(conn.Pool)

	// Services
	ingestService := ingestion.NewService(uploadRepo, runRepo)
	snapshotService := snapshot.NewService(uploadRepo, runRepo)
	exportService := export.NewService(snapshotService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("POST /ingest", ingestion.NewHTTPHandler(ingestService))
	snapshot.NewHTTPHandler(snapshotService).RegisterRoutes(mux)
	export.NewHTTPHandler(exportService).RegisterRoutes(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   serverConfig.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := middleware.LoggingMiddleware(
		middleware.ActorMiddleware(corsHandler.Handler(mux)),
	)

	server := &http.Server{
		Addr:         serverConfig.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting cable-tracking server on %s", serverConfig.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
