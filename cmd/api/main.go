//	@title			Web3 Storage Gateway API
//	@version		1.0
//	@description	File-storage gateway: bytes in an S3-compatible bucket, metadata in PostgreSQL, scoped by wallet address.
//
//	@host		localhost:3001
//	@BasePath	/

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/web3store/gateway/internal/config"
	"github.com/web3store/gateway/internal/db"
	"github.com/web3store/gateway/internal/file"
	appMiddleware "github.com/web3store/gateway/internal/middleware"
	"github.com/web3store/gateway/internal/storage"

	_ "github.com/web3store/gateway/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStorage(
		cfg.SpacesEndpoint,
		cfg.SpacesAccessKey,
		cfg.SpacesSecretKey,
		cfg.SpacesBucket,
		cfg.SpacesPublicBase,
		cfg.SpacesUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	fileRepo := file.NewRepository(pool)
	fileSvc := file.NewService(fileRepo, store)
	fileHandler := file.NewHandler(fileSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:3001/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Gateway endpoints. Wallet verification is optional: with no
	// AUTH_JWT_SECRET the supplied walletAddress is trusted at face value,
	// matching the upstream contract.
	r.Group(func(r chi.Router) {
		if cfg.AuthJWTSecret != "" {
			r.Use(appMiddleware.RequireWallet(cfg.AuthJWTSecret))
		}
		r.Get("/totalSize", fileHandler.TotalSize)
		r.Get("/download/{id}", fileHandler.Download)
		r.Delete("/delete/{filename}", fileHandler.Delete)
		r.Post("/delete-multiple", fileHandler.DeleteMultiple)
		r.Get("/files", fileHandler.List)
		r.Get("/files/{id}", fileHandler.Get)
		r.Post("/create-folder", fileHandler.CreateFolder)
		r.Post("/upload", fileHandler.Upload)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
