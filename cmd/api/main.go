package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mechanic-backend/cmd"
	"mechanic-backend/internal/api"
	"mechanic-backend/internal/chat"
	"mechanic-backend/internal/database"
	"mechanic-backend/internal/llm"
	"mechanic-backend/internal/prefs"
)

type APIConfig struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY,notEmpty,required"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	AppDataDir   string `env:"APP_DATA_DIR" envDefault:"./mechanic-data"`
	APIPort      string `env:"API_PORT" envDefault:"8001"`
	MaxSessions  int    `env:"MAX_SESSIONS" envDefault:"128"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := database.NewDatabase(cfg.AppDataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	gateway := llm.NewGateway(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	manager := chat.NewSessionManager(db, gateway, cfg.MaxSessions)
	prefStore := prefs.NewStore(db)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	chatHandler := api.NewChatService(db, manager, gateway, prefStore)

	r.Route("/api", func(r chi.Router) {
		chatHandler.AddRoutes(r)
	})

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	slog.Info("API server listening", "port", cfg.APIPort, "model", cfg.OpenAIModel)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
