package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/graph"
	"finance-tracker/internal/handler"
	"finance-tracker/internal/integrations/gemini"
	"finance-tracker/internal/pubsub"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"
	"finance-tracker/internal/utils/email"

	"github.com/gorilla/mux"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database. No persistence means nothing to serve.
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := repository.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer client.Disconnect(context.Background())

	stores, err := repository.NewStores(connectCtx, client.Database(cfg.MongoDB))
	if err != nil {
		logger.Fatalf("Failed to initialize stores: %v", err)
	}
	logger.Infof("MongoDB connected: %s", cfg.MongoDB)

	// Initialize layers
	bus := pubsub.NewBus()
	var mailer service.Mailer
	if cfg.SMTPConfigured() {
		mailer = email.NewSender(cfg, logger)
	}
	svc := service.NewService(stores, bus, mailer, logger, cfg)
	geminiClient := gemini.NewClient(cfg, logger)
	h := handler.NewHandler(svc, geminiClient, logger)

	schema := graphql.MustParseSchema(graph.Schema, graph.NewResolver(svc, bus, logger))

	// Expired-session sweep
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		deleted, err := stores.Sessions.DeleteExpired(ctx)
		if err != nil {
			logger.Errorf("Failed to clean expired sessions: %v", err)
			return
		}
		if deleted > 0 {
			logger.Infof("Cleaned %d expired sessions", deleted)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule session cleanup: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Setup router
	sessionMW := auth.Middleware(stores.Sessions, stores.Users, logger)
	r := mux.NewRouter()

	// GraphQL endpoint: HTTP posts plus graphql-ws subscriptions
	graphqlHandler := graphqlws.NewHandlerFunc(schema, &relay.Handler{Schema: schema})
	r.Handle("/graphql", sessionMW(graphqlHandler))

	// HTTP side-channel
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/generate", h.GenerateAdvice).Methods("POST")
	api.HandleFunc("/endpoint", h.Echo).Methods("POST")
	api.Handle("/export", sessionMW(http.HandlerFunc(h.ExportStatement))).Methods("GET")

	// Static asset fallback for the client application
	r.PathPrefix("/").Handler(h.SPA(cfg.StaticDir))

	// Start server. No write timeout: subscription connections are
	// long-lived.
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
