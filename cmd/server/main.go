package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/nutrigenie-ai/nutrigenie/pkg/ai"
	"github.com/nutrigenie-ai/nutrigenie/pkg/catalog"
	"github.com/nutrigenie-ai/nutrigenie/pkg/config"
	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
	"github.com/nutrigenie-ai/nutrigenie/pkg/httpapi"
	"github.com/nutrigenie-ai/nutrigenie/pkg/memory"
	"github.com/nutrigenie-ai/nutrigenie/pkg/planner"
	"github.com/nutrigenie-ai/nutrigenie/pkg/vectordb"
)

func main() {
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           log.DebugLevel,
	})

	cfg, err := config.LoadConfig(false)
	if err != nil {
		logger.Fatal(errors.Wrap(err, "unable to load config"))
	}

	store, err := db.NewStore(logger, cfg.DBPath)
	if err != nil {
		logger.Fatal(errors.Wrap(err, "unable to open sqlite store"))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close sqlite store", "error", err)
		}
	}()
	logger.Info("SQLite store ready", "path", cfg.DBPath)

	completionsService := ai.NewOpenAIService(logger, cfg.CompletionsAPIKey, cfg.CompletionsAPIURL)
	embeddingsService := ai.NewOpenAIService(logger, cfg.EmbeddingsAPIKey, cfg.EmbeddingsAPIURL)

	vectorStore, err := vectordb.NewStore(logger, cfg.VectorDBPath, vectordb.OpenAIEmbedding(embeddingsService, cfg.EmbeddingsModel))
	if err != nil {
		logger.Fatal(errors.Wrap(err, "unable to open vector store"))
	}
	logger.Info("Vector store ready", "path", cfg.VectorDBPath)

	mem := memory.New(logger, store, vectorStore)
	generator := planner.NewGenerator(logger, completionsService, cfg.CompletionsModel)
	plans := planner.New(logger, mem, generator)

	catalogClient := catalog.NewClient(logger, cfg.CatalogMCPURL)
	var session *catalog.Session
	{
		handshakeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		session, err = catalogClient.Initialize(handshakeCtx)
		cancel()
		if err != nil {
			logger.Warn("Catalog handshake failed at startup, retrying on first use", "error", err)
			session = nil
		}
	}

	api := httpapi.NewServer(logger, mem, plans, catalogClient, session)
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	go func() {
		logger.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(errors.Wrap(err, "http server failed"))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	<-signalChan
	logger.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
