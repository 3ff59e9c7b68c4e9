package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mediagrab/internal/fetch"
	httpapi "mediagrab/internal/http"
	"mediagrab/internal/http/handlers"
	"mediagrab/internal/infra"
	"mediagrab/internal/resolver"
	"mediagrab/internal/service"
	"mediagrab/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.DownloadPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize download storage")
	}

	hybrid := resolver.NewHybridClient(cfg.ResolverBaseURL, nil, logger)
	retriever := service.NewRetriever(hybrid, store, fetch.New(nil), cfg, logger)
	batch := service.NewBatch(retriever, cfg, logger)

	app := handlers.NewApp(cfg, logger, retriever, batch)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
