package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/decartgilad/decart-video-processor/internal/batch"
	"github.com/decartgilad/decart-video-processor/internal/http/handlers"
	"github.com/decartgilad/decart-video-processor/internal/http/httpapi"
	"github.com/decartgilad/decart-video-processor/internal/infra"
	"github.com/decartgilad/decart-video-processor/internal/providers/decart"
	"github.com/decartgilad/decart-video-processor/internal/providers/video"
	"github.com/decartgilad/decart-video-processor/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	archiveStore, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure archive storage")
	}
	previewStore, err := storage.NewFileStore(cfg.PreviewDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure preview storage")
	}
	archive := storage.NewArchive(archiveStore)
	writer := storage.NewArtifactWriter(archive, previewStore, cfg.PreviewURLPrefix, &logger)

	client, err := decart.NewClient(decart.Options{
		APIKey:         cfg.DecartAPIKey,
		Endpoint:       cfg.DecartEndpoint(),
		RequestTimeout: cfg.DecartTimeout,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure decart client")
	}

	runner := batch.NewRunner(video.NewDecartTransformer(client), writer, &logger)
	app := handlers.NewApp(runner, archive, previewStore, cfg.MaxUploadBytes, &logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("endpoint", client.Endpoint()).
			Str("output_dir", archive.Dir()).
			Int("next_output", archive.Next()).
			Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
