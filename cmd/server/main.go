package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/szabala94/KalamburyPro-master/internal/auth"
	"github.com/szabala94/KalamburyPro-master/internal/config"
	"github.com/szabala94/KalamburyPro-master/internal/game"
	"github.com/szabala94/KalamburyPro-master/internal/server"
	"github.com/szabala94/KalamburyPro-master/internal/storage"
	"github.com/szabala94/KalamburyPro-master/internal/ws"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewRepo(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database failed")
	}
	defer repo.Close()

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	gameHub := ws.NewHub()
	drawHub := ws.NewHub()

	registry := game.NewRegistry()
	words := game.NewWordSource(repo)
	coordinator := game.NewCoordinator(registry, words, repo, gameHub, cfg.RetryCount, cfg.RetryDelay)

	srv := server.New(
		auth.NewHandler(repo, tokens),
		ws.NewGateway(gameHub, coordinator, tokens, repo),
		ws.NewRelay(drawHub, tokens),
	)

	httpSrv := srv.HTTPServer(cfg.Port)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown incomplete")
	}
}
