package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/pagebot/internal/app"
	"github.com/dfryer1193/pagebot/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(os.Getenv("PAGEBOT_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	cfg.SetupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pagebot, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pagebot")
	}
	defer func() {
		if err := pagebot.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close content store")
		}
	}()

	if err := pagebot.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
	}
}
