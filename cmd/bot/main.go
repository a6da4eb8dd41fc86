package main

import (
	"context"
	"errors"
	"net/http"

	"overbot/internal/constants"
	"overbot/internal/discord"
	fxmodules "overbot/internal/fx"
	"overbot/internal/tasks"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runBot),
	).Run()
}

// runBot starts the gateway first, the background tasks that read its state
// next and the status server last. They stop in reverse order.
func runBot(
	lc fx.Lifecycle,
	bot *discord.Bot,
	runner *tasks.Runner,
	srv *http.Server,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: bot.Start,
		OnStop:  bot.Stop,
	})

	lc.Append(fx.Hook{
		OnStart: runner.Start,
		OnStop:  runner.Stop,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("status server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("status server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down status server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("status server shutdown failed")
				return err
			}
			logger.Info().Msg("status server stopped gracefully")
			return nil
		},
	})
}
