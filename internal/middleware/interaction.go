package middleware

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InteractionHandler handles one Discord interaction. The context carries the
// request id and a logger bound to it.
type InteractionHandler func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate)

// Interaction is the gateway counterpart of RequestID: every interaction gets
// a fresh id, a child logger and start/completion log lines.
func Interaction(logger zerolog.Logger, timeout time.Duration) func(InteractionHandler) InteractionHandler {
	return func(next InteractionHandler) InteractionHandler {
		return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
			start := time.Now()
			requestID := uuid.New().String()

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			ctx = context.WithValue(ctx, RequestIDKey, requestID)

			loggerWithID := logger.With().
				Str("request_id", requestID).
				Str("interaction_id", i.ID).
				Str("guild_id", i.GuildID).
				Str("user_id", UserID(i)).
				Logger()
			ctx = loggerWithID.WithContext(ctx)

			loggerWithID.Debug().Str("type", i.Type.String()).Msg("interaction started")

			next(ctx, s, i)

			duration := time.Since(start)
			loggerWithID.Info().
				Str("type", i.Type.String()).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("interaction completed")
		}
	}
}

// UserID returns the id of the user behind an interaction, in a guild or a
// direct message.
func UserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
