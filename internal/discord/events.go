package discord

import (
	"context"
	"fmt"

	"overbot/internal/constants"
	"overbot/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.mu.Lock()
	b.startup = make(map[string]struct{}, len(r.Guilds))
	for _, g := range r.Guilds {
		b.startup[g.ID] = struct{}{}
	}
	b.mu.Unlock()

	metrics.Guilds.Set(float64(len(r.Guilds)))
	b.logger.Info().Str("user", r.User.String()).Int("guilds", len(r.Guilds)).Msg("bot is online")

	ctx, cancel := context.WithTimeout(context.Background(), constants.WebhookTimeout)
	defer cancel()
	b.gateway.Report(ctx, &discordgo.MessageEmbed{Description: "Bot is online.", Color: colorSuccess})
}

// onGuildCreate also fires for every guild of the ready payload; only
// guilds joined afterwards are logged as new.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := b.servers.Insert(ctx, g.ID); err != nil {
		b.logger.Warn().Err(err).Str("guild_id", g.ID).Msg("failed to insert server")
	}

	b.mu.Lock()
	_, known := b.startup[g.ID]
	delete(b.startup, g.ID)
	b.mu.Unlock()
	if known {
		return
	}

	metrics.Guilds.Inc()
	b.logger.Info().Str("guild_id", g.ID).Str("name", g.Name).Msg("joined guild")
	b.gateway.Report(ctx, guildLogEmbed(g.Guild, colorSuccess))
}

func (b *Bot) onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	// outage, not a removal
	if g.Unavailable {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := b.servers.Delete(ctx, g.ID); err != nil {
		b.logger.Warn().Err(err).Str("guild_id", g.ID).Msg("failed to delete server")
	}

	guild := g.Guild
	if g.BeforeDelete != nil {
		guild = g.BeforeDelete
	}
	metrics.Guilds.Dec()
	b.logger.Info().Str("guild_id", g.ID).Str("name", guild.Name).Msg("left guild")
	b.gateway.Report(ctx, guildLogEmbed(guild, colorError))
}

// onEntitlementCreate grants premium for a purchase, to the guild when the
// entitlement has one and to the buying user otherwise.
func (b *Bot) onEntitlementCreate(s *discordgo.Session, e *discordgo.EntitlementCreate) {
	if e.Entitlement == nil || e.Type != discordgo.EntitlementTypePurchase {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()
	b.grantPremium(ctx, e.GuildID, e.UserID)
}

func (b *Bot) grantPremium(ctx context.Context, guildID, userID string) {
	var (
		target string
		err    error
	)
	switch {
	case guildID != "":
		target, err = guildID, b.servers.SetPremium(ctx, guildID)
	case userID != "":
		target, err = userID, b.members.SetPremium(ctx, userID)
	default:
		return
	}

	logger := b.logger.With().Str("target_id", target).Logger()
	if err != nil {
		logger.Error().Err(err).Msg("failed to set premium")
		b.gateway.Report(ctx, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("Cannot set premium for **%s**.", target),
			Color:       colorError,
		})
		return
	}

	b.premium.Add(target)
	logger.Info().Msg("premium set")
	b.gateway.Report(ctx, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Premium set for **%s**.", target),
		Color:       colorSuccess,
	})
}
