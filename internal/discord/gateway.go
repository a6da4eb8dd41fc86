package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"overbot/internal/config"
	"overbot/internal/domain"
	"overbot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var errNoNewsChannel = errors.New("discord: no news channel configured")

// NewSession creates the gateway session. It is opened by the bot
// lifecycle hook.
func NewSession(cfg *config.Config) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

// Gateway exposes the session to the services: nickname edits, news posts,
// webhook reports and the live guild state.
type Gateway struct {
	session *discordgo.Session
	cfg     *config.Config
	logger  zerolog.Logger
}

func NewGateway(session *discordgo.Session, cfg *config.Config, logger zerolog.Logger) *Gateway {
	return &Gateway{
		session: session,
		cfg:     cfg,
		logger:  logger.With().Str("component", "gateway").Logger(),
	}
}

func (g *Gateway) EditNickname(ctx context.Context, guildID, memberID, nick string) error {
	return g.session.GuildMemberNickname(guildID, memberID, nick, discordgo.WithContext(ctx))
}

func (g *Gateway) PublishNews(ctx context.Context, article domain.Article) error {
	if g.cfg.NewsChannelID == "" {
		return errNoNewsChannel
	}
	_, err := g.session.ChannelMessageSendEmbed(g.cfg.NewsChannelID, newsEmbed(article), discordgo.WithContext(ctx))
	return err
}

// Report sends an embed to the log webhook. It is a no-op in debug mode or
// without a webhook.
func (g *Gateway) Report(ctx context.Context, embed *discordgo.MessageEmbed) {
	if g.cfg.Debug || g.cfg.WebhookID == "" || g.cfg.WebhookToken == "" {
		return
	}

	_, err := g.session.WebhookExecute(g.cfg.WebhookID, g.cfg.WebhookToken, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		g.logger.Warn().Err(err).Msg("failed to send webhook report")
	}
}

func (g *Gateway) Guilds() []service.GuildInfo {
	state := g.session.State
	state.RLock()
	defer state.RUnlock()

	guilds := make([]service.GuildInfo, 0, len(state.Guilds))
	for _, guild := range state.Guilds {
		guilds = append(guilds, g.guildInfo(guild))
	}
	return guilds
}

func (g *Gateway) Guild(id string) (service.GuildInfo, bool) {
	guild, err := g.session.State.Guild(id)
	if err != nil {
		return service.GuildInfo{}, false
	}
	return g.guildInfo(guild), true
}

func (g *Gateway) guildInfo(guild *discordgo.Guild) service.GuildInfo {
	info := service.GuildInfo{
		ID:       guild.ID,
		Name:     guild.Name,
		Members:  guild.MemberCount,
		Large:    guild.Large,
		ShardID:  g.session.ShardID,
		JoinedAt: guild.JoinedAt,
	}
	if guild.Icon != "" {
		info.Icon = guild.IconURL("128")
	}
	return info
}

// Shards describes the single shard this process runs.
func (g *Gateway) Shards() []service.Shard {
	guilds := g.Guilds()
	members := 0
	for _, guild := range guilds {
		members += guild.Members
	}
	return []service.Shard{{
		ID:          g.session.ShardID + 1,
		Latency:     float64(g.Latency().Microseconds()) / 1000,
		GuildCount:  len(guilds),
		MemberCount: members,
	}}
}

func (g *Gateway) Latency() time.Duration {
	return g.session.HeartbeatLatency()
}

func (g *Gateway) Commands() []service.CommandInfo {
	return commandInfos()
}
