package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"overbot/internal/config"
	"overbot/internal/constants"
	"overbot/internal/domain"
	"overbot/internal/metrics"
	"overbot/internal/middleware"
	"overbot/internal/repository"
	"overbot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const genericFailure = "Something went wrong while running this command. The error was reported, please try again later."

// userError is a message for the invoking user that is not worth reporting.
type userError string

func (e userError) Error() string { return string(e) }

const (
	errGuildOnly    userError = "This command can only be used in a server."
	errNoNickname   userError = "You don't have a rating nickname set."
	errLinkMissing  userError = "This link is not configured."
	errProfileIDArg userError = "A profile id is required, see /profile list."
)

// reply is the content a command edits its deferred response with.
type reply struct {
	embeds     []*discordgo.MessageEmbed
	components []discordgo.MessageComponent
}

func embedReply(embeds ...*discordgo.MessageEmbed) *reply {
	return &reply{embeds: embeds}
}

type commandHandler func(ctx context.Context, i *discordgo.InteractionCreate, opts options) (*reply, error)

type Bot struct {
	session   *discordgo.Session
	gateway   *Gateway
	cfg       *config.Config
	profiles  *service.ProfileService
	nicknames *service.NicknameService
	telemetry *service.TelemetryService
	servers   *repository.ServerRepository
	members   *repository.MemberRepository
	premium   *service.PremiumCache
	usage     *repository.CommandRepository
	pager     *Paginator
	logger    zerolog.Logger

	handlers   map[string]commandHandler
	dispatch   middleware.InteractionHandler
	registered []*discordgo.ApplicationCommand

	stopJanitor func()

	mu      sync.Mutex
	startup map[string]struct{}
}

func NewBot(
	session *discordgo.Session,
	gateway *Gateway,
	cfg *config.Config,
	profiles *service.ProfileService,
	nicknames *service.NicknameService,
	telemetry *service.TelemetryService,
	servers *repository.ServerRepository,
	members *repository.MemberRepository,
	premium *service.PremiumCache,
	usage *repository.CommandRepository,
	logger zerolog.Logger,
) *Bot {
	b := &Bot{
		session:   session,
		gateway:   gateway,
		cfg:       cfg,
		profiles:  profiles,
		nicknames: nicknames,
		telemetry: telemetry,
		servers:   servers,
		members:   members,
		premium:   premium,
		usage:     usage,
		pager:     NewPaginator(constants.PaginatorTTL),
		logger:    logger.With().Str("component", "bot").Logger(),
		startup:   make(map[string]struct{}),
	}

	b.handlers = map[string]commandHandler{
		"stats":            b.handleStats,
		"rating":           b.handleRating,
		"summary":          b.handleSummary,
		"profile link":     b.handleLink,
		"profile unlink":   b.handleUnlink,
		"profile list":     b.handleList,
		"profile rating":   b.handleProfileRating,
		"profile summary":  b.handleProfileSummary,
		"profile stats":    b.handleProfileStats,
		"profile nickname": b.handleNickname,
		"support":          b.linkHandler(func(l config.LinksConfig) string { return l.Support }),
		"invite":           b.linkHandler(func(l config.LinksConfig) string { return l.Invite }),
		"vote":             b.linkHandler(func(l config.LinksConfig) string { return l.Vote }),
		"github":           b.linkHandler(func(l config.LinksConfig) string { return l.GitHub }),
		"about":            b.handleAbout,
	}
	b.dispatch = middleware.Interaction(b.logger, constants.RequestTimeout)(b.route)

	return b
}

// Start opens the gateway and registers the slash commands, globally or in
// GUILD_ID when set.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildCreate)
	b.session.AddHandler(b.onGuildDelete)
	b.session.AddHandler(b.onEntitlementCreate)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord session: %w", err)
	}

	appID := b.session.State.User.ID
	b.registered = make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, cmd := range commands {
		registered, err := b.session.ApplicationCommandCreate(appID, b.cfg.GuildID, cmd, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("error creating command '%s': %w", cmd.Name, err)
		}
		b.registered = append(b.registered, registered)
	}

	b.stopJanitor = b.pager.StartJanitor(constants.PaginatorJanitor)

	b.logger.Info().Int("commands", len(b.registered)).Str("guild_id", b.cfg.GuildID).Msg("bot started")
	return nil
}

// Stop closes the gateway. Commands are only removed in debug mode, where
// they are registered per run.
func (b *Bot) Stop(ctx context.Context) error {
	if b.stopJanitor != nil {
		b.stopJanitor()
	}

	if b.cfg.Debug {
		appID := b.session.State.User.ID
		for _, cmd := range b.registered {
			if err := b.session.ApplicationCommandDelete(appID, b.cfg.GuildID, cmd.ID, discordgo.WithContext(ctx)); err != nil {
				b.logger.Warn().Err(err).Str("command", cmd.Name).Msg("failed to remove command")
			}
		}
	}

	b.logger.Info().Msg("closing Discord session")
	return b.session.Close()
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatch(context.Background(), s, i)
}

func (b *Bot) route(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.runCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		b.turnPage(ctx, s, i)
	}
}

func (b *Bot) runCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	logger := zerolog.Ctx(ctx)
	name, opts := commandName(i.ApplicationCommandData())

	handler, ok := b.handlers[name]
	if !ok {
		logger.Warn().Str("command", name).Msg("no handler for command")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
	if err != nil {
		logger.Error().Err(err).Str("command", name).Msg("failed to defer response")
		return
	}

	b.track(ctx, name, i)

	r, err := handler(ctx, i, opts)
	outcome := "ok"
	if err != nil {
		failure, report := failureReply(err)
		outcome = errorOutcome(err)
		if report {
			logger.Error().Err(err).Str("command", name).Msg("command failed")
			b.gateway.Report(ctx, reportEmbed(name, i, middleware.GetRequestID(ctx), err))
		} else {
			logger.Debug().Err(err).Str("command", name).Msg("command rejected")
		}
		r = failure
	}
	metrics.CommandsHandled.WithLabelValues(name, outcome).Inc()

	edit := &discordgo.WebhookEdit{Embeds: &r.embeds}
	if r.components != nil {
		edit.Components = &r.components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit, discordgo.WithContext(ctx)); err != nil {
		logger.Error().Err(err).Str("command", name).Msg("failed to edit response")
	}
}

// failureReply renders a command error. Classified and user errors are shown
// as they are; anything else gets a generic message and must be reported.
func failureReply(err error) (*reply, bool) {
	var de *domain.Error
	if errors.As(err, &de) {
		return embedReply(errorEmbed(de.Error())), false
	}
	var ue userError
	if errors.As(err, &ue) {
		return embedReply(errorEmbed(ue.Error())), false
	}
	return embedReply(errorEmbed(genericFailure)), true
}

func errorOutcome(err error) string {
	if kind, ok := domain.KindOf(err); ok {
		return kind.String()
	}
	var ue userError
	if errors.As(err, &ue) {
		return "rejected"
	}
	return "error"
}

// track records the invoking member and server and the command itself.
// Failures are logged only.
func (b *Bot) track(ctx context.Context, name string, i *discordgo.InteractionCreate) {
	logger := zerolog.Ctx(ctx)
	memberID := middleware.UserID(i)

	if err := b.members.Insert(ctx, memberID); err != nil {
		logger.Warn().Err(err).Msg("failed to insert member")
	}
	if i.GuildID != "" {
		if err := b.servers.Insert(ctx, i.GuildID); err != nil {
			logger.Warn().Err(err).Msg("failed to insert server")
		}
	}
	if err := b.usage.Record(ctx, domain.CommandUsage{Name: name, GuildID: i.GuildID, MemberID: memberID}); err != nil {
		logger.Warn().Err(err).Msg("failed to record command")
	}
}

func (b *Bot) turnPage(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	if !IsPagerButton(data.CustomID) {
		return
	}

	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseUpdateMessage}
	embed, components, err := b.pager.Turn(data.CustomID, middleware.UserID(i))
	if err != nil {
		resp.Type = discordgo.InteractionResponseChannelMessageWithSource
		resp.Data = &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{errorEmbed(err.Error())},
			Flags:  discordgo.MessageFlagsEphemeral,
		}
	} else {
		resp.Data = &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		}
	}

	if err := s.InteractionRespond(i.Interaction, resp, discordgo.WithContext(ctx)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to update page")
	}
}
