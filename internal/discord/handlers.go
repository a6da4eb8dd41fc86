package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"overbot/internal/config"
	"overbot/internal/domain"
	"overbot/internal/middleware"
	"overbot/internal/profile"
	"overbot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

func identifier(opts options) (domain.Identifier, error) {
	id, err := domain.NewIdentifier(opts.stringOpt("platform"), opts.stringOpt("username"))
	if err != nil {
		return domain.Identifier{}, &domain.Error{Kind: domain.KindValidation, Err: err}
	}
	return id, nil
}

// memberName is the name a rating nickname is built from.
func memberName(i *discordgo.InteractionCreate) string {
	if i.Member == nil || i.Member.User == nil {
		return ""
	}
	if i.Member.User.GlobalName != "" {
		return i.Member.User.GlobalName
	}
	return i.Member.User.Username
}

// profileID returns the profile option, or the member's first linked
// profile when it is omitted.
func (b *Bot) profileID(ctx context.Context, memberID string, opts options) (int64, error) {
	if id, ok := opts.intOpt("profile"); ok {
		return id, nil
	}
	profiles, err := b.profiles.RequireLinked(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return profiles[0].ID, nil
}

func (b *Bot) handleStats(ctx context.Context, i *discordgo.InteractionCreate, opts options) (*reply, error) {
	id, err := identifier(opts)
	if err != nil {
		return nil, err
	}
	p, err := b.profiles.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.statsReply(i, p, id, opts.stringOpt("hero"))
}

func (b *Bot) statsReply(i *discordgo.InteractionCreate, p *profile.Profile, id domain.Identifier, heroInput string) (*reply, error) {
	if p.IsPrivate() {
		return embedReply(privateEmbed(p, id)), nil
	}

	hero := p.HeroKey(heroInput)
	pages, err := p.BuildStatPages(hero)
	if err != nil {
		return nil, err
	}

	embeds := statPageEmbeds(p, id, hero, b.heroThumbnail(p, hero), pages)
	first, components, err := b.pager.Start(middleware.UserID(i), embeds)
	if err != nil {
		return nil, err
	}
	return &reply{embeds: []*discordgo.MessageEmbed{first}, components: components}, nil
}

func (b *Bot) heroThumbnail(p *profile.Profile, hero string) string {
	if hero == profile.AllHeroes || b.cfg.Overwatch.HeroIconURL == "" {
		return p.Avatar()
	}
	return fmt.Sprintf(b.cfg.Overwatch.HeroIconURL, strings.ToLower(hero))
}

func (b *Bot) handleRating(ctx context.Context, _ *discordgo.InteractionCreate, opts options) (*reply, error) {
	id, err := identifier(opts)
	if err != nil {
		return nil, err
	}
	p, err := b.profiles.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsPrivate() {
		return embedReply(privateEmbed(p, id)), nil
	}
	return embedReply(ratingsEmbed(p, id)), nil
}

func (b *Bot) handleSummary(ctx context.Context, _ *discordgo.InteractionCreate, opts options) (*reply, error) {
	id, err := identifier(opts)
	if err != nil {
		return nil, err
	}
	p, err := b.profiles.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsPrivate() {
		return embedReply(privateEmbed(p, id)), nil
	}
	return embedReply(summaryEmbed(p, id)), nil
}

// handleLink checks the account exists upstream before linking it.
func (b *Bot) handleLink(ctx context.Context, i *discordgo.InteractionCreate, opts options) (*reply, error) {
	id, err := identifier(opts)
	if err != nil {
		return nil, err
	}
	if _, err := b.profiles.Lookup(ctx, id); err != nil {
		return nil, err
	}

	linked, err := b.profiles.Link(ctx, middleware.UserID(i), i.GuildID, id)
	if err != nil {
		return nil, err
	}
	return embedReply(successEmbed(fmt.Sprintf("Profile `%s` (%s) linked with id `%d`.",
		linked.Username, linked.Platform.DisplayName(), linked.ID))), nil
}

func (b *Bot) handleUnlink(ctx context.Context, i *discordgo.InteractionCreate, opts options) (*reply, error) {
	profileID, ok := opts.intOpt("profile")
	if !ok {
		return nil, errProfileIDArg
	}
	if err := b.profiles.Unlink(ctx, middleware.UserID(i), profileID); err != nil {
		return nil, err
	}
	return embedReply(successEmbed(fmt.Sprintf("Profile `%d` unlinked.", profileID))), nil
}

func (b *Bot) handleList(ctx context.Context, i *discordgo.InteractionCreate, _ options) (*reply, error) {
	memberID := middleware.UserID(i)
	profiles, err := b.profiles.RequireLinked(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return embedReply(profileListEmbed(profiles, b.profiles.Limit(memberID, i.GuildID))), nil
}

// handleProfileRating shows the ratings of a linked profile, stores them in
// the history and refreshes the member's rating nickname.
func (b *Bot) handleProfileRating(ctx context.Context, i *discordgo.InteractionCreate, opts options) (*reply, error) {
	memberID := middleware.UserID(i)
	profileID, err := b.profileID(ctx, memberID, opts)
	if err != nil {
		return nil, err
	}
	linked, p, err := b.profiles.LookupLinked(ctx, memberID, profileID)
	if err != nil {
		return nil, err
	}

	id := linked.Identifier()
	if p.IsPrivate() {
		return embedReply(privateEmbed(p, id)), nil
	}

	embed := ratingsEmbed(p, id)
	if ratings, ok := p.Ratings(); ok {
		if _, err := b.profiles.SaveRatings(ctx, linked.ID, ratings); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("profile_id", linked.ID).Msg("failed to save ratings")
		}
		if i.GuildID != "" {
			b.nicknames.Refresh(ctx, i.GuildID, memberID, memberName(i), ratings)
		}
	}

	history, err := b.profiles.RatingHistory(ctx, linked.ID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("profile_id", linked.ID).Msg("failed to load rating history")
	} else if len(history) > 0 {
		embed.Fields = append(embed.Fields, historyField(history))
	}
	return embedReply(embed), nil
}

func (b *Bot) handleProfileSummary(ctx context.Context, i *discordgo.InteractionCreate, opts options) (*reply, error) {
	memberID := middleware.UserID(i)
	profileID, err := b.profileID(ctx, memberID, opts)
	if err != nil {
		return nil, err
	}
	linked, p, err := b.profiles.LookupLinked(ctx, memberID, profileID)
	if err != nil {
		return nil, err
	}
	if p.IsPrivate() {
		return embedReply(privateEmbed(p, linked.Identifier())), nil
	}
	return embedReply(summaryEmbed(p, linked.Identifier())), nil
}

func (b *Bot) handleProfileStats(ctx context.Context, i *discordgo.InteractionCreate, opts options) (*reply, error) {
	memberID := middleware.UserID(i)
	profileID, err := b.profileID(ctx, memberID, opts)
	if err != nil {
		return nil, err
	}
	linked, p, err := b.profiles.LookupLinked(ctx, memberID, profileID)
	if err != nil {
		return nil, err
	}
	return b.statsReply(i, p, linked.Identifier(), opts.stringOpt("hero"))
}

func (b *Bot) handleNickname(ctx context.Context, i *discordgo.InteractionCreate, opts options) (*reply, error) {
	if i.GuildID == "" {
		return nil, errGuildOnly
	}
	memberID := middleware.UserID(i)

	if opts.boolOpt("remove") {
		exists, err := b.nicknames.Exists(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errNoNickname
		}
		if err := b.nicknames.Remove(ctx, i.GuildID, memberID); err != nil {
			return nil, err
		}
		return embedReply(successEmbed("Nickname removed.")), nil
	}

	profileID, err := b.profileID(ctx, memberID, opts)
	if err != nil {
		return nil, err
	}
	nick, err := b.nicknames.Set(ctx, i.GuildID, memberID, memberName(i), profileID)
	var private *service.PrivateProfileError
	if errors.As(err, &private) {
		return embedReply(privateEmbed(private.Profile, private.ID)), nil
	}
	if err != nil {
		return nil, err
	}
	return embedReply(successEmbed(fmt.Sprintf("Nickname set to `%s`.", nick))), nil
}

func (b *Bot) linkHandler(pick func(config.LinksConfig) string) commandHandler {
	return func(context.Context, *discordgo.InteractionCreate, options) (*reply, error) {
		link := pick(b.cfg.Links)
		if link == "" {
			return nil, errLinkMissing
		}
		return embedReply(&discordgo.MessageEmbed{Description: link, Color: colorInfo}), nil
	}
}

func (b *Bot) handleAbout(ctx context.Context, _ *discordgo.InteractionCreate, _ options) (*reply, error) {
	stats, err := b.telemetry.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return embedReply(aboutEmbed(stats, b.telemetry.Uptime(), b.links())), nil
}

func (b *Bot) links() linkSet {
	l := b.cfg.Links
	return linkSet{
		{name: "Support", url: l.Support},
		{name: "Invite", url: l.Invite},
		{name: "Vote", url: l.Vote},
		{name: "GitHub", url: l.GitHub},
		{name: "Premium", url: l.Premium},
	}
}
