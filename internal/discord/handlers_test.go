package discord

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"overbot/internal/api"
	"overbot/internal/config"
	"overbot/internal/database"
	"overbot/internal/domain"
	"overbot/internal/repository"
	"overbot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeFetcher map[string]*api.Profile

func (f fakeFetcher) Lookup(_ context.Context, id domain.Identifier) (*api.Profile, error) {
	if p, ok := f[id.Username]; ok {
		return p, nil
	}
	return nil, domain.NewStatusError(domain.KindNotFound, 404)
}

type fakeEditor struct{ nicks map[string]string }

func (f *fakeEditor) EditNickname(_ context.Context, guildID, memberID, nick string) error {
	f.nicks[guildID+"/"+memberID] = nick
	return nil
}

func newTestBot(t *testing.T, fetcher fakeFetcher, cfg *config.Config) (*Bot, *fakeEditor) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "overbot.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := zerolog.Nop()
	servers := repository.NewServerRepository(db, log)
	members := repository.NewMemberRepository(db, log)
	premium := service.NewPremiumCache(servers, members, log)
	profiles := service.NewProfileService(fetcher, repository.NewProfileRepository(db, log), repository.NewRatingRepository(db, log), premium, log)
	editor := &fakeEditor{nicks: map[string]string{}}
	nicknames := service.NewNicknameService(repository.NewNicknameRepository(db, log), profiles, editor, log)

	b := NewBot(nil, nil, cfg, profiles, nicknames, nil, servers, members, premium, repository.NewCommandRepository(db, log), log)
	return b, editor
}

func interaction(guildID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		GuildID: guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "ana"}},
	}}
}

func strOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func lookupOptions(username string) options {
	return options{"platform": strOption("platform", "pc"), "username": strOption("username", username)}
}

func playerFetcher() fakeFetcher {
	return fakeFetcher{
		"Ana#1234": {
			Name: "Ana#1234",
			Icon: "https://example.com/icon.png",
			Ratings: api.RoleRatings{
				"tank":    {Role: "tank", Level: 2600},
				"support": {Role: "support", Level: 3100},
			},
			QuickPlayStats: api.GameStats{CareerStats: map[string]api.HeroStats{
				"allHeroes": {
					"combat": {"eliminations": float64(12)},
					"game":   {"gamesWon": float64(3)},
				},
			}},
		},
		"Hidden#1": {Name: "Hidden#1", Private: true},
	}
}

func TestHandleRating(t *testing.T) {
	b, _ := newTestBot(t, playerFetcher(), &config.Config{})
	ctx := context.Background()

	r, err := b.handleRating(ctx, interaction("g1"), lookupOptions("Ana#1234"))
	require.NoError(t, err)
	require.Len(t, r.embeds, 1)
	require.Len(t, r.embeds[0].Fields, 2)
	require.Equal(t, "Support", r.embeds[0].Fields[1].Name)

	r, err = b.handleRating(ctx, interaction("g1"), lookupOptions("Hidden#1"))
	require.NoError(t, err)
	require.Equal(t, "This profile is set to private", r.embeds[0].Title)

	_, err = b.handleRating(ctx, interaction("g1"), lookupOptions("Nobody#1"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandleStats_Paginated(t *testing.T) {
	b, _ := newTestBot(t, playerFetcher(), &config.Config{})
	ctx := context.Background()

	r, err := b.handleStats(ctx, interaction("g1"), lookupOptions("Ana#1234"))
	require.NoError(t, err)
	require.Equal(t, "All Heroes: Combat", r.embeds[0].Title)
	require.Equal(t, "https://example.com/icon.png", r.embeds[0].Thumbnail.URL)
	require.NotNil(t, r.components)
	require.Equal(t, 1, b.pager.Len())

	opts := lookupOptions("Ana#1234")
	opts["hero"] = strOption("hero", "Mercy")
	_, err = b.handleStats(ctx, interaction("g1"), opts)
	require.ErrorIs(t, err, domain.ErrNoHeroStats)
}

func TestHandleLinkListUnlink(t *testing.T) {
	b, _ := newTestBot(t, playerFetcher(), &config.Config{})
	ctx := context.Background()
	i := interaction("g1")

	_, err := b.handleList(ctx, i, options{})
	require.ErrorIs(t, err, domain.ErrProfileNotLinked)

	_, err = b.handleLink(ctx, i, lookupOptions("Nobody#1"))
	require.ErrorIs(t, err, domain.ErrNotFound)

	r, err := b.handleLink(ctx, i, lookupOptions("Ana#1234"))
	require.NoError(t, err)
	require.Contains(t, r.embeds[0].Description, "linked with id `1`")

	r, err = b.handleList(ctx, i, options{})
	require.NoError(t, err)
	require.Contains(t, r.embeds[0].Description, "Ana#1234")
	require.Equal(t, "1/5 profiles", r.embeds[0].Footer.Text)

	unlink := options{"profile": {Name: "profile", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(1)}}
	_, err = b.handleUnlink(ctx, i, unlink)
	require.NoError(t, err)
	_, err = b.handleUnlink(ctx, i, unlink)
	require.ErrorIs(t, err, domain.ErrProfileNotLinked)
}

func TestHandleProfileRating_SavesHistory(t *testing.T) {
	b, _ := newTestBot(t, playerFetcher(), &config.Config{})
	ctx := context.Background()
	i := interaction("g1")

	_, err := b.handleLink(ctx, i, lookupOptions("Ana#1234"))
	require.NoError(t, err)

	for range 2 {
		r, err := b.handleProfileRating(ctx, i, options{})
		require.NoError(t, err)
		fields := r.embeds[0].Fields
		require.Len(t, fields, 3)
		require.Equal(t, 1, strings.Count(fields[2].Value, "\n")+1)
		require.Contains(t, fields[2].Value, "2600 / 0 / 3100")
	}
}

func TestHandleNickname(t *testing.T) {
	b, editor := newTestBot(t, playerFetcher(), &config.Config{})
	ctx := context.Background()
	remove := options{"remove": {Name: "remove", Type: discordgo.ApplicationCommandOptionBoolean, Value: true}}

	_, err := b.handleNickname(ctx, interaction(""), options{})
	require.ErrorIs(t, err, errGuildOnly)

	_, err = b.handleNickname(ctx, interaction("g1"), remove)
	require.ErrorIs(t, err, errNoNickname)

	_, err = b.handleNickname(ctx, interaction("g1"), options{})
	require.ErrorIs(t, err, domain.ErrProfileNotLinked)

	_, err = b.handleLink(ctx, interaction("g1"), lookupOptions("Ana#1234"))
	require.NoError(t, err)

	r, err := b.handleNickname(ctx, interaction("g1"), options{})
	require.NoError(t, err)
	require.Contains(t, r.embeds[0].Description, editor.nicks["g1/u1"])
	require.True(t, strings.HasPrefix(editor.nicks["g1/u1"], "ana ["))

	_, err = b.handleNickname(ctx, interaction("g1"), remove)
	require.NoError(t, err)
	require.Empty(t, editor.nicks["g1/u1"])
}

func TestHandleNickname_PrivateProfile(t *testing.T) {
	b, editor := newTestBot(t, playerFetcher(), &config.Config{})
	ctx := context.Background()

	_, err := b.handleLink(ctx, interaction("g1"), lookupOptions("Hidden#1"))
	require.NoError(t, err)

	r, err := b.handleNickname(ctx, interaction("g1"), options{})
	require.NoError(t, err)
	require.Equal(t, "This profile is set to private", r.embeds[0].Title)
	require.Empty(t, editor.nicks)

	exists, err := b.nicknames.Exists(ctx, "u1")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestLinkHandler(t *testing.T) {
	cfg := &config.Config{Links: config.LinksConfig{Invite: "https://discord.com/invite/example"}}
	b, _ := newTestBot(t, fakeFetcher{}, cfg)
	ctx := context.Background()

	r, err := b.handlers["invite"](ctx, interaction("g1"), options{})
	require.NoError(t, err)
	require.Equal(t, "https://discord.com/invite/example", r.embeds[0].Description)

	_, err = b.handlers["vote"](ctx, interaction("g1"), options{})
	require.ErrorIs(t, err, errLinkMissing)
}
