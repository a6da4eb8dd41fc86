package discord

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"overbot/internal/api"
	"overbot/internal/domain"
	"overbot/internal/profile"
	"overbot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testID = domain.Identifier{Platform: domain.PlatformPC, Username: "Player#1234"}

func TestCommandName(t *testing.T) {
	name, opts := commandName(discordgo.ApplicationCommandInteractionData{
		Name: "profile",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{
			Name: "stats",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "profile", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
				{Name: "hero", Type: discordgo.ApplicationCommandOptionString, Value: "Mercy"},
			},
		}},
	})
	require.Equal(t, "profile stats", name)
	id, ok := opts.intOpt("profile")
	require.True(t, ok)
	require.Equal(t, int64(3), id)
	require.Equal(t, "Mercy", opts.stringOpt("hero"))
	require.False(t, opts.boolOpt("remove"))

	name, opts = commandName(discordgo.ApplicationCommandInteractionData{
		Name: "rating",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "platform", Type: discordgo.ApplicationCommandOptionString, Value: "pc"},
			{Name: "username", Type: discordgo.ApplicationCommandOptionString, Value: "Player#1234"},
		},
	})
	require.Equal(t, "rating", name)
	require.Equal(t, "pc", opts.stringOpt("platform"))
	_, ok = opts.intOpt("profile")
	require.False(t, ok)
}

func TestCommandInfos(t *testing.T) {
	infos := commandInfos()

	byName := make(map[string]service.CommandInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}

	require.Contains(t, byName, "stats")
	require.Contains(t, byName, "about")
	require.NotContains(t, byName, "profile")
	require.Equal(t, "profile", byName["profile link"].Group)
	require.Equal(t, "profile", byName["profile nickname"].Group)
	require.Empty(t, byName["stats"].Group)
}

func TestEveryCommandHasHandler(t *testing.T) {
	b := NewBot(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, zerolog.Nop())
	for _, info := range commandInfos() {
		require.Contains(t, b.handlers, info.Name)
	}
	require.Len(t, b.handlers, len(commandInfos()))
}

func TestIdentifier(t *testing.T) {
	id, err := identifier(options{
		"platform": {Name: "platform", Type: discordgo.ApplicationCommandOptionString, Value: "xbox"},
		"username": {Name: "username", Type: discordgo.ApplicationCommandOptionString, Value: " Someone "},
	})
	require.NoError(t, err)
	require.Equal(t, domain.PlatformXbox, id.Platform)
	require.Equal(t, "Someone", id.Username)

	_, err = identifier(options{
		"platform": {Name: "platform", Type: discordgo.ApplicationCommandOptionString, Value: "gameboy"},
		"username": {Name: "username", Type: discordgo.ApplicationCommandOptionString, Value: "Someone"},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestFailureReply(t *testing.T) {
	r, report := failureReply(domain.ErrNotFound)
	require.False(t, report)
	require.Equal(t, "Player not found.", r.embeds[0].Description)
	require.Equal(t, "not_found", errorOutcome(domain.ErrNotFound))

	r, report = failureReply(errGuildOnly)
	require.False(t, report)
	require.Equal(t, string(errGuildOnly), r.embeds[0].Description)
	require.Equal(t, "rejected", errorOutcome(errGuildOnly))

	r, report = failureReply(errors.New("database is locked"))
	require.True(t, report)
	require.Equal(t, genericFailure, r.embeds[0].Description)
	require.Equal(t, "error", errorOutcome(errors.New("x")))
}

func ratedProfile() *profile.Profile {
	return profile.New(&api.Profile{
		Name: "Player#1234",
		Icon: "https://example.com/icon.png",
		Ratings: api.RoleRatings{
			"tank":   {Role: "tank", Level: 2600},
			"damage": {Role: "damage", Level: 3100},
		},
	})
}

func TestRatingsEmbed(t *testing.T) {
	embed := ratingsEmbed(ratedProfile(), testID)

	require.Equal(t, "Player#1234 (PC)", embed.Author.Name)
	require.Len(t, embed.Fields, 2)
	require.Equal(t, "Tank", embed.Fields[0].Name)
	require.Equal(t, "**2600**\nPlatinum", embed.Fields[0].Value)
	require.Equal(t, "Damage", embed.Fields[1].Name)
	require.Equal(t, "**3100**\nDiamond", embed.Fields[1].Value)
	require.Equal(t, "Average: 2,850", embed.Footer.Text)

	unranked := ratingsEmbed(profile.New(&api.Profile{}), testID)
	require.Equal(t, "This profile is unranked.", unranked.Description)
	require.Equal(t, "Player#1234 (PC)", unranked.Author.Name)
	require.Empty(t, unranked.Fields)
}

func TestStatPageEmbeds(t *testing.T) {
	pages := []profile.StatPage{
		{Title: "Combat", QuickPlay: []profile.Entry{{Label: "Eliminations", Value: "12"}}, Index: 1, Count: 2},
		{Title: "Game", Competitive: []profile.Entry{{Label: "Games Won", Value: "3"}}, Index: 2, Count: 2},
	}

	embeds := statPageEmbeds(ratedProfile(), testID, profile.AllHeroes, "thumb", pages)
	require.Len(t, embeds, 2)
	require.Equal(t, "All Heroes: Combat", embeds[0].Title)
	require.Equal(t, "Eliminations: **12**", embeds[0].Fields[0].Value)
	require.Equal(t, "--", embeds[0].Fields[1].Value)
	require.Equal(t, "Page 2 of 2", embeds[1].Footer.Text)
	require.Equal(t, "thumb", embeds[1].Thumbnail.URL)
}

func TestHistoryField(t *testing.T) {
	field := historyField([]domain.RatingRecord{
		{Tank: 2600, Damage: 3100, Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Tank: 2550, Support: 2000, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.Equal(t, "`2024-03-02` 2600 / 3100 / 0\n`2024-03-01` 2550 / 0 / 2000", field.Value)
}

func TestProfileListEmbed(t *testing.T) {
	embed := profileListEmbed([]domain.LinkedProfile{
		{ID: 1, Platform: domain.PlatformPC, Username: "Player#1234"},
		{ID: 4, Platform: domain.PlatformPlayStation, Username: "psn_player"},
	}, 5)
	require.Equal(t, "`1` PC - Player#1234\n`4` Playstation - psn_player", embed.Description)
	require.Equal(t, "2/5 profiles", embed.Footer.Text)
}

func TestNewsEmbed(t *testing.T) {
	embed := newsEmbed(domain.Article{
		Title:     "Patch notes",
		Link:      "https://overwatch.blizzard.com/en-us/news/24061234/patch-notes/",
		Thumbnail: "//images.example.com/thumb.jpg",
		Date:      "2024-03-01",
	})
	require.Equal(t, "Patch notes", embed.Title)
	require.Equal(t, "https://images.example.com/thumb.jpg", embed.Image.URL)
	require.Equal(t, "2024-03-01", embed.Footer.Text)

	require.Nil(t, newsEmbed(domain.Article{Title: "No image"}).Image)
}

func TestClip(t *testing.T) {
	short := "short value"
	require.Equal(t, short, clip(short))

	long := strings.Repeat("é", fieldLimit)
	clipped := clip(long)
	require.LessOrEqual(t, len(clipped), fieldLimit)
	require.True(t, strings.HasSuffix(clipped, "..."))
	require.True(t, utf8.ValidString(clipped))
}

func TestMemberName(t *testing.T) {
	require.Empty(t, memberName(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}))

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{Username: "player"}},
	}}
	require.Equal(t, "player", memberName(i))

	i.Member.User.GlobalName = "Player"
	require.Equal(t, "Player", memberName(i))
}
