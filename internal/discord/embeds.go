package discord

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"overbot/internal/domain"
	"overbot/internal/middleware"
	"overbot/internal/profile"
	"overbot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

const (
	colorMain    = 0xFA9C1D
	colorError   = 0xE74C3C
	colorSuccess = 0x2ECC71
	colorInfo    = 0x3498DB

	// fieldLimit is the maximum length of an embed field value.
	fieldLimit = 1024
)

var roleNames = map[profile.Role]string{
	profile.RoleTank:    "Tank",
	profile.RoleDamage:  "Damage",
	profile.RoleSupport: "Support",
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: message, Color: colorError}
}

func successEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: message, Color: colorSuccess}
}

func author(p *profile.Profile, id domain.Identifier) *discordgo.MessageEmbedAuthor {
	name := p.Name()
	if name == "" {
		name = id.Username
	}
	return &discordgo.MessageEmbedAuthor{
		Name:    fmt.Sprintf("%s (%s)", name, id.Platform.DisplayName()),
		IconURL: p.Avatar(),
	}
}

func privateEmbed(p *profile.Profile, id domain.Identifier) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Author: author(p, id),
		Color:  colorError,
		Title:  "This profile is set to private",
		Description: "Profiles are set to private by default. " +
			"You can change this in Overwatch under `Options > Social > Career Profile Visibility`.",
	}
}

func ratingsEmbed(p *profile.Profile, id domain.Identifier) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author:    author(p, id),
		Color:     colorMain,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: p.Avatar()},
	}

	ratings, ok := p.Ratings()
	if !ok {
		embed.Description = "This profile is unranked."
		return embed
	}

	for _, r := range ratings.Ordered() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   roleNames[r.Role],
			Value:  fmt.Sprintf("**%d**\n%s", r.Level, profile.TierFor(r.Level)),
			Inline: true,
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Average: " + humanize.Comma(int64(average(ratings)))}
	return embed
}

func average(r profile.Ratings) int {
	if len(r) == 0 {
		return 0
	}
	total := 0
	for _, level := range r {
		total += level
	}
	return total / len(r)
}

func historyField(records []domain.RatingRecord) *discordgo.MessageEmbedField {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("`%s` %d / %d / %d", rec.Date.Format("2006-01-02"), rec.Tank, rec.Damage, rec.Support))
	}
	return &discordgo.MessageEmbedField{
		Name:  "History (tank / damage / support)",
		Value: clip(strings.Join(lines, "\n")),
	}
}

// statPageEmbeds renders one embed per stat page.
func statPageEmbeds(p *profile.Profile, id domain.Identifier, hero, thumbnail string, pages []profile.StatPage) []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(pages))
	for _, page := range pages {
		embed := &discordgo.MessageEmbed{
			Author:    author(p, id),
			Title:     fmt.Sprintf("%s: %s", profile.FormatKey(hero), page.Title),
			Color:     colorMain,
			Thumbnail: &discordgo.MessageEmbedThumbnail{URL: thumbnail},
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Quick Play", Value: entriesValue(page.QuickPlay), Inline: true},
				{Name: "Competitive", Value: entriesValue(page.Competitive), Inline: true},
			},
			Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d of %d", page.Index, page.Count)},
		}
		embeds = append(embeds, embed)
	}
	return embeds
}

func entriesValue(entries []profile.Entry) string {
	if len(entries) == 0 {
		return "--"
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: **%s**", e.Label, e.Value))
	}
	return clip(strings.Join(lines, "\n"))
}

func summaryEmbed(p *profile.Profile, id domain.Identifier) *discordgo.MessageEmbed {
	s := p.BuildSummary()

	embed := &discordgo.MessageEmbed{
		Author:    author(p, id),
		Color:     colorMain,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: s.LevelIcon},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: s.Level, Inline: true},
			{Name: "Endorsement", Value: fmt.Sprint(s.Endorsement), Inline: true},
			{Name: "Games Won", Value: s.GamesWon, Inline: true},
		},
	}

	if len(s.Ratings) > 0 {
		lines := make([]string, 0, len(s.Ratings))
		for _, r := range s.Ratings.Ordered() {
			lines = append(lines, fmt.Sprintf("%s: **%d** (%s)", roleNames[r.Role], r.Level, profile.TierFor(r.Level)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Ratings", Value: strings.Join(lines, "\n")})
	}

	for _, m := range s.Modes {
		var parts []string
		for _, group := range [][]profile.Entry{m.Game, m.Combat, m.Awards} {
			if len(group) > 0 {
				parts = append(parts, entriesValue(group))
			}
		}
		if len(parts) == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   m.Mode,
			Value:  clip(strings.Join(parts, "\n\n")),
			Inline: true,
		})
	}
	return embed
}

func profileListEmbed(profiles []domain.LinkedProfile, limit int) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(profiles))
	for _, p := range profiles {
		lines = append(lines, fmt.Sprintf("`%d` %s - %s", p.ID, p.Platform.DisplayName(), p.Username))
	}
	return &discordgo.MessageEmbed{
		Title:       "Linked profiles",
		Description: clip(strings.Join(lines, "\n")),
		Color:       colorMain,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d/%d profiles", len(profiles), limit)},
	}
}

func newsEmbed(a domain.Article) *discordgo.MessageEmbed {
	image := a.Thumbnail
	if strings.HasPrefix(image, "//") {
		image = "https:" + image
	}
	embed := &discordgo.MessageEmbed{
		Title:  a.Title,
		URL:    a.Link,
		Color:  colorMain,
		Author: &discordgo.MessageEmbedAuthor{Name: "Blizzard Entertainment"},
		Footer: &discordgo.MessageEmbedFooter{Text: a.Date},
	}
	if image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: image}
	}
	return embed
}

func aboutEmbed(stats *service.Statistics, uptime time.Duration, links linkSet) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "OverBot",
		Description: "Overwatch player statistics, ratings and news for Discord.",
		Color:       colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Servers", Value: fmt.Sprint(stats.Bot["Servers"]), Inline: true},
			{Name: "Members", Value: fmt.Sprint(stats.Bot["Members"]), Inline: true},
			{Name: "Commands run", Value: fmt.Sprint(stats.Bot["Total Commands"]), Inline: true},
			{Name: "Uptime", Value: uptime.String(), Inline: true},
			{Name: "Ping", Value: fmt.Sprint(stats.Bot["Ping"]), Inline: true},
			{Name: "Go", Value: fmt.Sprint(stats.Host["Go Version"]), Inline: true},
		},
	}

	var refs []string
	for _, l := range links {
		if l.url != "" {
			refs = append(refs, fmt.Sprintf("[%s](%s)", l.name, l.url))
		}
	}
	if len(refs) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Links", Value: strings.Join(refs, " | ")})
	}
	return embed
}

func guildLogEmbed(g *discordgo.Guild, color int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     g.Name,
		Color:     color,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Members", Value: fmt.Sprint(g.MemberCount), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "ID: " + g.ID},
	}
	if g.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: g.IconURL("128")}
	}
	return embed
}

// reportEmbed describes an unexpected command failure for the log webhook.
func reportEmbed(command string, i *discordgo.InteractionCreate, requestID string, err error) *discordgo.MessageEmbed {
	guild := i.GuildID
	if guild == "" {
		guild = "DM"
	}
	return &discordgo.MessageEmbed{
		Title:       "Command failed: /" + command,
		Description: clip("```" + err.Error() + "```"),
		Color:       colorError,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: middleware.UserID(i), Inline: true},
			{Name: "Guild", Value: guild, Inline: true},
			{Name: "Request", Value: requestID, Inline: true},
		},
	}
}

func clip(s string) string {
	if len(s) <= fieldLimit {
		return s
	}
	cut := fieldLimit - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
