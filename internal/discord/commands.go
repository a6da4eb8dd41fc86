package discord

import (
	"overbot/internal/domain"
	"overbot/internal/service"

	"github.com/bwmarrin/discordgo"
)

type linkSet []struct {
	name string
	url  string
}

func platformOption() *discordgo.ApplicationCommandOption {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.Platforms))
	for _, p := range domain.Platforms {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: p.DisplayName(), Value: string(p)})
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "platform",
		Description: "The platform the player plays on",
		Required:    true,
		Choices:     choices,
	}
}

func usernameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "username",
		Description: "BattleTag (name#0000) or console username",
		Required:    true,
	}
}

func heroOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "hero",
		Description: "Hero to show stats for (default: all heroes)",
	}
}

func profileIDOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "profile",
		Description: "Linked profile id, see /profile list (default: your first profile)",
		Required:    required,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "stats",
		Description: "Shows a player's quick play and competitive stats",
		Options:     []*discordgo.ApplicationCommandOption{platformOption(), usernameOption(), heroOption()},
	},
	{
		Name:        "rating",
		Description: "Shows a player's competitive ratings",
		Options:     []*discordgo.ApplicationCommandOption{platformOption(), usernameOption()},
	},
	{
		Name:        "summary",
		Description: "Shows a summary of a player's profile",
		Options:     []*discordgo.ApplicationCommandOption{platformOption(), usernameOption()},
	},
	{
		Name:        "profile",
		Description: "Manage your linked Overwatch profiles",
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("link", "Links an Overwatch profile to your Discord account", platformOption(), usernameOption()),
			subcommand("unlink", "Unlinks one of your profiles", profileIDOption(true)),
			subcommand("list", "Lists your linked profiles"),
			subcommand("rating", "Shows and saves the ratings of a linked profile", profileIDOption(false)),
			subcommand("summary", "Shows the summary of a linked profile", profileIDOption(false)),
			subcommand("stats", "Shows the stats of a linked profile", profileIDOption(false), heroOption()),
			subcommand("nickname", "Shows your ratings in your server nickname", profileIDOption(false), &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "remove",
				Description: "Removes the rating nickname",
			}),
		},
	},
	{Name: "support", Description: "Returns the official support server invite"},
	{Name: "invite", Description: "Returns the bot invite link"},
	{Name: "vote", Description: "Returns the bot vote link"},
	{Name: "github", Description: "Returns the bot source repository"},
	{Name: "about", Description: "Shows information about the bot"},
}

// commandInfos flattens the command tree for the statistics API.
func commandInfos() []service.CommandInfo {
	var infos []service.CommandInfo
	for _, cmd := range commands {
		subs := 0
		for _, opt := range cmd.Options {
			if opt.Type != discordgo.ApplicationCommandOptionSubCommand {
				continue
			}
			subs++
			infos = append(infos, service.CommandInfo{
				Name:        cmd.Name + " " + opt.Name,
				Description: opt.Description,
				Group:       cmd.Name,
			})
		}
		if subs == 0 {
			infos = append(infos, service.CommandInfo{Name: cmd.Name, Description: cmd.Description})
		}
	}
	return infos
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func (o options) stringOpt(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) intOpt(name string) (int64, bool) {
	if opt, ok := o[name]; ok {
		return opt.IntValue(), true
	}
	return 0, false
}

func (o options) boolOpt(name string) bool {
	if opt, ok := o[name]; ok {
		return opt.BoolValue()
	}
	return false
}

// commandName returns the full invoked name, "profile link" for a
// subcommand, and the options of the innermost level.
func commandName(data discordgo.ApplicationCommandInteractionData) (string, options) {
	if len(data.Options) == 1 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		sub := data.Options[0]
		return data.Name + " " + sub.Name, optionMap(sub.Options)
	}
	return data.Name, optionMap(data.Options)
}
