package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DiscordToken  string
	GuildID       string
	NewsChannelID string
	WebhookID     string
	WebhookToken  string

	DBPath     string
	StatusPort string
	LogLevel   string
	Debug      bool

	Overwatch OverwatchConfig
	Links     LinksConfig
	Portals   PortalsConfig
	Donations DonationsConfig

	IgnoredGuilds []string
}

type OverwatchConfig struct {
	APIBase     string
	AccountBase string
	NewsURL     string
	HeroIconURL string
}

type LinksConfig struct {
	Support string
	Invite  string
	Vote    string
	GitHub  string
	Premium string
}

type PortalsConfig struct {
	OBAPIURL   string
	OBAPIToken string
	TopGGURL   string
	TopGGToken string
	DBotsURL   string
	DBotsToken string
}

type DonationsConfig struct {
	NewURL        string
	MarkURL       string
	APIKey        string
	ServerProduct string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DiscordToken:  getEnv("DISCORD_TOKEN", ""),
		GuildID:       getEnv("GUILD_ID", ""),
		NewsChannelID: getEnv("NEWS_CHANNEL_ID", ""),
		WebhookID:     getEnv("WEBHOOK_ID", ""),
		WebhookToken:  getEnv("WEBHOOK_TOKEN", ""),
		DBPath:        getEnv("DB_PATH", "overbot.db"),
		StatusPort:    getEnv("STATUS_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Debug:         getBool("DEBUG", false),
		Overwatch: OverwatchConfig{
			APIBase:     strings.TrimRight(getEnv("OW_API_BASE", "https://ow-api.com/v1/stats"), "/"),
			AccountBase: strings.TrimRight(getEnv("OW_ACCOUNT_BASE", "https://playoverwatch.com/en-us/search/account-by-name"), "/"),
			NewsURL:     getEnv("OW_NEWS_URL", "https://overwatch.blizzard.com/en-us/news/"),
			HeroIconURL: getEnv("HERO_ICON_URL", "https://d1u1mce87gyfbn.cloudfront.net/hero/%s/hero-select-portrait.png"),
		},
		Links: LinksConfig{
			Support: getEnv("SUPPORT_URL", ""),
			Invite:  getEnv("INVITE_URL", ""),
			Vote:    getEnv("VOTE_URL", ""),
			GitHub:  getEnv("GITHUB_URL", ""),
			Premium: getEnv("PREMIUM_URL", ""),
		},
		Portals: PortalsConfig{
			OBAPIURL:   strings.TrimRight(getEnv("OBAPI_URL", ""), "/"),
			OBAPIToken: getEnv("OBAPI_TOKEN", ""),
			TopGGURL:   getEnv("TOPGG_URL", ""),
			TopGGToken: getEnv("TOPGG_TOKEN", ""),
			DBotsURL:   getEnv("DBOTS_URL", ""),
			DBotsToken: getEnv("DBOTS_TOKEN", ""),
		},
		Donations: DonationsConfig{
			NewURL:        getEnv("DONATEBOT_NEW_URL", ""),
			MarkURL:       getEnv("DONATEBOT_MARK_URL", ""),
			APIKey:        getEnv("DONATEBOT_API_KEY", ""),
			ServerProduct: getEnv("DONATEBOT_SERVER_PRODUCT", ""),
		},
		IgnoredGuilds: getList("IGNORED_GUILDS"),
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("status_port", cfg.StatusPort).
		Str("log_level", cfg.LogLevel).
		Bool("debug", cfg.Debug).
		Str("api_base", cfg.Overwatch.APIBase).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getList splits a comma separated variable, dropping empty items.
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var Module = fx.Provide(Load)
