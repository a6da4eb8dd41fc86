package service

import (
	"context"
	"runtime"
	"time"

	"overbot/internal/api"
	"overbot/internal/config"
	"overbot/internal/constants"
	"overbot/internal/repository"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

type Shard struct {
	ID          int     `json:"id"`
	Latency     float64 `json:"latency"`
	GuildCount  int     `json:"guild_count"`
	MemberCount int     `json:"member_count"`
}

type GuildInfo struct {
	ID       string
	Name     string
	Icon     string
	Members  int
	Large    bool
	ShardID  int
	JoinedAt time.Time
}

type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"short_desc"`
	Group       string `json:"cog,omitempty"`
	Premium     bool   `json:"is_premium"`
}

// BotState is the live view of the gateway connection the telemetry
// payloads are built from.
type BotState interface {
	Guilds() []GuildInfo
	Guild(id string) (GuildInfo, bool)
	Shards() []Shard
	Latency() time.Duration
	Commands() []CommandInfo
}

// RateLimiter exposes the last rate limit window reported by the stats API.
type RateLimiter interface {
	GetRateLimitInfo() api.RateLimitInfo
}

type Statistics struct {
	Host   map[string]any `json:"host"`
	Bot    map[string]any `json:"bot"`
	Shards []Shard        `json:"shards"`
}

type ServerStats struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Members     int    `json:"members"`
	CommandsRun int    `json:"commands_run"`
	ShardID     int    `json:"shard_id"`
	JoinedAt    string `json:"joined_at"`
	Premium     bool   `json:"is_premium"`
}

type TelemetryService struct {
	portals  config.PortalsConfig
	ignored  []string
	state    BotState
	limits   RateLimiter
	commands *repository.CommandRepository
	premium  *PremiumCache
	client   *fasthttp.Client
	started  time.Time
	logger   zerolog.Logger
}

func NewTelemetryService(
	cfg *config.Config,
	state BotState,
	limits RateLimiter,
	commands *repository.CommandRepository,
	premium *PremiumCache,
	logger zerolog.Logger,
) *TelemetryService {
	return newTelemetryService(cfg, state, limits, commands, premium, &fasthttp.Client{
		Name:         "OverBot",
		ReadTimeout:  constants.WebhookTimeout,
		WriteTimeout: constants.WebhookTimeout,
	}, logger)
}

func newTelemetryService(
	cfg *config.Config,
	state BotState,
	limits RateLimiter,
	commands *repository.CommandRepository,
	premium *PremiumCache,
	hc *fasthttp.Client,
	logger zerolog.Logger,
) *TelemetryService {
	return &TelemetryService{
		portals:  cfg.Portals,
		ignored:  cfg.IgnoredGuilds,
		state:    state,
		limits:   limits,
		commands: commands,
		premium:  premium,
		client:   hc,
		started:  time.Now(),
		logger:   logger.With().Str("component", "telemetry").Logger(),
	}
}

func (s *TelemetryService) Uptime() time.Duration {
	return time.Since(s.started).Round(time.Second)
}

// Statistics builds the host and bot statistics payload.
func (s *TelemetryService) Statistics(ctx context.Context) (*Statistics, error) {
	total, err := s.commands.Total(ctx)
	if err != nil {
		return nil, err
	}

	guilds := s.state.Guilds()
	var members, large int
	for _, g := range guilds {
		members += g.Members
		if g.Large {
			large++
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	shards := s.state.Shards()
	rl := s.limits.GetRateLimitInfo()

	return &Statistics{
		Host: map[string]any{
			"Go Version":       runtime.Version(),
			"O.S. Name":        runtime.GOOS,
			"Architecture":     runtime.GOARCH,
			"CPU Cores":        runtime.NumCPU(),
			"Goroutines":       runtime.NumGoroutine(),
			"RAM Usage":        humanize.Bytes(mem.Alloc),
			"API Rate Limit":   rl.Limit,
			"API Remaining":    rl.Remaining,
			"Premium Accounts": s.premium.Len(),
		},
		Bot: map[string]any{
			"Servers":        len(guilds),
			"Shards":         len(shards),
			"Members":        humanize.Comma(int64(members)),
			"Large Servers":  large,
			"Total Commands": humanize.Comma(total),
			"Uptime":         s.Uptime().String(),
			"Ping":           humanize.FtoaWithDigits(float64(s.state.Latency().Microseconds())/1000, 2) + "ms",
		},
		Shards: shards,
	}, nil
}

// TopServers ranks the guilds the bot is still in by commands run.
func (s *TelemetryService) TopServers(ctx context.Context) ([]ServerStats, error) {
	usage, err := s.commands.TopGuilds(ctx, s.ignored, constants.TopServersLimit)
	if err != nil {
		return nil, err
	}

	servers := make([]ServerStats, 0, len(usage))
	for _, u := range usage {
		g, ok := s.state.Guild(u.GuildID)
		if !ok {
			continue
		}
		servers = append(servers, ServerStats{
			ID:          g.ID,
			Name:        g.Name,
			Icon:        g.Icon,
			Members:     g.Members,
			CommandsRun: u.Commands,
			ShardID:     g.ShardID + 1,
			JoinedAt:    g.JoinedAt.UTC().Format(time.RFC3339),
			Premium:     s.premium.Has(g.ID),
		})
	}
	return servers, nil
}

// PostStatistics sends statistics, commands and top servers to the private
// API concurrently.
func (s *TelemetryService) PostStatistics(ctx context.Context) error {
	if s.portals.OBAPIURL == "" {
		return nil
	}

	stats, err := s.Statistics(ctx)
	if err != nil {
		return err
	}
	servers, err := s.TopServers(ctx)
	if err != nil {
		return err
	}
	commands := s.state.Commands()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return doJSON(gctx, s.client, fasthttp.MethodPost, s.portals.OBAPIURL+"/statistics", s.portals.OBAPIToken, stats, nil)
	})
	g.Go(func() error {
		return doJSON(gctx, s.client, fasthttp.MethodPost, s.portals.OBAPIURL+"/commands", s.portals.OBAPIToken, commands, nil)
	})
	g.Go(func() error {
		return doJSON(gctx, s.client, fasthttp.MethodPost, s.portals.OBAPIURL+"/servers", s.portals.OBAPIToken, servers, nil)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Debug().Int("servers", len(servers)).Int("commands", len(commands)).Msg("statistics posted")
	return nil
}

// PostPortals updates the server and shard counts on the bot listings.
func (s *TelemetryService) PostPortals(ctx context.Context) error {
	guilds := len(s.state.Guilds())
	shards := len(s.state.Shards())

	g, gctx := errgroup.WithContext(ctx)
	if s.portals.TopGGURL != "" {
		g.Go(func() error {
			payload := map[string]int{"server_count": guilds, "shard_count": shards}
			return doJSON(gctx, s.client, fasthttp.MethodPost, s.portals.TopGGURL, s.portals.TopGGToken, payload, nil)
		})
	}
	if s.portals.DBotsURL != "" {
		g.Go(func() error {
			payload := map[string]int{"guildCount": guilds, "shardCount": shards}
			return doJSON(gctx, s.client, fasthttp.MethodPost, s.portals.DBotsURL, s.portals.DBotsToken, payload, nil)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Debug().Int("guilds", guilds).Int("shards", shards).Msg("portals updated")
	return nil
}
