package fx

import (
	"overbot/internal/api"
	"overbot/internal/config"
	"overbot/internal/database"
	"overbot/internal/discord"
	"overbot/internal/logger"
	"overbot/internal/repository"
	"overbot/internal/scrape"
	"overbot/internal/server"
	"overbot/internal/service"
	"overbot/internal/tasks"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewServerRepository),
	fx.Provide(repository.NewMemberRepository),
	fx.Provide(repository.NewProfileRepository),
	fx.Provide(repository.NewRatingRepository),
	fx.Provide(repository.NewNicknameRepository),
	fx.Provide(repository.NewNewsRepository),
	fx.Provide(repository.NewCommandRepository),
	// upstream clients
	fx.Provide(fx.Annotate(api.NewClient,
		fx.As(new(service.Fetcher)),
		fx.As(new(service.RateLimiter)),
	)),
	fx.Provide(fx.Annotate(scrape.NewClient, fx.As(new(service.NewsSource)))),
	// discord
	fx.Provide(discord.NewSession),
	fx.Provide(fx.Annotate(discord.NewGateway,
		fx.As(fx.Self()),
		fx.As(new(service.NicknameEditor)),
		fx.As(new(service.NewsPublisher)),
		fx.As(new(service.BotState)),
	)),
	// svc
	fx.Provide(service.NewPremiumCache),
	fx.Provide(service.NewProfileService),
	fx.Provide(service.NewNicknameService),
	fx.Provide(service.NewNewsService),
	fx.Provide(service.NewTelemetryService),
	fx.Provide(service.NewSubscriptionService),
	// runtime
	fx.Provide(discord.NewBot),
	fx.Provide(tasks.NewRunner),
	fx.Provide(server.New),
)
