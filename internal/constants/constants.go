package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	WebhookTimeout     = 5 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	StatisticsInterval   = 30 * time.Second
	PortalsInterval      = 30 * time.Minute
	SubscriptionInterval = 5 * time.Minute
	NewsInterval         = 5 * time.Minute
)

const (
	ProfileLimit        = 5
	PremiumProfileLimit = 25
	MaxNicknameLength   = 32
	TopServersLimit     = 5
	RatingHistoryLimit  = 30
)

const (
	PaginatorTTL     = 10 * time.Minute
	PaginatorJanitor = 1 * time.Minute
)
