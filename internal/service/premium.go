package service

import (
	"context"
	"fmt"
	"sync"

	"overbot/internal/repository"

	"github.com/rs/zerolog"
)

// PremiumCache is the in-memory set of premium guild and member ids. It is
// loaded once at start and grown by the subscription poller.
type PremiumCache struct {
	servers *repository.ServerRepository
	members *repository.MemberRepository
	logger  zerolog.Logger

	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewPremiumCache(servers *repository.ServerRepository, members *repository.MemberRepository, logger zerolog.Logger) *PremiumCache {
	return &PremiumCache{
		servers: servers,
		members: members,
		logger:  logger.With().Str("component", "premium").Logger(),
		ids:     make(map[string]struct{}),
	}
}

// Load replaces the cached set with the ids stored in the database.
func (c *PremiumCache) Load(ctx context.Context) error {
	servers, err := c.servers.PremiumIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load premium servers: %w", err)
	}
	members, err := c.members.PremiumIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load premium members: %w", err)
	}

	ids := make(map[string]struct{}, len(servers)+len(members))
	for _, id := range servers {
		ids[id] = struct{}{}
	}
	for _, id := range members {
		ids[id] = struct{}{}
	}

	c.mu.Lock()
	c.ids = ids
	c.mu.Unlock()

	c.logger.Info().Int("servers", len(servers)).Int("members", len(members)).Msg("premium ids loaded")
	return nil
}

func (c *PremiumCache) Add(id string) {
	c.mu.Lock()
	c.ids[id] = struct{}{}
	c.mu.Unlock()
}

// Has reports whether any of ids is premium. Empty ids are ignored so a
// missing guild id of a direct message never matches.
func (c *PremiumCache) Has(ids ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := c.ids[id]; ok {
			return true
		}
	}
	return false
}

func (c *PremiumCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}
