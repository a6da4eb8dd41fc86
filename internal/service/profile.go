package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"overbot/internal/api"
	"overbot/internal/constants"
	"overbot/internal/domain"
	"overbot/internal/profile"
	"overbot/internal/repository"

	"github.com/rs/zerolog"
)

// Fetcher fetches the raw document of a player.
type Fetcher interface {
	Lookup(ctx context.Context, id domain.Identifier) (*api.Profile, error)
}

type ProfileService struct {
	fetcher  Fetcher
	profiles *repository.ProfileRepository
	ratings  *repository.RatingRepository
	premium  *PremiumCache
	logger   zerolog.Logger
}

func NewProfileService(
	fetcher Fetcher,
	profiles *repository.ProfileRepository,
	ratings *repository.RatingRepository,
	premium *PremiumCache,
	logger zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		fetcher:  fetcher,
		profiles: profiles,
		ratings:  ratings,
		premium:  premium,
		logger:   logger,
	}
}

// Lookup resolves and fetches a player. The returned error is always a
// *domain.Error.
func (s *ProfileService) Lookup(ctx context.Context, id domain.Identifier) (*profile.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	s.logger.Info().Str("platform", string(id.Platform)).Str("username", id.Username).Msg("looking up profile")

	raw, err := s.fetcher.Lookup(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("platform", string(id.Platform)).Str("username", id.Username).Msg("lookup failed")
		return nil, err
	}
	return profile.New(raw), nil
}

// LookupLinked fetches one of the member's linked profiles.
func (s *ProfileService) LookupLinked(ctx context.Context, memberID string, profileID int64) (*domain.LinkedProfile, *profile.Profile, error) {
	linked, err := s.Get(ctx, memberID, profileID)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.Lookup(ctx, linked.Identifier())
	if err != nil {
		return linked, nil, err
	}
	return linked, p, nil
}

// Get returns a linked profile owned by memberID, or ErrProfileNotLinked.
func (s *ProfileService) Get(ctx context.Context, memberID string, profileID int64) (*domain.LinkedProfile, error) {
	linked, err := s.profiles.Get(ctx, memberID, profileID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.ErrProfileNotLinked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get linked profile: %w", err)
	}
	return linked, nil
}

// Limit is the number of profiles a member may link.
func (s *ProfileService) Limit(memberID, guildID string) int {
	if s.premium.Has(memberID, guildID) {
		return constants.PremiumProfileLimit
	}
	return constants.ProfileLimit
}

func (s *ProfileService) Link(ctx context.Context, memberID, guildID string, id domain.Identifier) (*domain.LinkedProfile, error) {
	limit := s.Limit(memberID, guildID)
	linked, err := s.profiles.Link(ctx, memberID, id, limit)
	if errors.Is(err, repository.ErrLimitReached) {
		return nil, domain.NewProfileLimit(limit)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("member_id", memberID).Int64("profile_id", linked.ID).Msg("profile linked")
	return linked, nil
}

func (s *ProfileService) Unlink(ctx context.Context, memberID string, profileID int64) error {
	err := s.profiles.Unlink(ctx, memberID, profileID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrProfileNotLinked
	}
	if err != nil {
		return err
	}

	s.logger.Info().Str("member_id", memberID).Int64("profile_id", profileID).Msg("profile unlinked")
	return nil
}

func (s *ProfileService) List(ctx context.Context, memberID string) ([]domain.LinkedProfile, error) {
	return s.profiles.ListByMember(ctx, memberID)
}

// RequireLinked returns the member's profiles, or ErrProfileNotLinked when
// there are none.
func (s *ProfileService) RequireLinked(ctx context.Context, memberID string) ([]domain.LinkedProfile, error) {
	profiles, err := s.List(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, domain.ErrProfileNotLinked
	}
	return profiles, nil
}

// SaveRatings stores today's ratings of a linked profile. Missing roles are
// stored as zero.
func (s *ProfileService) SaveRatings(ctx context.Context, profileID int64, ratings profile.Ratings) (bool, error) {
	saved, err := s.ratings.Save(ctx, domain.RatingRecord{
		ProfileID: profileID,
		Tank:      ratings[profile.RoleTank],
		Damage:    ratings[profile.RoleDamage],
		Support:   ratings[profile.RoleSupport],
		Date:      time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("profile_id", profileID).Msg("failed to save ratings")
		return false, err
	}
	return saved, nil
}

func (s *ProfileService) RatingHistory(ctx context.Context, profileID int64) ([]domain.RatingRecord, error) {
	return s.ratings.History(ctx, profileID, constants.RatingHistoryLimit)
}
