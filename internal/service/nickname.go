package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"overbot/internal/constants"
	"overbot/internal/domain"
	"overbot/internal/profile"
	"overbot/internal/repository"

	"github.com/rs/zerolog"
)

var roleIcons = map[profile.Role]string{
	profile.RoleTank:    "\U0001F6E1",
	profile.RoleDamage:  "⚔",
	profile.RoleSupport: "⚕",
}

// NicknameEditor changes a member's nickname in a guild. An empty nick
// resets it.
type NicknameEditor interface {
	EditNickname(ctx context.Context, guildID, memberID, nick string) error
}

type NicknameService struct {
	repo     *repository.NicknameRepository
	profiles *ProfileService
	editor   NicknameEditor
	logger   zerolog.Logger
}

func NewNicknameService(repo *repository.NicknameRepository, profiles *ProfileService, editor NicknameEditor, logger zerolog.Logger) *NicknameService {
	return &NicknameService{
		repo:     repo,
		profiles: profiles,
		editor:   editor,
		logger:   logger.With().Str("component", "nickname").Logger(),
	}
}

// Generate builds the rating nickname of a member, at most 32 runes long.
func Generate(memberName string, ratings profile.Ratings) string {
	if len(ratings) == 0 {
		return truncate(memberName, 21) + " [Unranked]"
	}

	parts := make([]string, 0, len(ratings))
	for _, r := range ratings.Ordered() {
		parts = append(parts, roleIcons[r.Role]+strconv.Itoa(r.Level))
	}
	tag := "[" + strings.Join(parts, "/") + "]"

	room := constants.MaxNicknameLength - utf8.RuneCountInString(tag) - 1
	if room <= 0 {
		return truncate(tag, constants.MaxNicknameLength)
	}
	return truncate(memberName, room) + " " + tag
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (s *NicknameService) Exists(ctx context.Context, memberID string) (bool, error) {
	return s.repo.Exists(ctx, memberID)
}

// PrivateProfileError carries the private profile a nickname was asked for,
// so the caller can render it.
type PrivateProfileError struct {
	Profile *profile.Profile
	ID      domain.Identifier
}

func (e *PrivateProfileError) Error() string {
	return fmt.Sprintf("profile %s is private", e.ID.Username)
}

// Set shows the ratings of a linked profile in the member's nickname.
func (s *NicknameService) Set(ctx context.Context, guildID, memberID, memberName string, profileID int64) (string, error) {
	linked, p, err := s.profiles.LookupLinked(ctx, memberID, profileID)
	if err != nil {
		return "", err
	}
	if p.IsPrivate() {
		return "", &PrivateProfileError{Profile: p, ID: linked.Identifier()}
	}

	ratings, _ := p.Ratings()
	nick := Generate(memberName, ratings)

	if err := s.editor.EditNickname(ctx, guildID, memberID, nick); err != nil {
		return "", fmt.Errorf("failed to edit nickname: %w", err)
	}
	if err := s.repo.Set(ctx, domain.Nickname{MemberID: memberID, ServerID: guildID, ProfileID: profileID}); err != nil {
		return "", err
	}

	s.logger.Info().Str("guild_id", guildID).Str("member_id", memberID).Str("nick", nick).Msg("nickname set")
	return nick, nil
}

func (s *NicknameService) Remove(ctx context.Context, guildID, memberID string) error {
	if err := s.editor.EditNickname(ctx, guildID, memberID, ""); err != nil {
		return fmt.Errorf("failed to reset nickname: %w", err)
	}
	return s.repo.Remove(ctx, memberID)
}

// Refresh rewrites the nickname of a member who set one in guildID, after
// new ratings were fetched. Edit failures are logged and dropped.
func (s *NicknameService) Refresh(ctx context.Context, guildID, memberID, memberName string, ratings profile.Ratings) {
	n, err := s.repo.Get(ctx, memberID)
	if err != nil || n.ServerID != guildID {
		return
	}

	nick := Generate(memberName, ratings)
	if err := s.editor.EditNickname(ctx, guildID, memberID, nick); err != nil {
		s.logger.Warn().Err(err).Str("guild_id", guildID).Str("member_id", memberID).Msg("failed to refresh nickname")
	}
}
