package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type MemberRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMemberRepository(sqlDB *sql.DB, logger zerolog.Logger) *MemberRepository {
	return &MemberRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *MemberRepository) Insert(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO member (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

func (r *MemberRepository) SetPremium(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO member (id, premium) VALUES (?, TRUE)
		 ON CONFLICT (id) DO UPDATE SET premium = TRUE`, id)
	if err != nil {
		return fmt.Errorf("failed to set member premium: %w", err)
	}
	r.logger.Info().Str("member_id", id).Msg("member set as premium")
	return nil
}

// IsPremium reports false for members the bot has never seen.
func (r *MemberRepository) IsPremium(ctx context.Context, id string) (bool, error) {
	var premium bool
	err := r.db.QueryRowContext(ctx, `SELECT premium FROM member WHERE id = ?`, id).Scan(&premium)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get member: %w", err)
	}
	return premium, nil
}

func (r *MemberRepository) PremiumIDs(ctx context.Context) ([]string, error) {
	return queryIDs(ctx, r.db, `SELECT id FROM member WHERE premium = TRUE ORDER BY id`)
}
