package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"overbot/internal/domain"

	"github.com/rs/zerolog"
)

type NicknameRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewNicknameRepository(sqlDB *sql.DB, logger zerolog.Logger) *NicknameRepository {
	return &NicknameRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *NicknameRepository) Exists(ctx context.Context, memberID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM nickname WHERE id = ?)`, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}
	return exists, nil
}

func (r *NicknameRepository) Get(ctx context.Context, memberID string) (*domain.Nickname, error) {
	var n domain.Nickname
	err := r.db.QueryRowContext(ctx,
		`SELECT id, server_id, profile_id, created_at FROM nickname WHERE id = ?`, memberID).
		Scan(&n.MemberID, &n.ServerID, &n.ProfileID, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nickname: %w", err)
	}
	return &n, nil
}

// Set binds the member's nickname to a profile, replacing any earlier one.
func (r *NicknameRepository) Set(ctx context.Context, n domain.Nickname) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nickname (id, server_id, profile_id, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET server_id = excluded.server_id, profile_id = excluded.profile_id`,
		n.MemberID, n.ServerID, n.ProfileID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to set nickname: %w", err)
	}
	return nil
}

func (r *NicknameRepository) Remove(ctx context.Context, memberID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM nickname WHERE id = ?`, memberID); err != nil {
		return fmt.Errorf("failed to remove nickname: %w", err)
	}
	return nil
}
