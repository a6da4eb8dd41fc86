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

type ProfileRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProfileRepository(sqlDB *sql.DB, logger zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Link stores a new profile for a member, registering the member if needed.
// It returns ErrLimitReached when the member already owns limit profiles.
// The member upsert takes the write lock first, so the count guarding the
// insert cannot race another link of the same member.
func (r *ProfileRepository) Link(ctx context.Context, memberID string, id domain.Identifier, limit int) (*domain.LinkedProfile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO member (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, memberID); err != nil {
		return nil, fmt.Errorf("failed to insert member: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO profile (member_id, platform, username, created_at)
		 SELECT ?, ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM profile WHERE member_id = ?) < ?`,
		memberID, string(id.Platform), id.Username, now, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	} else if n == 0 {
		return nil, ErrLimitReached
	}

	profileID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read profile id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit profile: %w", err)
	}

	r.logger.Debug().
		Str("member_id", memberID).
		Int64("profile_id", profileID).
		Str("platform", string(id.Platform)).
		Str("username", id.Username).
		Msg("profile linked")

	return &domain.LinkedProfile{
		ID:        profileID,
		MemberID:  memberID,
		Platform:  id.Platform,
		Username:  id.Username,
		CreatedAt: now,
	}, nil
}

// Unlink removes a profile owned by memberID. It returns ErrNotFound when
// the member owns no such profile.
func (r *ProfileRepository) Unlink(ctx context.Context, memberID string, profileID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM profile WHERE id = ? AND member_id = ?`, profileID, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByMember returns the member's profiles in link order.
func (r *ProfileRepository) ListByMember(ctx context.Context, memberID string) ([]domain.LinkedProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, member_id, platform, username, created_at
		 FROM profile WHERE member_id = ? ORDER BY id`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var result []domain.LinkedProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *ProfileRepository) Get(ctx context.Context, memberID string, profileID int64) (*domain.LinkedProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, member_id, platform, username, created_at
		 FROM profile WHERE id = ? AND member_id = ?`, profileID, memberID)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*domain.LinkedProfile, error) {
	var (
		p        domain.LinkedProfile
		platform string
	)
	if err := s.Scan(&p.ID, &p.MemberID, &platform, &p.Username, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Platform = domain.Platform(platform)
	return &p, nil
}
