package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"overbot/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

type RatingRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRatingRepository(sqlDB *sql.DB, logger zerolog.Logger) *RatingRepository {
	return &RatingRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Save records the ratings of a profile for the day of date. It skips the
// insert when an identical row already exists for that day and reports
// whether a row was written.
func (r *RatingRepository) Save(ctx context.Context, record domain.RatingRecord) (bool, error) {
	day := record.Date.UTC().Format(dateLayout)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM rating
			WHERE profile_id = ? AND date = ? AND tank = ? AND damage = ? AND support = ?
		)`,
		record.ProfileID, day, record.Tank, record.Damage, record.Support).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check rating: %w", err)
	}
	if exists {
		r.logger.Debug().Int64("profile_id", record.ProfileID).Str("date", day).Msg("rating already saved")
		return false, nil
	}

	id := record.ID
	if id == "" {
		id, err = gonanoid.New()
		if err != nil {
			return false, fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rating (id, profile_id, tank, damage, support, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, record.ProfileID, record.Tank, record.Damage, record.Support, day, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit rating: %w", err)
	}
	return true, nil
}

// History returns up to limit records of a profile, newest first.
func (r *RatingRepository) History(ctx context.Context, profileID int64, limit int) ([]domain.RatingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, profile_id, tank, damage, support, date, created_at
		 FROM rating WHERE profile_id = ?
		 ORDER BY date DESC, created_at DESC LIMIT ?`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating history: %w", err)
	}
	defer rows.Close()

	var result []domain.RatingRecord
	for rows.Next() {
		var (
			rec domain.RatingRecord
			day string
		)
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.Tank, &rec.Damage, &rec.Support, &day, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		rec.Date, err = time.Parse(dateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rating date %q: %w", day, err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
