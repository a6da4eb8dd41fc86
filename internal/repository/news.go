package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// NewsRepository stores the id of the last article posted to the news
// channel. The table holds a single row.
type NewsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewNewsRepository(sqlDB *sql.DB, logger zerolog.Logger) *NewsRepository {
	return &NewsRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *NewsRepository) LastID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT news_id FROM news WHERE id = 1`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get last news id: %w", err)
	}
	return id, nil
}

func (r *NewsRepository) SetLastID(ctx context.Context, newsID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO news (id, news_id) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET news_id = excluded.news_id`, newsID)
	if err != nil {
		return fmt.Errorf("failed to set last news id: %w", err)
	}
	r.logger.Debug().Int64("news_id", newsID).Msg("last news id updated")
	return nil
}
