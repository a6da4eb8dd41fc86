package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

type ServerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewServerRepository(sqlDB *sql.DB, logger zerolog.Logger) *ServerRepository {
	return &ServerRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Insert registers a guild. Registering a known guild is a no-op.
func (r *ServerRepository) Insert(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO server (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("guild_id", id).Msg("failed to insert server")
		return fmt.Errorf("failed to insert server: %w", err)
	}
	return nil
}

func (r *ServerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM server WHERE id = ?`, id); err != nil {
		r.logger.Error().Err(err).Str("guild_id", id).Msg("failed to delete server")
		return fmt.Errorf("failed to delete server: %w", err)
	}
	return nil
}

// SetPremium marks a guild premium, registering it first when unknown.
func (r *ServerRepository) SetPremium(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO server (id, premium) VALUES (?, TRUE)
		 ON CONFLICT (id) DO UPDATE SET premium = TRUE`, id)
	if err != nil {
		return fmt.Errorf("failed to set server premium: %w", err)
	}
	r.logger.Info().Str("guild_id", id).Msg("server set as premium")
	return nil
}

func (r *ServerRepository) PremiumIDs(ctx context.Context) ([]string, error) {
	return queryIDs(ctx, r.db, `SELECT id FROM server WHERE premium = TRUE ORDER BY id`)
}

func queryIDs(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
