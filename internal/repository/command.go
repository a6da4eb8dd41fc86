package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"overbot/internal/domain"

	"github.com/rs/zerolog"
)

type CommandRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCommandRepository(sqlDB *sql.DB, logger zerolog.Logger) *CommandRepository {
	return &CommandRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *CommandRepository) Record(ctx context.Context, usage domain.CommandUsage) error {
	if usage.UsedAt.IsZero() {
		usage.UsedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command (name, guild_id, member_id, created_at) VALUES (?, ?, ?, ?)`,
		usage.Name, usage.GuildID, usage.MemberID, usage.UsedAt)
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}
	return nil
}

func (r *CommandRepository) Total(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM command`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count commands: %w", err)
	}
	return n, nil
}

// TopGuilds ranks guilds by commands run, skipping direct messages and the
// ignored guild ids.
func (r *CommandRepository) TopGuilds(ctx context.Context, ignored []string, limit int) ([]domain.GuildUsage, error) {
	query := `SELECT guild_id, COUNT(*) AS commands FROM command WHERE guild_id <> ''`
	args := make([]any, 0, len(ignored)+1)
	if len(ignored) > 0 {
		query += ` AND guild_id NOT IN (?` + strings.Repeat(`, ?`, len(ignored)-1) + `)`
		for _, id := range ignored {
			args = append(args, id)
		}
	}
	query += ` GROUP BY guild_id ORDER BY commands DESC, guild_id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top guilds: %w", err)
	}
	defer rows.Close()

	var result []domain.GuildUsage
	for rows.Next() {
		var g domain.GuildUsage
		if err := rows.Scan(&g.GuildID, &g.Commands); err != nil {
			return nil, fmt.Errorf("failed to scan guild usage: %w", err)
		}
		result = append(result, g)
	}
	return result, rows.Err()
}
