package postgres

import (
	"context"
	"fmt"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/gamelog"
)

// GameLogRepository persists audit entries. Appends run outside the engine's
// transactions on the shared pool: the audit trail is best-effort by
// contract and must never join or fail a primary mutation.
type GameLogRepository struct {
	conn *Connection
}

// NewGameLogRepository creates a new GameLogRepository.
func NewGameLogRepository(conn *Connection) *GameLogRepository {
	return &GameLogRepository{conn: conn}
}

// Insert appends one entry. CreatedAt is assigned by the database.
func (r *GameLogRepository) Insert(ctx context.Context, e gamelog.Entry) error {
	query := `
		INSERT INTO game_log (id, teacher_uid, category, actor, description)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.conn.pool.Exec(ctx, query, e.ID, e.TeacherUID, string(e.Category), e.Actor, e.Description)
	if err != nil {
		return fmt.Errorf("failed to insert game log entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries for a teacher, newest first.
func (r *GameLogRepository) Recent(ctx context.Context, teacherUID string, limit int) ([]gamelog.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, teacher_uid, category, actor, description, created_at
		FROM game_log
		WHERE teacher_uid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.conn.pool.Query(ctx, query, teacherUID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game log: %w", err)
	}
	defer rows.Close()

	var entries []gamelog.Entry
	for rows.Next() {
		var (
			e        gamelog.Entry
			category string
		)
		if err := rows.Scan(&e.ID, &e.TeacherUID, &category, &e.Actor, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game log entry: %w", err)
		}
		e.Category = gamelog.Category(category)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
