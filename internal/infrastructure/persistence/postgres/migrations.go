package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrator applies the embedded schema migrations.
type Migrator struct {
	conn      *Connection
	tableName string
}

// NewMigrator creates a new migrator.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, tableName: "schema_migrations"}
}

// Migrate applies all pending migrations in order.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureMigrationTable(ctx); err != nil {
		return err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range Migrations() {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		err := m.conn.WithSerializableTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx,
				fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName),
				mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("postgres: migration %d failed: %w", mig.Version, err)
		}
	}
	return nil
}

func (m *Migrator) ensureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, m.tableName)
	_, err := m.conn.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.pool.Query(ctx,
		fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrations returns all embedded migrations.
func Migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_heroes",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS heroes (
					uid TEXT NOT NULL,
					teacher_uid TEXT NOT NULL,
					company_id TEXT NOT NULL DEFAULT '',
					display_name TEXT NOT NULL DEFAULT '',
					class TEXT NOT NULL DEFAULT 'guardian',
					xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
					gold INTEGER NOT NULL DEFAULT 0 CHECK (gold >= 0),
					level INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
					hp INTEGER NOT NULL CHECK (hp >= 0),
					max_hp INTEGER NOT NULL CHECK (max_hp >= hp),
					mp INTEGER NOT NULL CHECK (mp >= 0),
					max_mp INTEGER NOT NULL CHECK (max_mp >= mp),
					inventory JSONB NOT NULL DEFAULT '{}',
					last_used_veterans_insight TIMESTAMPTZ,
					last_received_veterans_insight TIMESTAMPTZ,
					last_daily_training TIMESTAMPTZ,
					completed_chapters TEXT[] NOT NULL DEFAULT '{}',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (teacher_uid, uid)
				);
				CREATE INDEX IF NOT EXISTS idx_heroes_company ON heroes (teacher_uid, company_id);
			`,
			DownSQL: `DROP TABLE IF EXISTS heroes;`,
		},
		{
			Version: 2,
			Name:    "create_boon_requests",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS boon_requests (
					id TEXT NOT NULL,
					teacher_uid TEXT NOT NULL,
					hero_uid TEXT NOT NULL,
					hero_name TEXT NOT NULL DEFAULT '',
					boon_id TEXT NOT NULL,
					boon_name TEXT NOT NULL DEFAULT '',
					cost INTEGER NOT NULL CHECK (cost >= 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (teacher_uid, id)
				);
			`,
			DownSQL: `DROP TABLE IF EXISTS boon_requests;`,
		},
		{
			Version: 3,
			Name:    "create_reward_settings",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS reward_settings (
					teacher_uid TEXT PRIMARY KEY,
					daily_training_xp_reward INTEGER NOT NULL DEFAULT 100,
					daily_training_gold_reward INTEGER NOT NULL DEFAULT 30,
					daily_training_question_count INTEGER NOT NULL DEFAULT 10
				);
			`,
			DownSQL: `DROP TABLE IF EXISTS reward_settings;`,
		},
		{
			Version: 4,
			Name:    "create_leveling_tables",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS leveling_tables (
					teacher_uid TEXT PRIMARY KEY,
					thresholds INTEGER[] NOT NULL
				);
			`,
			DownSQL: `DROP TABLE IF EXISTS leveling_tables;`,
		},
		{
			Version: 5,
			Name:    "create_game_log",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS game_log (
					id UUID PRIMARY KEY,
					teacher_uid TEXT NOT NULL,
					category TEXT NOT NULL,
					actor TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_game_log_teacher ON game_log (teacher_uid, created_at DESC);
			`,
			DownSQL: `DROP TABLE IF EXISTS game_log;`,
		},
	}
}
