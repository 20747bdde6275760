package postgres

import (
	"context"
	"fmt"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/settings"
)

// SettingsRepository implements settings.Repository for PostgreSQL.
type SettingsRepository struct {
	q querier
}

// NewSettingsRepository creates a repository over the given querier.
func NewSettingsRepository(q querier) *SettingsRepository {
	return &SettingsRepository{q: q}
}

// GetRewardSettings returns the teacher's stored settings, falling back to
// defaults when no row exists.
func (r *SettingsRepository) GetRewardSettings(ctx context.Context, teacherUID string) (settings.RewardSettings, error) {
	query := `
		SELECT daily_training_xp_reward, daily_training_gold_reward, daily_training_question_count
		FROM reward_settings
		WHERE teacher_uid = $1
	`
	cfg := settings.RewardSettings{TeacherUID: teacherUID}
	err := r.q.QueryRow(ctx, query, teacherUID).Scan(
		&cfg.DailyTrainingXPReward,
		&cfg.DailyTrainingGoldReward,
		&cfg.DailyTrainingQuestionCount,
	)
	if err != nil {
		if IsNoRows(err) {
			return settings.Defaults(teacherUID), nil
		}
		return settings.RewardSettings{}, fmt.Errorf("failed to get reward settings: %w", err)
	}
	return cfg, nil
}

// LevelingRepository implements hero.LevelingRepository for PostgreSQL.
type LevelingRepository struct {
	q querier
}

// NewLevelingRepository creates a repository over the given querier.
func NewLevelingRepository(q querier) *LevelingRepository {
	return &LevelingRepository{q: q}
}

// GetTable returns the teacher's leveling curve, falling back to the system
// default when none is stored.
func (r *LevelingRepository) GetTable(ctx context.Context, teacherUID string) (hero.LevelingTable, error) {
	query := `SELECT thresholds FROM leveling_tables WHERE teacher_uid = $1`
	var thresholds []int32
	err := r.q.QueryRow(ctx, query, teacherUID).Scan(&thresholds)
	if err != nil {
		if IsNoRows(err) {
			return hero.DefaultTable(), nil
		}
		return nil, fmt.Errorf("failed to get leveling table: %w", err)
	}

	table := make(hero.LevelingTable, len(thresholds))
	for i, v := range thresholds {
		table[i] = int(v)
	}
	return table, nil
}

// SaveTable validates and upserts the teacher's leveling curve. Rejected
// curves never reach the database.
func (r *LevelingRepository) SaveTable(ctx context.Context, teacherUID string, table hero.LevelingTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	thresholds := make([]int32, len(table))
	for i, v := range table {
		thresholds[i] = int32(v)
	}

	query := `
		INSERT INTO leveling_tables (teacher_uid, thresholds)
		VALUES ($1, $2)
		ON CONFLICT (teacher_uid) DO UPDATE SET thresholds = EXCLUDED.thresholds
	`
	if _, err := r.q.Exec(ctx, query, teacherUID, thresholds); err != nil {
		return fmt.Errorf("failed to save leveling table: %w", err)
	}
	return nil
}
