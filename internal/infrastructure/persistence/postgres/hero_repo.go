package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// querier is the subset of pgx.Tx the repositories need; both pgx.Tx and
// *pgxpool.Pool satisfy it.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HeroRepository implements hero.Repository for PostgreSQL.
type HeroRepository struct {
	q querier
}

// NewHeroRepository creates a repository over the given querier.
func NewHeroRepository(q querier) *HeroRepository {
	return &HeroRepository{q: q}
}

const heroColumns = `
	uid, teacher_uid, company_id, display_name, class, xp, gold, level,
	hp, max_hp, mp, max_mp, inventory,
	last_used_veterans_insight, last_received_veterans_insight, last_daily_training,
	completed_chapters, created_at, updated_at
`

// Get returns the teacher's hero by UID.
func (r *HeroRepository) Get(ctx context.Context, teacherUID, uid string) (*hero.Hero, error) {
	query := `SELECT ` + heroColumns + ` FROM heroes WHERE teacher_uid = $1 AND uid = $2`
	row := r.q.QueryRow(ctx, query, teacherUID, uid)
	h, err := scanHero(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("hero", "Get", shared.ErrNotFound, "hero not found: "+uid)
		}
		return nil, fmt.Errorf("failed to get hero: %w", err)
	}
	return h, nil
}

// Update persists the hero's mutable state.
func (r *HeroRepository) Update(ctx context.Context, h *hero.Hero) error {
	inventoryJSON, err := json.Marshal(h.Inventory)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}

	query := `
		UPDATE heroes SET
			company_id = $3, display_name = $4, class = $5,
			xp = $6, gold = $7, level = $8,
			hp = $9, max_hp = $10, mp = $11, max_mp = $12,
			inventory = $13,
			last_used_veterans_insight = $14,
			last_received_veterans_insight = $15,
			last_daily_training = $16,
			completed_chapters = $17,
			updated_at = NOW()
		WHERE teacher_uid = $1 AND uid = $2
	`
	tag, err := r.q.Exec(ctx, query,
		h.TeacherUID, h.UID,
		h.CompanyID, h.DisplayName, string(h.Class),
		int(h.XP), int(h.Gold), h.Level,
		h.HP, h.MaxHP, h.MP, h.MaxMP,
		inventoryJSON,
		nullableTime(h.LastUsedVeteransInsight),
		nullableTime(h.LastReceivedVeteransInsight),
		nullableTime(h.LastDailyTraining),
		h.CompletedChapters,
	)
	if err != nil {
		return fmt.Errorf("failed to update hero: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("hero", "Update", shared.ErrNotFound, "hero not found: "+h.UID)
	}
	return nil
}

// Create inserts a new hero. Registration is an external collaborator
// concern; this exists for seeding and tooling.
func (r *HeroRepository) Create(ctx context.Context, h *hero.Hero) error {
	if err := h.Validate(); err != nil {
		return err
	}
	inventoryJSON, err := json.Marshal(h.Inventory)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}

	query := `
		INSERT INTO heroes (
			uid, teacher_uid, company_id, display_name, class, xp, gold, level,
			hp, max_hp, mp, max_mp, inventory,
			last_used_veterans_insight, last_received_veterans_insight, last_daily_training,
			completed_chapters
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = r.q.Exec(ctx, query,
		h.UID, h.TeacherUID, h.CompanyID, h.DisplayName, string(h.Class),
		int(h.XP), int(h.Gold), h.Level,
		h.HP, h.MaxHP, h.MP, h.MaxMP,
		inventoryJSON,
		nullableTime(h.LastUsedVeteransInsight),
		nullableTime(h.LastReceivedVeteransInsight),
		nullableTime(h.LastDailyTraining),
		h.CompletedChapters,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("hero", "Create", shared.ErrAlreadyExists, "hero already exists: "+h.UID)
		}
		return fmt.Errorf("failed to create hero: %w", err)
	}
	return nil
}

func scanHero(row pgx.Row) (*hero.Hero, error) {
	var (
		h             hero.Hero
		class         string
		xp, gold      int
		inventoryJSON []byte
		lastUsed      *time.Time
		lastReceived  *time.Time
		lastTraining  *time.Time
	)

	err := row.Scan(
		&h.UID, &h.TeacherUID, &h.CompanyID, &h.DisplayName, &class, &xp, &gold, &h.Level,
		&h.HP, &h.MaxHP, &h.MP, &h.MaxMP, &inventoryJSON,
		&lastUsed, &lastReceived, &lastTraining,
		&h.CompletedChapters, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.Class = hero.Class(class)
	h.XP = hero.XP(xp)
	h.Gold = hero.Gold(gold)
	if len(inventoryJSON) > 0 {
		if err := json.Unmarshal(inventoryJSON, &h.Inventory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inventory: %w", err)
		}
	}
	h.LastUsedVeteransInsight = timeOrZero(lastUsed)
	h.LastReceivedVeteransInsight = timeOrZero(lastReceived)
	h.LastDailyTraining = timeOrZero(lastTraining)
	return &h, nil
}

// nullableTime maps the zero time to NULL so "never happened" stays NULL
// in the schema.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
