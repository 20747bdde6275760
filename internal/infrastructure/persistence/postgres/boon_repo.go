package postgres

import (
	"context"
	"fmt"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/reward"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// BoonRequestRepository implements reward.RequestRepository for PostgreSQL.
type BoonRequestRepository struct {
	q querier
}

// NewBoonRequestRepository creates a repository over the given querier.
func NewBoonRequestRepository(q querier) *BoonRequestRepository {
	return &BoonRequestRepository{q: q}
}

// Get returns a pending boon request.
func (r *BoonRequestRepository) Get(ctx context.Context, teacherUID, requestID string) (*reward.Request, error) {
	query := `
		SELECT id, teacher_uid, hero_uid, hero_name, boon_id, boon_name, cost, created_at
		FROM boon_requests
		WHERE teacher_uid = $1 AND id = $2
	`
	var (
		req  reward.Request
		cost int
	)
	err := r.q.QueryRow(ctx, query, teacherUID, requestID).Scan(
		&req.ID, &req.TeacherUID, &req.HeroUID, &req.HeroName,
		&req.BoonID, &req.BoonName, &cost, &req.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("reward", "Get", shared.ErrNotFound, "request not found: "+requestID)
		}
		return nil, fmt.Errorf("failed to get boon request: %w", err)
	}
	req.Cost = hero.Gold(cost)
	return &req, nil
}

// Create inserts a pending boon request.
func (r *BoonRequestRepository) Create(ctx context.Context, req *reward.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO boon_requests (id, teacher_uid, hero_uid, hero_name, boon_id, boon_name, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.TeacherUID, req.HeroUID, req.HeroName, req.BoonID, req.BoonName, int(req.Cost))
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("reward", "Create", shared.ErrAlreadyExists, "request already exists: "+req.ID)
		}
		return fmt.Errorf("failed to create boon request: %w", err)
	}
	return nil
}

// Delete removes a request. Deleting an absent request is not an error.
func (r *BoonRequestRepository) Delete(ctx context.Context, teacherUID, requestID string) error {
	query := `DELETE FROM boon_requests WHERE teacher_uid = $1 AND id = $2`
	if _, err := r.q.Exec(ctx, query, teacherUID, requestID); err != nil {
		return fmt.Errorf("failed to delete boon request: %w", err)
	}
	return nil
}
