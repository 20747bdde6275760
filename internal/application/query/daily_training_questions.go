// Package query contains the engine's read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/heroforge-edu/heroforge-engine/internal/application/command"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/settings"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/training"
)

// DailyTrainingQuestionsQuery identifies whose question pool to build.
type DailyTrainingQuestionsQuery struct {
	TeacherUID string
	Hero       *hero.Hero
}

// Validate validates the query.
func (q DailyTrainingQuestionsQuery) Validate() error {
	if q.TeacherUID == "" {
		return shared.NewDomainError("training", "GetQuestions", shared.ErrInvalidInput, "teacher uid is required")
	}
	if q.Hero == nil {
		return shared.NewDomainError("training", "GetQuestions", shared.ErrInvalidInput, "hero is required")
	}
	return nil
}

// DailyTrainingQuestionsHandler builds the shuffled question pool for one
// hero's daily training run. Pure read: nothing is persisted.
type DailyTrainingQuestionsHandler struct {
	source training.ContentSource
	store  command.Store
	rng    *rand.Rand
}

// NewDailyTrainingQuestionsHandler creates a new handler. The rng is owned
// by the handler so tests can seed it.
func NewDailyTrainingQuestionsHandler(source training.ContentSource, store command.Store, rng *rand.Rand) *DailyTrainingQuestionsHandler {
	return &DailyTrainingQuestionsHandler{source: source, store: store, rng: rng}
}

// Handle gathers questions from the hero's completed, opted-in chapters,
// shuffles them and truncates to the configured count.
func (h *DailyTrainingQuestionsHandler) Handle(ctx context.Context, q DailyTrainingQuestionsQuery) ([]training.Question, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	chapters, err := h.source.Chapters(ctx, q.TeacherUID)
	if err != nil {
		return nil, fmt.Errorf("get_questions: failed to load chapters: %w", err)
	}

	var cfg settings.RewardSettings
	err = h.store.WithTx(ctx, func(tx command.Tx) error {
		var err error
		cfg, err = tx.Settings().GetRewardSettings(ctx, q.TeacherUID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get_questions: failed to load settings: %w", err)
	}

	pool := training.BuildPool(chapters, q.Hero.HasCompletedChapter, h.rng, cfg.DailyTrainingQuestionCount)
	return pool, nil
}
