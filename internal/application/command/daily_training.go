package command

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/gamelog"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
	"github.com/heroforge-edu/heroforge-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE DAILY TRAINING COMMAND
// Credits the daily-training reward, scaled by the quiz score, at most once
// per rolling 23-hour window. A repeat inside the window still acknowledges
// the completion but leaves the ledger untouched.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteDailyTrainingCommand carries a finished training run.
type CompleteDailyTrainingCommand struct {
	TeacherUID     string
	HeroUID        string
	Score          int
	TotalQuestions int
}

// Validate validates the command.
func (c CompleteDailyTrainingCommand) Validate() error {
	if c.TeacherUID == "" || c.HeroUID == "" {
		return shared.NewDomainError("training", "CompleteDailyTraining", shared.ErrInvalidInput,
			"teacher uid and hero uid are required")
	}
	if c.TotalQuestions <= 0 {
		return shared.NewDomainError("training", "CompleteDailyTraining", shared.ErrInvalidInput,
			"total questions must be positive")
	}
	if c.Score < 0 || c.Score > c.TotalQuestions {
		return shared.NewDomainError("training", "CompleteDailyTraining", shared.ErrValueOutOfRange,
			fmt.Sprintf("score %d outside 0..%d", c.Score, c.TotalQuestions))
	}
	return nil
}

// CompleteDailyTrainingHandler handles the CompleteDailyTrainingCommand.
type CompleteDailyTrainingHandler struct {
	store  Store
	clock  timeutil.Clock
	sink   gamelog.Sink
	logger *slog.Logger
}

// NewCompleteDailyTrainingHandler creates a new CompleteDailyTrainingHandler.
func NewCompleteDailyTrainingHandler(store Store, clock timeutil.Clock, sink gamelog.Sink, logger *slog.Logger) *CompleteDailyTrainingHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	if sink == nil {
		sink = gamelog.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CompleteDailyTrainingHandler{store: store, clock: clock, sink: sink, logger: logger}
}

// Handle executes the credit.
func (h *CompleteDailyTrainingHandler) Handle(ctx context.Context, cmd CompleteDailyTrainingCommand) Result {
	if err := cmd.Validate(); err != nil {
		return failFromError(err)
	}

	now := h.clock.Now()
	var (
		alreadyClaimed bool
		xpAward        int
		goldAward      int
		heroName       string
		leveledUp      bool
	)

	err := h.store.WithTx(ctx, func(tx Tx) error {
		champ, err := tx.Heroes().Get(ctx, cmd.TeacherUID, cmd.HeroUID)
		if err != nil {
			return err
		}
		heroName = champ.DisplayName

		if !timeutil.WindowOpen(now, champ.LastDailyTraining, timeutil.DailyTrainingWindow) {
			alreadyClaimed = true
			return nil
		}

		cfg, err := tx.Settings().GetRewardSettings(ctx, cmd.TeacherUID)
		if err != nil {
			return err
		}

		ratio := float64(cmd.Score) / float64(cmd.TotalQuestions)
		xpAward = int(math.Ceil(float64(cfg.DailyTrainingXPReward) * ratio))
		goldAward = int(math.Ceil(float64(cfg.DailyTrainingGoldReward) * ratio))

		if goldAward > 0 {
			champ.AddGold(hero.Gold(goldAward))
		}
		if xpAward > 0 {
			table, err := tx.Leveling().GetTable(ctx, cmd.TeacherUID)
			if err != nil {
				return err
			}
			gain := hero.ApplyXPGain(champ, hero.XP(xpAward), table)
			leveledUp = gain.LeveledUp
		}

		champ.LastDailyTraining = now
		return tx.Heroes().Update(ctx, champ)
	})
	if err != nil {
		return failFromError(err)
	}

	if alreadyClaimed {
		return succeed(fmt.Sprintf("%s already claimed today's training reward", heroName))
	}

	if xpAward > 0 || goldAward > 0 {
		desc := fmt.Sprintf("%s completed daily training (%d/%d): +%d XP, +%d gold",
			heroName, cmd.Score, cmd.TotalQuestions, xpAward, goldAward)
		if leveledUp {
			desc += " - level up!"
		}
		h.sink.Append(ctx, cmd.TeacherUID, gamelog.CategoryAvatar, cmd.HeroUID, desc)
	}

	return succeed(fmt.Sprintf("daily training complete: +%d XP, +%d gold", xpAward, goldAward))
}
