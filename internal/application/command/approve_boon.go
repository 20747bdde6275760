package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/gamelog"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/reward"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPROVE BOON REQUEST COMMAND
// Consumes a pending boon request: re-checks the hero's gold at commit time,
// charges it and grants the item, or voids the request when funds ran out
// between request creation and approval.
// ══════════════════════════════════════════════════════════════════════════════

// ApproveBoonCommand identifies the request being approved.
type ApproveBoonCommand struct {
	TeacherUID string
	RequestID  string
}

// Validate validates the command.
func (c ApproveBoonCommand) Validate() error {
	if c.TeacherUID == "" {
		return shared.NewDomainError("reward", "ApproveBoon", shared.ErrInvalidInput, "teacher uid is required")
	}
	if c.RequestID == "" {
		return shared.NewDomainError("reward", "ApproveBoon", shared.ErrInvalidInput, "request id is required")
	}
	return nil
}

// ApproveBoonHandler handles the ApproveBoonCommand.
type ApproveBoonHandler struct {
	store  Store
	sink   gamelog.Sink
	logger *slog.Logger
}

// NewApproveBoonHandler creates a new ApproveBoonHandler.
func NewApproveBoonHandler(store Store, sink gamelog.Sink, logger *slog.Logger) *ApproveBoonHandler {
	if sink == nil {
		sink = gamelog.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ApproveBoonHandler{store: store, sink: sink, logger: logger}
}

// Handle executes the approval. The gold check and decrement share one
// transaction with the request deletion, so two concurrent approvals of the
// same request cannot double-spend: the loser observes the request gone or
// the balance short.
func (h *ApproveBoonHandler) Handle(ctx context.Context, cmd ApproveBoonCommand) Result {
	if err := cmd.Validate(); err != nil {
		return failFromError(err)
	}

	var (
		req          *reward.Request
		insufficient bool
	)

	err := h.store.WithTx(ctx, func(tx Tx) error {
		r, err := tx.BoonRequests().Get(ctx, cmd.TeacherUID, cmd.RequestID)
		if err != nil {
			return err
		}

		champ, err := tx.Heroes().Get(ctx, cmd.TeacherUID, r.HeroUID)
		if err != nil {
			return err
		}

		if champ.Gold < r.Cost {
			// The request is consumed either way - no retry left dangling.
			if err := tx.BoonRequests().Delete(ctx, cmd.TeacherUID, cmd.RequestID); err != nil {
				return err
			}
			req = r
			insufficient = true
			return nil
		}

		if err := champ.SpendGold(r.Cost); err != nil {
			return err
		}
		champ.GrantItem(r.BoonID)

		if err := tx.Heroes().Update(ctx, champ); err != nil {
			return err
		}
		if err := tx.BoonRequests().Delete(ctx, cmd.TeacherUID, cmd.RequestID); err != nil {
			return err
		}
		req = r
		return nil
	})
	if err != nil {
		return failFromError(err)
	}

	if insufficient {
		h.logger.Info("boon request voided, insufficient gold",
			"teacher_uid", cmd.TeacherUID, "request_id", cmd.RequestID, "hero_uid", req.HeroUID)
		return refuse(fmt.Sprintf("%s no longer has enough gold for %s; the request was removed",
			req.HeroName, req.BoonName))
	}

	h.sink.AppendTransaction(ctx, cmd.TeacherUID, req.HeroUID, req.BoonName, int(req.Cost))
	h.sink.Append(ctx, cmd.TeacherUID, gamelog.CategoryGamemaster, req.HeroName,
		fmt.Sprintf("%s purchased %s for %d gold", req.HeroName, req.BoonName, req.Cost))

	return succeed(fmt.Sprintf("approved %s for %s", req.BoonName, req.HeroName))
}
