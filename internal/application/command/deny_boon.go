package command

import (
	"context"
	"log/slog"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// DenyBoonCommand identifies the request being denied.
type DenyBoonCommand struct {
	TeacherUID string
	RequestID  string
}

// Validate validates the command.
func (c DenyBoonCommand) Validate() error {
	if c.TeacherUID == "" {
		return shared.NewDomainError("reward", "DenyBoon", shared.ErrInvalidInput, "teacher uid is required")
	}
	if c.RequestID == "" {
		return shared.NewDomainError("reward", "DenyBoon", shared.ErrInvalidInput, "request id is required")
	}
	return nil
}

// DenyBoonHandler handles the DenyBoonCommand.
type DenyBoonHandler struct {
	store  Store
	logger *slog.Logger
}

// NewDenyBoonHandler creates a new DenyBoonHandler.
func NewDenyBoonHandler(store Store, logger *slog.Logger) *DenyBoonHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DenyBoonHandler{store: store, logger: logger}
}

// Handle deletes the request unconditionally. Denying a request that no
// longer exists is a no-op success, so retries and double-clicks are safe.
func (h *DenyBoonHandler) Handle(ctx context.Context, cmd DenyBoonCommand) Result {
	if err := cmd.Validate(); err != nil {
		return failFromError(err)
	}

	err := h.store.WithTx(ctx, func(tx Tx) error {
		return tx.BoonRequests().Delete(ctx, cmd.TeacherUID, cmd.RequestID)
	})
	if err != nil {
		return failFromError(err)
	}

	return succeed("request denied")
}
