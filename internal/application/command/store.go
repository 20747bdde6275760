// Package command contains the engine's write operations (CQRS - Commands).
// Every operation is a single atomic read-modify-write against the backing
// store; audit-log appends happen after commit and are best-effort.
package command

import (
	"context"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/reward"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/settings"
)

// Store provides the transaction boundary the mutation engine requires:
// snapshot reads, serialization of conflicting writers, all-or-nothing
// commit, and bounded retry on transient conflicts. The postgres
// implementation uses SERIALIZABLE transactions; the memory implementation
// uses a store-wide mutex.
type Store interface {
	// WithTx runs fn inside one atomic transaction. An error from fn rolls
	// everything back. Conflict retries happen inside WithTx; fn may run
	// more than once and must be side-effect free outside the Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the transaction-scoped repositories an operation may touch.
type Tx interface {
	Heroes() hero.Repository
	BoonRequests() reward.RequestRepository
	Settings() settings.Repository
	Leveling() hero.LevelingRepository
}
