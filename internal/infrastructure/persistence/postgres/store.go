package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/heroforge-edu/heroforge-engine/internal/application/command"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/reward"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/settings"
)

// Store adapts Connection to the engine's command.Store contract.
type Store struct {
	conn *Connection
}

// NewStore creates a new Store.
func NewStore(conn *Connection) *Store {
	return &Store{conn: conn}
}

// WithTx implements command.Store on top of a serializable pgx transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx command.Tx) error) error {
	return s.conn.WithSerializableTx(ctx, func(pgtx pgx.Tx) error {
		return fn(&storeTx{tx: pgtx})
	})
}

// storeTx exposes transaction-scoped repositories over one pgx.Tx.
type storeTx struct {
	tx pgx.Tx
}

func (t *storeTx) Heroes() hero.Repository                { return &HeroRepository{q: t.tx} }
func (t *storeTx) BoonRequests() reward.RequestRepository { return &BoonRequestRepository{q: t.tx} }
func (t *storeTx) Settings() settings.Repository          { return &SettingsRepository{q: t.tx} }
func (t *storeTx) Leveling() hero.LevelingRepository      { return &LevelingRepository{q: t.tx} }
