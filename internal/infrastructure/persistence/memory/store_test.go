package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroforge-edu/heroforge-engine/internal/application/command"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

func seedHero(s *Store, uid string, gold int) {
	s.PutHero(&hero.Hero{
		UID:         uid,
		TeacherUID:  "teacher-1",
		DisplayName: uid,
		Class:       hero.ClassGuardian,
		Gold:        hero.Gold(gold),
		Level:       1,
		HP:          20, MaxHP: 20,
		MP: 10, MaxMP: 10,
	})
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	store := NewStore()
	seedHero(store, "h1", 50)

	err := store.WithTx(context.Background(), func(tx command.Tx) error {
		h, err := tx.Heroes().Get(context.Background(), "teacher-1", "h1")
		if err != nil {
			return err
		}
		h.Gold = 75
		return tx.Heroes().Update(context.Background(), h)
	})

	require.NoError(t, err)
	h, ok := store.GetHero("teacher-1", "h1")
	require.True(t, ok)
	assert.EqualValues(t, 75, h.Gold)
}

func TestWithTxDiscardsOnError(t *testing.T) {
	store := NewStore()
	seedHero(store, "h1", 50)
	boom := errors.New("boom")

	err := store.WithTx(context.Background(), func(tx command.Tx) error {
		h, err := tx.Heroes().Get(context.Background(), "teacher-1", "h1")
		if err != nil {
			return err
		}
		h.Gold = 0
		if err := tx.Heroes().Update(context.Background(), h); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	h, ok := store.GetHero("teacher-1", "h1")
	require.True(t, ok)
	assert.EqualValues(t, 50, h.Gold, "a failed transaction leaves committed state untouched")
}

func TestWithTxRespectsCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithTx(ctx, func(tx command.Tx) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	store := NewStore()
	seedHero(store, "h1", 50)

	err := store.WithTx(context.Background(), func(tx command.Tx) error {
		h, err := tx.Heroes().Get(context.Background(), "teacher-1", "h1")
		if err != nil {
			return err
		}
		h.Gold = 0 // mutated but never Updated
		return nil
	})

	require.NoError(t, err)
	h, _ := store.GetHero("teacher-1", "h1")
	assert.EqualValues(t, 50, h.Gold, "mutating a read copy must not leak into the store")
}

func TestUpdateUnknownHeroFails(t *testing.T) {
	store := NewStore()

	err := store.WithTx(context.Background(), func(tx command.Tx) error {
		return tx.Heroes().Update(context.Background(), &hero.Hero{
			UID: "ghost", TeacherUID: "teacher-1",
		})
	})

	assert.True(t, shared.IsNotFound(err))
}

func TestLevelingTableFallsBackToDefault(t *testing.T) {
	store := NewStore()

	var table hero.LevelingTable
	err := store.WithTx(context.Background(), func(tx command.Tx) error {
		var err error
		table, err = tx.Leveling().GetTable(context.Background(), "teacher-1")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, hero.DefaultTable(), table)
}

func TestSaveTableRejectsInvalidCurve(t *testing.T) {
	store := NewStore()

	err := store.WithTx(context.Background(), func(tx command.Tx) error {
		return tx.Leveling().SaveTable(context.Background(), "teacher-1", hero.LevelingTable{0, 0, 10, 5})
	})

	assert.ErrorIs(t, err, shared.ErrInvalidLevelingTable)
}

func TestSaveTableRoundTrips(t *testing.T) {
	store := NewStore()
	custom := hero.DefaultTable()
	custom[2] = 100

	err := store.WithTx(context.Background(), func(tx command.Tx) error {
		return tx.Leveling().SaveTable(context.Background(), "teacher-1", custom)
	})
	require.NoError(t, err)

	var got hero.LevelingTable
	err = store.WithTx(context.Background(), func(tx command.Tx) error {
		var err error
		got, err = tx.Leveling().GetTable(context.Background(), "teacher-1")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestRequestDeleteIsIdempotent(t *testing.T) {
	store := NewStore()

	err := store.WithTx(context.Background(), func(tx command.Tx) error {
		return tx.BoonRequests().Delete(context.Background(), "teacher-1", "nope")
	})

	assert.NoError(t, err)
}
