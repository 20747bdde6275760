package hero

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence и действуют в границах
// одной транзакции хранилища.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции чтения и записи героев.
type Repository interface {
	// Get возвращает героя учителя по UID.
	// Возвращает shared.ErrNotFound, если герой не найден.
	Get(ctx context.Context, teacherUID, uid string) (*Hero, error)

	// Update сохраняет изменённое состояние героя.
	// Возвращает shared.ErrNotFound, если герой не найден.
	Update(ctx context.Context, h *Hero) error
}

// LevelingRepository определяет доступ к кривым уровней.
type LevelingRepository interface {
	// GetTable возвращает кривую учителя или DefaultTable при её отсутствии.
	GetTable(ctx context.Context, teacherUID string) (LevelingTable, error)

	// SaveTable сохраняет кривую учителя.
	// Возвращает shared.ErrInvalidLevelingTable, если кривая не строго
	// возрастает.
	SaveTable(ctx context.Context, teacherUID string, table LevelingTable) error
}
