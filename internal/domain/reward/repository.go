package reward

import (
	"context"
)

// RequestRepository определяет доступ к запросам на выкуп в границах
// одной транзакции хранилища.
type RequestRepository interface {
	// Get возвращает запрос по ID.
	// Возвращает shared.ErrNotFound, если запрос не найден.
	Get(ctx context.Context, teacherUID, requestID string) (*Request, error)

	// Create создаёт запрос на выкуп.
	Create(ctx context.Context, r *Request) error

	// Delete удаляет запрос. Удаление отсутствующего запроса - не ошибка:
	// deny идемпотентен.
	Delete(ctx context.Context, teacherUID, requestID string) error
}
