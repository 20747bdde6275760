// Package audit implements the best-effort game-log sink. Entries are
// buffered and written by a background worker: a row in PostgreSQL for
// history, plus a fire-and-forget publish to a Redis channel so teacher
// dashboards can stream activity live. Failures are logged and swallowed -
// they never reach the engine's control flow.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/gamelog"
)

// Writer persists one audit entry. Implemented by the postgres game log
// repository.
type Writer interface {
	Insert(ctx context.Context, e gamelog.Entry) error
}

// AsyncSink implements gamelog.Sink with a buffered background worker.
type AsyncSink struct {
	writer  Writer
	redis   *redis.Client
	logger  *slog.Logger
	entries chan gamelog.Entry

	closeOnce sync.Once
	wg        sync.WaitGroup

	// writeTimeout bounds each append so a slow store cannot back the
	// worker up forever.
	writeTimeout time.Duration
}

// Config holds sink configuration.
type Config struct {
	// BufferSize is the entry queue capacity. When the queue is full new
	// entries are dropped, not blocked on.
	BufferSize int

	// WriteTimeout bounds each worker write.
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:   256,
		WriteTimeout: 5 * time.Second,
	}
}

// NewAsyncSink creates the sink and starts its worker. The redis client is
// optional; with nil only the writer is used.
func NewAsyncSink(writer Writer, redisClient *redis.Client, logger *slog.Logger, cfg Config) *AsyncSink {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	s := &AsyncSink{
		writer:       writer,
		redis:        redisClient,
		logger:       logger,
		entries:      make(chan gamelog.Entry, cfg.BufferSize),
		writeTimeout: cfg.WriteTimeout,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Append implements gamelog.Sink.
func (s *AsyncSink) Append(_ context.Context, teacherUID string, category gamelog.Category, actor, description string) {
	s.enqueue(gamelog.Entry{
		ID:          uuid.NewString(),
		TeacherUID:  teacherUID,
		Category:    category,
		Actor:       actor,
		Description: description,
	})
}

// AppendTransaction implements gamelog.Sink.
func (s *AsyncSink) AppendTransaction(_ context.Context, teacherUID, heroUID, boonName string, cost int) {
	s.enqueue(gamelog.Entry{
		ID:          uuid.NewString(),
		TeacherUID:  teacherUID,
		Category:    gamelog.CategoryTransaction,
		Actor:       heroUID,
		Description: fmt.Sprintf("%s purchased for %d gold", boonName, cost),
	})
}

func (s *AsyncSink) enqueue(e gamelog.Entry) {
	select {
	case s.entries <- e:
	default:
		s.logger.Warn("game log queue full, dropping entry",
			"teacher_uid", e.TeacherUID, "category", e.Category)
	}
}

func (s *AsyncSink) run() {
	defer s.wg.Done()
	for e := range s.entries {
		s.write(e)
	}
}

func (s *AsyncSink) write(e gamelog.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if s.writer != nil {
		if err := s.writer.Insert(ctx, e); err != nil {
			s.logger.Error("failed to persist game log entry",
				"teacher_uid", e.TeacherUID, "category", e.Category, "error", err)
		}
	}

	if s.redis != nil {
		payload, err := json.Marshal(e)
		if err != nil {
			s.logger.Error("failed to marshal game log entry", "error", err)
			return
		}
		channel := "heroforge:gamelog:" + e.TeacherUID
		if err := s.redis.Publish(ctx, channel, payload).Err(); err != nil {
			s.logger.Warn("failed to publish game log entry",
				"channel", channel, "error", err)
		}
	}
}

// Close stops accepting entries and waits for the queue to drain.
func (s *AsyncSink) Close() {
	s.closeOnce.Do(func() {
		close(s.entries)
	})
	s.wg.Wait()
}
