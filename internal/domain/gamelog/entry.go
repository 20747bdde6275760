// Package gamelog defines the append-only audit trail the engine writes to.
// Appends happen after the primary transaction commits and are best-effort:
// a lost log line never fails or rolls back a mutation.
package gamelog

import (
	"context"
	"time"
)

// Category classifies log entries by the surface they feed.
type Category string

const (
	// CategoryGamemaster feeds the teacher's activity feed.
	CategoryGamemaster Category = "gamemaster"

	// CategoryTransaction feeds the per-hero purchase history.
	CategoryTransaction Category = "transaction"

	// CategoryAvatar feeds the hero's own timeline.
	CategoryAvatar Category = "avatar"
)

// Entry is one append-only audit record. CreatedAt is assigned by the store
// at write time so cooldown-adjacent timestamps stay authoritative.
type Entry struct {
	ID          string
	TeacherUID  string
	Category    Category
	Actor       string
	Description string
	CreatedAt   time.Time
}

// Sink accepts audit entries. Implementations must never propagate append
// failures back into the caller's control flow.
type Sink interface {
	// Append records a gamemaster or avatar entry.
	Append(ctx context.Context, teacherUID string, category Category, actor, description string)

	// AppendTransaction records a purchase entry.
	AppendTransaction(ctx context.Context, teacherUID, heroUID, boonName string, cost int)
}

// NopSink discards all entries. Test helper and safe default.
type NopSink struct{}

// Append implements Sink.
func (NopSink) Append(context.Context, string, Category, string, string) {}

// AppendTransaction implements Sink.
func (NopSink) AppendTransaction(context.Context, string, string, string, int) {}
