package memory

import (
	"context"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/training"
)

// StaticContent implements training.ContentSource over a fixed chapter set.
// Chapter authoring belongs to the quest-content collaborator, so the engine
// only ever reads content handed to it.
type StaticContent struct {
	ByTeacher map[string][]training.Chapter
}

// Chapters implements training.ContentSource.
func (s StaticContent) Chapters(_ context.Context, teacherUID string) ([]training.Chapter, error) {
	return s.ByTeacher[teacherUID], nil
}
