package query_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroforge-edu/heroforge-engine/internal/application/query"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/settings"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/training"
	"github.com/heroforge-edu/heroforge-engine/internal/infrastructure/persistence/memory"
)

const testTeacher = "teacher-1"

func question(id string) training.Question {
	return training.Question{ID: id, Prompt: id, Answers: []training.Answer{
		{Text: "right", Correct: true},
		{Text: "wrong"},
	}}
}

func chapters(n int, questionsPer int) []training.Chapter {
	chs := make([]training.Chapter, 0, n)
	for i := 0; i < n; i++ {
		ch := training.Chapter{
			ID:                 string(rune('a' + i)),
			DailyTrainingOptIn: true,
		}
		for j := 0; j < questionsPer; j++ {
			ch.Questions = append(ch.Questions, question(ch.ID+"-"+string(rune('0'+j))))
		}
		chs = append(chs, ch)
	}
	return chs
}

func TestQuestionsOnlyFromCompletedChapters(t *testing.T) {
	source := &memory.StaticContent{ByTeacher: map[string][]training.Chapter{
		testTeacher: chapters(3, 2), // chapters a, b, c
	}}
	handler := query.NewDailyTrainingQuestionsHandler(source, memory.NewStore(), rand.New(rand.NewSource(1)))

	pool, err := handler.Handle(context.Background(), query.DailyTrainingQuestionsQuery{
		TeacherUID: testTeacher,
		Hero:       &hero.Hero{UID: "h1", TeacherUID: testTeacher, CompletedChapters: []string{"a", "c"}},
	})

	require.NoError(t, err)
	require.Len(t, pool, 4)
	for _, q := range pool {
		assert.NotEqual(t, byte('b'), q.ID[0], "chapter b is not completed")
	}
}

func TestQuestionsTruncatedToConfiguredCount(t *testing.T) {
	source := &memory.StaticContent{ByTeacher: map[string][]training.Chapter{
		testTeacher: chapters(4, 5), // 20 questions available
	}}
	store := memory.NewStore()
	store.PutSettings(settings.RewardSettings{
		TeacherUID:                 testTeacher,
		DailyTrainingXPReward:      100,
		DailyTrainingGoldReward:    30,
		DailyTrainingQuestionCount: 7,
	})
	handler := query.NewDailyTrainingQuestionsHandler(source, store, rand.New(rand.NewSource(1)))

	pool, err := handler.Handle(context.Background(), query.DailyTrainingQuestionsQuery{
		TeacherUID: testTeacher,
		Hero: &hero.Hero{UID: "h1", TeacherUID: testTeacher,
			CompletedChapters: []string{"a", "b", "c", "d"}},
	})

	require.NoError(t, err)
	assert.Len(t, pool, 7)
}

func TestQuestionsEmptyForFreshHero(t *testing.T) {
	source := &memory.StaticContent{ByTeacher: map[string][]training.Chapter{
		testTeacher: chapters(2, 3),
	}}
	handler := query.NewDailyTrainingQuestionsHandler(source, memory.NewStore(), rand.New(rand.NewSource(1)))

	pool, err := handler.Handle(context.Background(), query.DailyTrainingQuestionsQuery{
		TeacherUID: testTeacher,
		Hero:       &hero.Hero{UID: "h1", TeacherUID: testTeacher},
	})

	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestQuestionsQueryValidation(t *testing.T) {
	handler := query.NewDailyTrainingQuestionsHandler(&memory.StaticContent{}, memory.NewStore(), rand.New(rand.NewSource(1)))

	_, err := handler.Handle(context.Background(), query.DailyTrainingQuestionsQuery{TeacherUID: testTeacher})
	assert.Error(t, err, "hero is required")

	_, err = handler.Handle(context.Background(), query.DailyTrainingQuestionsQuery{Hero: &hero.Hero{}})
	assert.Error(t, err, "teacher uid is required")
}
