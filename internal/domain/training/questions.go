// Package training builds the daily-training question pool. Pure selection:
// gather questions from completed chapters that opt into daily training,
// normalize duel questions into the common shape, shuffle, truncate.
// Nothing here touches the store.
package training

import (
	"context"
	"math/rand"
)

// Answer is one choice of a question.
type Answer struct {
	Text    string
	Correct bool
}

// Question is the common question shape used by daily training.
type Question struct {
	ID      string
	Prompt  string
	Answers []Answer
}

// DuelQuestion is the alternate format authored for hero duels: always a
// single correct answer plus distractors.
type DuelQuestion struct {
	ID            string
	Prompt        string
	CorrectAnswer string
	WrongAnswers  []string
}

// Normalize converts a duel question into the common shape.
func (d DuelQuestion) Normalize() Question {
	answers := make([]Answer, 0, len(d.WrongAnswers)+1)
	answers = append(answers, Answer{Text: d.CorrectAnswer, Correct: true})
	for _, w := range d.WrongAnswers {
		answers = append(answers, Answer{Text: w})
	}
	return Question{
		ID:      d.ID,
		Prompt:  d.Prompt,
		Answers: answers,
	}
}

// Chapter is the authored unit questions belong to.
type Chapter struct {
	ID                 string
	Title              string
	DailyTrainingOptIn bool
	Questions          []Question
	DuelQuestions      []DuelQuestion
}

// ContentSource supplies a teacher's authored chapters. Read-only
// collaborator; implementations live in infrastructure.
type ContentSource interface {
	Chapters(ctx context.Context, teacherUID string) ([]Chapter, error)
}

// BuildPool concatenates the question pools of every chapter accepted by
// completed, shuffles with an unbiased Fisher-Yates permutation and
// truncates to limit. A limit <= 0 returns the whole shuffled pool.
func BuildPool(chapters []Chapter, completed func(chapterID string) bool, rng *rand.Rand, limit int) []Question {
	var pool []Question
	for _, ch := range chapters {
		if !ch.DailyTrainingOptIn || !completed(ch.ID) {
			continue
		}
		pool = append(pool, ch.Questions...)
		for _, dq := range ch.DuelQuestions {
			pool = append(pool, dq.Normalize())
		}
	}

	Shuffle(pool, rng)

	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// Shuffle permutes questions in place with Fisher-Yates. Every permutation
// is equally likely given a uniform rng.
func Shuffle(questions []Question, rng *rand.Rand) {
	for i := len(questions) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		questions[i], questions[j] = questions[j], questions[i]
	}
}
