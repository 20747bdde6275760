// Package settings supplies per-teacher configurable reward amounts.
package settings

import (
	"context"
)

// RewardSettings holds the configurable reward amounts the engine reads.
type RewardSettings struct {
	TeacherUID string

	// DailyTrainingXPReward is the XP granted for a perfect daily training.
	DailyTrainingXPReward int

	// DailyTrainingGoldReward is the gold granted for a perfect daily training.
	DailyTrainingGoldReward int

	// DailyTrainingQuestionCount caps the daily training question pool.
	DailyTrainingQuestionCount int
}

// Defaults returns the reward amounts used when a teacher has not saved
// their own.
func Defaults(teacherUID string) RewardSettings {
	return RewardSettings{
		TeacherUID:                 teacherUID,
		DailyTrainingXPReward:      100,
		DailyTrainingGoldReward:    30,
		DailyTrainingQuestionCount: 10,
	}
}

// Repository reads reward settings inside a store transaction.
// Implementations fall back to Defaults when nothing is stored.
type Repository interface {
	GetRewardSettings(ctx context.Context, teacherUID string) (RewardSettings, error)
}
