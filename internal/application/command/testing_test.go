package command_test

import (
	"time"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/reward"
	"github.com/heroforge-edu/heroforge-engine/internal/infrastructure/persistence/memory"
	"github.com/heroforge-edu/heroforge-engine/pkg/timeutil"
)

const testTeacher = "teacher-1"

// testNow is the fixed instant every command test runs at.
var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testClock() timeutil.Clock {
	return timeutil.FixedClock{At: testNow}
}

type heroOpt func(*hero.Hero)

func withLevel(level int) heroOpt {
	return func(h *hero.Hero) { h.Level = level }
}

func withXP(xp int) heroOpt {
	return func(h *hero.Hero) { h.XP = hero.XP(xp) }
}

func withGold(gold int) heroOpt {
	return func(h *hero.Hero) { h.Gold = hero.Gold(gold) }
}

func withHP(hp, maxHP int) heroOpt {
	return func(h *hero.Hero) { h.HP, h.MaxHP = hp, maxHP }
}

func withMP(mp, maxMP int) heroOpt {
	return func(h *hero.Hero) { h.MP, h.MaxMP = mp, maxMP }
}

func withCompany(companyID string) heroOpt {
	return func(h *hero.Hero) { h.CompanyID = companyID }
}

func newHero(uid string, opts ...heroOpt) *hero.Hero {
	h := &hero.Hero{
		UID:         uid,
		TeacherUID:  testTeacher,
		DisplayName: uid,
		Class:       hero.ClassHealer,
		XP:          0,
		Gold:        0,
		Level:       1,
		HP:          20,
		MaxHP:       20,
		MP:          30,
		MaxMP:       30,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func newStoreWith(heroes ...*hero.Hero) *memory.Store {
	store := memory.NewStore()
	for _, h := range heroes {
		store.PutHero(h)
	}
	return store
}

func newRequest(id, heroUID, boonID, boonName string, cost int) *reward.Request {
	return &reward.Request{
		ID:         id,
		TeacherUID: testTeacher,
		HeroUID:    heroUID,
		HeroName:   heroUID,
		BoonID:     boonID,
		BoonName:   boonName,
		Cost:       hero.Gold(cost),
		CreatedAt:  testNow.Add(-time.Hour),
	}
}
