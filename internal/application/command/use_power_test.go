package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroforge-edu/heroforge-engine/internal/application/command"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/power"
	"github.com/heroforge-edu/heroforge-engine/internal/infrastructure/persistence/memory"
)

func newPowerHandler(store *memory.Store, roller power.Roller) *command.UsePowerHandler {
	return command.NewUsePowerHandler(store, power.DefaultCatalog(), roller, testClock(), nil, nil)
}

func castCmd(caster, powerName string, targets ...string) command.UsePowerCommand {
	return command.UsePowerCommand{
		TeacherUID: testTeacher,
		CasterUID:  caster,
		PowerName:  powerName,
		TargetUIDs: targets,
	}
}

func TestUsePower_HealSplitsPoolAcrossTargets(t *testing.T) {
	store := newStoreWith(
		newHero("cleric", withLevel(5)),
		newHero("t1", withHP(10, 20)),
		newHero("t2", withHP(20, 20)),
	)
	// 3d8 rolls of 2,2,2 plus caster level 5 = 11; split two ways, 6 each.
	handler := newPowerHandler(store, &power.SequenceRoller{Results: []int{2, 2, 2}})

	result := handler.Handle(context.Background(), castCmd("cleric", "healing-hands", "t1", "t2"))

	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	assert.Contains(t, result.Message, "restoring 6 HP", "the full target contributes nothing to the healed total")

	t1, _ := store.GetHero(testTeacher, "t1")
	t2, _ := store.GetHero(testTeacher, "t2")
	assert.Equal(t, 16, t1.HP)
	assert.Equal(t, 20, t2.HP, "a full target absorbs nothing")

	caster, _ := store.GetHero(testTeacher, "cleric")
	assert.Equal(t, 15, caster.MP, "fixed cost of 15 charged once")
}

func TestUsePower_HealChargesEvenWhenTargetsAreFull(t *testing.T) {
	store := newStoreWith(
		newHero("cleric", withLevel(5)),
		newHero("t1", withHP(20, 20)),
	)
	handler := newPowerHandler(store, &power.SequenceRoller{Results: []int{2, 2, 2}})

	result := handler.Handle(context.Background(), castCmd("cleric", "healing-hands", "t1"))

	require.True(t, result.Success)
	caster, _ := store.GetHero(testTeacher, "cleric")
	assert.Equal(t, 15, caster.MP, "a full target is a valid target, the cost is paid")
}

func TestUsePower_HealSkipsMissingTargets(t *testing.T) {
	store := newStoreWith(
		newHero("cleric", withLevel(5)),
		newHero("t1", withHP(10, 20)),
	)
	handler := newPowerHandler(store, &power.SequenceRoller{Results: []int{2, 2, 2}})

	result := handler.Handle(context.Background(), castCmd("cleric", "healing-hands", "ghost", "t1"))

	require.True(t, result.Success)
	t1, _ := store.GetHero(testTeacher, "t1")
	assert.Equal(t, 20, t1.HP, "the whole pool of 11 lands on the only real target, clamped")
}

func TestUsePower_HealRefusesWhenNoTargetExists(t *testing.T) {
	store := newStoreWith(newHero("cleric", withLevel(5)))
	handler := newPowerHandler(store, &power.SequenceRoller{Results: []int{2, 2, 2}})

	result := handler.Handle(context.Background(), castCmd("cleric", "healing-hands", "ghost"))

	assert.False(t, result.Success)
	caster, _ := store.GetHero(testTeacher, "cleric")
	assert.Equal(t, 30, caster.MP, "a refused cast charges nothing")
}

func TestUsePower_ManaAuraRestoresMP(t *testing.T) {
	store := newStoreWith(
		newHero("cleric", withLevel(5)),
		newHero("t1", withMP(0, 30)),
	)
	// 2d6 rolls of 3,4 plus level 5 = 12.
	handler := newPowerHandler(store, &power.SequenceRoller{Results: []int{3, 4}})

	result := handler.Handle(context.Background(), castCmd("cleric", "mana-aura", "t1"))

	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	t1, _ := store.GetHero(testTeacher, "t1")
	assert.Equal(t, 12, t1.MP)
	caster, _ := store.GetHero(testTeacher, "cleric")
	assert.Equal(t, 18, caster.MP)
}

func TestUsePower_FullRestoreWasteGuard(t *testing.T) {
	store := newStoreWith(
		newHero("cleric", withLevel(8), withMP(50, 50)),
		newHero("t1", withHP(15, 20)),
	)
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("cleric", "revitalize", "t1"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "wasted")

	caster, _ := store.GetHero(testTeacher, "cleric")
	assert.Equal(t, 50, caster.MP, "the waste-guard fires before the caster is charged")
	t1, _ := store.GetHero(testTeacher, "t1")
	assert.Equal(t, 15, t1.HP)
}

func TestUsePower_FullRestoreHealsToMax(t *testing.T) {
	store := newStoreWith(
		newHero("cleric", withLevel(8), withMP(50, 50)),
		newHero("t1", withHP(5, 20)),
	)
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("cleric", "revitalize", "t1"))

	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	t1, _ := store.GetHero(testTeacher, "t1")
	assert.Equal(t, 20, t1.HP)
	caster, _ := store.GetHero(testTeacher, "cleric")
	assert.Equal(t, 25, caster.MP, "half of 50 current MP")
}

func TestUsePower_FullRestoreCostFloor(t *testing.T) {
	store := newStoreWith(
		newHero("cleric", withLevel(8), withMP(30, 50)),
		newHero("t1", withHP(5, 20)),
	)
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("cleric", "revitalize", "t1"))

	require.True(t, result.Success)
	caster, _ := store.GetHero(testTeacher, "cleric")
	assert.Equal(t, 10, caster.MP, "floor(30/2)=15 is below the 20 minimum, so 20 is charged")
}

func TestUsePower_XPBuffEligibility(t *testing.T) {
	recent := newHero("a3", withCompany("alpha"))
	recent.LastReceivedVeteransInsight = testNow.Add(-time.Hour)

	store := newStoreWith(
		newHero("captain", withLevel(10), withMP(50, 50), withCompany("alpha")),
		newHero("a1", withCompany("alpha")),           // eligible
		newHero("a2", withLevel(10), withCompany("alpha")), // level not below caster's
		newHero("b1", withCompany("beta")),            // wrong company
		recent,                                        // receive window still closed
	)
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(),
		castCmd("captain", "veterans-insight", "a1", "a2", "b1", "a3", "captain"))

	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	assert.Contains(t, result.Message, "1 company member(s)")

	a1, _ := store.GetHero(testTeacher, "a1")
	assert.EqualValues(t, 100, a1.XP, "10 XP per caster level at level 10")
	assert.Equal(t, testNow, a1.LastReceivedVeteransInsight)

	for _, uid := range []string{"a2", "b1", "a3"} {
		h, _ := store.GetHero(testTeacher, uid)
		assert.Zero(t, h.XP, "%s must not receive XP", uid)
	}

	caster, _ := store.GetHero(testTeacher, "captain")
	assert.Equal(t, 40, caster.MP, "ceil(50*0.2)=10 charged")
	assert.Equal(t, testNow, caster.LastUsedVeteransInsight)
}

func TestUsePower_XPBuffNoEligibleTargetsChargesNothing(t *testing.T) {
	store := newStoreWith(
		newHero("captain", withLevel(10), withMP(50, 50), withCompany("alpha")),
		newHero("b1", withCompany("beta")),
	)
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("captain", "veterans-insight", "b1"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no company member")

	caster, _ := store.GetHero(testTeacher, "captain")
	assert.Equal(t, 50, caster.MP)
	assert.True(t, caster.LastUsedVeteransInsight.IsZero(), "a rejected cast leaves the cooldown clear")
}

func TestUsePower_XPBuffCooldownGate(t *testing.T) {
	captain := newHero("captain", withLevel(10), withMP(50, 50), withCompany("alpha"))
	captain.LastUsedVeteransInsight = testNow.Add(-2 * time.Hour)
	store := newStoreWith(captain, newHero("a1", withCompany("alpha")))
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("captain", "veterans-insight", "a1"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "cooling down")

	a1, _ := store.GetHero(testTeacher, "a1")
	assert.Zero(t, a1.XP)
	caster, _ := store.GetHero(testTeacher, "captain")
	assert.Equal(t, 50, caster.MP)
}

func TestUsePower_XPBuffOpenAfterWindowElapses(t *testing.T) {
	captain := newHero("captain", withLevel(10), withMP(50, 50), withCompany("alpha"))
	captain.LastUsedVeteransInsight = testNow.Add(-25 * time.Hour)
	store := newStoreWith(captain, newHero("a1", withCompany("alpha")))
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("captain", "veterans-insight", "a1"))

	assert.True(t, result.Success, "unexpected failure: %s", result.Error)
}

func TestUsePower_TransmuteConvertsHPToMP(t *testing.T) {
	store := newStoreWith(newHero("mystic", withLevel(4), withHP(20, 20), withMP(10, 30)))
	handler := newPowerHandler(store, nil)

	amount := 8
	result := handler.Handle(context.Background(), command.UsePowerCommand{
		TeacherUID: testTeacher,
		CasterUID:  "mystic",
		PowerName:  "transmute",
		InputValue: &amount,
	})

	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	caster, _ := store.GetHero(testTeacher, "mystic")
	assert.Equal(t, 12, caster.HP)
	assert.Equal(t, 14, caster.MP, "8 HP buy 4 MP at the 2:1 ratio")
}

func TestUsePower_TransmuteInputBounds(t *testing.T) {
	cases := []struct {
		name   string
		amount int
	}{
		{"zero", 0},
		{"negative", -4},
		{"odd amount", 7},
		{"would drop to zero hp", 20},
		{"would overfill mp", 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStoreWith(newHero("mystic", withLevel(4), withHP(20, 20), withMP(10, 30)))
			handler := newPowerHandler(store, nil)

			amount := tc.amount
			result := handler.Handle(context.Background(), command.UsePowerCommand{
				TeacherUID: testTeacher,
				CasterUID:  "mystic",
				PowerName:  "transmute",
				InputValue: &amount,
			})

			assert.False(t, result.Success)
			caster, _ := store.GetHero(testTeacher, "mystic")
			assert.Equal(t, 20, caster.HP)
			assert.Equal(t, 10, caster.MP)
		})
	}
}

func TestUsePower_TransmuteRequiresInput(t *testing.T) {
	store := newStoreWith(newHero("mystic", withLevel(4)))
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("mystic", "transmute"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "amount")
}

func TestUsePower_InsufficientMP(t *testing.T) {
	store := newStoreWith(
		newHero("cleric", withMP(5, 30)),
		newHero("t1", withHP(10, 20)),
	)
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("cleric", "minor-mending", "t1"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "costs")
}

func TestUsePower_NotUnlocked(t *testing.T) {
	store := newStoreWith(
		newHero("novice"), // level 1
		newHero("t1", withHP(10, 20)),
	)
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("novice", "healing-hands", "t1"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unlocks at level 3")
}

func TestUsePower_UnknownPower(t *testing.T) {
	store := newStoreWith(newHero("cleric"))
	handler := newPowerHandler(store, nil)

	result := handler.Handle(context.Background(), castCmd("cleric", "fireball", "t1"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unknown power")
}

func TestUsePower_TargetListCappedAtMaxTargets(t *testing.T) {
	heroes := []string{"t1", "t2", "t3", "t4", "t5"}
	store := newStoreWith(newHero("cleric", withLevel(5)))
	for _, uid := range heroes {
		store.PutHero(newHero(uid, withHP(1, 20)))
	}
	handler := newPowerHandler(store, &power.SequenceRoller{Results: []int{8, 8, 8}})

	result := handler.Handle(context.Background(), castCmd("cleric", "healing-hands", heroes...))

	require.True(t, result.Success)
	t5, _ := store.GetHero(testTeacher, "t5")
	assert.Equal(t, 1, t5.HP, "the fifth target falls outside the 4-target cap")
}
