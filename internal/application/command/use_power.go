package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/gamelog"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/power"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
	"github.com/heroforge-edu/heroforge-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// USE POWER COMMAND
// Casts a non-combat power: cooldown gate, unlock gate, cost computation,
// MP gate, then one effect handler per power kind. Waste-guarded kinds
// validate before committing anything - the caster is never charged for a
// cast that does nothing.
// ══════════════════════════════════════════════════════════════════════════════

// UsePowerCommand carries a cast request.
type UsePowerCommand struct {
	TeacherUID string
	CasterUID  string
	PowerName  string

	// TargetUIDs lists the intended targets, 0..N depending on the power.
	TargetUIDs []string

	// InputValue is the numeric input of multi-step powers (HP to convert).
	InputValue *int
}

// Validate validates the command.
func (c UsePowerCommand) Validate() error {
	if c.TeacherUID == "" || c.CasterUID == "" {
		return shared.NewDomainError("power", "UsePower", shared.ErrInvalidInput, "teacher uid and caster uid are required")
	}
	if c.PowerName == "" {
		return shared.NewDomainError("power", "UsePower", shared.ErrInvalidInput, "power name is required")
	}
	return nil
}

// effectFunc applies one power kind inside the transaction. It mutates and
// persists targets, charges the caster when the rules say so, and returns
// the success message. The handler persists the caster afterwards.
type effectFunc func(ctx context.Context, tx Tx, caster *hero.Hero, def power.Definition, cmd UsePowerCommand, cost int, now time.Time) (string, error)

// UsePowerHandler handles the UsePowerCommand.
type UsePowerHandler struct {
	store   Store
	catalog *power.Catalog
	roller  power.Roller
	clock   timeutil.Clock
	sink    gamelog.Sink
	logger  *slog.Logger

	effects map[power.Kind]effectFunc
}

// NewUsePowerHandler creates a new UsePowerHandler.
func NewUsePowerHandler(store Store, catalog *power.Catalog, roller power.Roller, clock timeutil.Clock, sink gamelog.Sink, logger *slog.Logger) *UsePowerHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	if sink == nil {
		sink = gamelog.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &UsePowerHandler{
		store:   store,
		catalog: catalog,
		roller:  roller,
		clock:   clock,
		sink:    sink,
		logger:  logger,
	}
	h.effects = map[power.Kind]effectFunc{
		power.KindHeal:        h.applyHeal,
		power.KindRestoreMP:   h.applyRestoreMP,
		power.KindFullRestore: h.applyFullRestore,
		power.KindXPBuff:      h.applyXPBuff,
		power.KindConvertHPMP: h.applyConvertHPMP,
	}
	return h
}

// Handle executes the cast.
func (h *UsePowerHandler) Handle(ctx context.Context, cmd UsePowerCommand) Result {
	if err := cmd.Validate(); err != nil {
		return failFromError(err)
	}

	now := h.clock.Now()
	var message string

	err := h.store.WithTx(ctx, func(tx Tx) error {
		def, err := h.catalog.Get(cmd.PowerName)
		if err != nil {
			return err
		}

		caster, err := tx.Heroes().Get(ctx, cmd.TeacherUID, cmd.CasterUID)
		if err != nil {
			return err
		}

		// Cooldown gate comes before every other check: a cooling-down
		// power consumes nothing and reveals nothing else.
		if def.Cooldown > 0 {
			last := lastCastOf(caster, def)
			if !timeutil.WindowOpen(now, last, def.Cooldown) {
				remaining := timeutil.Remaining(now, last, def.Cooldown)
				return shared.NewDomainError("power", "UsePower", shared.ErrOnCooldown,
					fmt.Sprintf("%s is cooling down for another %s", def.Name, remaining.Round(time.Minute)))
			}
		}

		if caster.Level < def.UnlockLevel {
			return shared.NewDomainError("power", "UsePower", shared.ErrPowerNotUnlocked,
				fmt.Sprintf("%s unlocks at level %d", def.Name, def.UnlockLevel))
		}

		cost := def.Cost.For(caster.MP, caster.MaxMP)
		if caster.MP < cost {
			return shared.NewDomainError("power", "UsePower", shared.ErrInsufficientMP,
				fmt.Sprintf("%s costs %d mp, %s has %d", def.Name, cost, caster.DisplayName, caster.MP))
		}

		apply, ok := h.effects[def.Kind]
		if !ok {
			return shared.NewDomainError("power", "UsePower", shared.ErrPowerNotFound,
				"no effect registered for power kind "+string(def.Kind))
		}

		msg, err := apply(ctx, tx, caster, def, cmd, cost, now)
		if err != nil {
			return err
		}
		message = msg

		return tx.Heroes().Update(ctx, caster)
	})
	if err != nil {
		return failFromError(err)
	}

	h.sink.Append(ctx, cmd.TeacherUID, gamelog.CategoryGamemaster, cmd.CasterUID, message)
	return succeed(message)
}

// lastCastOf returns the caster-side cooldown stamp for the power. Only the
// XP buff carries one today; new cooldown powers need a ledger field and a
// case here.
func lastCastOf(caster *hero.Hero, def power.Definition) time.Time {
	if def.Kind == power.KindXPBuff {
		return caster.LastUsedVeteransInsight
	}
	return time.Time{}
}

// resolveTargets loads the heroes named by the command, capped at the
// power's target limit. Missing heroes (deleted mid-flight) are skipped
// silently; the caster is skipped unless the power is self-targetable.
func (h *UsePowerHandler) resolveTargets(ctx context.Context, tx Tx, caster *hero.Hero, def power.Definition, uids []string) ([]*hero.Hero, error) {
	if len(uids) == 0 {
		return nil, shared.NewDomainError("power", "UsePower", shared.ErrInvalidInput,
			def.Name+" needs at least one target")
	}
	if def.MaxTargets > 0 && len(uids) > def.MaxTargets {
		uids = uids[:def.MaxTargets]
	}

	targets := make([]*hero.Hero, 0, len(uids))
	for _, uid := range uids {
		if uid == caster.UID {
			if !def.SelfTargetable {
				continue
			}
			targets = append(targets, caster)
			continue
		}
		t, err := tx.Heroes().Get(ctx, caster.TeacherUID, uid)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// applyHeal rolls the dice pool once and splits it evenly across targets by
// ceiling division. Targets already at full HP absorb nothing but do not
// fail the cast; the caster pays the full cost once targets are resolved.
func (h *UsePowerHandler) applyHeal(ctx context.Context, tx Tx, caster *hero.Hero, def power.Definition, cmd UsePowerCommand, cost int, _ time.Time) (string, error) {
	targets, err := h.resolveTargets(ctx, tx, caster, def, cmd.TargetUIDs)
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return "", shared.NewDomainError("power", "UsePower", shared.ErrNotFound,
			"none of the targets exist anymore")
	}

	total := def.Dice.Total(h.roller, caster.Level)
	per := ceilDiv(total, len(targets))

	healed := 0
	for _, t := range targets {
		healed += t.Heal(per)
		if err := tx.Heroes().Update(ctx, t); err != nil {
			return "", err
		}
	}

	if err := caster.SpendMP(cost); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s cast %s on %d hero(es), restoring %d HP in total",
		caster.DisplayName, def.Name, len(targets), healed), nil
}

// applyRestoreMP is the aura variant of applyHeal over MP.
func (h *UsePowerHandler) applyRestoreMP(ctx context.Context, tx Tx, caster *hero.Hero, def power.Definition, cmd UsePowerCommand, cost int, _ time.Time) (string, error) {
	targets, err := h.resolveTargets(ctx, tx, caster, def, cmd.TargetUIDs)
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return "", shared.NewDomainError("power", "UsePower", shared.ErrNotFound,
			"none of the targets exist anymore")
	}

	total := def.Dice.Total(h.roller, caster.Level)
	per := ceilDiv(total, len(targets))

	restored := 0
	for _, t := range targets {
		restored += t.RestoreMP(per)
		if err := tx.Heroes().Update(ctx, t); err != nil {
			return "", err
		}
	}

	if err := caster.SpendMP(cost); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s cast %s on %d hero(es), restoring %d MP in total",
		caster.DisplayName, def.Name, len(targets), restored), nil
}

// applyFullRestore restores the sole target's HP to max. Waste-guard: a
// target at or above the threshold fraction of max HP refuses the cast
// before the caster is charged - validate-before-commit, not
// charge-then-refund.
func (h *UsePowerHandler) applyFullRestore(ctx context.Context, tx Tx, caster *hero.Hero, def power.Definition, cmd UsePowerCommand, cost int, _ time.Time) (string, error) {
	targets, err := h.resolveTargets(ctx, tx, caster, def, cmd.TargetUIDs)
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return "", shared.NewDomainError("power", "UsePower", shared.ErrNotFound,
			"target does not exist anymore")
	}
	target := targets[0]

	if float64(target.HP) >= def.WasteThreshold*float64(target.MaxHP) {
		return "", shared.NewDomainError("power", "UsePower", shared.ErrWastedCast,
			fmt.Sprintf("%s is already healthy enough; the cast would be wasted", target.DisplayName))
	}

	healed := target.Heal(target.MaxHP - target.HP)
	if err := tx.Heroes().Update(ctx, target); err != nil {
		return "", err
	}
	if err := caster.SpendMP(cost); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s fully restored %s (+%d HP)", caster.DisplayName, target.DisplayName, healed), nil
}

// applyXPBuff grants leveling-table XP to every eligible target. Eligible
// means: same company as the caster, level strictly below the caster's, and
// their own receive-cooldown is clear. Ineligible targets are skipped, not
// fatal. With zero eligible targets the caster keeps their MP and their
// cast cooldown stays clear.
func (h *UsePowerHandler) applyXPBuff(ctx context.Context, tx Tx, caster *hero.Hero, def power.Definition, cmd UsePowerCommand, cost int, now time.Time) (string, error) {
	if len(cmd.TargetUIDs) == 0 {
		return "", shared.NewDomainError("power", "UsePower", shared.ErrInvalidInput,
			def.Name+" needs at least one target")
	}

	table, err := tx.Leveling().GetTable(ctx, caster.TeacherUID)
	if err != nil {
		return "", err
	}

	uids := cmd.TargetUIDs
	if def.MaxTargets > 0 && len(uids) > def.MaxTargets {
		uids = uids[:def.MaxTargets]
	}

	gain := hero.XP(def.XPPerCasterLevel * caster.Level)
	awarded := 0
	for _, uid := range uids {
		if uid == caster.UID {
			continue
		}
		t, err := tx.Heroes().Get(ctx, caster.TeacherUID, uid)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return "", err
		}
		if !caster.InCompany(t) {
			continue
		}
		if t.Level >= caster.Level {
			continue
		}
		if !timeutil.WindowOpen(now, t.LastReceivedVeteransInsight, def.Cooldown) {
			continue
		}

		hero.ApplyXPGain(t, gain, table)
		t.LastReceivedVeteransInsight = now
		if err := tx.Heroes().Update(ctx, t); err != nil {
			return "", err
		}
		awarded++
	}

	if awarded == 0 {
		return "", shared.NewDomainError("power", "UsePower", shared.ErrNoEligibleTargets,
			"no company member could receive the insight")
	}

	if err := caster.SpendMP(cost); err != nil {
		return "", err
	}
	caster.LastUsedVeteransInsight = now

	return fmt.Sprintf("%s shared %s with %d company member(s), granting %d XP each",
		caster.DisplayName, def.Name, awarded, gain), nil
}

// applyConvertHPMP converts the caster's own HP into MP at the fixed ratio.
// The input is validated against min(hp-1, neededMp*ratio) before anything
// mutates; the caster can never convert themselves to 0 HP or overfill MP.
func (h *UsePowerHandler) applyConvertHPMP(ctx context.Context, tx Tx, caster *hero.Hero, def power.Definition, cmd UsePowerCommand, cost int, _ time.Time) (string, error) {
	if cmd.InputValue == nil {
		return "", shared.NewDomainError("power", "UsePower", shared.ErrInvalidInput,
			def.Name+" needs the amount of HP to convert")
	}
	amount := *cmd.InputValue

	ratio := def.ConvertRatio
	if ratio <= 0 {
		ratio = 2
	}

	neededMP := caster.MaxMP - caster.MP
	maxConvertible := caster.HP - 1
	if neededMP*ratio < maxConvertible {
		maxConvertible = neededMP * ratio
	}

	if amount <= 0 || amount > maxConvertible || amount%ratio != 0 {
		return "", shared.NewDomainError("power", "UsePower", shared.ErrInvalidInput,
			fmt.Sprintf("convert amount must be a positive multiple of %d up to %d HP", ratio, maxConvertible))
	}

	gained := amount / ratio
	caster.HP -= amount
	caster.MP += gained

	return fmt.Sprintf("%s transmuted %d HP into %d MP", caster.DisplayName, amount, gained), nil
}

// ceilDiv divides rounding up.
func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
