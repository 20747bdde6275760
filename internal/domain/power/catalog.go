// Package power defines the catalog of castable out-of-combat abilities:
// unlock levels, MP cost formulas, target rules and effect parameters.
// The catalog is immutable at runtime; the engine reads it fresh on every
// cast and dispatches on Kind instead of comparing power names.
package power

import (
	"math"
	"time"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// Kind selects the effect family a power belongs to. The mutation engine
// keeps one effect handler per kind.
type Kind string

const (
	// KindHeal rolls dice and distributes healing across targets.
	KindHeal Kind = "heal"

	// KindRestoreMP is the aura variant of KindHeal over MP.
	KindRestoreMP Kind = "restore_mp"

	// KindFullRestore restores a single target's HP to max, guarded
	// against wasted casts.
	KindFullRestore Kind = "full_restore"

	// KindXPBuff grants XP to eligible company members, cooldown gated.
	KindXPBuff Kind = "xp_buff"

	// KindConvertHPMP converts the caster's own HP into MP.
	KindConvertHPMP Kind = "convert_hp_mp"
)

// CostKind selects how the MP cost of a cast is computed.
type CostKind int

const (
	// CostFixed charges Cost.Amount.
	CostFixed CostKind = iota

	// CostHalfCurrentMP charges max(20, floor(mp * 0.5)).
	CostHalfCurrentMP

	// CostFifthMaxMP charges ceil(maxMp * 0.20).
	CostFifthMaxMP
)

// Cost is the MP price of a cast, fixed or formula-derived.
type Cost struct {
	Kind   CostKind
	Amount int // used by CostFixed only
}

// For computes the actual cost for a caster's current pools.
func (c Cost) For(mp, maxMP int) int {
	switch c.Kind {
	case CostHalfCurrentMP:
		cost := mp / 2
		if cost < 20 {
			cost = 20
		}
		return cost
	case CostFifthMaxMP:
		return int(math.Ceil(float64(maxMP) * 0.20))
	default:
		return c.Amount
	}
}

// Dice describes a dice formula such as 3d8 plus caster level.
type Dice struct {
	Count    int
	Sides    int
	AddLevel bool
}

// Definition describes one castable power.
type Definition struct {
	Name        string
	Kind        Kind
	UnlockLevel int
	Cost        Cost

	// MaxTargets caps the target list; 0 means the power targets only
	// the caster themselves.
	MaxTargets     int
	SelfTargetable bool

	// Cooldown gates repeated casts by the same caster; zero means no
	// cooldown. KindXPBuff additionally cools down per recipient.
	Cooldown time.Duration

	// Dice is the heal/restore pool formula for dice-based kinds.
	Dice Dice

	// WasteThreshold is the fraction of max resource at or above which a
	// full restore is refused without charging the caster.
	WasteThreshold float64

	// XPPerCasterLevel scales the XP buff with the caster's level.
	XPPerCasterLevel int

	// ConvertRatio is how many HP buy one MP for conversion powers.
	ConvertRatio int

	// MultiStep marks powers whose UI collects a numeric input in a
	// second step before the cast is submitted.
	MultiStep bool
}

// Catalog is a read-only, name-keyed set of power definitions.
type Catalog struct {
	byName map[string]Definition
}

// NewCatalog builds a catalog from definitions.
func NewCatalog(defs ...Definition) *Catalog {
	byName := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}
	return &Catalog{byName: byName}
}

// Get looks a power up by name.
// Returns shared.ErrPowerNotFound for unknown names.
func (c *Catalog) Get(name string) (Definition, error) {
	d, ok := c.byName[name]
	if !ok {
		return Definition{}, shared.NewDomainError("power", "Get", shared.ErrPowerNotFound,
			"unknown power: "+name)
	}
	return d, nil
}

// Names returns all power names, in no particular order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	return names
}

// DefaultCatalog returns the stock powers. Seed data for initialization;
// deployments may supply their own catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Definition{
			Name:        "minor-mending",
			Kind:        KindHeal,
			UnlockLevel: 1,
			Cost:        Cost{Kind: CostFixed, Amount: 10},
			MaxTargets:  1,
			Dice:        Dice{Count: 1, Sides: 6, AddLevel: true},
		},
		Definition{
			Name:        "healing-hands",
			Kind:        KindHeal,
			UnlockLevel: 3,
			Cost:        Cost{Kind: CostFixed, Amount: 15},
			MaxTargets:  4,
			Dice:        Dice{Count: 3, Sides: 8, AddLevel: true},
		},
		Definition{
			Name:        "mana-aura",
			Kind:        KindRestoreMP,
			UnlockLevel: 5,
			Cost:        Cost{Kind: CostFixed, Amount: 12},
			MaxTargets:  4,
			Dice:        Dice{Count: 2, Sides: 6, AddLevel: true},
		},
		Definition{
			Name:           "revitalize",
			Kind:           KindFullRestore,
			UnlockLevel:    8,
			Cost:           Cost{Kind: CostHalfCurrentMP},
			MaxTargets:     1,
			WasteThreshold: 0.5,
		},
		Definition{
			Name:             "veterans-insight",
			Kind:             KindXPBuff,
			UnlockLevel:      10,
			Cost:             Cost{Kind: CostFifthMaxMP},
			MaxTargets:       6,
			Cooldown:         24 * time.Hour,
			XPPerCasterLevel: 10,
		},
		Definition{
			Name:           "transmute",
			Kind:           KindConvertHPMP,
			UnlockLevel:    4,
			Cost:           Cost{Kind: CostFixed, Amount: 0},
			SelfTargetable: true,
			ConvertRatio:   2,
			MultiStep:      true,
		},
	)
}
