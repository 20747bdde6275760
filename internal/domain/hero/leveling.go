package hero

import (
	"fmt"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// MaxLevel - максимальный уровень героя.
const MaxLevel = 20

// LevelingTable отображает уровень в суммарный порог XP. Индекс 0 не
// используется, Threshold(1) всегда 0. Кривая должна быть строго
// возрастающей для уровней 2..MaxLevel.
type LevelingTable []int

// DefaultTable - системная кривая уровней. Учитель может сохранить свою,
// движок откатывается на эту при её отсутствии.
// Порог уровня L равен 75*L*(L-1).
func DefaultTable() LevelingTable {
	return LevelingTable{
		0,     // 0 (не используется)
		0,     // 1
		150,   // 2
		450,   // 3
		900,   // 4
		1500,  // 5
		2250,  // 6
		3150,  // 7
		4200,  // 8
		5400,  // 9
		6750,  // 10
		8250,  // 11
		9900,  // 12
		11700, // 13
		13650, // 14
		15750, // 15
		18000, // 16
		20400, // 17
		22950, // 18
		25650, // 19
		28500, // 20
	}
}

// Validate отклоняет кривую, не являющуюся строго возрастающей.
func (t LevelingTable) Validate() error {
	if len(t) != MaxLevel+1 {
		return shared.NewDomainError("hero", "ValidateTable", shared.ErrInvalidLevelingTable,
			fmt.Sprintf("table must define levels 1..%d, got %d entries", MaxLevel, len(t)-1))
	}
	if t[1] != 0 {
		return shared.NewDomainError("hero", "ValidateTable", shared.ErrInvalidLevelingTable,
			"level 1 threshold must be 0")
	}
	for level := 2; level <= MaxLevel; level++ {
		if t[level] <= t[level-1] {
			return shared.NewDomainError("hero", "ValidateTable", shared.ErrInvalidLevelingTable,
				fmt.Sprintf("threshold for level %d (%d) must exceed level %d (%d)",
					level, t[level], level-1, t[level-1]))
		}
	}
	return nil
}

// Threshold возвращает суммарный XP, необходимый для уровня.
func (t LevelingTable) Threshold(level int) int {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return t[level]
}

// LevelForXP возвращает наибольший уровень L, для которого Threshold(L) <= xp,
// в пределах [1, MaxLevel].
func (t LevelingTable) LevelForXP(xp XP) int {
	level := 1
	for l := 2; l <= MaxLevel; l++ {
		if XP(t[l]) <= xp {
			level = l
		} else {
			break
		}
	}
	return level
}

// GainResult описывает результат начисления опыта.
type GainResult struct {
	NewXP      XP
	NewLevel   int
	LeveledUp  bool
	MaxHPDelta int
	MaxMPDelta int
}

// ApplyXPGain начисляет опыт герою и пересчитывает уровень. При повышении
// уровня MaxHP/MaxMP растут по классовому правилу, а HP и MP восстанавливаются
// до нового максимума - это контракт движка: любое повышение уровня полностью
// исцеляет героя.
func ApplyXPGain(h *Hero, delta XP, table LevelingTable) GainResult {
	oldLevel := h.Level

	h.XP = h.XP.Add(delta)
	newLevel := table.LevelForXP(h.XP)
	if newLevel < oldLevel {
		// Кривую могли ужесточить задним числом; уровень не понижаем.
		newLevel = oldLevel
	}

	result := GainResult{
		NewXP:    h.XP,
		NewLevel: newLevel,
	}

	if newLevel > oldLevel {
		hpGrowth, mpGrowth := h.Class.Growth()
		levels := newLevel - oldLevel
		result.LeveledUp = true
		result.MaxHPDelta = hpGrowth * levels
		result.MaxMPDelta = mpGrowth * levels

		h.Level = newLevel
		h.MaxHP += result.MaxHPDelta
		h.MaxMP += result.MaxMPDelta
		h.HP = h.MaxHP
		h.MP = h.MaxMP
	}

	return result
}
