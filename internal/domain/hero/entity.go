// Package hero содержит доменную модель героя — игрового персонажа ученика.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package hero

import (
	"fmt"
	"time"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// XP представляет накопленные очки опыта героя.
type XP int

// IsValid проверяет, что XP неотрицательный.
func (x XP) IsValid() bool {
	return x >= 0
}

// Add складывает XP. Отрицательная дельта игнорируется:
// опыт не убывает нигде, кроме ручной правки учителя.
func (x XP) Add(delta XP) XP {
	if delta < 0 {
		return x
	}
	return x + delta
}

// Gold представляет игровую валюту героя.
type Gold int

// IsValid проверяет, что баланс неотрицательный.
func (g Gold) IsValid() bool {
	return g >= 0
}

// Class определяет класс героя и его прирост ресурсов за уровень.
type Class string

const (
	ClassGuardian Class = "guardian"
	ClassMage     Class = "mage"
	ClassHealer   Class = "healer"
	ClassRanger   Class = "ranger"
)

// IsValid проверяет, что класс известен.
func (c Class) IsValid() bool {
	switch c {
	case ClassGuardian, ClassMage, ClassHealer, ClassRanger:
		return true
	}
	return false
}

// Growth возвращает прирост MaxHP и MaxMP за один уровень.
func (c Class) Growth() (hp, mp int) {
	switch c {
	case ClassGuardian:
		return 8, 2
	case ClassMage:
		return 4, 7
	case ClassHealer:
		return 5, 6
	case ClassRanger:
		return 6, 4
	default:
		return 5, 5
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HERO ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Hero - изменяемая запись состояния ученика: ресурсы, уровень, инвентарь
// и отметки времени для кулдаунов. Все мутации проходят через операции
// движка внутри одной транзакции хранилища.
type Hero struct {
	UID         string
	TeacherUID  string
	CompanyID   string // необязательная принадлежность к отряду
	DisplayName string
	Class       Class

	XP    XP
	Gold  Gold
	Level int

	HP    int
	MaxHP int
	MP    int
	MaxMP int

	// Inventory отображает ID награды в количество.
	Inventory map[string]int

	// Кулдауны: каждый ограничивает одну операцию скользящим окном.
	LastUsedVeteransInsight     time.Time
	LastReceivedVeteransInsight time.Time
	LastDailyTraining           time.Time

	// CompletedChapters - главы, пройденные учеником (нужны для пула
	// вопросов ежедневной тренировки).
	CompletedChapters []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инварианты героя.
func (h *Hero) Validate() error {
	if h.UID == "" || h.TeacherUID == "" {
		return shared.NewDomainError("hero", "Validate", shared.ErrInvalidInput, "uid and teacher uid are required")
	}
	if !h.XP.IsValid() {
		return shared.NewDomainError("hero", "Validate", shared.ErrValueOutOfRange, "xp cannot be negative")
	}
	if !h.Gold.IsValid() {
		return shared.NewDomainError("hero", "Validate", shared.ErrValueOutOfRange, "gold cannot be negative")
	}
	if h.Level < 1 || h.Level > MaxLevel {
		return shared.NewDomainError("hero", "Validate", shared.ErrValueOutOfRange,
			fmt.Sprintf("level %d outside 1..%d", h.Level, MaxLevel))
	}
	if h.HP < 0 || h.HP > h.MaxHP || h.MP < 0 || h.MP > h.MaxMP {
		return shared.NewDomainError("hero", "Validate", shared.ErrValueOutOfRange, "hp/mp outside pool bounds")
	}
	return nil
}

// Heal повышает HP не выше MaxHP и возвращает фактически восстановленное
// количество. Полному герою лечение не нужно - возвращается 0.
func (h *Hero) Heal(amount int) int {
	if amount <= 0 || h.HP >= h.MaxHP {
		return 0
	}
	healed := amount
	if h.HP+healed > h.MaxHP {
		healed = h.MaxHP - h.HP
	}
	h.HP += healed
	return healed
}

// RestoreMP повышает MP не выше MaxMP, аналогично Heal.
func (h *Hero) RestoreMP(amount int) int {
	if amount <= 0 || h.MP >= h.MaxMP {
		return 0
	}
	restored := amount
	if h.MP+restored > h.MaxMP {
		restored = h.MaxMP - h.MP
	}
	h.MP += restored
	return restored
}

// SpendMP списывает стоимость заклинания.
func (h *Hero) SpendMP(cost int) error {
	if cost < 0 {
		return shared.NewDomainError("hero", "SpendMP", shared.ErrInvalidInput, "cost cannot be negative")
	}
	if h.MP < cost {
		return shared.NewDomainError("hero", "SpendMP", shared.ErrInsufficientMP,
			fmt.Sprintf("need %d mp, have %d", cost, h.MP))
	}
	h.MP -= cost
	return nil
}

// SpendGold списывает золото, не допуская отрицательного баланса.
func (h *Hero) SpendGold(cost Gold) error {
	if cost < 0 {
		return shared.NewDomainError("hero", "SpendGold", shared.ErrInvalidInput, "cost cannot be negative")
	}
	if h.Gold < cost {
		return shared.NewDomainError("hero", "SpendGold", shared.ErrInsufficientFunds,
			fmt.Sprintf("need %d gold, have %d", cost, h.Gold))
	}
	h.Gold -= cost
	return nil
}

// AddGold начисляет золото. Отрицательная дельта игнорируется.
func (h *Hero) AddGold(amount Gold) {
	if amount > 0 {
		h.Gold += amount
	}
}

// GrantItem добавляет одну единицу награды в инвентарь.
func (h *Hero) GrantItem(boonID string) {
	if h.Inventory == nil {
		h.Inventory = make(map[string]int)
	}
	h.Inventory[boonID]++
}

// InCompany сообщает, состоит ли герой в том же отряде, что и другой.
// Герои без отряда не считаются союзниками ни для кого.
func (h *Hero) InCompany(other *Hero) bool {
	return h.CompanyID != "" && h.CompanyID == other.CompanyID
}

// HasCompletedChapter проверяет, пройдена ли глава.
func (h *Hero) HasCompletedChapter(chapterID string) bool {
	for _, id := range h.CompletedChapters {
		if id == chapterID {
			return true
		}
	}
	return false
}
