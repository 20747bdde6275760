// Package reward содержит каталог наград (boons) и запросы на их выкуп.
package reward

import (
	"time"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/hero"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// Boon - покупаемая награда из каталога учителя. Каталог для движка
// только для чтения; правки - забота административного контура.
type Boon struct {
	ID               string
	Name             string
	Cost             hero.Gold
	RequiresApproval bool
}

// Request - эфемерный запрос ученика на выкуп награды, требующей
// одобрения. Потребляется ровно один раз операцией approve или deny.
type Request struct {
	ID         string
	TeacherUID string
	HeroUID    string
	HeroName   string
	BoonID     string
	BoonName   string
	Cost       hero.Gold
	CreatedAt  time.Time
}

// Validate проверяет обязательные поля запроса.
func (r *Request) Validate() error {
	if r.ID == "" || r.TeacherUID == "" || r.HeroUID == "" || r.BoonID == "" {
		return shared.NewDomainError("reward", "Validate", shared.ErrInvalidInput,
			"request id, teacher uid, hero uid and boon id are required")
	}
	if r.Cost < 0 {
		return shared.NewDomainError("reward", "Validate", shared.ErrValueOutOfRange,
			"cost cannot be negative")
	}
	return nil
}

// DefaultCatalog - стартовый каталог наград. Это сидовые данные,
// подставляемые при инициализации, а не поведение движка.
func DefaultCatalog() []Boon {
	return []Boon{
		{ID: "homework-pass", Name: "Homework Pass", Cost: 120, RequiresApproval: true},
		{ID: "seat-swap", Name: "Seat Swap", Cost: 60, RequiresApproval: true},
		{ID: "music-break", Name: "Music Break", Cost: 40, RequiresApproval: false},
		{ID: "extra-hint", Name: "Extra Hint", Cost: 25, RequiresApproval: false},
		{ID: "lunch-first", Name: "First in Lunch Line", Cost: 80, RequiresApproval: true},
	}
}
