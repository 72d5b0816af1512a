package bonus

import (
	"time"

	"tourledger/internal/core/apperror"
	"tourledger/internal/core/id"
	"tourledger/internal/core/types"
)

// Partial is an incoming rule with optional fields left nil.
type Partial struct {
	ID              *id.ID
	GroupID         id.ID
	Category        Category
	Amount          *types.Money
	CalculationType *CalculationType
	EmployeeRef     string
	CreatedBy       string
}

// Default is the value used for fields a Partial leaves unset.
type Default struct {
	Amount          types.Money
	CalculationType CalculationType
}

// Defaults maps each category to its default amount and calculation type.
type Defaults map[Category]Default

// DefaultTable returns the defaults new groups start with.
func DefaultTable() Defaults {
	return Defaults{
		CategoryAdministrativeExpenses: {Amount: types.NewMoneyFromInt(10), CalculationType: CalculationFixedAmount},
		CategoryProfitTax:              {Amount: types.Zero(), CalculationType: CalculationPercent},
		CategoryTeamBonus:              {Amount: types.Zero(), CalculationType: CalculationPercent},
		CategorySaleBonus:              {Amount: types.Zero(), CalculationType: CalculationPercent},
		CategoryOpBonus:                {Amount: types.Zero(), CalculationType: CalculationPercent},
	}
}

// NewSetting builds a fully populated, validated Setting from p, filling unset
// fields from defaults.
func NewSetting(p Partial, defaults Defaults, now time.Time) (Setting, error) {
	if !p.Category.Valid() {
		return Setting{}, apperror.NewValidation("unknown bonus category").
			WithDetail("category", string(p.Category))
	}
	def, ok := defaults[p.Category]
	if !ok {
		return Setting{}, apperror.NewValidation("no defaults for bonus category").
			WithDetail("category", string(p.Category))
	}

	s := Setting{
		ID:              id.New(),
		GroupID:         p.GroupID,
		Category:        p.Category,
		Amount:          def.Amount,
		CalculationType: def.CalculationType,
		EmployeeRef:     p.EmployeeRef,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if p.ID != nil {
		s.ID = *p.ID
	}
	if p.Amount != nil {
		s.Amount = *p.Amount
	}
	if p.CalculationType != nil {
		s.CalculationType = *p.CalculationType
	}

	if err := s.Validate(); err != nil {
		return Setting{}, err
	}
	return s, nil
}
