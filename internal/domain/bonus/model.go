// Package bonus provides the bonus-rule taxonomy attached to a tour group:
// which categories exist, which calculation types each accepts and how rules
// are split between the whole group and individual employees.
package bonus

import (
	"time"

	"tourledger/internal/core/apperror"
	"tourledger/internal/core/id"
	"tourledger/internal/core/types"
)

// Category is the closed set of rule categories.
type Category string

const (
	CategoryProfitTax              Category = "PROFIT_TAX"
	CategorySaleBonus              Category = "SALE_BONUS"
	CategoryOpBonus                Category = "OP_BONUS"
	CategoryTeamBonus              Category = "TEAM_BONUS"
	CategoryAdministrativeExpenses Category = "ADMINISTRATIVE_EXPENSES"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryAdministrativeExpenses,
	CategoryProfitTax,
	CategoryTeamBonus,
	CategorySaleBonus,
	CategoryOpBonus,
}

// CalculationType tells how Amount is applied.
type CalculationType string

const (
	CalculationPercent     CalculationType = "PERCENT"
	CalculationFixedAmount CalculationType = "FIXED_AMOUNT"
)

// Rule describes what one category means.
//
// FixedAmount meaning differs per category: a per-traveller rate for
// ADMINISTRATIVE_EXPENSES, a lump sum for the bonus categories.
type Rule struct {
	Category Category
	Label    string

	// Accepts lists the calculation types a rule of this category may carry.
	Accepts []CalculationType

	// Personal is true when rules bound to an employee take part in the
	// profit distribution. General-only categories ignore personal rules.
	Personal bool

	// PerTraveller marks FIXED_AMOUNT as a rate multiplied by traveller count.
	PerTraveller bool
}

var taxonomy = map[Category]Rule{
	CategoryAdministrativeExpenses: {
		Category:     CategoryAdministrativeExpenses,
		Label:        "Administrative expenses",
		Accepts:      []CalculationType{CalculationFixedAmount},
		PerTraveller: true,
	},
	CategoryProfitTax: {
		Category: CategoryProfitTax,
		Label:    "Profit tax",
		Accepts:  []CalculationType{CalculationPercent},
	},
	CategoryTeamBonus: {
		Category: CategoryTeamBonus,
		Label:    "Team bonus",
		Accepts:  []CalculationType{CalculationPercent, CalculationFixedAmount},
	},
	CategorySaleBonus: {
		Category: CategorySaleBonus,
		Label:    "Sales bonus",
		Accepts:  []CalculationType{CalculationPercent, CalculationFixedAmount},
		Personal: true,
	},
	CategoryOpBonus: {
		Category: CategoryOpBonus,
		Label:    "Operator bonus",
		Accepts:  []CalculationType{CalculationPercent, CalculationFixedAmount},
		Personal: true,
	},
}

// Lookup returns the taxonomy entry for c.
func Lookup(c Category) (Rule, bool) {
	r, ok := taxonomy[c]
	return r, ok
}

// Label returns a display label for the category, or the raw value if unknown.
func (c Category) Label() string {
	if r, ok := taxonomy[c]; ok {
		return r.Label
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := taxonomy[c]
	return ok
}

// Valid reports whether t is one of the known calculation types.
func (t CalculationType) Valid() bool {
	return t == CalculationPercent || t == CalculationFixedAmount
}

// Setting is a configurable rule attached to a group.
type Setting struct {
	ID              id.ID           `db:"id" json:"id"`
	GroupID         id.ID           `db:"group_id" json:"groupId"`
	Category        Category        `db:"category" json:"category"`
	Amount          types.Money     `db:"amount" json:"amount"`
	CalculationType CalculationType `db:"calculation_type" json:"calculationType"`

	// EmployeeRef is empty for general (group-wide) rules.
	EmployeeRef string `db:"employee_ref" json:"employeeRef,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsPersonal reports whether the rule is bound to an employee.
func (s Setting) IsPersonal() bool {
	return s.EmployeeRef != ""
}

// Validate checks the category accepts the rule's calculation type.
func (s Setting) Validate() error {
	rule, ok := taxonomy[s.Category]
	if !ok {
		return apperror.NewValidation("unknown bonus category").
			WithDetail("category", string(s.Category)).
			WithDetail("settingId", s.ID.String())
	}
	if !s.CalculationType.Valid() {
		return apperror.NewValidation("unknown calculation type").
			WithDetail("calculationType", string(s.CalculationType)).
			WithDetail("settingId", s.ID.String())
	}
	if s.Amount.IsNegative() {
		return apperror.NewValidation("bonus amount must not be negative").
			WithDetail("category", string(s.Category)).
			WithDetail("settingId", s.ID.String())
	}
	for _, accepted := range rule.Accepts {
		if accepted == s.CalculationType {
			return nil
		}
	}
	return apperror.NewUnsupportedRule(string(s.Category), string(s.CalculationType)).
		WithDetail("settingId", s.ID.String())
}

// ValidateAll validates every setting and returns the first failure.
func ValidateAll(settings []Setting) error {
	for _, s := range settings {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
