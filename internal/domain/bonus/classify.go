package bonus

import (
	"strings"

	"tourledger/internal/core/types"
)

// Classification splits settings into general and personal pools.
type Classification struct {
	General  map[Category][]Setting
	Personal map[Category]map[string][]Setting
}

// Classify partitions settings on the presence of EmployeeRef.
// It does not aggregate: PERCENT and FIXED_AMOUNT rules stay distinguishable.
func Classify(settings []Setting) Classification {
	c := Classification{
		General:  make(map[Category][]Setting),
		Personal: make(map[Category]map[string][]Setting),
	}
	for _, s := range settings {
		if !s.IsPersonal() {
			c.General[s.Category] = append(c.General[s.Category], s)
			continue
		}
		byEmployee, ok := c.Personal[s.Category]
		if !ok {
			byEmployee = make(map[string][]Setting)
			c.Personal[s.Category] = byEmployee
		}
		byEmployee[s.EmployeeRef] = append(byEmployee[s.EmployeeRef], s)
	}
	return c
}

// Totals is the per-calculation-type sum of a set of rules.
type Totals struct {
	Percent     types.Money
	FixedAmount types.Money
	HasPercent  bool
	HasFixed    bool
}

// Sum adds rule amounts per calculation type.
func Sum(settings []Setting) Totals {
	t := Totals{Percent: types.Zero(), FixedAmount: types.Zero()}
	for _, s := range settings {
		switch s.CalculationType {
		case CalculationPercent:
			t.Percent = t.Percent.Add(s.Amount)
			t.HasPercent = true
		case CalculationFixedAmount:
			t.FixedAmount = t.FixedAmount.Add(s.Amount)
			t.HasFixed = true
		}
	}
	return t
}

// Apply returns the contribution of the rules against base:
// base × percent / 100 plus the fixed amounts.
func (t Totals) Apply(base types.Money) types.Money {
	return types.Percent(base, t.Percent).Add(t.FixedAmount)
}

// String renders the totals as "45%", "1000" or "45% + 1000".
func (t Totals) String() string {
	var parts []string
	if t.HasPercent {
		parts = append(parts, t.Percent.String()+"%")
	}
	if t.HasFixed {
		parts = append(parts, t.FixedAmount.String())
	}
	return strings.Join(parts, " + ")
}

// Descriptions holds a human-readable rule summary per category and employee.
type Descriptions struct {
	General  map[Category]string
	Personal map[Category]map[string]string
}

// Describe summarises each category's rules for display next to report rows.
func Describe(c Classification) Descriptions {
	d := Descriptions{
		General:  make(map[Category]string, len(c.General)),
		Personal: make(map[Category]map[string]string, len(c.Personal)),
	}
	for category, settings := range c.General {
		d.General[category] = Sum(settings).String()
	}
	for category, byEmployee := range c.Personal {
		m := make(map[string]string, len(byEmployee))
		for ref, settings := range byEmployee {
			m[ref] = Sum(settings).String()
		}
		d.Personal[category] = m
	}
	return d
}
