package bonus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourledger/internal/core/apperror"
	"tourledger/internal/core/types"
)

func rule(c Category, amount string, t CalculationType, employee string) Setting {
	return Setting{Category: c, Amount: types.MustMoney(amount), CalculationType: t, EmployeeRef: employee}
}

func TestClassify(t *testing.T) {
	settings := []Setting{
		rule(CategoryProfitTax, "12", CalculationPercent, ""),
		rule(CategoryTeamBonus, "45", CalculationPercent, ""),
		rule(CategoryTeamBonus, "1000", CalculationFixedAmount, ""),
		rule(CategorySaleBonus, "5", CalculationPercent, "EMP-1"),
		rule(CategorySaleBonus, "200", CalculationFixedAmount, "EMP-1"),
		rule(CategoryOpBonus, "3", CalculationPercent, "EMP-2"),
	}

	c := Classify(settings)

	assert.Len(t, c.General[CategoryProfitTax], 1)
	assert.Len(t, c.General[CategoryTeamBonus], 2)
	assert.Empty(t, c.General[CategorySaleBonus])
	assert.Len(t, c.Personal[CategorySaleBonus]["EMP-1"], 2)
	assert.Len(t, c.Personal[CategoryOpBonus]["EMP-2"], 1)
	assert.NotContains(t, c.Personal, CategoryTeamBonus)
}

func TestClassify_Empty(t *testing.T) {
	c := Classify(nil)
	assert.NotNil(t, c.General)
	assert.NotNil(t, c.Personal)
	assert.Empty(t, c.General)
	assert.Empty(t, c.Personal)
}

func TestSum_KeepsCalculationTypesApart(t *testing.T) {
	totals := Sum([]Setting{
		rule(CategoryTeamBonus, "40", CalculationPercent, ""),
		rule(CategoryTeamBonus, "5", CalculationPercent, ""),
		rule(CategoryTeamBonus, "1000", CalculationFixedAmount, ""),
	})

	assert.True(t, totals.Percent.Equal(types.MustMoney("45")))
	assert.True(t, totals.FixedAmount.Equal(types.MustMoney("1000")))
	assert.Equal(t, "45% + 1000", totals.String())

	got := totals.Apply(types.MustMoney("10000"))
	assert.True(t, got.Equal(types.MustMoney("5500")), "got %s", got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		setting  Setting
		wantCode string
	}{
		{"percent tax", rule(CategoryProfitTax, "12", CalculationPercent, ""), ""},
		{"fixed tax", rule(CategoryProfitTax, "500", CalculationFixedAmount, ""), apperror.CodeUnsupportedRule},
		{"fixed admin", rule(CategoryAdministrativeExpenses, "10", CalculationFixedAmount, ""), ""},
		{"percent admin", rule(CategoryAdministrativeExpenses, "3", CalculationPercent, ""), apperror.CodeUnsupportedRule},
		{"fixed team", rule(CategoryTeamBonus, "100", CalculationFixedAmount, ""), ""},
		{"unknown category", rule(Category("TIP"), "1", CalculationPercent, ""), apperror.CodeValidation},
		{"negative amount", rule(CategoryTeamBonus, "-1", CalculationPercent, ""), apperror.CodeValidation},
		{"unknown type", rule(CategorySaleBonus, "1", CalculationType("RATIO"), "E"), apperror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setting.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestNewSetting_FillsFromDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s, err := NewSetting(Partial{Category: CategoryAdministrativeExpenses}, DefaultTable(), now)
	require.NoError(t, err)
	assert.True(t, s.Amount.Equal(types.MustMoney("10")))
	assert.Equal(t, CalculationFixedAmount, s.CalculationType)
	assert.Equal(t, now, s.CreatedAt)
	assert.False(t, s.ID.String() == "00000000-0000-0000-0000-000000000000")

	amount := types.MustMoney("45")
	s, err = NewSetting(Partial{Category: CategoryTeamBonus, Amount: &amount}, DefaultTable(), now)
	require.NoError(t, err)
	assert.True(t, s.Amount.Equal(amount))
	assert.Equal(t, CalculationPercent, s.CalculationType)
}

func TestNewSetting_RejectsUnsupportedShape(t *testing.T) {
	fixed := CalculationFixedAmount
	_, err := NewSetting(Partial{Category: CategoryProfitTax, CalculationType: &fixed}, DefaultTable(), time.Now())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnsupportedRule))

	_, err = NewSetting(Partial{Category: CategoryTeamBonus}, Defaults{}, time.Now())
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestDescribe(t *testing.T) {
	d := Describe(Classify([]Setting{
		rule(CategoryTeamBonus, "45", CalculationPercent, ""),
		rule(CategorySaleBonus, "300", CalculationFixedAmount, "EMP-1"),
	}))

	assert.Equal(t, "45%", d.General[CategoryTeamBonus])
	assert.Equal(t, "300", d.Personal[CategorySaleBonus]["EMP-1"])
}

func TestTaxonomy_CoversEveryCategory(t *testing.T) {
	for _, c := range Categories {
		r, ok := Lookup(c)
		require.True(t, ok, c)
		assert.NotEmpty(t, r.Accepts, c)
		assert.NotEqual(t, string(c), c.Label())
	}
}
