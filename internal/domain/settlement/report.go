package settlement

import (
	"tourledger/internal/core/types"
	"tourledger/internal/domain/bonus"
)

// Row labels of the settlement report.
const (
	LabelReceipts           = "Receipts"
	LabelExpenses           = "Expenses"
	LabelAdministrativeCost = "Administrative cost"
	LabelPerTraveller       = "Per traveller"
	LabelProfitBeforeTax    = "Profit before tax"
	LabelTax                = "Profit tax"
	LabelTaxRate            = "Tax rate"
	LabelNetProfit          = "Net profit"
	LabelTeamBonus          = "Team bonus"
	LabelRule               = "Rule"
	LabelCompanyProfit      = "Company profit"
)

// Row is one line of the two-column settlement table.
type Row struct {
	Label  string      `json:"label"`
	Value  types.Money `json:"value"`
	Label2 string      `json:"label2,omitempty"`
	Value2 string      `json:"value2,omitempty"`
}

// FormatValue renders Value rounded half away from zero to places decimals.
// This is the only place report amounts are rounded.
func (r Row) FormatValue(places int32) string {
	return types.Round(r.Value, places).StringFixed(places)
}

// Project lays a Result out as report rows. It only reshapes: every Value is
// copied from the result untouched.
func Project(result *Result, descriptions bonus.Descriptions) []Row {
	rows := make([]Row, 0, 7+len(result.EmployeeBonuses))

	rows = append(rows,
		Row{Label: LabelReceipts, Value: result.ReceiptTotal, Label2: LabelExpenses, Value2: result.ExpenseTotal.String()},
		Row{Label: LabelAdministrativeCost, Value: result.AdministrativeCost, Label2: LabelPerTraveller, Value2: result.AdministrativeCostPerTraveller.String()},
		Row{Label: LabelProfitBeforeTax, Value: result.ProfitBeforeTax},
		Row{Label: LabelTax, Value: result.TaxAmount, Label2: LabelTaxRate, Value2: result.TaxRate.String() + "%"},
		Row{Label: LabelNetProfit, Value: result.NetProfit},
		Row{Label: LabelTeamBonus, Value: result.TeamBonus, Label2: LabelRule, Value2: descriptions.General[bonus.CategoryTeamBonus]},
	)

	for _, b := range result.EmployeeBonuses {
		rows = append(rows, Row{
			Label:  b.Category.Label() + ": " + b.Name,
			Value:  b.Amount,
			Label2: LabelRule,
			Value2: descriptions.Personal[b.Category][b.EmployeeRef],
		})
	}

	rows = append(rows, Row{Label: LabelCompanyProfit, Value: result.CompanyProfit})
	return rows
}
