package settlement

import (
	"tourledger/internal/core/apperror"
	"tourledger/internal/core/types"
	"tourledger/internal/domain/bonus"
	"tourledger/internal/domain/documents"
)

// SumExpenses adds UnitPrice × Quantity over every line item it is given.
// Callers filter out line types that must not count (BONUS, REFUND).
func SumExpenses(invoices []documents.ExpenseInvoice) types.Money {
	total := types.Zero()
	for _, inv := range invoices {
		for _, item := range inv.LineItems {
			total = total.Add(item.Subtotal())
		}
	}
	return total
}

// SumReceipts adds ActualAmount of every receipt, refunds included.
func SumReceipts(receipts []documents.Receipt) types.Money {
	total := types.Zero()
	for _, r := range receipts {
		total = total.Add(r.ActualAmount)
	}
	return total
}

// AdministrativeCostPerTraveller sums the general ADMINISTRATIVE_EXPENSES
// rates, or returns fallback when the group has none.
// A PERCENT administrative rule has no defined meaning and is rejected.
func AdministrativeCostPerTraveller(settings []bonus.Setting, fallback types.Money) (types.Money, error) {
	var rules []bonus.Setting
	for _, s := range settings {
		if s.Category == bonus.CategoryAdministrativeExpenses && !s.IsPersonal() {
			rules = append(rules, s)
		}
	}
	if len(rules) == 0 {
		return fallback, nil
	}

	total := types.Zero()
	for _, s := range rules {
		if s.CalculationType != bonus.CalculationFixedAmount {
			return types.Zero(), apperror.NewUnsupportedRule(string(s.Category), string(s.CalculationType)).
				WithDetail("settingId", s.ID.String())
		}
		total = total.Add(s.Amount)
	}
	return total, nil
}

// AdministrativeCost is travellerCount × perTraveller.
func AdministrativeCost(travellerCount int, perTraveller types.Money) types.Money {
	if travellerCount == 0 {
		return types.Zero()
	}
	return perTraveller.Mul(types.NewMoneyFromInt(int64(travellerCount)))
}
