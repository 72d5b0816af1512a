package billing

import (
	"tourledger/internal/core/types"
	"tourledger/internal/domain/documents"
)

// Bill is the printable payee breakdown of a tour group.
type Bill struct {
	Group      documents.TourGroup `json:"group"`
	Groups     []InvoiceGroup      `json:"groups"`
	GrandTotal types.Money         `json:"grandTotal"`
}

// NewBill wraps payee groups with the grand total of their visible totals.
func NewBill(group documents.TourGroup, groups []InvoiceGroup) *Bill {
	total := types.Zero()
	for _, g := range groups {
		if !g.TotalSuppressed {
			total = total.Add(g.Total)
		}
	}
	if groups == nil {
		groups = []InvoiceGroup{}
	}
	return &Bill{Group: group, Groups: groups, GrandTotal: total}
}
