package dto

import (
	"tourledger/internal/core/types"
	"tourledger/internal/domain/billing"
)

// BillRequest holds the optional query parameters of the bill endpoint.
type BillRequest struct {
	MaxGroupSize *int `form:"maxGroupSize"`
}

// BillResponse is a payee-grouped bill.
type BillResponse struct {
	Group      GroupResponse          `json:"group"`
	Groups     []billing.InvoiceGroup `json:"groups"`
	GrandTotal types.Money            `json:"grandTotal"`
}

// FromBill maps a bill.
func FromBill(b *billing.Bill) BillResponse {
	return BillResponse{
		Group:      FromGroup(b.Group),
		Groups:     b.Groups,
		GrandTotal: b.GrandTotal,
	}
}
