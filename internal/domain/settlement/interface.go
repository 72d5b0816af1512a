package settlement

import (
	"context"

	"tourledger/internal/core/id"
	"tourledger/internal/domain/bonus"
	"tourledger/internal/domain/documents"
)

//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go

// Repository reads the records a group settlement is computed from.
// Only confirmed invoices are returned.
type Repository interface {
	GetGroup(ctx context.Context, groupID id.ID) (*documents.TourGroup, error)
	ListInvoices(ctx context.Context, groupID id.ID) ([]documents.ExpenseInvoice, error)
	ListReceipts(ctx context.Context, groupID id.ID) ([]documents.Receipt, error)
	ListBonusSettings(ctx context.Context, groupID id.ID) ([]bonus.Setting, error)
}

// EmployeeDirectory maps employee references to display names.
// Refs it does not know are absent from the returned map.
type EmployeeDirectory interface {
	EmployeeNames(ctx context.Context, refs []string) (map[string]string, error)
}
