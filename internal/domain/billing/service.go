package billing

import (
	"context"
	"fmt"

	"tourledger/internal/core/id"
	"tourledger/internal/core/tx"
	"tourledger/internal/domain/documents"
	"tourledger/pkg/logger"
)

// InvoiceSource loads the records a bill is printed from.
type InvoiceSource interface {
	GetGroup(ctx context.Context, groupID id.ID) (*documents.TourGroup, error)
	ListInvoices(ctx context.Context, groupID id.ID) ([]documents.ExpenseInvoice, error)
}

// Service builds bills for tour groups.
type Service struct {
	source       InvoiceSource
	txManager    tx.ReadOnlyManager
	maxGroupSize int
}

// NewService creates a billing service printing at most maxGroupSize rows
// per payee group.
func NewService(source InvoiceSource, txManager tx.ReadOnlyManager, maxGroupSize int) *Service {
	return &Service{source: source, txManager: txManager, maxGroupSize: maxGroupSize}
}

// Bill builds the bill of a group with the configured group size.
func (s *Service) Bill(ctx context.Context, groupID id.ID) (*Bill, error) {
	return s.BillWithGroupSize(ctx, groupID, s.maxGroupSize)
}

// BillWithGroupSize builds the bill of a group. Refund lines are not payable
// and are left out.
func (s *Service) BillWithGroupSize(ctx context.Context, groupID id.ID, maxGroupSize int) (*Bill, error) {
	var (
		group    *documents.TourGroup
		invoices []documents.ExpenseInvoice
	)
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if group, err = s.source.GetGroup(ctx, groupID); err != nil {
			return err
		}
		invoices, err = s.source.ListInvoices(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load bill data: %w", err)
	}

	groups, err := Group(documents.ExcludeLineTypes(invoices, documents.LineTypeRefund), maxGroupSize)
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "bill built",
		"group_id", groupID,
		"invoices", len(invoices),
		"payee_groups", len(groups),
	)
	return NewBill(*group, groups), nil
}
