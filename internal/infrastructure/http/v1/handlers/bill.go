package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tourledger/internal/core/id"
	"tourledger/internal/domain/billing"
	"tourledger/internal/infrastructure/http/v1/dto"
)

// BillService is the part of billing.Service the handler uses.
type BillService interface {
	Bill(ctx context.Context, groupID id.ID) (*billing.Bill, error)
	BillWithGroupSize(ctx context.Context, groupID id.ID, maxGroupSize int) (*billing.Bill, error)
}

// BillObserver records printed bills.
type BillObserver interface {
	ObserveBill(groups int)
}

// BillHandler handles HTTP requests for payee-grouped bills.
type BillHandler struct {
	*BaseHandler
	service  BillService
	observer BillObserver
}

// NewBillHandler creates a new bill handler. observer may be nil.
func NewBillHandler(base *BaseHandler, service BillService, observer BillObserver) *BillHandler {
	return &BillHandler{BaseHandler: base, service: service, observer: observer}
}

// Get handles GET /groups/:id/bill
func (h *BillHandler) Get(c *gin.Context) {
	groupID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.BillRequest
	if !h.BindQuery(c, &req) {
		return
	}

	var (
		bill *billing.Bill
		err  error
	)
	if req.MaxGroupSize != nil {
		bill, err = h.service.BillWithGroupSize(c.Request.Context(), groupID, *req.MaxGroupSize)
	} else {
		bill, err = h.service.Bill(c.Request.Context(), groupID)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	if h.observer != nil {
		h.observer.ObserveBill(len(bill.Groups))
	}
	h.OK(c, dto.FromBill(bill))
}
