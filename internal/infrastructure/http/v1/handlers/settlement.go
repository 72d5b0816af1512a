package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"tourledger/internal/core/id"
	"tourledger/internal/domain/settlement"
	"tourledger/internal/infrastructure/http/v1/dto"
	"tourledger/internal/infrastructure/metrics"
)

// Settlement run kinds reported to the observer.
const (
	RunReport  = "report"
	RunPreview = "preview"
)

// SettlementService is the part of settlement.Service the handler uses.
type SettlementService interface {
	Report(ctx context.Context, groupID id.ID) (*settlement.Report, error)
	Preview(ctx context.Context, in settlement.PreviewInput) (*settlement.Report, error)
}

// SettlementObserver records settlement runs.
type SettlementObserver interface {
	ObserveSettlement(kind, outcome string)
}

// SettlementHandler handles HTTP requests for group settlements.
type SettlementHandler struct {
	*BaseHandler
	service  SettlementService
	observer SettlementObserver
	now      func() time.Time
}

// NewSettlementHandler creates a new settlement handler. observer may be nil.
func NewSettlementHandler(base *BaseHandler, service SettlementService, observer SettlementObserver) *SettlementHandler {
	return &SettlementHandler{
		BaseHandler: base,
		service:     service,
		observer:    observer,
		now:         time.Now,
	}
}

// Get handles GET /groups/:id/settlement
func (h *SettlementHandler) Get(c *gin.Context) {
	groupID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	report, err := h.service.Report(c.Request.Context(), groupID)
	h.observe(RunReport, report, err)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReport(report))
}

// Preview handles POST /settlements/preview
func (h *SettlementHandler) Preview(c *gin.Context) {
	var req dto.PreviewSettlementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(h.GetUserID(c), h.now())
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.Preview(c.Request.Context(), in)
	h.observe(RunPreview, report, err)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReport(report))
}

func (h *SettlementHandler) observe(kind string, report *settlement.Report, err error) {
	if h.observer == nil {
		return
	}
	switch {
	case err != nil:
		h.observer.ObserveSettlement(kind, metrics.OutcomeRejected)
	case report.Result.IsLoss():
		h.observer.ObserveSettlement(kind, metrics.OutcomeLoss)
	default:
		h.observer.ObserveSettlement(kind, metrics.OutcomeProfit)
	}
}
