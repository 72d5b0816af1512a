package dto

import (
	"time"

	"tourledger/internal/core/id"
	"tourledger/internal/core/types"
	"tourledger/internal/domain/billing"
	"tourledger/internal/domain/bonus"
	"tourledger/internal/domain/documents"
	"tourledger/internal/domain/settlement"
)

// --- Request DTOs ---

// PreviewSettlementRequest carries the records of a settlement that is not
// stored yet.
type PreviewSettlementRequest struct {
	GroupCode      string                `json:"groupCode,omitempty"`
	GroupName      string                `json:"groupName,omitempty"`
	TravellerCount int                   `json:"travellerCount" binding:"gte=0"`
	Invoices       []InvoiceRequest      `json:"invoices" binding:"dive"`
	Receipts       []ReceiptRequest      `json:"receipts" binding:"dive"`
	Settings       []BonusSettingRequest `json:"settings" binding:"dive"`
	Names          map[string]string     `json:"names,omitempty"`
}

// InvoiceRequest is one expense invoice of a preview.
type InvoiceRequest struct {
	InvoiceID   string            `json:"invoiceId" binding:"required"`
	OrderID     string            `json:"orderId"`
	CreatedBy   string            `json:"createdBy"`
	InvoiceDate time.Time         `json:"invoiceDate"`
	LineItems   []LineItemRequest `json:"lineItems" binding:"dive"`
}

// LineItemRequest is one line of an invoice.
type LineItemRequest struct {
	LineType  string      `json:"lineType" binding:"required"`
	PayeeRef  string      `json:"payeeRef" binding:"required"`
	PayeeName string      `json:"payeeName,omitempty"`
	UnitPrice types.Money `json:"unitPrice"`
	Quantity  int64       `json:"quantity" binding:"gte=0"`
	Note      string      `json:"note,omitempty"`
}

// ReceiptRequest is one receipt of a preview.
type ReceiptRequest struct {
	ReceiptID    string      `json:"receiptId"`
	OrderID      string      `json:"orderId"`
	ActualAmount types.Money `json:"actualAmount"`
	ReceivedAt   time.Time   `json:"receivedAt"`
	Note         string      `json:"note,omitempty"`
}

// BonusSettingRequest is a rule of a preview. Amount and calculation type
// fall back to the category defaults when omitted.
type BonusSettingRequest struct {
	Category        string       `json:"category" binding:"required"`
	Amount          *types.Money `json:"amount,omitempty"`
	CalculationType *string      `json:"calculationType,omitempty"`
	EmployeeRef     string       `json:"employeeRef,omitempty"`
}

// ToInput converts the request into engine input. Rules go through the
// bonus factory so defaults and validation match stored rules.
func (r *PreviewSettlementRequest) ToInput(createdBy string, now time.Time) (settlement.PreviewInput, error) {
	in := settlement.PreviewInput{
		Group: documents.TourGroup{
			Code:           r.GroupCode,
			Name:           r.GroupName,
			TravellerCount: r.TravellerCount,
		},
		Invoices: make([]documents.ExpenseInvoice, 0, len(r.Invoices)),
		Receipts: make([]documents.Receipt, 0, len(r.Receipts)),
		Settings: make([]bonus.Setting, 0, len(r.Settings)),
		Names:    r.Names,
	}

	for _, inv := range r.Invoices {
		doc := documents.ExpenseInvoice{
			InvoiceID:   inv.InvoiceID,
			OrderID:     inv.OrderID,
			GroupName:   r.GroupName,
			CreatedBy:   inv.CreatedBy,
			InvoiceDate: inv.InvoiceDate,
			LineItems:   make([]documents.LineItem, 0, len(inv.LineItems)),
		}
		for _, li := range inv.LineItems {
			doc.LineItems = append(doc.LineItems, documents.LineItem{
				LineType:  documents.LineType(li.LineType),
				PayeeRef:  li.PayeeRef,
				PayeeName: li.PayeeName,
				UnitPrice: li.UnitPrice,
				Quantity:  li.Quantity,
				Note:      li.Note,
			})
		}
		in.Invoices = append(in.Invoices, doc)
	}

	for _, rc := range r.Receipts {
		in.Receipts = append(in.Receipts, documents.Receipt{
			ReceiptID:    rc.ReceiptID,
			OrderID:      rc.OrderID,
			ActualAmount: rc.ActualAmount,
			ReceivedAt:   rc.ReceivedAt,
			Note:         rc.Note,
		})
	}

	defaults := bonus.DefaultTable()
	for _, s := range r.Settings {
		p := bonus.Partial{
			Category:    bonus.Category(s.Category),
			Amount:      s.Amount,
			EmployeeRef: s.EmployeeRef,
			CreatedBy:   createdBy,
		}
		if s.CalculationType != nil {
			ct := bonus.CalculationType(*s.CalculationType)
			p.CalculationType = &ct
		}
		setting, err := bonus.NewSetting(p, defaults, now)
		if err != nil {
			return settlement.PreviewInput{}, err
		}
		in.Settings = append(in.Settings, setting)
	}

	return in, nil
}

// --- Response DTOs ---

// SettlementResponse is a computed settlement.
type SettlementResponse struct {
	Group       GroupResponse          `json:"group"`
	Result      *settlement.Result     `json:"result"`
	Rows        []RowResponse          `json:"rows"`
	PayeeGroups []billing.InvoiceGroup `json:"payeeGroups"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// GroupResponse identifies the settled group.
type GroupResponse struct {
	ID             string    `json:"id,omitempty"`
	Code           string    `json:"code,omitempty"`
	Name           string    `json:"name,omitempty"`
	TravellerCount int       `json:"travellerCount"`
	DepartureDate  time.Time `json:"departureDate,omitzero"`
}

// RowResponse is one report row with its value rounded for display.
type RowResponse struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Label2 string `json:"label2,omitempty"`
	Value2 string `json:"value2,omitempty"`
}

// FromGroup maps a tour group.
func FromGroup(g documents.TourGroup) GroupResponse {
	resp := GroupResponse{
		Code:           g.Code,
		Name:           g.Name,
		TravellerCount: g.TravellerCount,
		DepartureDate:  g.DepartureDate,
	}
	if !id.IsNil(g.ID) {
		resp.ID = g.ID.String()
	}
	return resp
}

// FromReport maps a settlement report. Row values are rounded here, once.
func FromReport(r *settlement.Report) SettlementResponse {
	rows := make([]RowResponse, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, RowResponse{
			Label:  row.Label,
			Value:  row.FormatValue(r.Places),
			Label2: row.Label2,
			Value2: row.Value2,
		})
	}
	return SettlementResponse{
		Group:       FromGroup(r.Group),
		Result:      r.Result,
		Rows:        rows,
		PayeeGroups: r.PayeeGroups,
		GeneratedAt: r.GeneratedAt,
	}
}
