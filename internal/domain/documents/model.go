// Package documents provides the confirmed expense invoices and receipts of a
// tour group, as read from storage.
package documents

import (
	"time"

	"tourledger/internal/core/types"
)

// LineType classifies an expense line item.
type LineType string

const (
	LineTypeTicket    LineType = "TICKET"
	LineTypeHotel     LineType = "HOTEL"
	LineTypeMeal      LineType = "MEAL"
	LineTypeTransport LineType = "TRANSPORT"
	LineTypeInsurance LineType = "INSURANCE"
	LineTypeGuide     LineType = "GUIDE"
	LineTypeBonus     LineType = "BONUS"
	LineTypeRefund    LineType = "REFUND"
	LineTypeOther     LineType = "OTHER"
)

// ExpenseInvoice is a confirmed expense document for a group.
type ExpenseInvoice struct {
	InvoiceID   string    `db:"invoice_id" json:"invoiceId"`
	OrderID     string    `db:"order_id" json:"orderId"`
	GroupName   string    `db:"group_name" json:"groupName"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	InvoiceDate time.Time `db:"invoice_date" json:"invoiceDate"`

	LineItems []LineItem `db:"-" json:"lineItems"`
}

// LineItem is one payable position on an expense invoice.
type LineItem struct {
	LineType  LineType    `db:"line_type" json:"lineType"`
	PayeeRef  string      `db:"payee_ref" json:"payeeRef"`
	PayeeName string      `db:"payee_name" json:"payeeName,omitempty"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	Note      string      `db:"note" json:"note,omitempty"`
}

// Subtotal is UnitPrice × Quantity.
func (l LineItem) Subtotal() types.Money {
	return l.UnitPrice.Mul(types.NewMoneyFromInt(l.Quantity))
}

// Receipt is money received for a group or order.
type Receipt struct {
	ReceiptID    string      `db:"receipt_id" json:"receiptId"`
	OrderID      string      `db:"order_id" json:"orderId"`
	ActualAmount types.Money `db:"actual_amount" json:"actualAmount"`
	ReceivedAt   time.Time   `db:"received_at" json:"receivedAt"`
	Note         string      `db:"note" json:"note,omitempty"`
}
