package documents

import (
	"slices"
	"strconv"
)

// ExcludeLineTypes returns copies of invoices without line items of the given
// types. Invoices left with no items are kept so their metadata survives.
func ExcludeLineTypes(invoices []ExpenseInvoice, excluded ...LineType) []ExpenseInvoice {
	out := make([]ExpenseInvoice, 0, len(invoices))
	for _, inv := range invoices {
		kept := make([]LineItem, 0, len(inv.LineItems))
		for _, item := range inv.LineItems {
			if !slices.Contains(excluded, item.LineType) {
				kept = append(kept, item)
			}
		}
		inv.LineItems = kept
		out = append(out, inv)
	}
	return out
}

// RefundReceipts converts REFUND line items into negative receipts: money the
// supplier returned to the group reduces what the group received rather than
// what it spent.
func RefundReceipts(invoices []ExpenseInvoice) []Receipt {
	var receipts []Receipt
	for _, inv := range invoices {
		for i, item := range inv.LineItems {
			if item.LineType != LineTypeRefund {
				continue
			}
			receipts = append(receipts, Receipt{
				ReceiptID:    refundReceiptID(inv.InvoiceID, i),
				OrderID:      inv.OrderID,
				ActualAmount: item.Subtotal().Abs().Neg(),
				ReceivedAt:   inv.InvoiceDate,
				Note:         item.Note,
			})
		}
	}
	return receipts
}

func refundReceiptID(invoiceID string, line int) string {
	return invoiceID + "/refund/" + strconv.Itoa(line+1)
}
