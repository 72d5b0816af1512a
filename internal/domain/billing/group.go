// Package billing groups expense line items by payee for printed bills and
// settlement documents.
package billing

import (
	"sort"
	"time"

	"tourledger/internal/core/apperror"
	"tourledger/internal/core/types"
	"tourledger/internal/domain/documents"
)

// Row is one printed line of a payee group.
type Row struct {
	InvoiceID   string      `json:"invoiceId"`
	OrderID     string      `json:"orderId"`
	CreatedBy   string      `json:"createdBy"`
	GroupName   string      `json:"groupName"`
	InvoiceDate time.Time   `json:"invoiceDate"`
	LineType    string      `json:"lineType"`
	Note        string      `json:"note,omitempty"`
	Price       types.Money `json:"price"`
}

// InvoiceGroup is one printable chunk of a payee's rows.
//
// A payee split over several chunks prints its total once: on the last chunk.
// Every other chunk has TotalSuppressed set and Total left at zero.
type InvoiceGroup struct {
	PayeeRef        string      `json:"payeeRef"`
	PayeeName       string      `json:"payeeName,omitempty"`
	Rows            []Row       `json:"rows"`
	Total           types.Money `json:"total"`
	TotalSuppressed bool        `json:"totalSuppressed"`
}

// flatRow is a line item annotated with its invoice and its position there.
type flatRow struct {
	row       Row
	payeeRef  string
	payeeName string
	line      int
}

// Group flattens the line items of invoices, partitions them by payee and
// chunks each payee into groups of at most maxGroupSize rows.
//
// Payees come out in ascending PayeeRef order. Rows of a payee are ordered by
// order id, invoice id, then position on the invoice.
func Group(invoices []documents.ExpenseInvoice, maxGroupSize int) ([]InvoiceGroup, error) {
	if maxGroupSize <= 0 {
		return nil, apperror.NewInvalidConfiguration("maxGroupSize", maxGroupSize)
	}

	byPayee := make(map[string][]flatRow)
	for _, inv := range invoices {
		for i, item := range inv.LineItems {
			byPayee[item.PayeeRef] = append(byPayee[item.PayeeRef], flatRow{
				row: Row{
					InvoiceID:   inv.InvoiceID,
					OrderID:     inv.OrderID,
					CreatedBy:   inv.CreatedBy,
					GroupName:   inv.GroupName,
					InvoiceDate: inv.InvoiceDate,
					LineType:    string(item.LineType),
					Note:        item.Note,
					Price:       item.Subtotal(),
				},
				payeeRef:  item.PayeeRef,
				payeeName: item.PayeeName,
				line:      i,
			})
		}
	}

	payees := make([]string, 0, len(byPayee))
	for ref := range byPayee {
		payees = append(payees, ref)
	}
	sort.Strings(payees)

	var groups []InvoiceGroup
	for _, ref := range payees {
		rows := byPayee[ref]
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.row.OrderID != b.row.OrderID {
				return a.row.OrderID < b.row.OrderID
			}
			if a.row.InvoiceID != b.row.InvoiceID {
				return a.row.InvoiceID < b.row.InvoiceID
			}
			return a.line < b.line
		})
		groups = append(groups, chunk(rows, maxGroupSize)...)
	}
	return groups, nil
}

// chunk splits one payee's sorted rows and attaches the total to the last chunk.
func chunk(rows []flatRow, size int) []InvoiceGroup {
	total := types.Zero()
	name := ""
	for _, r := range rows {
		total = total.Add(r.row.Price)
		if name == "" {
			name = r.payeeName
		}
	}

	var out []InvoiceGroup
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		g := InvoiceGroup{
			PayeeRef:        rows[start].payeeRef,
			PayeeName:       name,
			Rows:            make([]Row, 0, end-start),
			Total:           types.Zero(),
			TotalSuppressed: true,
		}
		for _, r := range rows[start:end] {
			g.Rows = append(g.Rows, r.row)
		}
		out = append(out, g)
	}

	last := &out[len(out)-1]
	last.Total = total
	last.TotalSuppressed = false
	return out
}
