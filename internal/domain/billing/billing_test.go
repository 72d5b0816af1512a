package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourledger/internal/core/apperror"
	"tourledger/internal/core/id"
	"tourledger/internal/core/tx"
	"tourledger/internal/core/types"
	"tourledger/internal/domain/documents"
)

func lines(payee string, prices ...string) []documents.LineItem {
	out := make([]documents.LineItem, 0, len(prices))
	for _, p := range prices {
		out = append(out, documents.LineItem{
			LineType:  documents.LineTypeHotel,
			PayeeRef:  payee,
			PayeeName: "Supplier " + payee,
			UnitPrice: types.MustMoney(p),
			Quantity:  1,
			Note:      p,
		})
	}
	return out
}

func visible(groups []InvoiceGroup, payee string) []InvoiceGroup {
	var out []InvoiceGroup
	for _, g := range groups {
		if g.PayeeRef == payee && !g.TotalSuppressed {
			out = append(out, g)
		}
	}
	return out
}

func TestGroup_SplitsSevenRowsIntoFiveAndTwo(t *testing.T) {
	invoices := []documents.ExpenseInvoice{
		{InvoiceID: "INV-1", OrderID: "ORD-1", LineItems: lines("SUP01", "100", "200", "300", "400")},
		{InvoiceID: "INV-2", OrderID: "ORD-1", LineItems: lines("SUP01", "500", "600", "700")},
	}

	groups, err := Group(invoices, 5)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Rows, 5)
	assert.Len(t, groups[1].Rows, 2)

	assert.True(t, groups[0].TotalSuppressed)
	assert.True(t, groups[0].Total.IsZero())
	assert.False(t, groups[1].TotalSuppressed)
	assert.True(t, groups[1].Total.Equal(types.MustMoney("2800")), "got %s", groups[1].Total)
	assert.Equal(t, "Supplier SUP01", groups[1].PayeeName)
}

func TestGroup_OrdersRowsByOrderInvoiceAndLine(t *testing.T) {
	invoices := []documents.ExpenseInvoice{
		{InvoiceID: "INV-B", OrderID: "ORD-2", LineItems: lines("P", "1", "2")},
		{InvoiceID: "INV-C", OrderID: "ORD-1", LineItems: lines("P", "3")},
		{InvoiceID: "INV-A", OrderID: "ORD-2", LineItems: lines("P", "4")},
	}

	groups, err := Group(invoices, 10)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	var notes []string
	for _, r := range groups[0].Rows {
		notes = append(notes, r.InvoiceID+":"+r.Note)
	}
	assert.Equal(t, []string{"INV-C:3", "INV-A:4", "INV-B:1", "INV-B:2"}, notes)
}

func TestGroup_PartitionsByPayee(t *testing.T) {
	invoices := []documents.ExpenseInvoice{{
		InvoiceID: "INV-1",
		LineItems: append(append(lines("ZED", "1", "2", "3"), lines("ACME", "10")...), lines("ZED", "4")...),
	}}

	groups, err := Group(invoices, 2)
	require.NoError(t, err)

	var payees []string
	counts := map[string]int{}
	for _, g := range groups {
		payees = append(payees, g.PayeeRef)
		counts[g.PayeeRef] += len(g.Rows)
		assert.LessOrEqual(t, len(g.Rows), 2)
	}
	assert.Equal(t, []string{"ACME", "ZED", "ZED"}, payees)
	assert.Equal(t, 1, counts["ACME"])
	assert.Equal(t, 4, counts["ZED"])

	require.Len(t, visible(groups, "ZED"), 1)
	assert.True(t, visible(groups, "ZED")[0].Total.Equal(types.MustMoney("10")))
	require.Len(t, visible(groups, "ACME"), 1)
}

func TestGroup_CompletenessAndSingleTotal(t *testing.T) {
	for size := 1; size <= 8; size++ {
		invoices := []documents.ExpenseInvoice{
			{InvoiceID: "I1", LineItems: lines("A", "1", "2", "3", "4", "5", "6", "7")},
			{InvoiceID: "I2", LineItems: lines("B", "1", "1")},
		}
		groups, err := Group(invoices, size)
		require.NoError(t, err)

		rows := map[string]int{}
		for _, g := range groups {
			rows[g.PayeeRef] += len(g.Rows)
		}
		assert.Equal(t, 7, rows["A"], "size %d", size)
		assert.Equal(t, 2, rows["B"], "size %d", size)
		assert.Len(t, visible(groups, "A"), 1, "size %d", size)
		assert.Len(t, visible(groups, "B"), 1, "size %d", size)
	}
}

func TestGroup_RejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		groups, err := Group([]documents.ExpenseInvoice{{LineItems: lines("A", "1")}}, size)
		assert.Nil(t, groups)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConfiguration))
	}
}

func TestGroup_NoLineItems(t *testing.T) {
	groups, err := Group([]documents.ExpenseInvoice{{InvoiceID: "EMPTY"}}, 5)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestNewBill_GrandTotal(t *testing.T) {
	groups, err := Group([]documents.ExpenseInvoice{
		{InvoiceID: "I1", LineItems: lines("A", "10", "20", "30")},
		{InvoiceID: "I2", LineItems: lines("B", "5")},
	}, 2)
	require.NoError(t, err)

	bill := NewBill(documents.TourGroup{Code: "TG-1"}, groups)
	assert.True(t, bill.GrandTotal.Equal(types.MustMoney("65")))
	assert.NotNil(t, NewBill(documents.TourGroup{}, nil).Groups)
}

type fakeSource struct {
	group    *documents.TourGroup
	invoices []documents.ExpenseInvoice
	err      error
}

func (f *fakeSource) GetGroup(_ context.Context, _ id.ID) (*documents.TourGroup, error) {
	return f.group, f.err
}

func (f *fakeSource) ListInvoices(_ context.Context, _ id.ID) ([]documents.ExpenseInvoice, error) {
	return f.invoices, nil
}

func TestService_Bill(t *testing.T) {
	groupID := id.New()
	source := &fakeSource{
		group: &documents.TourGroup{ID: groupID, Code: "TG-7", DepartureDate: time.Now()},
		invoices: []documents.ExpenseInvoice{{
			InvoiceID: "I1",
			LineItems: append(lines("A", "100", "50"), documents.LineItem{
				LineType: documents.LineTypeRefund, PayeeRef: "A", UnitPrice: types.MustMoney("30"), Quantity: 1,
			}),
		}},
	}
	svc := NewService(source, tx.Inline{}, 5)

	bill, err := svc.Bill(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, "TG-7", bill.Group.Code)
	require.Len(t, bill.Groups, 1)
	assert.Len(t, bill.Groups[0].Rows, 2)
	assert.True(t, bill.GrandTotal.Equal(types.MustMoney("150")))

	_, err = svc.BillWithGroupSize(context.Background(), groupID, 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConfiguration))
}

func TestService_Bill_SourceError(t *testing.T) {
	missing := apperror.NewNotFound("tour group", "x")
	svc := NewService(&fakeSource{err: missing}, tx.Inline{}, 5)

	_, err := svc.Bill(context.Background(), id.New())
	assert.True(t, errors.Is(err, missing))
	assert.True(t, apperror.IsNotFound(err))
}
