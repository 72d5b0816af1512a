package settlement_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourledger/internal/core/id"
	"tourledger/internal/core/types"
	"tourledger/internal/domain/documents"
)

func TestAttachItems_KeepsLineOrder(t *testing.T) {
	invoices := []documents.ExpenseInvoice{{InvoiceID: "A"}, {InvoiceID: "B"}, {InvoiceID: "C"}}
	items := []itemRow{
		{InvoiceID: "A", LineItem: documents.LineItem{PayeeRef: "P1", UnitPrice: types.MustMoney("1"), Quantity: 1}},
		{InvoiceID: "B", LineItem: documents.LineItem{PayeeRef: "P2"}},
		{InvoiceID: "A", LineItem: documents.LineItem{PayeeRef: "P3"}},
		{InvoiceID: "Z", LineItem: documents.LineItem{PayeeRef: "orphan"}},
	}

	out := attachItems(invoices, items)

	require.Len(t, out, 3)
	require.Len(t, out[0].LineItems, 2)
	assert.Equal(t, "P1", out[0].LineItems[0].PayeeRef)
	assert.Equal(t, "P3", out[0].LineItems[1].PayeeRef)
	assert.Len(t, out[1].LineItems, 1)
	assert.NotNil(t, out[2].LineItems)
	assert.Empty(t, out[2].LineItems)
}

func TestQueries_UseDollarPlaceholders(t *testing.T) {
	r := New(nil)
	groupID := id.New()

	sql, args, err := r.builder.
		Select("id").
		From(tableInvoices).
		Where(squirrel.Eq{"group_id": groupID}).
		Where(squirrel.Eq{"status": InvoiceStatusConfirmed}).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM expense_invoices WHERE group_id = $1 AND status = $2", sql)
	// id.ID is a driver.Valuer, so squirrel binds its string form.
	assert.Equal(t, []any{groupID.String(), InvoiceStatusConfirmed}, args)
}
