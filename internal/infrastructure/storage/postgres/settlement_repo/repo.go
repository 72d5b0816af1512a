// Package settlement_repo reads tour groups, their confirmed expense invoices,
// receipts and bonus rules from PostgreSQL.
package settlement_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tourledger/internal/core/apperror"
	"tourledger/internal/core/id"
	"tourledger/internal/domain/bonus"
	"tourledger/internal/domain/documents"
	"tourledger/internal/domain/settlement"
	"tourledger/internal/infrastructure/storage/postgres"
)

// InvoiceStatusConfirmed is the only invoice status that counts.
const InvoiceStatusConfirmed = "CONFIRMED"

const (
	tableGroups        = "tour_groups"
	tableInvoices      = "expense_invoices"
	tableInvoiceItems  = "expense_invoice_items"
	tableReceipts      = "receipts"
	tableBonusSettings = "bonus_settings"
	tableEmployees     = "employees"
)

var (
	_ settlement.Repository        = (*Repo)(nil)
	_ settlement.EmployeeDirectory = (*Repo)(nil)
)

// Repo implements settlement.Repository and settlement.EmployeeDirectory.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// New creates a settlement repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetGroup loads a tour group.
func (r *Repo) GetGroup(ctx context.Context, groupID id.ID) (*documents.TourGroup, error) {
	q := r.builder.
		Select(postgres.ExtractDBColumns[documents.TourGroup]()...).
		From(tableGroups).
		Where(squirrel.Eq{"id": groupID})

	var group documents.TourGroup
	if err := r.get(ctx, &group, q); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("tour group", groupID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get group: %w", err))
	}
	return &group, nil
}

// itemRow is a line item with the invoice it belongs to.
type itemRow struct {
	InvoiceID string `db:"invoice_id"`
	documents.LineItem
}

// ListInvoices loads the confirmed invoices of a group with their line items
// in line order.
func (r *Repo) ListInvoices(ctx context.Context, groupID id.ID) ([]documents.ExpenseInvoice, error) {
	q := r.builder.
		Select(postgres.QualifiedColumns("e", postgres.ExtractDBColumns[documents.ExpenseInvoice]())...).
		From(tableInvoices + " e").
		Where(squirrel.Eq{"e.group_id": groupID}).
		Where(squirrel.Eq{"e.status": InvoiceStatusConfirmed}).
		OrderBy("e.order_id", "e.invoice_id")

	var invoices []documents.ExpenseInvoice
	if err := r.selectInto(ctx, &invoices, q); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list invoices: %w", err))
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	ids := make([]string, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.InvoiceID
	}

	itemsQ := r.builder.
		Select(
			"i.invoice_id",
			"i.line_type",
			"i.payee_ref",
			"COALESCE(i.payee_name, '') AS payee_name",
			"i.unit_price",
			"i.quantity",
			"COALESCE(i.note, '') AS note",
		).
		From(tableInvoiceItems + " i").
		Where(squirrel.Eq{"i.invoice_id": ids}).
		OrderBy("i.invoice_id", "i.line_no")

	var items []itemRow
	if err := r.selectInto(ctx, &items, itemsQ); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list invoice items: %w", err))
	}

	return attachItems(invoices, items), nil
}

// attachItems distributes rows onto their invoices, keeping row order.
func attachItems(invoices []documents.ExpenseInvoice, items []itemRow) []documents.ExpenseInvoice {
	index := make(map[string]int, len(invoices))
	for i, inv := range invoices {
		index[inv.InvoiceID] = i
		invoices[i].LineItems = []documents.LineItem{}
	}
	for _, it := range items {
		if i, ok := index[it.InvoiceID]; ok {
			invoices[i].LineItems = append(invoices[i].LineItems, it.LineItem)
		}
	}
	return invoices
}

// ListReceipts loads every receipt of a group, refunds included.
func (r *Repo) ListReceipts(ctx context.Context, groupID id.ID) ([]documents.Receipt, error) {
	q := r.builder.
		Select("receipt_id", "order_id", "actual_amount", "received_at", "COALESCE(note, '') AS note").
		From(tableReceipts).
		Where(squirrel.Eq{"group_id": groupID}).
		OrderBy("received_at", "receipt_id")

	var receipts []documents.Receipt
	if err := r.selectInto(ctx, &receipts, q); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list receipts: %w", err))
	}
	return receipts, nil
}

// ListBonusSettings loads the bonus rules of a group.
func (r *Repo) ListBonusSettings(ctx context.Context, groupID id.ID) ([]bonus.Setting, error) {
	q := r.builder.
		Select(
			"id", "group_id", "category", "amount", "calculation_type",
			"COALESCE(employee_ref, '') AS employee_ref",
			"COALESCE(created_by, '') AS created_by",
			"created_at", "updated_at",
		).
		From(tableBonusSettings).
		Where(squirrel.Eq{"group_id": groupID}).
		OrderBy("category", "created_at", "id")

	var settings []bonus.Setting
	if err := r.selectInto(ctx, &settings, q); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list bonus settings: %w", err))
	}
	return settings, nil
}

// EmployeeNames resolves employee refs to display names. Unknown refs are
// left out of the result.
func (r *Repo) EmployeeNames(ctx context.Context, refs []string) (map[string]string, error) {
	names := make(map[string]string, len(refs))
	if len(refs) == 0 {
		return names, nil
	}

	q := r.builder.
		Select("ref", "name").
		From(tableEmployees).
		Where(squirrel.Eq{"ref": refs})

	var rows []struct {
		Ref  string `db:"ref"`
		Name string `db:"name"`
	}
	if err := r.selectInto(ctx, &rows, q); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("employee names: %w", err))
	}
	for _, row := range rows {
		names[row.Ref] = row.Name
	}
	return names, nil
}

func (r *Repo) get(ctx context.Context, dst any, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Get(ctx, r.txm.GetQuerier(ctx), dst, sql, args...)
}

func (r *Repo) selectInto(ctx context.Context, dst any, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, r.txm.GetQuerier(ctx), dst, sql, args...)
}
