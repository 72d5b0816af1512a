package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tourledger/internal/domain/bonus"
	"tourledger/internal/domain/documents"
)

func TestExtractDBColumns_BonusSetting(t *testing.T) {
	cols := ExtractDBColumns[bonus.Setting]()

	assert.Equal(t, []string{
		"id", "group_id", "category", "amount", "calculation_type",
		"employee_ref", "created_by", "created_at", "updated_at",
	}, cols)
}

func TestExtractDBColumns_SkipsIgnoredFields(t *testing.T) {
	cols := ExtractDBColumns[*documents.ExpenseInvoice]()

	assert.NotContains(t, cols, "-")
	assert.Equal(t, []string{"invoice_id", "order_id", "group_name", "created_by", "invoice_date"}, cols)
}

func TestExtractDBColumns_Embedded(t *testing.T) {
	type audit struct {
		CreatedBy string `db:"created_by"`
	}
	type row struct {
		audit
		Name  string `db:"name"`
		Extra string
	}

	assert.Equal(t, []string{"created_by", "name"}, ExtractDBColumns[row]())
}

func TestQualifiedColumns(t *testing.T) {
	assert.Equal(t, []string{"r.id", "r.amount"}, QualifiedColumns("r", []string{"id", "amount"}))
}
