package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourledger/internal/core/apperror"
	appctx "tourledger/internal/core/context"
	"tourledger/internal/core/id"
	"tourledger/internal/core/tx"
	"tourledger/internal/core/types"
	"tourledger/internal/domain/auth"
	"tourledger/internal/domain/billing"
	"tourledger/internal/domain/bonus"
	"tourledger/internal/domain/documents"
	"tourledger/internal/domain/settlement"
	v1 "tourledger/internal/infrastructure/http/v1"
	"tourledger/internal/infrastructure/metrics"
	"tourledger/pkg/logger"
)

type memoryRepo struct {
	groups   map[id.ID]documents.TourGroup
	invoices []documents.ExpenseInvoice
	receipts []documents.Receipt
	settings []bonus.Setting
}

func (r *memoryRepo) GetGroup(_ context.Context, groupID id.ID) (*documents.TourGroup, error) {
	g, ok := r.groups[groupID]
	if !ok {
		return nil, apperror.NewNotFound("tour group", groupID.String())
	}
	return &g, nil
}

func (r *memoryRepo) ListInvoices(context.Context, id.ID) ([]documents.ExpenseInvoice, error) {
	return r.invoices, nil
}

func (r *memoryRepo) ListReceipts(context.Context, id.ID) ([]documents.Receipt, error) {
	return r.receipts, nil
}

func (r *memoryRepo) ListBonusSettings(context.Context, id.ID) ([]bonus.Setting, error) {
	return r.settings, nil
}

type testEnv struct {
	router  http.Handler
	jwt     *auth.JWTService
	groupID id.ID
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	groupID := id.New()
	var items []documents.LineItem
	for i := 0; i < 7; i++ {
		items = append(items, documents.LineItem{
			LineType: documents.LineTypeHotel, PayeeRef: "SUP01", UnitPrice: types.MustMoney("1000"), Quantity: 1,
		})
	}
	items = append(items, documents.LineItem{
		LineType: documents.LineTypeTicket, PayeeRef: "AIR", UnitPrice: types.MustMoney("293000"), Quantity: 1,
	})

	repo := &memoryRepo{
		groups:   map[id.ID]documents.TourGroup{groupID: {ID: groupID, Code: "TG-1", TravellerCount: 20}},
		invoices: []documents.ExpenseInvoice{{InvoiceID: "INV-1", OrderID: "ORD-1", LineItems: items}},
		receipts: []documents.Receipt{{ReceiptID: "R1", ActualAmount: types.MustMoney("500000")}},
		settings: []bonus.Setting{
			{Category: bonus.CategoryAdministrativeExpenses, CalculationType: bonus.CalculationFixedAmount, Amount: types.MustMoney("10")},
			{Category: bonus.CategoryProfitTax, CalculationType: bonus.CalculationPercent, Amount: types.MustMoney("12")},
			{Category: bonus.CategoryTeamBonus, CalculationType: bonus.CalculationPercent, Amount: types.MustMoney("45")},
		},
	}

	settlementSvc, err := settlement.NewService(settlement.ServiceConfig{
		Repo:      repo,
		TxManager: tx.Inline{},
		Config:    settlement.DefaultConfig(),
	})
	require.NoError(t, err)

	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))

	router := v1.NewRouter(v1.RouterConfig{
		Logger:            logger.NewNop(),
		JWTValidator:      jwtSvc,
		SettlementService: settlementSvc,
		BillService:       billing.NewService(repo, tx.Inline{}, 5),
		Metrics:           metrics.New(),
	})

	return &testEnv{router: router, jwt: jwtSvc, groupID: groupID}
}

func (e *testEnv) token(t *testing.T, roles ...string) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(appctx.UserContext{UserID: "u-1", Roles: roles})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = env.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth(t *testing.T) {
	env := newEnv(t)
	path := "/api/v1/groups/" + env.groupID.String() + "/settlement"

	rec := env.do(t, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperror.CodeUnauthorized, decode(t, rec)["code"])

	rec = env.do(t, http.MethodGet, path, "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, path, env.token(t, "guide"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperror.CodeForbidden, decode(t, rec)["code"])
}

func TestGetSettlement(t *testing.T) {
	env := newEnv(t)
	token := env.token(t, auth.RoleAccountant)

	rec := env.do(t, http.MethodGet, "/api/v1/groups/"+env.groupID.String()+"/settlement", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	rows := body["rows"].([]any)
	require.Len(t, rows, 7)

	team := rows[5].(map[string]any)
	assert.Equal(t, "Team bonus", team["label"])
	assert.Equal(t, "79120.80", team["value"])
	assert.Equal(t, "45%", team["value2"])

	company := rows[6].(map[string]any)
	assert.Equal(t, "Company profit", company["label"])
	assert.Equal(t, "96703.20", company["value"])

	groups := body["payeeGroups"].([]any)
	assert.Len(t, groups, 3) // AIR, SUP01 ×2
	assert.Equal(t, "TG-1", body["group"].(map[string]any)["code"])
}

func TestGetSettlement_Errors(t *testing.T) {
	env := newEnv(t)
	token := env.token(t, auth.RoleManager)

	rec := env.do(t, http.MethodGet, "/api/v1/groups/not-a-uuid/settlement", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeValidation, decode(t, rec)["code"])

	rec = env.do(t, http.MethodGet, "/api/v1/groups/"+id.New().String()+"/settlement", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeNotFound, decode(t, rec)["code"])
}

func TestPreviewSettlement(t *testing.T) {
	env := newEnv(t)
	token := env.token(t, auth.RoleAccountant)

	body := `{
		"groupCode": "DRAFT",
		"travellerCount": 20,
		"invoices": [{"invoiceId": "I1", "lineItems": [
			{"lineType": "HOTEL", "payeeRef": "H1", "unitPrice": "300000", "quantity": 1}
		]}],
		"receipts": [{"receiptId": "R1", "actualAmount": "500000"}],
		"settings": [
			{"category": "ADMINISTRATIVE_EXPENSES"},
			{"category": "PROFIT_TAX", "amount": "12"},
			{"category": "TEAM_BONUS", "amount": "45"},
			{"category": "SALE_BONUS", "amount": "1000", "calculationType": "FIXED_AMOUNT", "employeeRef": "E1"}
		],
		"names": {"E1": "Alice"}
	}`

	rec := env.do(t, http.MethodPost, "/api/v1/settlements/preview", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows := decode(t, rec)["rows"].([]any)
	require.Len(t, rows, 8)
	sale := rows[6].(map[string]any)
	assert.Equal(t, "Sales bonus: Alice", sale["label"])
	assert.Equal(t, "1000.00", sale["value"])
	assert.Equal(t, "95703.20", rows[7].(map[string]any)["value"])
}

func TestPreviewSettlement_Rejected(t *testing.T) {
	env := newEnv(t)
	token := env.token(t, auth.RoleAccountant)

	rec := env.do(t, http.MethodPost, "/api/v1/settlements/preview", token,
		`{"travellerCount": 1, "settings": [{"category": "PROFIT_TAX", "amount": "5", "calculationType": "FIXED_AMOUNT"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperror.CodeUnsupportedRule, decode(t, rec)["code"])

	rec = env.do(t, http.MethodPost, "/api/v1/settlements/preview", token, `{"travellerCount": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/settlements/preview", token, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBill(t *testing.T) {
	env := newEnv(t)
	token := env.token(t, auth.RoleAccountant)
	path := "/api/v1/groups/" + env.groupID.String() + "/bill"

	rec := env.do(t, http.MethodGet, path, token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	groups := body["groups"].([]any)
	require.Len(t, groups, 3)

	var sup []map[string]any
	for _, g := range groups {
		if gm := g.(map[string]any); gm["payeeRef"] == "SUP01" {
			sup = append(sup, gm)
		}
	}
	require.Len(t, sup, 2)
	assert.Len(t, sup[0]["rows"].([]any), 5)
	assert.Len(t, sup[1]["rows"].([]any), 2)
	assert.Equal(t, true, sup[0]["totalSuppressed"])
	assert.Equal(t, false, sup[1]["totalSuppressed"])
	assert.Equal(t, "7000", sup[1]["total"])
	assert.Equal(t, "300000", body["grandTotal"])

	rec = env.do(t, http.MethodGet, path+"?maxGroupSize=10", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["groups"].([]any), 2)

	rec = env.do(t, http.MethodGet, path+"?maxGroupSize=0", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperror.CodeInvalidConfiguration, decode(t, rec)["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnv(t)
	env.do(t, http.MethodGet, "/health/live", "", "")

	rec := env.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tourledger_http_requests_total{method="GET",route="/health/live",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
