package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/branchstock_backend/controllers"
	"github.com/HSouheill/branchstock_backend/middleware"
	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories/memstore"
	"github.com/HSouheill/branchstock_backend/services"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t        *testing.T
	e        *echo.Echo
	store    *memstore.Store
	verifier *middleware.JWTVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	verifier := middleware.NewJWTVerifier("test-secret")

	catalog := services.NewCatalogService(store.Branches(), store.Items(), t.TempDir())
	sales := services.NewSaleService(store.Branches(), store.Items(), store.Sales(), memstore.NewIdempotency(), nil, 5)
	aggregator := services.NewAggregatorService(store.Branches(), store.Items(), store.Sales(), store.Users(), time.UTC)
	lowStock := services.NewLowStockService(store.Branches(), store.Items(), 5)
	roles := services.NewRoleDirectory(store.Users(), store.Branches(), nil)
	messages := services.NewMessageService(store.Messages(), store.Users(), nil, nil, "")

	e := echo.New()
	e.Validator = controllers.NewValidator()
	SetupRoutes(e, &Handlers{
		Verifier:      verifier,
		Roles:         roles,
		Catalog:       controllers.NewCatalogController(catalog),
		Sales:         controllers.NewSaleController(sales),
		Reports:       controllers.NewReportController(aggregator, lowStock),
		Users:         controllers.NewUserController(roles),
		Notifications: controllers.NewNotificationController(messages),
	})

	s := &testServer{t: t, e: e, store: store, verifier: verifier}
	s.addUser(models.User{UID: "owner", Name: "Owner", Email: "owner@example.com", IsAdmin: true, Role: models.RoleAdmin})
	return s
}

func (s *testServer) addUser(u models.User) {
	s.t.Helper()
	require.NoError(s.t, s.store.Users().Create(context.Background(), &u))
}

func (s *testServer) addWorker(uid, branchID string) {
	s.t.Helper()
	s.addUser(models.User{UID: uid, Name: uid, Email: uid + "@example.com", IsWorker: true, Role: models.RoleWorker, BranchID: &branchID})
}

func (s *testServer) token(uid string) string {
	s.t.Helper()
	tok, err := s.verifier.Issue(uid, uid+"@example.com", uid, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, uid, body string, headers ...string) (int, envelope) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if uid != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token(uid))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

// seedCatalog creates branch "downtown" with one phone priced 100 with 10 in stock.
func (s *testServer) seedCatalog() string {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/admin/branches", "owner", `{"id":"downtown","name":"Downtown"}`)
	require.Equal(s.t, http.StatusCreated, code)

	code, _ = s.do(http.MethodPut, "/api/admin/branches/downtown/categories", "owner",
		`{"name":"phones","fields":[{"name":"storage","type":"number"}]}`)
	require.Equal(s.t, http.StatusOK, code)

	code, env := s.do(http.MethodPost, "/api/admin/branches/downtown/categories/phones/items", "owner",
		`{"brand":"Acme","model":"X1","price":100,"stock":10,"storage":128}`)
	require.Equal(s.t, http.StatusCreated, code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &created))
	return created.ID
}

func salePath(itemID string) string {
	return "/api/branches/downtown/categories/phones/items/" + itemID + "/sales"
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	itemID := s.seedCatalog()
	s.addWorker("w1", "downtown")

	code, env := s.do(http.MethodPost, salePath(itemID), "w1", `{"quantity":3}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var receipt models.SaleReceipt
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, 7, receipt.Stock)
	assert.Equal(t, "w1", receipt.Sale.WorkerID)
	assert.Equal(t, 100.0, receipt.Sale.Price)

	code, _ = s.do(http.MethodPost, salePath(itemID), "w1", `{"quantity":11}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = s.do(http.MethodPost, salePath(itemID), "w1", `{"quantity":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = s.do(http.MethodPost, salePath("missing"), "w1", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, "/api/branches/downtown/sales/rollup?window=today", "w1", "")
	require.Equal(t, http.StatusOK, code)
	var rollup models.Rollup
	require.NoError(t, json.Unmarshal(env.Data, &rollup))
	assert.Equal(t, 1, rollup.Count)
	assert.Equal(t, 300.0, rollup.TotalAmount)

	code, env = s.do(http.MethodGet, "/api/branches/downtown/categories/phones/items/"+itemID, "w1", "")
	require.Equal(t, http.StatusOK, code)
	var item models.Item
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, 7, item.Stock)
}

func TestRecordSale_IdempotencyKeyReplays(t *testing.T) {
	s := newTestServer(t)
	itemID := s.seedCatalog()
	s.addWorker("w1", "downtown")

	var ids []string
	for i := 0; i < 2; i++ {
		code, env := s.do(http.MethodPost, salePath(itemID), "w1", `{"quantity":2}`, "Idempotency-Key", "checkout-1")
		require.Equal(t, http.StatusCreated, code)
		var receipt models.SaleReceipt
		require.NoError(t, json.Unmarshal(env.Data, &receipt))
		ids = append(ids, receipt.SaleID)
	}
	assert.Equal(t, ids[0], ids[1])
	assert.Len(t, s.store.AllSales(), 1)

	code, _ := s.do(http.MethodPost, salePath(itemID), "w1", `{"quantity":5}`, "Idempotency-Key", "checkout-1")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Len(t, s.store.AllSales(), 1)

	code, _ = s.do(http.MethodPost, salePath(itemID), "w1", `{"quantity":1}`, "Idempotency-Key", strings.Repeat("k", 200))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWorkerConfinedToOwnBranch(t *testing.T) {
	s := newTestServer(t)
	s.seedCatalog()
	code, _ := s.do(http.MethodPost, "/api/admin/branches", "owner", `{"id":"harbor","name":"Harbor"}`)
	require.Equal(t, http.StatusCreated, code)
	s.addWorker("w2", "harbor")

	code, _ = s.do(http.MethodGet, "/api/branches/downtown/categories", "w2", "")
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/api/branches/harbor/categories", "w2", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/branches/downtown/categories", "owner", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)
	itemID := s.seedCatalog()
	s.addWorker("w1", "downtown")
	s.addUser(models.User{UID: "newcomer", Name: "New", Email: "new@example.com", Role: models.RoleNone})

	tests := []struct {
		name   string
		method string
		path   string
		uid    string
		body   string
		want   int
	}{
		{"no token", http.MethodGet, "/api/branches", "", "", http.StatusUnauthorized},
		{"no profile", http.MethodGet, "/api/branches/downtown", "stranger", "", http.StatusForbidden},
		{"no role", http.MethodGet, "/api/branches/downtown", "newcomer", "", http.StatusForbidden},
		{"worker on admin route", http.MethodGet, "/api/admin/overview", "w1", "", http.StatusForbidden},
		{"worker adds item", http.MethodPost, "/api/admin/branches/downtown/categories/phones/items", "w1", `{"price":1,"stock":1}`, http.StatusForbidden},
		{"admin on worker-only route", http.MethodPost, "/api/messages", "owner", `{"body":"hi"}`, http.StatusForbidden},
		{"admin sells", http.MethodPost, salePath(itemID), "owner", `{"quantity":1}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := s.do(tt.method, tt.path, tt.uid, tt.body)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestBlockedWorkerCannotSell(t *testing.T) {
	s := newTestServer(t)
	itemID := s.seedCatalog()
	s.addWorker("w1", "downtown")

	code, _ := s.do(http.MethodPost, "/api/admin/users/w1/toggle-block", "owner", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodPost, salePath(itemID), "w1", `{"quantity":1}`)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, "/api/messages", "w1", `{"body":"restock please"}`)
	assert.Equal(t, http.StatusForbidden, code)

	// Reads stay available.
	code, _ = s.do(http.MethodGet, "/api/branches/downtown/categories", "w1", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestSendMessage_RejectedBodyNotStored(t *testing.T) {
	s := newTestServer(t)
	s.seedCatalog()
	s.addWorker("w1", "downtown")

	code, env := s.do(http.MethodPost, "/api/messages", "w1", `{"body":"`+strings.Repeat("x", 2500)+`"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "Body")

	code, _ = s.do(http.MethodPost, "/api/messages", "w1", `{"body":`)
	assert.Equal(t, http.StatusBadRequest, code)

	stored, err := s.store.Messages().List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, stored)

	code, _ = s.do(http.MethodPost, "/api/messages", "w1", `{"body":"restock X1"}`)
	require.Equal(t, http.StatusCreated, code)
	stored, err = s.store.Messages().List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRoleAssignment(t *testing.T) {
	s := newTestServer(t)
	s.seedCatalog()

	code, _ := s.do(http.MethodPost, "/api/users/me", "rana", `{"name":"Rana"}`)
	require.Equal(t, http.StatusOK, code)

	code, env := s.do(http.MethodGet, "/api/users/me/role", "rana", "")
	require.Equal(t, http.StatusOK, code)
	var info models.RoleInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, models.RoleNone, info.Role)

	code, _ = s.do(http.MethodPut, "/api/admin/users/rana/role", "owner", `{"role":"worker"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPut, "/api/admin/users/rana/role", "owner", `{"role":"worker","branchId":"uptown"}`)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodPut, "/api/admin/users/rana/role", "owner", `{"role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPut, "/api/admin/users/rana/role", "owner", `{"role":"worker","branchId":"downtown"}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, models.RoleWorker, info.Role)
	require.NotNil(t, info.BranchID)
	assert.Equal(t, "downtown", *info.BranchID)

	code, _ = s.do(http.MethodGet, "/api/branches/downtown/categories", "rana", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestCatalogValidation(t *testing.T) {
	s := newTestServer(t)
	s.seedCatalog()

	code, env := s.do(http.MethodPost, "/api/admin/branches/downtown/categories/phones/items", "owner", `{"price":"abc","stock":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "price")

	code, _ = s.do(http.MethodPost, "/api/admin/branches/downtown/categories/tablets/items", "owner", `{"price":1,"stock":1}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPut, "/api/admin/branches/downtown/categories", "owner", `{"name":"cases","fields":[{"name":"color","type":"blob"}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDashboards(t *testing.T) {
	s := newTestServer(t)
	itemID := s.seedCatalog()
	s.addWorker("w1", "downtown")

	code, _ := s.do(http.MethodPost, salePath(itemID), "w1", `{"quantity":6}`)
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(http.MethodGet, "/api/admin/sales/branches", "owner", "")
	require.Equal(t, http.StatusOK, code)
	var rows []models.BranchSalesRow
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 600.0, rows[0].DailyTotal)
	assert.Equal(t, 600.0, rows[0].WeeklyTotal)

	code, env = s.do(http.MethodGet, "/api/admin/low-stock", "owner", "")
	require.Equal(t, http.StatusOK, code)
	var low []models.BranchLowStock
	require.NoError(t, json.Unmarshal(env.Data, &low))
	require.Len(t, low, 1)
	require.Len(t, low[0].LowStockItems, 1)
	assert.Equal(t, 4, low[0].LowStockItems[0].Stock)

	code, env = s.do(http.MethodGet, "/api/admin/overview", "owner", "")
	require.Equal(t, http.StatusOK, code)
	var overview models.Overview
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.Equal(t, int64(2), overview.TotalUsers)
	assert.Equal(t, int64(1), overview.TotalWorkers)
	assert.Equal(t, 600.0, overview.TodaySales)
}

func TestItemLabel(t *testing.T) {
	s := newTestServer(t)
	itemID := s.seedCatalog()

	req := httptest.NewRequest(http.MethodGet, "/api/branches/downtown/categories/phones/items/"+itemID+"/label", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token("owner"))
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}
