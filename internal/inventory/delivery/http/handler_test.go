package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/inventory/usecase/command"
	"github.com/tair/fashion-checkout/internal/inventory/usecase/query"
	"github.com/tair/fashion-checkout/internal/store/memory"
	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/httpx"
)

type server struct {
	router    *mux.Router
	store     *memory.Store
	tokens    *auth.TokenManager
	variantID uint
	productID uint
}

func newServer(t *testing.T, stock int) *server {
	t.Helper()
	s := memory.New()
	productID := s.AddProduct(domain.Product{Name: "Silk scarf", IsActive: true})
	variantID := s.AddVariant(domain.Variant{
		ProductID: productID,
		SKU:       "SS-RED-OS",
		Price:     decimal.NewFromInt(450000),
		Stock:     stock,
		IsActive:  true,
	})

	h := NewInventoryHandler(
		command.NewRestockHandler(s),
		command.NewAdjustStockHandler(s),
		command.NewReactivateHandler(s),
		query.NewGetVariantHandler(s.Stock()),
		query.NewListMovementsHandler(s.Stock()),
	)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := mux.NewRouter()
	h.RegisterRoutes(router, httpx.Guard{Customer: tokens.AuthMiddleware, Admin: tokens.AdminMiddleware})
	return &server{router: router, store: s, tokens: tokens, variantID: variantID, productID: productID}
}

func (s *server) do(t *testing.T, role, method, path, body string) (*httptest.ResponseRecorder, httpx.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		token, err := s.tokens.GenerateToken(9, "staff", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp httpx.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestRestock_AdminOnly(t *testing.T) {
	s := newServer(t, 1)
	path := "/api/admin/variants/" + itoa(s.variantID) + "/restock"

	rec, _ := s.do(t, "", http.MethodPost, path, `{"quantity":5}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, auth.RoleCustomer, http.MethodPost, path, `{"quantity":5}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := s.do(t, auth.RoleAdmin, http.MethodPost, path, `{"quantity":5,"note":"PO-12"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, float64(6), resp.Data.(map[string]interface{})["stock"])

	movements := s.store.Movements()
	require.Len(t, movements, 1)
	require.NotNil(t, movements[0].CreatedBy)
	assert.Equal(t, uint(9), *movements[0].CreatedBy)
}

func TestAdjust_InsufficientStockCarriesAvailable(t *testing.T) {
	s := newServer(t, 2)
	path := "/api/admin/variants/" + itoa(s.variantID) + "/adjust"

	rec, resp := s.do(t, auth.RoleAdmin, http.MethodPost, path, `{"delta":-3,"note":"stocktake"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["available"])
	assert.Equal(t, float64(3), data["requested"])

	rec, _ = s.do(t, auth.RoleAdmin, http.MethodPost, path, `{"delta":0,"note":"noop"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReactivateAndMovements(t *testing.T) {
	s := newServer(t, 1)
	id := itoa(s.variantID)

	rec, _ := s.do(t, auth.RoleAdmin, http.MethodPost, "/api/admin/variants/"+id+"/adjust", `{"delta":-1,"note":"damaged"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, auth.RoleAdmin, http.MethodPost, "/api/admin/variants/"+id+"/reactivate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(t, auth.RoleAdmin, http.MethodPost, "/api/admin/products/"+itoa(s.productID)+"/reactivate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp := s.do(t, auth.RoleAdmin, http.MethodGet, "/api/admin/variants/"+id+"/movements?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data.([]interface{}), 1)

	rec, _ = s.do(t, auth.RoleAdmin, http.MethodGet, "/api/admin/variants/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = s.do(t, auth.RoleAdmin, http.MethodGet, "/api/admin/variants/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
