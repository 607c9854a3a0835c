package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/fashion-checkout/internal/cart/repository"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/store/memory"
	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/httpx"
)

func TestCartRoutes(t *testing.T) {
	s := memory.New()
	productID := s.AddProduct(inventorydomain.Product{Name: "Knit beanie", IsActive: true})
	variantID := s.AddVariant(inventorydomain.Variant{ProductID: productID, SKU: "KB-GRY", Price: decimal.NewFromInt(150000), Stock: 0, IsActive: false})

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := mux.NewRouter()
	NewCartHandler(repository.NewMemoryRepository(), s.Stock()).
		RegisterRoutes(router, httpx.Guard{Customer: tokens.AuthMiddleware, Admin: tokens.AdminMiddleware})
	token, err := tokens.GenerateToken(5, "mai", auth.RoleCustomer)
	require.NoError(t, err)

	do := func(method, path, body string) (int, httpx.Response) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		var resp httpx.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return rec.Code, resp
	}

	code, _ := do(http.MethodPost, "/api/cart/items", `{"variant_id":999,"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(http.MethodPost, "/api/cart/items", `{"variant_id":1,"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, code)

	// A sold-out variant can still sit in the cart.
	body := `{"variant_id":` + jsonNumber(variantID) + `,"quantity":2}`
	code, _ = do(http.MethodPost, "/api/cart/items", body)
	require.Equal(t, http.StatusOK, code)
	code, resp := do(http.MethodPost, "/api/cart/items", body)
	require.Equal(t, http.StatusOK, code)
	lines := resp.Data.([]interface{})
	require.Len(t, lines, 1)
	assert.Equal(t, float64(4), lines[0].(map[string]interface{})["quantity"])

	code, _ = do(http.MethodDelete, "/api/cart/items/"+jsonNumber(variantID), "")
	assert.Equal(t, http.StatusOK, code)
	code, resp = do(http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Data)

	code, _ = do(http.MethodDelete, "/api/cart", "")
	assert.Equal(t, http.StatusOK, code)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
