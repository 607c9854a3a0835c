package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartrepo "github.com/tair/fashion-checkout/internal/cart/repository"
	customerdomain "github.com/tair/fashion-checkout/internal/customer/domain"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/payment/gateway/vnpay"
	"github.com/tair/fashion-checkout/internal/store/memory"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/config"
	"github.com/tair/fashion-checkout/pkg/httpx"
)

func testConfig() *config.Config {
	return &config.Config{
		ServiceName: "shop",
		JWTSecret:   "test-secret",
		VNPay: config.VNPayConfig{
			PayURL:      "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			TmnCode:     "SHOPTEST",
			HashSecret:  "TESTSECRETKEY0123456789",
			ReturnURL:   "http://localhost:8080/api/payments/vnpay/return",
			Version:     "2.1.0",
			Command:     "pay",
			OrderType:   "other",
			Locale:      "vn",
			CurrCode:    "VND",
			ExpireAfter: 15 * time.Minute,
		},
		PaymentResultBaseURL: "https://shop.test",
	}
}

type harness struct {
	router   *mux.Router
	handlers *Handlers
	events   *kafka.Recorder
	customer uint
	variant  uint
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := memory.New()
	events := &kafka.Recorder{}
	handlers, err := InitializeHandlers(s, cartrepo.NewMemoryRepository(), events, testConfig())
	require.NoError(t, err)

	h := &harness{router: mux.NewRouter(), handlers: handlers, events: events}
	h.customer = s.AddCustomer(customerdomain.Customer{Username: "mai", Email: "mai@example.com", IsActive: true})
	productID := s.AddProduct(inventorydomain.Product{Name: "Linen shirt", IsActive: true})
	h.variant = s.AddVariant(inventorydomain.Variant{
		ProductID: productID,
		SKU:       "LS-WHT-M",
		SizeName:  "M",
		Price:     decimal.NewFromInt(250000),
		Stock:     2,
		IsActive:  true,
	})
	handlers.RegisterRoutes(h.router)
	return h
}

func (h *harness) do(t *testing.T, userID uint, role, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != 0 {
		token, err := h.handlers.Tokens.GenerateToken(userID, "user", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var resp httpx.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return rec.Code, data
}

func TestCheckoutFromCartThroughIPN(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(t, h.customer, auth.RoleCustomer, http.MethodPost, "/api/cart/items",
		fmt.Sprintf(`{"variant_id": %d, "quantity": 2}`, h.variant))
	require.Equal(t, http.StatusOK, code)

	code, order := h.do(t, h.customer, auth.RoleCustomer, http.MethodPost, "/api/orders", `{
		"shipping": {"name": "Mai", "phone": "0911111111", "line1": "12 Hang Bac", "city": "Hanoi"},
		"payment_method": "VNPAY"
	}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "500000", order["grand_total"])
	orderID := uint(order["id"].(float64))
	orderCode := order["code"].(string)

	// Selling the last unit takes the variant off sale.
	code, variant := h.do(t, 1, auth.RoleAdmin, http.MethodGet, fmt.Sprintf("/api/admin/variants/%d", h.variant), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), variant["stock"])
	assert.Equal(t, false, variant["is_active"])

	code, created := h.do(t, h.customer, auth.RoleCustomer, http.MethodPost, "/api/payments/vnpay/create",
		fmt.Sprintf(`{"order_id": %d}`, orderID))
	require.Equal(t, http.StatusOK, code)
	paymentURL, err := url.Parse(created["payment_url"].(string))
	require.NoError(t, err)
	assert.Equal(t, "50000000", paymentURL.Query().Get("vnp_Amount"))

	gateway := vnpay.NewClient(testConfig().VNPay)
	params := gateway.SignParams(vnpay.Params{
		"vnp_TmnCode":       "SHOPTEST",
		"vnp_TxnRef":        orderCode,
		"vnp_Amount":        "50000000",
		"vnp_ResponseCode":  "00",
		"vnp_TransactionNo": "14100001",
		"vnp_BankCode":      "NCB",
		"vnp_PayDate":       "20260309170500",
	})
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments/vnpay/ipn?"+values.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"RspCode":"00"`)

	code, order = h.do(t, h.customer, auth.RoleCustomer, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "CONFIRMED", order["status"])
	assert.Equal(t, "PAID", order["payment_status"])

	assert.Equal(t, []string{kafka.EventTypeOrderCreated}, h.events.OrderEventTypes())
	require.Len(t, h.events.Payments(), 1)
	assert.Equal(t, orderID, h.events.Payments()[0].OrderID)
}

func TestRoutesAreGuarded(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(t, 0, "", http.MethodGet, "/api/orders/me", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = h.do(t, h.customer, auth.RoleCustomer, http.MethodGet, "/api/admin/payments", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.do(t, h.customer, auth.RoleCustomer, http.MethodPost,
		fmt.Sprintf("/api/admin/variants/%d/restock", h.variant), `{"quantity": 5}`)
	assert.Equal(t, http.StatusForbidden, code)
}

type countingWindow struct{ hits map[string]int64 }

func (c *countingWindow) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	count := c.hits[key]
	c.hits[key]++
	return count, nil
}

func TestCheckoutIsThrottled(t *testing.T) {
	h := newHarness(t)
	h.handlers.Limiter = httpx.NewRateLimiter(&countingWindow{hits: map[string]int64{}}, "checkout", 1, time.Minute)
	h.router = mux.NewRouter()
	h.handlers.RegisterRoutes(h.router)

	body := fmt.Sprintf(`{
		"items": [{"variant_id": %d, "quantity": 1}],
		"shipping": {"name": "Mai", "phone": "0911111111", "line1": "12 Hang Bac", "city": "Hanoi"},
		"payment_method": "COD"
	}`, h.variant)

	code, _ := h.do(t, h.customer, auth.RoleCustomer, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, code)
	code, _ = h.do(t, h.customer, auth.RoleCustomer, http.MethodPost, "/api/orders", body)
	assert.Equal(t, http.StatusTooManyRequests, code)

	// Reads are not limited.
	code, _ = h.do(t, h.customer, auth.RoleCustomer, http.MethodGet, "/api/orders/me", "")
	assert.Equal(t, http.StatusOK, code)
}
