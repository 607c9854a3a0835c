package shop

import (
	"time"

	"github.com/gorilla/mux"

	carthttp "github.com/tair/fashion-checkout/internal/cart/delivery/http"
	inventoryhttp "github.com/tair/fashion-checkout/internal/inventory/delivery/http"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	orderhttp "github.com/tair/fashion-checkout/internal/order/delivery/http"
	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	paymenthttp "github.com/tair/fashion-checkout/internal/payment/delivery/http"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/payment/gateway/vnpay"
	paymentcommand "github.com/tair/fashion-checkout/internal/payment/usecase/command"
	paymentquery "github.com/tair/fashion-checkout/internal/payment/usecase/query"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/config"
	"github.com/tair/fashion-checkout/pkg/httpx"
)

// TokenTTL is the lifetime of issued bearer tokens.
const TokenTTL = 24 * time.Hour

// Handlers groups the HTTP surface of the shop.
type Handlers struct {
	Inventory *inventoryhttp.InventoryHandler
	Orders    *orderhttp.OrderHandler
	Carts     *carthttp.CartHandler
	Payments  *paymenthttp.PaymentHandler
	Tokens    *auth.TokenManager

	// Limiter, when set, throttles checkout and payment URL creation.
	Limiter *httpx.RateLimiter
}

func NewHandlers(
	inventory *inventoryhttp.InventoryHandler,
	orders *orderhttp.OrderHandler,
	carts *carthttp.CartHandler,
	payments *paymenthttp.PaymentHandler,
	tokens *auth.TokenManager,
) *Handlers {
	return &Handlers{
		Inventory: inventory,
		Orders:    orders,
		Carts:     carts,
		Payments:  payments,
		Tokens:    tokens,
	}
}

// Guard builds the customer and admin route wrappers from the token manager.
func (h *Handlers) Guard() httpx.Guard {
	guard := httpx.Guard{
		Customer: h.Tokens.AuthMiddleware,
		Admin:    h.Tokens.AdminMiddleware,
	}
	if h.Limiter != nil {
		guard.Throttle = h.Limiter.Limit
	}
	return guard
}

// RegisterRoutes registers every domain route on router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	guard := h.Guard()
	h.Inventory.RegisterRoutes(router, guard)
	h.Orders.RegisterRoutes(router, guard)
	h.Carts.RegisterRoutes(router, guard)
	h.Payments.RegisterRoutes(router, guard)
}

// ProvideStockRepository exposes the non-transactional stock repository.
func ProvideStockRepository(s store.Store) inventorydomain.StockRepository {
	return s.Stock()
}

func ProvideOrderRepository(s store.Store) orderdomain.OrderRepository {
	return s.Orders()
}

func ProvidePaymentRepository(s store.Store) paymentdomain.PaymentRepository {
	return s.Payments()
}

// ProvideGateway builds the VNPay client from the merchant settings.
func ProvideGateway(cfg *config.Config) *vnpay.Client {
	return vnpay.NewClient(cfg.VNPay)
}

func ProvideTokenManager(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(cfg.JWTSecret, TokenTTL)
}

// ProvidePaymentHandler binds the storefront redirect origin, which wire
// cannot inject as a bare string.
func ProvidePaymentHandler(
	cfg *config.Config,
	createURL *paymentcommand.CreatePaymentURLHandler,
	verify *paymentcommand.VerifyAndRecordHandler,
	updateStatus *paymentcommand.UpdateStatusHandler,
	cod *paymentcommand.CODHandler,
	sync *paymentcommand.SyncStatusHandler,
	get *paymentquery.GetPaymentHandler,
	list *paymentquery.ListPaymentsHandler,
	getMy *paymentquery.GetMyPaymentsHandler,
	transactions *paymentquery.ListTransactionsHandler,
	statistics *paymentquery.StatisticsHandler,
) *paymenthttp.PaymentHandler {
	return paymenthttp.NewPaymentHandler(
		createURL, verify, updateStatus, cod, sync,
		get, list, getMy, transactions, statistics,
		cfg.PaymentResultBaseURL,
	)
}
