//go:build wireinject
// +build wireinject

package shop

import (
	"github.com/google/wire"

	carthttp "github.com/tair/fashion-checkout/internal/cart/delivery/http"
	cartdomain "github.com/tair/fashion-checkout/internal/cart/domain"
	inventoryhttp "github.com/tair/fashion-checkout/internal/inventory/delivery/http"
	inventorycommand "github.com/tair/fashion-checkout/internal/inventory/usecase/command"
	inventoryquery "github.com/tair/fashion-checkout/internal/inventory/usecase/query"
	orderhttp "github.com/tair/fashion-checkout/internal/order/delivery/http"
	ordercommand "github.com/tair/fashion-checkout/internal/order/usecase/command"
	orderquery "github.com/tair/fashion-checkout/internal/order/usecase/query"
	paymentcommand "github.com/tair/fashion-checkout/internal/payment/usecase/command"
	paymentquery "github.com/tair/fashion-checkout/internal/payment/usecase/query"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/config"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStockRepository,
	ProvideOrderRepository,
	ProvidePaymentRepository,
	ProvideGateway,
	ProvideTokenManager,
)

var InventorySet = wire.NewSet(
	inventorycommand.NewRestockHandler,
	inventorycommand.NewAdjustStockHandler,
	inventorycommand.NewReactivateHandler,
	inventoryquery.NewGetVariantHandler,
	inventoryquery.NewListMovementsHandler,
	inventoryhttp.NewInventoryHandler,
)

var OrderSet = wire.NewSet(
	ordercommand.NewCreateOrderHandler,
	ordercommand.NewCancelOrderHandler,
	ordercommand.NewUpdateStatusHandler,
	ordercommand.NewUpdatePaymentMethodHandler,
	ordercommand.NewProcessRefundHandler,
	orderquery.NewGetOrderHandler,
	orderquery.NewListOrdersHandler,
	orderhttp.NewOrderHandler,
)

var CartSet = wire.NewSet(
	carthttp.NewCartHandler,
)

var PaymentSet = wire.NewSet(
	paymentcommand.NewCreatePaymentURLHandler,
	paymentcommand.NewVerifyAndRecordHandler,
	paymentcommand.NewUpdateStatusHandler,
	paymentcommand.NewCODHandler,
	paymentcommand.NewSyncStatusHandler,
	paymentquery.NewGetPaymentHandler,
	paymentquery.NewListPaymentsHandler,
	paymentquery.NewGetMyPaymentsHandler,
	paymentquery.NewListTransactionsHandler,
	paymentquery.NewStatisticsHandler,
	ProvidePaymentHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	InventorySet,
	OrderSet,
	CartSet,
	PaymentSet,
	NewHandlers,
)

// InitializeHandlers builds the shop's HTTP handlers with all dependencies
func InitializeHandlers(s store.Store, carts cartdomain.Repository, publisher kafka.EventPublisher, cfg *config.Config) (*Handlers, error) {
	wire.Build(AllHandlersSet)
	return nil, nil
}
