package command

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	cartdomain "github.com/tair/fashion-checkout/internal/cart/domain"
	coupondomain "github.com/tair/fashion-checkout/internal/coupon/domain"
	customerdomain "github.com/tair/fashion-checkout/internal/customer/domain"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/internal/inventory/ledger"
	"github.com/tair/fashion-checkout/internal/order/domain"
	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/store"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
	"github.com/tair/fashion-checkout/pkg/metrics"
)

const maxNoteLength = 500

var couponCodePattern = regexp.MustCompile(`^[A-Z0-9]{4,40}$`)

// ItemInput is one requested line.
type ItemInput struct {
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderCommand represents the command to place an order. An empty
// Items list checks out the customer's cart.
type CreateOrderCommand struct {
	CustomerID    uint
	Items         []ItemInput
	Shipping      domain.Shipping
	CouponCode    string
	PaymentMethod domain.PaymentMethod
	Note          string

	// LoyaltyPointsToUse is the most points the customer wants to spend.
	LoyaltyPointsToUse int
}

// CreateOrderHandler turns a cart into a persisted order. Every stock
// reservation, the coupon redemption and the order rows share one
// transaction.
type CreateOrderHandler struct {
	store     store.Store
	carts     cartdomain.Repository
	publisher kafka.EventPublisher
	now       func() time.Time
}

// NewCreateOrderHandler creates a new create order handler
func NewCreateOrderHandler(s store.Store, carts cartdomain.Repository, publisher kafka.EventPublisher) *CreateOrderHandler {
	return &CreateOrderHandler{store: s, carts: carts, publisher: publisher, now: time.Now}
}

// Handle executes the create order command
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	order, err := h.handle(ctx, cmd)
	if err != nil {
		metrics.CheckoutResults.WithLabelValues(apperror.KindOf(err).String()).Inc()
		logger.Warn(ctx).
			Err(err).
			Uint("customer_id", cmd.CustomerID).
			Str("coupon_code", cmd.CouponCode).
			Msg("Order creation rejected")
		return nil, err
	}
	metrics.CheckoutResults.WithLabelValues("created").Inc()
	return order, nil
}

func (h *CreateOrderHandler) handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	fromCart := len(cmd.Items) == 0
	if fromCart && cmd.CustomerID != 0 {
		cartItems, err := h.carts.List(ctx, cmd.CustomerID)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, err, "failed to read cart")
		}
		for _, item := range cartItems {
			cmd.Items = append(cmd.Items, ItemInput{VariantID: item.VariantID, Quantity: item.Quantity})
		}
	}

	items, err := normalize(&cmd)
	if err != nil {
		return nil, err
	}

	customer, err := h.store.Customers().FindByID(ctx, cmd.CustomerID)
	if err != nil {
		return nil, err
	}

	// Reject what can be rejected before any write.
	provisional, err := h.provisionalSubtotal(ctx, items)
	if err != nil {
		return nil, err
	}
	if cmd.CouponCode != "" {
		coupon, err := h.store.Coupons().FindRedeemableByCode(ctx, cmd.CouponCode, h.now())
		if err != nil {
			return nil, err
		}
		if err := coupon.CheckMinimum(provisional); err != nil {
			return nil, err
		}
	}

	now := h.now()
	order := &domain.Order{
		Code:            domain.NewOrderCode(now),
		CustomerID:      cmd.CustomerID,
		Status:          domain.StatusPending,
		DiscountTotal:   decimal.Zero,
		LoyaltyDiscount: decimal.Zero,
		ShippingFee:     decimal.Zero,
		TaxTotal:        decimal.Zero,
		Note:            cmd.Note,
		Shipping:        cmd.Shipping,
		PaymentMethod:   cmd.PaymentMethod,
		PaymentStatus:   domain.PaymentUnpaid,
		PlacedAt:        now,
	}

	err = h.store.Transaction(ctx, func(tx store.Repositories) error {
		led := ledger.New(tx.Stock())

		for _, item := range items {
			variant, err := led.Reserve(ctx, item.VariantID, item.Quantity)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, snapshot(variant, item.Quantity))
		}
		order.ComputeTotals()

		if cmd.CouponCode != "" {
			discount, err := redeem(ctx, tx.Coupons(), cmd.CouponCode, order.Subtotal, now)
			if err != nil {
				return err
			}
			order.CouponCode = cmd.CouponCode
			order.DiscountTotal = discount
			order.ComputeTotals()
		}

		if cmd.LoyaltyPointsToUse > 0 {
			if err := spendPoints(ctx, tx.Customers(), customer.ID, order, cmd.LoyaltyPointsToUse); err != nil {
				return err
			}
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		if order.PaymentMethod == domain.MethodCOD {
			if err := tx.Payments().Create(ctx, &paymentdomain.Payment{
				OrderID:       order.ID,
				PaymentMethod: domain.MethodCOD,
				Amount:        order.GrandTotal,
				Status:        paymentdomain.StatusPending,
				PaymentInfo:   "Cash on delivery",
			}); err != nil {
				return err
			}
		}

		for _, item := range order.Items {
			led.Record(ctx, inventorydomain.InventoryMovement{
				VariantID:      item.VariantID,
				Quantity:       -item.Quantity,
				Reason:         inventorydomain.ReasonSale,
				RelatedOrderID: &order.ID,
				Note:           "Order " + order.Code,
				CreatedBy:      &cmd.CustomerID,
				CreatedAt:      now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := h.carts.Clear(ctx, cmd.CustomerID); err != nil {
		logger.Warn(ctx).Err(err).Uint("customer_id", cmd.CustomerID).Msg("Failed to clear cart after checkout")
	}

	logger.Info(ctx).
		Str("order_code", order.Code).
		Uint("order_id", order.ID).
		Uint("customer_id", order.CustomerID).
		Int("items", len(order.Items)).
		Str("subtotal", order.Subtotal.String()).
		Str("discount", order.DiscountTotal.String()).
		Int("points_used", order.LoyaltyPointsUsed).
		Str("grand_total", order.GrandTotal.String()).
		Str("payment_method", string(order.PaymentMethod)).
		Bool("from_cart", fromCart).
		Msg("Order created")
	publishOrder(ctx, h.publisher, kafka.EventTypeOrderCreated, order, "")
	return order, nil
}

// normalize validates the command in place and merges duplicate lines,
// keeping first-seen order.
func normalize(cmd *CreateOrderCommand) ([]ItemInput, error) {
	if cmd.CustomerID == 0 {
		return nil, apperror.Validation("customer id is required")
	}
	if len(cmd.Items) == 0 {
		return nil, apperror.Validation("order must contain at least one item")
	}

	var (
		items []ItemInput
		index = make(map[uint]int)
	)
	for i, item := range cmd.Items {
		if item.VariantID == 0 {
			return nil, apperror.Validation("items[%d]: variant_id is required", i).WithField("index", i)
		}
		if item.Quantity < 1 {
			return nil, apperror.Validation("items[%d]: quantity must be at least 1", i).WithField("index", i)
		}
		if at, ok := index[item.VariantID]; ok {
			items[at].Quantity += item.Quantity
			continue
		}
		index[item.VariantID] = len(items)
		items = append(items, item)
	}

	s := &cmd.Shipping
	s.Name = strings.TrimSpace(s.Name)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Line1 = strings.TrimSpace(s.Line1)
	s.City = strings.TrimSpace(s.City)
	switch {
	case s.Name == "":
		return nil, apperror.Validation("shipping name is required").WithField("field", "ship_name")
	case s.Phone == "":
		return nil, apperror.Validation("shipping phone is required").WithField("field", "ship_phone")
	case s.Line1 == "":
		return nil, apperror.Validation("shipping address is required").WithField("field", "ship_line1")
	case s.City == "":
		return nil, apperror.Validation("shipping city is required").WithField("field", "ship_city")
	}
	if strings.TrimSpace(s.Country) == "" {
		s.Country = domain.DefaultCountry
	}

	if !cmd.PaymentMethod.IsValid() {
		return nil, apperror.Validation("invalid payment method: %s", cmd.PaymentMethod).WithField("field", "payment_method")
	}

	cmd.CouponCode = strings.ToUpper(strings.TrimSpace(cmd.CouponCode))
	if cmd.CouponCode != "" && !couponCodePattern.MatchString(cmd.CouponCode) {
		return nil, apperror.Validation("invalid coupon code format").WithField("field", "coupon_code")
	}

	if cmd.LoyaltyPointsToUse < 0 {
		return nil, apperror.Validation("loyalty points to use cannot be negative").WithField("field", "loyalty_points_to_use")
	}

	if utf8.RuneCountInString(cmd.Note) > maxNoteLength {
		return nil, apperror.Validation("note must be at most %d characters", maxNoteLength).WithField("field", "note")
	}
	return items, nil
}

// provisionalSubtotal prices the request at current catalog prices and
// fails with NotFound for unknown variants.
func (h *CreateOrderHandler) provisionalSubtotal(ctx context.Context, items []ItemInput) (decimal.Decimal, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariantID)
	}
	variants, err := h.store.Stock().FindVariants(ctx, ids)
	if err != nil {
		return decimal.Zero, err
	}

	prices := make(map[uint]decimal.Decimal, len(variants))
	for _, v := range variants {
		prices[v.ID] = v.Price
	}

	subtotal := decimal.Zero
	for _, item := range items {
		price, ok := prices[item.VariantID]
		if !ok {
			return decimal.Zero, apperror.NotFound("variant %d not found", item.VariantID)
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal, nil
}

// redeem re-validates the coupon against the reserved subtotal and takes
// one use with the conditional increment.
func redeem(ctx context.Context, coupons coupondomain.CouponRepository, code string, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	coupon, err := coupons.FindRedeemableByCode(ctx, code, now)
	if err != nil {
		return decimal.Zero, err
	}
	discount, err := coupon.Apply(subtotal)
	if err != nil {
		return decimal.Zero, err
	}

	rows, err := coupons.IncrementUsage(ctx, coupon.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if rows == 0 {
		return decimal.Zero, apperror.InvalidCoupon("coupon %s has reached its usage limit", code)
	}
	return discount, nil
}

// spendPoints redeems up to requested points against what the coupon left
// payable. The balance is re-read inside the transaction and taken with a
// conditional decrement, so a concurrent checkout cannot overspend it.
func spendPoints(ctx context.Context, customers customerdomain.CustomerRepository, customerID uint, order *domain.Order, requested int) error {
	customer, err := customers.FindByID(ctx, customerID)
	if err != nil {
		return err
	}
	used, discount := domain.RedeemPoints(requested, customer.LoyaltyPoints, order.Subtotal.Sub(order.DiscountTotal))
	if used == 0 {
		return nil
	}

	rows, err := customers.RedeemLoyaltyPoints(ctx, customerID, used)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.InvalidState("loyalty balance changed during checkout, please retry")
	}
	order.LoyaltyPointsUsed = used
	order.LoyaltyDiscount = discount
	order.ComputeTotals()
	return nil
}

func snapshot(v *inventorydomain.Variant, quantity int) domain.OrderItem {
	return domain.OrderItem{
		ProductID:   v.ProductID,
		VariantID:   v.ID,
		SKU:         v.SKU,
		ProductName: v.ProductName(),
		ColorName:   v.ColorName,
		SizeName:    v.SizeName,
		Quantity:    quantity,
		UnitPrice:   v.Price,
	}
}
