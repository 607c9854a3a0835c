package command

import (
	"context"

	orderdomain "github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/payment/gateway/vnpay"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// CreatePaymentURLCommand asks for a signed gateway redirect for an order.
type CreatePaymentURLCommand struct {
	OrderID    uint
	CustomerID uint
	ClientIP   string
}

// CreatePaymentURLHandler handles create payment URL command
type CreatePaymentURLHandler struct {
	orders  orderdomain.OrderRepository
	gateway *vnpay.Client
}

func NewCreatePaymentURLHandler(orders orderdomain.OrderRepository, gateway *vnpay.Client) *CreatePaymentURLHandler {
	return &CreatePaymentURLHandler{orders: orders, gateway: gateway}
}

// Handle returns the URL the browser is redirected to.
func (h *CreatePaymentURLHandler) Handle(ctx context.Context, cmd CreatePaymentURLCommand) (string, error) {
	if cmd.OrderID == 0 {
		return "", apperror.Validation("order_id is required")
	}

	order, err := h.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return "", err
	}
	if !order.IsOwnedBy(cmd.CustomerID) {
		return "", apperror.Forbidden("order %d does not belong to you", cmd.OrderID)
	}
	if order.PaymentMethod != orderdomain.MethodVNPay {
		return "", apperror.InvalidState("order %s is not paid through VNPay", order.Code)
	}
	if order.IsPaid() {
		return "", apperror.InvalidState("order %s is already paid", order.Code)
	}
	if order.Status != orderdomain.StatusPending {
		return "", apperror.InvalidState("order %s is %s and can no longer be paid", order.Code, order.Status)
	}

	paymentURL, err := h.gateway.BuildPaymentURL(ctx, vnpay.PaymentRequest{
		OrderCode: order.Code,
		Amount:    order.GrandTotal,
		ClientIP:  cmd.ClientIP,
	})
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, err, "failed to build payment url")
	}

	logger.Info(ctx).
		Str("order_code", order.Code).
		Str("amount", order.GrandTotal.String()).
		Str("client_ip", cmd.ClientIP).
		Msg("Payment URL created")
	return paymentURL, nil
}
