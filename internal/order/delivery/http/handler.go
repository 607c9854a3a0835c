package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/fashion-checkout/internal/order/domain"
	"github.com/tair/fashion-checkout/internal/order/usecase/command"
	"github.com/tair/fashion-checkout/internal/order/usecase/query"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/httpx"
)

// OrderHandler handles HTTP requests for orders using CQRS pattern
type OrderHandler struct {
	// Command handlers
	createHandler        *command.CreateOrderHandler
	cancelHandler        *command.CancelOrderHandler
	updateStatusHandler  *command.UpdateStatusHandler
	paymentMethodHandler *command.UpdatePaymentMethodHandler
	refundHandler        *command.ProcessRefundHandler

	// Query handlers
	getHandler  *query.GetOrderHandler
	listHandler *query.ListOrdersHandler
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	createHandler *command.CreateOrderHandler,
	cancelHandler *command.CancelOrderHandler,
	updateStatusHandler *command.UpdateStatusHandler,
	paymentMethodHandler *command.UpdatePaymentMethodHandler,
	refundHandler *command.ProcessRefundHandler,
	getHandler *query.GetOrderHandler,
	listHandler *query.ListOrdersHandler,
) *OrderHandler {
	return &OrderHandler{
		createHandler:        createHandler,
		cancelHandler:        cancelHandler,
		updateStatusHandler:  updateStatusHandler,
		paymentMethodHandler: paymentMethodHandler,
		refundHandler:        refundHandler,
		getHandler:           getHandler,
		listHandler:          listHandler,
	}
}

type createOrderRequest struct {
	Items              []command.ItemInput  `json:"items"`
	Shipping           domain.Shipping      `json:"shipping"`
	CouponCode         string               `json:"coupon_code"`
	PaymentMethod      domain.PaymentMethod `json:"payment_method"`
	Note               string               `json:"note"`
	LoyaltyPointsToUse int                  `json:"loyalty_points_to_use"`
}

// CreateOrder handles POST /api/orders. Without items the customer's cart
// is checked out.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(r.Context())
	order, err := h.createHandler.Handle(r.Context(), command.CreateOrderCommand{
		CustomerID:    customerID,
		Items:         req.Items,
		Shipping:      req.Shipping,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,

		LoyaltyPointsToUse: req.LoyaltyPointsToUse,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Order created successfully", order)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(r.Context())
	order, err := h.getHandler.Handle(r.Context(), query.GetOrderQuery{
		ID:         id,
		CustomerID: customerID,
		IsAdmin:    auth.IsAdmin(r.Context()),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", order)
}

// GetMyOrders handles GET /api/orders/me
func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	customerID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := httpx.Paging(r)

	list, err := h.listHandler.HandleMine(r.Context(), query.ListMyOrdersQuery{
		CustomerID: customerID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", list)
}

// CancelOrder handles POST /api/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(r.Context())
	order, err := h.cancelHandler.Handle(r.Context(), command.CancelOrderCommand{OrderID: id, CustomerID: customerID})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Order cancelled successfully", order)
}

// UpdatePaymentMethod handles PATCH /api/orders/{id}/payment-method
func (h *OrderHandler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		PaymentMethod domain.PaymentMethod `json:"payment_method"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(r.Context())
	order, err := h.paymentMethodHandler.Handle(r.Context(), command.UpdatePaymentMethodCommand{
		OrderID:       id,
		CustomerID:    customerID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Payment method updated successfully", order)
}

// ListOrders handles GET /api/admin/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Paging(r)

	list, err := h.listHandler.Handle(r.Context(), query.ListOrdersQuery{
		Status: domain.Status(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", list)
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Status domain.Status `json:"status"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if req.Status == "" {
		httpx.Error(w, r, apperror.Validation("status is required"))
		return
	}

	actorID, _ := auth.UserIDFromContext(r.Context())
	order, err := h.updateStatusHandler.Handle(r.Context(), command.UpdateStatusCommand{
		OrderID: id,
		Status:  req.Status,
		ActorID: actorID,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Order status updated successfully", order)
}

// ProcessRefund handles POST /api/admin/orders/{id}/refund
func (h *OrderHandler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	// The reason is optional, so an empty body is accepted.
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}

	actorID, _ := auth.UserIDFromContext(r.Context())
	order, err := h.refundHandler.Handle(r.Context(), command.ProcessRefundCommand{
		OrderID: id,
		Reason:  req.Reason,
		ActorID: actorID,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Order refunded successfully", order)
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(router *mux.Router, guard httpx.Guard) {
	router.HandleFunc("/api/orders", guard.Customer(guard.Limited(h.CreateOrder))).Methods("POST")
	router.HandleFunc("/api/orders/me", guard.Customer(h.GetMyOrders)).Methods("GET")
	router.HandleFunc("/api/orders/{id:[0-9]+}", guard.Customer(h.GetOrder)).Methods("GET")
	router.HandleFunc("/api/orders/{id:[0-9]+}/cancel", guard.Customer(h.CancelOrder)).Methods("POST")
	router.HandleFunc("/api/orders/{id:[0-9]+}/payment-method", guard.Customer(h.UpdatePaymentMethod)).Methods("PATCH")

	router.HandleFunc("/api/admin/orders", guard.Admin(h.ListOrders)).Methods("GET")
	router.HandleFunc("/api/admin/orders/{id:[0-9]+}/status", guard.Admin(h.UpdateStatus)).Methods("PATCH")
	router.HandleFunc("/api/admin/orders/{id:[0-9]+}/refund", guard.Admin(h.ProcessRefund)).Methods("POST")
}
