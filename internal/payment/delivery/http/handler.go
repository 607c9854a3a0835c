package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/internal/payment/usecase/command"
	"github.com/tair/fashion-checkout/internal/payment/usecase/query"
	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/httpx"
)

// PaymentHandler handles HTTP requests for payments using CQRS pattern
type PaymentHandler struct {
	// Command handlers
	createURLHandler    *command.CreatePaymentURLHandler
	verifyHandler       *command.VerifyAndRecordHandler
	updateStatusHandler *command.UpdateStatusHandler
	codHandler          *command.CODHandler
	syncHandler         *command.SyncStatusHandler

	// Query handlers
	getHandler          *query.GetPaymentHandler
	listHandler         *query.ListPaymentsHandler
	getMyHandler        *query.GetMyPaymentsHandler
	transactionsHandler *query.ListTransactionsHandler
	statisticsHandler   *query.StatisticsHandler

	// resultBaseURL is the storefront origin the return callback redirects to.
	resultBaseURL string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	createURLHandler *command.CreatePaymentURLHandler,
	verifyHandler *command.VerifyAndRecordHandler,
	updateStatusHandler *command.UpdateStatusHandler,
	codHandler *command.CODHandler,
	syncHandler *command.SyncStatusHandler,
	getHandler *query.GetPaymentHandler,
	listHandler *query.ListPaymentsHandler,
	getMyHandler *query.GetMyPaymentsHandler,
	transactionsHandler *query.ListTransactionsHandler,
	statisticsHandler *query.StatisticsHandler,
	resultBaseURL string,
) *PaymentHandler {
	return &PaymentHandler{
		createURLHandler:    createURLHandler,
		verifyHandler:       verifyHandler,
		updateStatusHandler: updateStatusHandler,
		codHandler:          codHandler,
		syncHandler:         syncHandler,
		getHandler:          getHandler,
		listHandler:         listHandler,
		getMyHandler:        getMyHandler,
		transactionsHandler: transactionsHandler,
		statisticsHandler:   statisticsHandler,
		resultBaseURL:       resultBaseURL,
	}
}

// CreatePaymentURL handles POST /api/payments/vnpay/create
func (h *PaymentHandler) CreatePaymentURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID uint `json:"order_id"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(r.Context())
	paymentURL, err := h.createURLHandler.Handle(r.Context(), command.CreatePaymentURLCommand{
		OrderID:    req.OrderID,
		CustomerID: customerID,
		ClientIP:   httpx.ClientIP(r),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Payment URL created", map[string]string{"payment_url": paymentURL})
}

// GetPayment handles GET /api/payments/{id}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(r.Context())
	payment, err := h.getHandler.Handle(r.Context(), query.GetPaymentQuery{
		ID:         id,
		CustomerID: customerID,
		IsAdmin:    auth.IsAdmin(r.Context()),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", payment)
}

// GetMyPayments handles GET /api/payments/me
func (h *PaymentHandler) GetMyPayments(w http.ResponseWriter, r *http.Request) {
	customerID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := httpx.Paging(r)

	list, err := h.getMyHandler.Handle(r.Context(), query.GetMyPaymentsQuery{
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

// ListTransactions handles GET /api/payments/orders/{order_id}/transactions
func (h *PaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	orderID, err := httpx.PathID(r, "order_id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(r.Context())
	txns, err := h.transactionsHandler.Handle(r.Context(), query.ListTransactionsQuery{
		OrderID:    orderID,
		CustomerID: customerID,
		IsAdmin:    auth.IsAdmin(r.Context()),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", txns)
}

// ListPayments handles GET /api/admin/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Paging(r)

	list, err := h.listHandler.Handle(r.Context(), query.ListPaymentsQuery{
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

// GetStatistics handles GET /api/admin/payments/statistics
func (h *PaymentHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statisticsHandler.Handle(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", stats)
}

// UpdatePaymentStatus handles PATCH /api/admin/payments/{id}/status
func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
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

	payment, err := h.updateStatusHandler.Handle(r.Context(), command.UpdateStatusCommand{PaymentID: id, Status: req.Status})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Payment status updated successfully", payment)
}

// ConfirmCOD handles POST /api/admin/payments/{id}/cod/confirm
func (h *PaymentHandler) ConfirmCOD(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}

	payment, err := h.codHandler.Confirm(r.Context(), command.ConfirmCODCommand{PaymentID: id, Note: req.Note})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Cash on delivery confirmed", payment)
}

// FailCOD handles POST /api/admin/payments/{id}/cod/fail
func (h *PaymentHandler) FailCOD(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}

	payment, err := h.codHandler.Fail(r.Context(), command.FailCODCommand{PaymentID: id, Reason: req.Reason})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Cash on delivery marked as failed", payment)
}

// SyncAll handles POST /api/admin/payments/sync
func (h *PaymentHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.syncHandler.HandleAll(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Payment status sync completed", summary)
}

// SyncOrder handles POST /api/admin/orders/{id}/payment-sync
func (h *PaymentHandler) SyncOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	changed, err := h.syncHandler.HandleOrder(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", map[string]bool{"synced": changed})
}

// RegisterRoutes registers all payment routes. The gateway endpoints are
// public: they authenticate with the signature instead of a token.
func (h *PaymentHandler) RegisterRoutes(router *mux.Router, guard httpx.Guard) {
	router.HandleFunc("/api/payments/vnpay/return", h.VNPayReturn).Methods("GET")
	router.HandleFunc("/api/payments/vnpay/ipn", h.VNPayIPN).Methods("GET", "POST")

	router.HandleFunc("/api/payments/vnpay/create", guard.Customer(guard.Limited(h.CreatePaymentURL))).Methods("POST")
	router.HandleFunc("/api/payments/me", guard.Customer(h.GetMyPayments)).Methods("GET")
	router.HandleFunc("/api/payments/{id:[0-9]+}", guard.Customer(h.GetPayment)).Methods("GET")
	router.HandleFunc("/api/payments/orders/{order_id:[0-9]+}/transactions", guard.Customer(h.ListTransactions)).Methods("GET")

	router.HandleFunc("/api/admin/payments", guard.Admin(h.ListPayments)).Methods("GET")
	router.HandleFunc("/api/admin/payments/statistics", guard.Admin(h.GetStatistics)).Methods("GET")
	router.HandleFunc("/api/admin/payments/sync", guard.Admin(h.SyncAll)).Methods("POST")
	router.HandleFunc("/api/admin/payments/{id:[0-9]+}/status", guard.Admin(h.UpdatePaymentStatus)).Methods("PATCH")
	router.HandleFunc("/api/admin/payments/{id:[0-9]+}/cod/confirm", guard.Admin(h.ConfirmCOD)).Methods("POST")
	router.HandleFunc("/api/admin/payments/{id:[0-9]+}/cod/fail", guard.Admin(h.FailCOD)).Methods("POST")
	router.HandleFunc("/api/admin/orders/{id:[0-9]+}/payment-sync", guard.Admin(h.SyncOrder)).Methods("POST")
}
