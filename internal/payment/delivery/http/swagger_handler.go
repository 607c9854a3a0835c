package http

// CreatePaymentURL godoc
// @Summary Create a VNPay payment URL
// @Description Build the signed gateway redirect for a PENDING, unpaid VNPAY order owned by the caller
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{order_id=int} true "Order"
// @Success 200 {object} object{success=bool,message=string,data=object{payment_url=string}}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/payments/vnpay/create [post]
func (h *PaymentHandler) CreatePaymentURLDoc() {}

// VNPayReturn godoc
// @Summary Gateway return callback
// @Description Verifies the signed parameters and redirects the browser to the storefront result page
// @Tags Gateway
// @Success 302 {string} string "Redirect to /payment/success, /payment/failed or /payment/error"
// @Router /api/payments/vnpay/return [get]
func (h *PaymentHandler) VNPayReturnDoc() {}

// VNPayIPN godoc
// @Summary Gateway notification
// @Description Server-to-server notification. Always answers 200 with the gateway ack vocabulary
// @Tags Gateway
// @Produce json
// @Success 200 {object} object{RspCode=string,Message=string}
// @Router /api/payments/vnpay/ipn [get]
// @Router /api/payments/vnpay/ipn [post]
func (h *PaymentHandler) VNPayIPNDoc() {}

// GetMyPayments godoc
// @Summary List my payments
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/payments/me [get]
func (h *PaymentHandler) GetMyPaymentsDoc() {}

// GetPayment godoc
// @Summary Get payment by ID
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Payment ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/payments/{id} [get]
func (h *PaymentHandler) GetPaymentDoc() {}

// ListTransactions godoc
// @Summary List gateway transactions of an order
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/payments/orders/{order_id}/transactions [get]
func (h *PaymentHandler) ListTransactionsDoc() {}

// ListPayments godoc
// @Summary List all payments
// @Description List payments with an optional status filter (Admin only)
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status filter"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/admin/payments [get]
func (h *PaymentHandler) ListPaymentsDoc() {}

// GetStatistics godoc
// @Summary Payment statistics
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{total_payments=int,completed_payments=int,pending_payments=int,failed_payments=int,completed_amount=string}}
// @Router /api/admin/payments/statistics [get]
func (h *PaymentHandler) GetStatisticsDoc() {}

// UpdatePaymentStatus godoc
// @Summary Update payment status
// @Description Move a payment along its state machine and carry the result to the order (Admin only)
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param request body object{status=string} true "Target status"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/admin/payments/{id}/status [patch]
func (h *PaymentHandler) UpdatePaymentStatusDoc() {}

// ConfirmCOD godoc
// @Summary Confirm cash on delivery
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param request body object{note=string} false "Note"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/admin/payments/{id}/cod/confirm [post]
func (h *PaymentHandler) ConfirmCODDoc() {}

// FailCOD godoc
// @Summary Mark cash on delivery as failed
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param request body object{reason=string} false "Reason"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/admin/payments/{id}/cod/fail [post]
func (h *PaymentHandler) FailCODDoc() {}

// SyncAll godoc
// @Summary Reconcile order payment status
// @Description Sweep every payment and repair order payment status drift (Admin only)
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{total_payments=int,total_synced=int,total_skipped=int,total_errors=int}}
// @Router /api/admin/payments/sync [post]
func (h *PaymentHandler) SyncAllDoc() {}

// SyncOrder godoc
// @Summary Reconcile one order
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} object{success=bool,data=object{synced=bool}}
// @Router /api/admin/orders/{id}/payment-sync [post]
func (h *PaymentHandler) SyncOrderDoc() {}
