package http

// CreateOrder godoc
// @Summary Place an order
// @Description Reserve stock, redeem the coupon and loyalty points, and persist the order in one transaction. An empty items list checks out the cart.
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createOrderRequest true "Order data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string,data=object{variant_id=int,requested=int,available=int}}
// @Router /api/orders [post]
func (h *OrderHandler) CreateOrderDoc() {}

// GetMyOrders godoc
// @Summary List my orders
// @Description List the orders of the authenticated customer, newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/orders/me [get]
func (h *OrderHandler) GetMyOrdersDoc() {}

// GetOrder godoc
// @Summary Get order by ID
// @Description Get an order. Customers only see their own orders.
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/orders/{id} [get]
func (h *OrderHandler) GetOrderDoc() {}

// CancelOrder godoc
// @Summary Cancel my order
// @Description Cancel a PENDING order and put its stock back
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrderDoc() {}

// UpdatePaymentMethod godoc
// @Summary Change payment method
// @Description Switch between COD and VNPAY before the order is paid
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body object{payment_method=string} true "New method"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/orders/{id}/payment-method [patch]
func (h *OrderHandler) UpdatePaymentMethodDoc() {}

// ListOrders godoc
// @Summary List all orders
// @Description List orders with an optional status filter (Admin only)
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status filter"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/admin/orders [get]
func (h *OrderHandler) ListOrdersDoc() {}

// UpdateStatus godoc
// @Summary Update order status
// @Description Move an order along its lifecycle. Cancelling or refunding restores stock (Admin only)
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body object{status=string} true "Target status"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatusDoc() {}

// ProcessRefund godoc
// @Summary Refund an order
// @Description Refund a paid order and restore its stock (Admin only)
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body object{reason=string} false "Refund reason"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/admin/orders/{id}/refund [post]
func (h *OrderHandler) ProcessRefundDoc() {}
