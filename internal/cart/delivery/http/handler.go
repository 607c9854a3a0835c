package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/fashion-checkout/internal/cart/domain"
	inventorydomain "github.com/tair/fashion-checkout/internal/inventory/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/httpx"
	"github.com/tair/fashion-checkout/pkg/logger"
)

// CartHandler handles HTTP requests for the customer's cart
type CartHandler struct {
	carts    domain.Repository
	variants inventorydomain.StockRepository
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts domain.Repository, variants inventorydomain.StockRepository) *CartHandler {
	return &CartHandler{carts: carts, variants: variants}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID, _ := auth.UserIDFromContext(r.Context())
	items, err := h.carts.List(r.Context(), customerID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", items)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req domain.Item
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if req.VariantID == 0 {
		httpx.Error(w, r, apperror.Validation("variant_id is required"))
		return
	}
	if req.Quantity < 1 {
		httpx.Error(w, r, apperror.Validation("quantity must be at least 1"))
		return
	}

	// Stock is only checked at checkout; the cart just needs a real variant.
	ctx := r.Context()
	if _, err := h.variants.FindVariant(ctx, req.VariantID); err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(ctx)
	if err := h.carts.AddItem(ctx, customerID, req.VariantID, req.Quantity); err != nil {
		httpx.Error(w, r, err)
		return
	}
	logger.Debug(ctx).Uint("customer_id", customerID).Uint("variant_id", req.VariantID).Int("quantity", req.Quantity).Msg("Cart item added")

	items, err := h.carts.List(ctx, customerID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Item added to cart", items)
}

// RemoveItem handles DELETE /api/cart/items/{variant_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	variantID, err := httpx.PathID(r, "variant_id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	customerID, _ := auth.UserIDFromContext(r.Context())
	if err := h.carts.RemoveItem(r.Context(), customerID, variantID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Item removed from cart", nil)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	customerID, _ := auth.UserIDFromContext(r.Context())
	if err := h.carts.Clear(r.Context(), customerID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Cart cleared", nil)
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(router *mux.Router, guard httpx.Guard) {
	router.HandleFunc("/api/cart", guard.Customer(h.GetCart)).Methods("GET")
	router.HandleFunc("/api/cart", guard.Customer(h.ClearCart)).Methods("DELETE")
	router.HandleFunc("/api/cart/items", guard.Customer(h.AddItem)).Methods("POST")
	router.HandleFunc("/api/cart/items/{variant_id}", guard.Customer(h.RemoveItem)).Methods("DELETE")
}

// GetCart godoc
// @Summary Get my cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/cart [get]
func (h *CartHandler) GetCartDoc() {}

// AddItem godoc
// @Summary Add an item to my cart
// @Description Adds quantity to the line for the variant. Stock is checked at checkout.
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{variant_id=int,quantity=int} true "Cart line"
// @Success 200 {object} object{success=bool,message=string,data=array}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/cart/items [post]
func (h *CartHandler) AddItemDoc() {}

// RemoveItem godoc
// @Summary Remove a line from my cart
// @Tags Cart
// @Security BearerAuth
// @Param variant_id path int true "Variant ID"
// @Success 200 {object} object{success=bool,message=string}
// @Router /api/cart/items/{variant_id} [delete]
func (h *CartHandler) RemoveItemDoc() {}

// ClearCart godoc
// @Summary Empty my cart
// @Tags Cart
// @Security BearerAuth
// @Success 200 {object} object{success=bool,message=string}
// @Router /api/cart [delete]
func (h *CartHandler) ClearCartDoc() {}
