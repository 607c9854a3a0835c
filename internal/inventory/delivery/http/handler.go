package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/fashion-checkout/internal/inventory/usecase/command"
	"github.com/tair/fashion-checkout/internal/inventory/usecase/query"
	"github.com/tair/fashion-checkout/pkg/auth"
	"github.com/tair/fashion-checkout/pkg/httpx"
)

// InventoryHandler handles HTTP requests for stock administration
type InventoryHandler struct {
	restockHandler    *command.RestockHandler
	adjustHandler     *command.AdjustStockHandler
	reactivateHandler *command.ReactivateHandler

	getVariantHandler    *query.GetVariantHandler
	listMovementsHandler *query.ListMovementsHandler
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	restockHandler *command.RestockHandler,
	adjustHandler *command.AdjustStockHandler,
	reactivateHandler *command.ReactivateHandler,
	getVariantHandler *query.GetVariantHandler,
	listMovementsHandler *query.ListMovementsHandler,
) *InventoryHandler {
	return &InventoryHandler{
		restockHandler:       restockHandler,
		adjustHandler:        adjustHandler,
		reactivateHandler:    reactivateHandler,
		getVariantHandler:    getVariantHandler,
		listMovementsHandler: listMovementsHandler,
	}
}

// GetVariant handles GET /api/admin/variants/{id}
func (h *InventoryHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	variant, err := h.getVariantHandler.Handle(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", variant)
}

// Restock handles POST /api/admin/variants/{id}/restock
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Quantity int    `json:"quantity"`
		Note     string `json:"note"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	actorID, _ := auth.UserIDFromContext(r.Context())
	variant, err := h.restockHandler.Handle(r.Context(), command.RestockCommand{
		VariantID: id,
		Quantity:  req.Quantity,
		Note:      req.Note,
		ActorID:   actorID,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Variant restocked successfully", variant)
}

// Adjust handles POST /api/admin/variants/{id}/adjust
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Delta int    `json:"delta"`
		Note  string `json:"note"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	actorID, _ := auth.UserIDFromContext(r.Context())
	variant, err := h.adjustHandler.Handle(r.Context(), command.AdjustStockCommand{
		VariantID: id,
		Delta:     req.Delta,
		Note:      req.Note,
		ActorID:   actorID,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Stock adjusted successfully", variant)
}

// ReactivateVariant handles POST /api/admin/variants/{id}/reactivate
func (h *InventoryHandler) ReactivateVariant(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	variant, err := h.reactivateHandler.Variant(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Variant reactivated successfully", variant)
}

// ReactivateProduct handles POST /api/admin/products/{id}/reactivate
func (h *InventoryHandler) ReactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	product, err := h.reactivateHandler.Product(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Product reactivated successfully", product)
}

// ListMovements handles GET /api/admin/variants/{id}/movements
func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	limit, offset := httpx.Paging(r)

	movements, err := h.listMovementsHandler.Handle(r.Context(), query.ListMovementsQuery{
		VariantID: id,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", movements)
}

// RegisterRoutes registers all inventory routes. Every route is admin only.
func (h *InventoryHandler) RegisterRoutes(router *mux.Router, guard httpx.Guard) {
	router.HandleFunc("/api/admin/variants/{id}", guard.Admin(h.GetVariant)).Methods("GET")
	router.HandleFunc("/api/admin/variants/{id}/movements", guard.Admin(h.ListMovements)).Methods("GET")
	router.HandleFunc("/api/admin/variants/{id}/restock", guard.Admin(h.Restock)).Methods("POST")
	router.HandleFunc("/api/admin/variants/{id}/adjust", guard.Admin(h.Adjust)).Methods("POST")
	router.HandleFunc("/api/admin/variants/{id}/reactivate", guard.Admin(h.ReactivateVariant)).Methods("POST")
	router.HandleFunc("/api/admin/products/{id}/reactivate", guard.Admin(h.ReactivateProduct)).Methods("POST")
}
