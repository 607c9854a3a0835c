package http

// GetVariant godoc
// @Summary Get variant stock
// @Description Get a variant with its current stock and active flag (Admin only)
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Variant ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/admin/variants/{id} [get]
func (h *InventoryHandler) GetVariantDoc() {}

// Restock godoc
// @Summary Restock a variant
// @Description Add received goods to a variant and record a PURCHASE movement (Admin only)
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Variant ID"
// @Param request body object{quantity=int,note=string} true "Restock data"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/admin/variants/{id}/restock [post]
func (h *InventoryHandler) RestockDoc() {}

// Adjust godoc
// @Summary Adjust variant stock
// @Description Apply a signed manual correction. Stock never goes below zero (Admin only)
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Variant ID"
// @Param request body object{delta=int,note=string} true "Adjustment"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string,data=object}
// @Router /api/admin/variants/{id}/adjust [post]
func (h *InventoryHandler) AdjustDoc() {}

// ReactivateVariant godoc
// @Summary Reactivate a variant
// @Description Switch a variant back on after it sold out. Fails when stock is zero (Admin only)
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Variant ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/admin/variants/{id}/reactivate [post]
func (h *InventoryHandler) ReactivateVariantDoc() {}

// ReactivateProduct godoc
// @Summary Reactivate a product
// @Description Switch a product back on when one of its variants is sellable (Admin only)
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/admin/products/{id}/reactivate [post]
func (h *InventoryHandler) ReactivateProductDoc() {}

// ListMovements godoc
// @Summary List stock movements
// @Description List the audit trail of a variant, newest first (Admin only)
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Variant ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/admin/variants/{id}/movements [get]
func (h *InventoryHandler) ListMovementsDoc() {}
