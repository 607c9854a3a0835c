package domain

import "time"

// MovementReason explains why stock changed.
type MovementReason string

const (
	ReasonPurchase MovementReason = "PURCHASE"
	ReasonSale     MovementReason = "SALE"
	ReasonReturn   MovementReason = "RETURN"
	ReasonAdjust   MovementReason = "ADJUST"
)

// InventoryMovement is an append-only audit row; Quantity is the signed
// stock delta.
type InventoryMovement struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	VariantID      uint           `json:"variant_id" gorm:"not null;index"`
	Quantity       int            `json:"quantity" gorm:"not null"`
	Reason         MovementReason `json:"reason" gorm:"size:16;not null"`
	RelatedOrderID *uint          `json:"related_order_id,omitempty" gorm:"index"`
	Note           string         `json:"note,omitempty" gorm:"size:500"`
	CreatedBy      *uint          `json:"created_by,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// TableName specifies the table name
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}
