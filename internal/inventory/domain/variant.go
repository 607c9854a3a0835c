package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry a set of variants belongs to. Only the
// fields the stock ledger and checkout snapshot need are mapped here.
type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Variants  []Variant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// Variant is one purchasable SKU (product x color x size).
type Variant struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	SKU       string          `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	ColorName string          `json:"color_name" gorm:"size:64"`
	SizeName  string          `json:"size_name" gorm:"size:32"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Stock     int             `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	IsActive  bool            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName specifies the table name
func (Variant) TableName() string {
	return "product_variants"
}

// IsAvailable checks if the variant can be sold at all
func (v *Variant) IsAvailable() bool {
	return v.IsActive && v.Stock > 0
}

// ProductName returns the owning product name when it was loaded.
func (v *Variant) ProductName() string {
	if v.Product == nil {
		return ""
	}
	return v.Product.Name
}
