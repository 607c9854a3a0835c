package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCountry is used when the shipping address omits a country.
const DefaultCountry = "Vietnam"

// Shipping is the delivery address copied onto the order at creation.
type Shipping struct {
	Name     string `json:"name" gorm:"size:120;not null"`
	Phone    string `json:"phone" gorm:"size:32;not null"`
	Line1    string `json:"line1" gorm:"size:255;not null"`
	Line2    string `json:"line2,omitempty" gorm:"size:255"`
	Ward     string `json:"ward,omitempty" gorm:"size:120"`
	District string `json:"district,omitempty" gorm:"size:120"`
	City     string `json:"city" gorm:"size:120;not null"`
	Country  string `json:"country" gorm:"size:64;not null"`
}

// Order is the checkout aggregate root.
type Order struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	Code                 string          `json:"code" gorm:"size:40;not null;uniqueIndex"`
	CustomerID           uint            `json:"customer_id" gorm:"not null;index"`
	Status               Status          `json:"status" gorm:"size:16;not null;index"`
	Subtotal             decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	DiscountTotal        decimal.Decimal `json:"discount_total" gorm:"type:numeric(12,2);not null"`
	ShippingFee          decimal.Decimal `json:"shipping_fee" gorm:"type:numeric(12,2);not null"`
	TaxTotal             decimal.Decimal `json:"tax_total" gorm:"type:numeric(12,2);not null"`
	GrandTotal           decimal.Decimal `json:"grand_total" gorm:"type:numeric(12,2);not null"`
	LoyaltyDiscount      decimal.Decimal `json:"loyalty_discount" gorm:"type:numeric(12,2);not null;default:0"`
	LoyaltyPointsUsed    int             `json:"loyalty_points_used" gorm:"not null;default:0"`
	LoyaltyPointsEarned  int             `json:"loyalty_points_earned" gorm:"not null;default:0"`
	CouponCode           string          `json:"coupon_code,omitempty" gorm:"size:40"`
	Note                 string          `json:"note,omitempty" gorm:"size:500"`
	Shipping             Shipping        `json:"shipping" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod        PaymentMethod   `json:"payment_method" gorm:"size:16;not null"`
	PaymentStatus        PaymentStatus   `json:"payment_status" gorm:"size:16;not null"`
	PaymentTransactionID string          `json:"payment_transaction_id,omitempty" gorm:"size:64"`
	PaymentTime          *time.Time      `json:"payment_time,omitempty"`
	PlacedAt             time.Time       `json:"placed_at" gorm:"not null"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Items                []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a denormalized line snapshot.
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     uint            `json:"order_id" gorm:"not null;index"`
	ProductID   uint            `json:"product_id" gorm:"not null"`
	VariantID   uint            `json:"variant_id" gorm:"not null;index"`
	SKU         string          `json:"sku" gorm:"size:64;not null"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	ColorName   string          `json:"color_name,omitempty" gorm:"size:64"`
	SizeName    string          `json:"size_name,omitempty" gorm:"size:32"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal `json:"line_total" gorm:"type:numeric(12,2);not null"`
}

// TableName specifies the table name
func (OrderItem) TableName() string {
	return "order_items"
}

// ComputeTotals derives subtotal and grand total from the items and the
// already-set discounts, shipping fee and tax. The grand total is floored
// at zero and sets the points the order earns.
func (o *Order) ComputeTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal
	o.GrandTotal = o.Subtotal.
		Sub(o.DiscountTotal).
		Sub(o.LoyaltyDiscount).
		Add(o.ShippingFee).
		Add(o.TaxTotal)
	if o.GrandTotal.IsNegative() {
		o.GrandTotal = decimal.Zero
	}
	o.LoyaltyPointsEarned = PointsEarned(o.GrandTotal)
}

// IsOwnedBy reports whether customerID placed the order.
func (o *Order) IsOwnedBy(customerID uint) bool {
	return o.CustomerID == customerID
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}

// NewOrderCode renders ORD-<yyyyMMddHHmmss>-<6 hex>.
func NewOrderCode(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102150405"), strings.ToUpper(suffix))
}
