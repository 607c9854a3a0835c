package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Customer is the buyer account. Accounts are owned by the identity
// service; checkout only reads them and moves their loyalty balance,
// which never goes below zero.
type Customer struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Username      string         `json:"username" gorm:"uniqueIndex;not null"`
	Email         string         `json:"email" gorm:"uniqueIndex;not null"`
	FullName      string         `json:"full_name"`
	Phone         string         `json:"phone"`
	Role          string         `json:"role" gorm:"not null;default:'customer'"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	LoyaltyPoints int            `json:"loyalty_points" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Customer) TableName() string {
	return "users"
}

// CustomerRepository defines the contract for customer lookups
type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (*Customer, error)
	// RedeemLoyaltyPoints takes points from the balance only when the
	// balance covers them and reports the rows changed (0 or 1).
	RedeemLoyaltyPoints(ctx context.Context, id uint, points int) (int64, error)
	// AddLoyaltyPoints moves the balance by delta, flooring it at zero.
	AddLoyaltyPoints(ctx context.Context, id uint, delta int) error
}
