package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a promotional discount. Catalog management lives outside
// the engine; the engine only validates codes and moves UsageCount.
type Coupon struct {
	gorm.Model
	Code          string          `json:"code" gorm:"uniqueIndex;size:32;not null"`
	Name          string          `json:"name"`
	DiscountType  string          `json:"discountType" gorm:"type:varchar(16);not null"`
	DiscountValue decimal.Decimal `json:"discountValue" gorm:"type:decimal(12,2);not null"`
	MaxUsage      int             `json:"maxUsage" gorm:"default:0"` // 0 = unlimited
	UsageCount    int             `json:"usageCount" gorm:"default:0"`
	ValidFrom     time.Time       `json:"validFrom"`
	ValidUntil    time.Time       `json:"validUntil"`
	IsActive      *bool           `json:"isActive"`
}

// CouponRedemption ties a reservation to the coupon it consumed, with
// the discount frozen at booking time. Removed (and the coupon's usage
// counter decremented) when the reservation is cancelled.
type CouponRedemption struct {
	gorm.Model
	ReservationID  uint            `json:"reservationID" gorm:"not null;uniqueIndex"`
	CouponID       uint            `json:"couponID" gorm:"not null;index"`
	Code           string          `json:"code" gorm:"size:32;not null"`
	DiscountAmount decimal.Decimal `json:"discountAmount" gorm:"type:decimal(12,2);not null"`
}
