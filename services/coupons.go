package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

// CouponResult is the outcome of validating a promotion code against a
// booking. The engine consumes only this result; coupon catalog
// management lives elsewhere.
type CouponResult struct {
	Valid          bool            `json:"valid"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Message        string          `json:"message,omitempty"`
	CouponID       uint            `json:"couponID,omitempty"`
}

// CouponValidator validates a promotion code for a booking context.
// Implementations must be side-effect free; the lifecycle manager owns
// the usage-counter mutation so it stays inside the reservation
// transaction.
type CouponValidator interface {
	Validate(tx *gorm.DB, code string, baseAmount decimal.Decimal, unitID uint, checkIn, checkOut time.Time, guestID uint) (CouponResult, error)
}

// DBCouponValidator validates codes against the coupons table.
type DBCouponValidator struct {
	Clock Clock
}

func NewCouponValidator(clock Clock) *DBCouponValidator {
	return &DBCouponValidator{Clock: clock}
}

func rejected(message string) CouponResult {
	return CouponResult{Valid: false, Message: message}
}

func (v *DBCouponValidator) Validate(tx *gorm.DB, code string, baseAmount decimal.Decimal, unitID uint, checkIn, checkOut time.Time, guestID uint) (CouponResult, error) {
	var coupon models.Coupon
	if err := tx.Where("code = ?", code).First(&coupon).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return rejected("unknown coupon code"), nil
		}
		return CouponResult{}, err
	}

	now := v.Clock.Now()
	switch {
	case coupon.IsActive != nil && !*coupon.IsActive:
		return rejected("coupon is not active"), nil
	case !coupon.ValidFrom.IsZero() && now.Before(coupon.ValidFrom):
		return rejected("coupon is not valid yet"), nil
	case !coupon.ValidUntil.IsZero() && now.After(coupon.ValidUntil):
		return rejected("coupon has expired"), nil
	case coupon.MaxUsage > 0 && coupon.UsageCount >= coupon.MaxUsage:
		return rejected("coupon usage limit reached"), nil
	}

	var discount decimal.Decimal
	if coupon.DiscountType == models.DiscountPercentage {
		discount = baseAmount.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	} else {
		discount = coupon.DiscountValue
	}
	if discount.GreaterThan(baseAmount) {
		discount = baseAmount
	}

	return CouponResult{
		Valid:          true,
		DiscountAmount: discount,
		FinalAmount:    baseAmount.Sub(discount),
		CouponID:       coupon.ID,
	}, nil
}

// consumeCoupon increments the usage counter inside the reservation
// transaction. The WHERE clause re-checks the limit so two concurrent
// redemptions cannot both take the last slot.
func consumeCoupon(tx *gorm.DB, couponID uint) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND (max_usage = 0 OR usage_count < max_usage)", couponID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidCoupon("coupon usage limit reached")
	}
	return nil
}

// releaseCoupon undoes one redemption on cancellation.
func releaseCoupon(tx *gorm.DB, couponID uint) error {
	return tx.Model(&models.Coupon{}).
		Where("id = ? AND usage_count > 0", couponID).
		UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error
}
