package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

// RefundCalculator maps (policy, lead time, amount paid) to a refund
// amount. Pure: no clock, no storage, no side effects.
type RefundCalculator struct{}

// Refund applies the policy tiers. Both threshold boundaries are
// inclusive: exactly FullRefundDays out refunds in full, exactly
// PartialRefundDays out refunds the partial percentage. A nil policy
// refunds nothing.
func (RefundCalculator) Refund(policy *models.CancellationPolicy, daysUntilCheckIn int, amountPaid decimal.Decimal) decimal.Decimal {
	if policy == nil || amountPaid.Sign() <= 0 {
		return decimal.Zero
	}
	switch {
	case daysUntilCheckIn >= policy.FullRefundDays:
		return amountPaid
	case daysUntilCheckIn >= policy.PartialRefundDays:
		pct := decimal.NewFromInt(int64(policy.PartialRefundPercentage))
		return amountPaid.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	default:
		return decimal.Zero
	}
}

// ResolvePolicy finds the cancellation policy governing a unit: the
// unit's own policy when set, otherwise the global default, otherwise
// nil (no refund).
func ResolvePolicy(tx *gorm.DB, unit *models.Unit) (*models.CancellationPolicy, error) {
	if unit.CancellationPolicyID != nil {
		var policy models.CancellationPolicy
		if err := tx.First(&policy, *unit.CancellationPolicyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, nil
			}
			return nil, err
		}
		return &policy, nil
	}
	var fallback models.CancellationPolicy
	if err := tx.Where("is_default = ?", true).First(&fallback).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &fallback, nil
}
