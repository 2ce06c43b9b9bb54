package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
)

func seedCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) *models.Coupon {
	t.Helper()
	require.NoError(t, db.Create(&coupon).Error)
	return &coupon
}

func TestCouponValidatePercentage(t *testing.T) {
	db := newTestDB(t)
	now := date(2026, time.March, 1)
	seedCoupon(t, db, models.Coupon{
		Code:          "SPRING10",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: dec("10"),
		ValidFrom:     date(2026, time.January, 1),
		ValidUntil:    date(2026, time.June, 1),
	})

	v := NewCouponValidator(NewFixedClock(now))
	result, err := v.Validate(db, "SPRING10", dec("400.00"), 1, date(2026, time.March, 10), date(2026, time.March, 13), 9)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(dec("40.00")), "got %s", result.DiscountAmount)
	assert.True(t, result.FinalAmount.Equal(dec("360.00")))
}

func TestCouponValidateFixedCappedAtBase(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, models.Coupon{
		Code:          "FLAT500",
		DiscountType:  models.DiscountFixed,
		DiscountValue: dec("500.00"),
	})

	v := NewCouponValidator(NewFixedClock(date(2026, time.March, 1)))
	result, err := v.Validate(db, "FLAT500", dec("300.00"), 1, date(2026, time.March, 10), date(2026, time.March, 13), 9)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.DiscountAmount.Equal(dec("300.00")))
	assert.True(t, result.FinalAmount.IsZero())
}

func TestCouponValidateRejections(t *testing.T) {
	db := newTestDB(t)
	now := date(2026, time.March, 1)
	inactive := false
	seedCoupon(t, db, models.Coupon{Code: "INACTIVE", DiscountType: models.DiscountFixed, DiscountValue: dec("10"), IsActive: &inactive})
	seedCoupon(t, db, models.Coupon{Code: "FUTURE", DiscountType: models.DiscountFixed, DiscountValue: dec("10"), ValidFrom: date(2026, time.April, 1)})
	seedCoupon(t, db, models.Coupon{Code: "EXPIRED", DiscountType: models.DiscountFixed, DiscountValue: dec("10"), ValidFrom: date(2025, time.January, 1), ValidUntil: date(2026, time.January, 1)})
	seedCoupon(t, db, models.Coupon{Code: "USEDUP", DiscountType: models.DiscountFixed, DiscountValue: dec("10"), MaxUsage: 2, UsageCount: 2})

	v := NewCouponValidator(NewFixedClock(now))
	for _, code := range []string{"NOSUCH", "INACTIVE", "FUTURE", "EXPIRED", "USEDUP"} {
		result, err := v.Validate(db, code, dec("100"), 1, now, now.AddDate(0, 0, 2), 9)
		require.NoError(t, err)
		assert.False(t, result.Valid, "code %s should be rejected", code)
		assert.NotEmpty(t, result.Message)
	}
}

func TestConsumeCouponEnforcesLimit(t *testing.T) {
	db := newTestDB(t)
	coupon := seedCoupon(t, db, models.Coupon{
		Code:          "LIMIT1",
		DiscountType:  models.DiscountFixed,
		DiscountValue: dec("10"),
		MaxUsage:      1,
	})

	require.NoError(t, consumeCoupon(db, coupon.ID))

	err := consumeCoupon(db, coupon.ID)
	require.Error(t, err)
	engineErr, ok := AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidCoupon, engineErr.Kind)

	// Releasing frees the slot again.
	require.NoError(t, releaseCoupon(db, coupon.ID))
	require.NoError(t, consumeCoupon(db, coupon.ID))
}

func TestReleaseCouponNeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	coupon := seedCoupon(t, db, models.Coupon{
		Code:          "ZERO",
		DiscountType:  models.DiscountFixed,
		DiscountValue: dec("10"),
	})

	require.NoError(t, releaseCoupon(db, coupon.ID))

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 0, reloaded.UsageCount)
}

func TestCouponDisabledFlagSurvivesInsert(t *testing.T) {
	db := newTestDB(t)
	inactive := false
	coupon := seedCoupon(t, db, models.Coupon{
		Code:          "PAUSED",
		DiscountType:  models.DiscountFixed,
		DiscountValue: dec("10"),
		IsActive:      &inactive,
	})

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	require.NotNil(t, reloaded.IsActive)
	assert.False(t, *reloaded.IsActive, "disabled flag must round-trip through the insert")

	v := NewCouponValidator(NewFixedClock(date(2026, time.March, 1)))
	result, err := v.Validate(db, "PAUSED", dec("100"), 1, date(2026, time.March, 10), date(2026, time.March, 12), 9)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "coupon is not active", result.Message)
}
