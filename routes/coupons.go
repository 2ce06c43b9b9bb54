package routes

import (
	"time"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/storage"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

type CouponInput struct {
	Code          string    `json:"code" validate:"required,max=32"`
	Name          string    `json:"name"`
	DiscountType  string    `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue string    `json:"discountValue" validate:"required"`
	MaxUsage      int       `json:"maxUsage" validate:"min=0"`
	ValidFrom     time.Time `json:"validFrom"`
	ValidUntil    time.Time `json:"validUntil"`
	IsActive      *bool     `json:"isActive"`
}

func ListCoupons(ctx iris.Context) {
	var coupons []models.Coupon
	if err := storage.DB.Order("created_at DESC").Find(&coupons).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}
	ctx.JSON(coupons)
}

func CreateCoupon(ctx iris.Context) {
	var input CouponInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	value, err := decimal.NewFromString(input.DiscountValue)
	if err != nil || value.Sign() <= 0 {
		utils.CreateError(iris.StatusBadRequest, "invalid_coupon",
			"discountValue must be a positive decimal string", ctx)
		return
	}

	coupon := models.Coupon{
		Code:          input.Code,
		Name:          input.Name,
		DiscountType:  input.DiscountType,
		DiscountValue: value,
		MaxUsage:      input.MaxUsage,
		ValidFrom:     input.ValidFrom,
		ValidUntil:    input.ValidUntil,
		IsActive:      input.IsActive,
	}

	if err := storage.DB.Create(&coupon).Error; err != nil {
		utils.CreateError(iris.StatusConflict, "invalid_coupon",
			"coupon code already exists", ctx)
		return
	}

	utils.Audit(ctx, "coupon.create", "coupon", coupon.ID, nil, coupon)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(coupon)
}

func UpdateCoupon(ctx iris.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	var coupon models.Coupon
	couponExists := storage.DB.Find(&coupon, id)
	if couponExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	before := coupon

	var input CouponInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	value, err := decimal.NewFromString(input.DiscountValue)
	if err != nil || value.Sign() <= 0 {
		utils.CreateError(iris.StatusBadRequest, "invalid_coupon",
			"discountValue must be a positive decimal string", ctx)
		return
	}

	coupon.Code = input.Code
	coupon.Name = input.Name
	coupon.DiscountType = input.DiscountType
	coupon.DiscountValue = value
	coupon.MaxUsage = input.MaxUsage
	coupon.ValidFrom = input.ValidFrom
	coupon.ValidUntil = input.ValidUntil
	coupon.IsActive = input.IsActive

	if err := storage.DB.Save(&coupon).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "coupon.update", "coupon", coupon.ID, before, coupon)
	ctx.JSON(coupon)
}

// GetCouponRedemptions lists the reservations a coupon was applied to.
func GetCouponRedemptions(ctx iris.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	var redemptions []models.CouponRedemption
	if err := storage.DB.Where("coupon_id = ?", id).Order("created_at DESC").Find(&redemptions).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.JSON(redemptions)
}
