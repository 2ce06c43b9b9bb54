package routes

import (
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/storage"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

type PolicyInput struct {
	Name                    string `json:"name" validate:"required,max=128"`
	FullRefundDays          int    `json:"fullRefundDays" validate:"min=0"`
	PartialRefundDays       int    `json:"partialRefundDays" validate:"min=0"`
	PartialRefundPercentage int    `json:"partialRefundPercentage" validate:"min=0,max=100"`
	IsDefault               bool   `json:"isDefault"`
}

func ListCancellationPolicies(ctx iris.Context) {
	var policies []models.CancellationPolicy
	if err := storage.DB.Order("id ASC").Find(&policies).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}
	ctx.JSON(policies)
}

func CreateCancellationPolicy(ctx iris.Context) {
	var input PolicyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.PartialRefundDays > input.FullRefundDays {
		utils.CreateError(iris.StatusBadRequest, "invalid_policy",
			"partialRefundDays cannot exceed fullRefundDays", ctx)
		return
	}

	policy := models.CancellationPolicy{
		Name:                    input.Name,
		FullRefundDays:          input.FullRefundDays,
		PartialRefundDays:       input.PartialRefundDays,
		PartialRefundPercentage: input.PartialRefundPercentage,
		IsDefault:               input.IsDefault,
	}

	// Keeping a single default keeps policy resolution deterministic.
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if input.IsDefault {
			if err := tx.Model(&models.CancellationPolicy{}).
				Where("is_default = ?", true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&policy).Error
	})
	if err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "policy.create", "cancellation_policy", policy.ID, nil, policy)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(policy)
}

func UpdateCancellationPolicy(ctx iris.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	var policy models.CancellationPolicy
	policyExists := storage.DB.Find(&policy, id)
	if policyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	before := policy

	var input PolicyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.PartialRefundDays > input.FullRefundDays {
		utils.CreateError(iris.StatusBadRequest, "invalid_policy",
			"partialRefundDays cannot exceed fullRefundDays", ctx)
		return
	}

	policy.Name = input.Name
	policy.FullRefundDays = input.FullRefundDays
	policy.PartialRefundDays = input.PartialRefundDays
	policy.PartialRefundPercentage = input.PartialRefundPercentage
	policy.IsDefault = input.IsDefault

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if input.IsDefault {
			if err := tx.Model(&models.CancellationPolicy{}).
				Where("is_default = ? AND id <> ?", true, policy.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(&policy).Error
	})
	if err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "policy.update", "cancellation_policy", policy.ID, before, policy)
	ctx.JSON(policy)
}

func DeleteCancellationPolicy(ctx iris.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	var policy models.CancellationPolicy
	policyExists := storage.DB.Find(&policy, id)
	if policyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var inUse int64
	storage.DB.Model(&models.Unit{}).Where("cancellation_policy_id = ?", id).Count(&inUse)
	if inUse > 0 {
		utils.CreateError(iris.StatusConflict, "invalid_policy",
			"policy is assigned to units and cannot be deleted", ctx)
		return
	}

	if err := storage.DB.Delete(&models.CancellationPolicy{}, id).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "policy.delete", "cancellation_policy", policy.ID, policy, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
