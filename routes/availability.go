package routes

import (
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/services"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

var ledger services.AvailabilityLedger

type OverrideInput struct {
	ResourceType string `json:"resourceType" validate:"required,oneof=unit room"`
	ResourceID   uint   `json:"resourceID" validate:"required"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Blocked      bool   `json:"blocked"`
	NightlyPrice string `json:"nightlyPrice"`
	Notes        string `json:"notes"`
}

// GetResourceCalendar returns the ledger entries touching a date range
// for one unit or room. Reservation-owned blocks and administrative
// overrides both appear, so a host sees exactly why a night is closed.
func GetResourceCalendar(ctx iris.Context) {
	resourceType := ctx.Params().Get("resourceType")
	if resourceType != models.ResourceUnit && resourceType != models.ResourceRoom {
		utils.CreateError(iris.StatusBadRequest, "not_found", "resourceType must be unit or room", ctx)
		return
	}
	resourceID, ok := uintParam(ctx, "id")
	if !ok {
		return
	}
	start, ok := parseDateParam(ctx, "startDate")
	if !ok {
		return
	}
	end, ok := parseDateParam(ctx, "endDate")
	if !ok {
		return
	}

	blocks, err := ledger.CalendarFor(engine.DB(), services.ResourceRef{Type: resourceType, ID: resourceID}, start, end)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"data": blocks})
}

// SetAvailabilityOverride blocks or re-prices a date range on a
// resource the caller hosts. Used for maintenance closures and
// seasonal pricing.
func SetAvailabilityOverride(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input OverrideInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	unitID, err := owningUnitID(engine.DB(), input.ResourceType, input.ResourceID)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	var unit models.Unit
	if err := engine.DB().First(&unit, unitID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if unit.HostID != userID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var price *decimal.Decimal
	if input.NightlyPrice != "" {
		parsed, err := decimal.NewFromString(input.NightlyPrice)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "invalid_dates", "nightlyPrice must be a decimal string", ctx)
			return
		}
		price = &parsed
	}

	var block *models.AvailabilityBlock
	txErr := engine.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		block, err = ledger.SetOverride(tx,
			services.ResourceRef{Type: input.ResourceType, ID: input.ResourceID},
			mustDate(input.StartDate), mustDate(input.EndDate),
			input.Blocked, price, input.Notes)
		return err
	})
	if txErr != nil {
		handleEngineError(ctx, txErr)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(block)
}

// DeleteAvailabilityOverride removes an administrative block. Blocks
// owned by a reservation cannot be removed this way.
func DeleteAvailabilityOverride(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	blockID, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	var block models.AvailabilityBlock
	if err := engine.DB().First(&block, blockID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if block.ReservationID != nil {
		utils.CreateError(iris.StatusConflict, "invalid_status", "block belongs to a reservation", ctx)
		return
	}

	unitID, err := owningUnitID(engine.DB(), block.ResourceType, block.ResourceID)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}
	var unit models.Unit
	if err := engine.DB().First(&unit, unitID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if unit.HostID != userID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	if err := engine.DB().Delete(&models.AvailabilityBlock{}, blockID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

// owningUnitID resolves a resource reference to the unit that owns it.
func owningUnitID(db *gorm.DB, resourceType string, resourceID uint) (uint, error) {
	if resourceType == models.ResourceUnit {
		return resourceID, nil
	}
	var room models.Room
	if err := db.First(&room, resourceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, services.ErrNotFound("room %d not found", resourceID)
		}
		return 0, err
	}
	return room.UnitID, nil
}
