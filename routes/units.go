package routes

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/storage"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

type UnitInput struct {
	Name                 string `json:"name" validate:"required,max=256"`
	Description          string `json:"description"`
	City                 string `json:"city"`
	Country              string `json:"country"`
	Capacity             int    `json:"capacity" validate:"min=0"`
	BasePrice            string `json:"basePrice" validate:"required"`
	Currency             string `json:"currency"`
	CancellationPolicyID *uint  `json:"cancellationPolicyID"`
}

type RoomInput struct {
	Name      string `json:"name" validate:"required,max=256"`
	Capacity  int    `json:"capacity" validate:"min=0"`
	BasePrice string `json:"basePrice" validate:"required"`
}

func CreateUnit(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input UnitInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	basePrice, err := decimal.NewFromString(input.BasePrice)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "invalid_price", "basePrice must be a decimal string", ctx)
		return
	}

	unit := models.Unit{
		HostID:               userID,
		Name:                 input.Name,
		Description:          input.Description,
		City:                 input.City,
		Country:              input.Country,
		Capacity:             input.Capacity,
		BasePrice:            basePrice,
		Currency:             input.Currency,
		CancellationPolicyID: input.CancellationPolicyID,
	}

	if err := storage.DB.Create(&unit).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(unit)
}

func GetUnit(ctx iris.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	var unit models.Unit
	unitExists := storage.DB.Preload(clause.Associations).Find(&unit, id)
	if unitExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(unit)
}

func GetUnitsByHost(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var units []models.Unit
	unitsExist := storage.DB.Preload("Rooms").Where("host_id = ?", id).Find(&units)
	if unitsExist.Error != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", unitsExist.Error.Error(), ctx)
		return
	}

	ctx.JSON(units)
}

func UpdateUnit(ctx iris.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	unit, ok := ownedUnit(ctx, id)
	if !ok {
		return
	}

	var input UnitInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	basePrice, err := decimal.NewFromString(input.BasePrice)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "invalid_price", "basePrice must be a decimal string", ctx)
		return
	}

	unit.Name = input.Name
	unit.Description = input.Description
	unit.City = input.City
	unit.Country = input.Country
	unit.Capacity = input.Capacity
	unit.BasePrice = basePrice
	if input.Currency != "" {
		unit.Currency = input.Currency
	}
	unit.CancellationPolicyID = input.CancellationPolicyID

	if err := storage.DB.Omit(clause.Associations).Save(unit).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.JSON(unit)
}

// DeactivateUnit soft-retires a unit from new bookings. Existing
// reservations are untouched.
func DeactivateUnit(ctx iris.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	unit, ok := ownedUnit(ctx, id)
	if !ok {
		return
	}

	inactive := false
	unit.IsActive = &inactive
	if err := storage.DB.Omit(clause.Associations).Save(unit).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

func CreateRoom(ctx iris.Context) {
	unitID, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	if _, ok := ownedUnit(ctx, unitID); !ok {
		return
	}

	var input RoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	basePrice, err := decimal.NewFromString(input.BasePrice)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "invalid_price", "basePrice must be a decimal string", ctx)
		return
	}

	room := models.Room{
		UnitID:    unitID,
		Name:      input.Name,
		Capacity:  input.Capacity,
		BasePrice: basePrice,
	}

	if err := storage.DB.Create(&room).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(room)
}

func UpdateRoom(ctx iris.Context) {
	roomID, ok := uintParam(ctx, "roomID")
	if !ok {
		return
	}

	var room models.Room
	roomExists := storage.DB.Find(&room, roomID)
	if roomExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if _, ok := ownedUnit(ctx, room.UnitID); !ok {
		return
	}

	var input RoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	basePrice, err := decimal.NewFromString(input.BasePrice)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "invalid_price", "basePrice must be a decimal string", ctx)
		return
	}

	room.Name = input.Name
	room.Capacity = input.Capacity
	room.BasePrice = basePrice

	if err := storage.DB.Save(&room).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.JSON(room)
}

// DeactivateRoom retires a room from new bookings.
func DeactivateRoom(ctx iris.Context) {
	roomID, ok := uintParam(ctx, "roomID")
	if !ok {
		return
	}

	var room models.Room
	roomExists := storage.DB.Find(&room, roomID)
	if roomExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if _, ok := ownedUnit(ctx, room.UnitID); !ok {
		return
	}

	inactive := false
	room.IsActive = &inactive
	if err := storage.DB.Save(&room).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// ownedUnit loads a unit and enforces that the requester hosts it.
// Admins pass the ownership check.
func ownedUnit(ctx iris.Context, id uint) (*models.Unit, bool) {
	var unit models.Unit
	unitExists := storage.DB.Find(&unit, id)
	if unitExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil, false
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if unit.HostID != claims.ID && claims.Role != "admin" && claims.Role != "super_admin" {
		ctx.StatusCode(iris.StatusForbidden)
		return nil, false
	}
	return &unit, true
}
