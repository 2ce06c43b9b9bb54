package routes

import (
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/services"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

type CreateReservationInput struct {
	UnitID     uint   `json:"unitID" validate:"required"`
	RoomIDs    []uint `json:"roomIDs"`
	CheckIn    string `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"checkOut" validate:"required,datetime=2006-01-02"`
	NumGuests  int    `json:"numGuests" validate:"required,min=1"`
	CouponCode string `json:"couponCode"`
}

type ModifyDatesInput struct {
	CheckIn  string `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"checkOut" validate:"required,datetime=2006-01-02"`
}

type PaymentInput struct {
	Amount    string `json:"amount" validate:"required"`
	Method    string `json:"method" validate:"required"`
	Reference string `json:"reference"`
}

type CancelReservationInput struct {
	Reason string `json:"reason"`
}

type QuoteInput struct {
	UnitID   uint   `json:"unitID" validate:"required"`
	RoomIDs  []uint `json:"roomIDs"`
	CheckIn  string `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"checkOut" validate:"required,datetime=2006-01-02"`
}

func mustDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func CreateReservation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reservation, err := engine.Create(ctx.Request().Context(), services.CreateReservationInput{
		UnitID:     input.UnitID,
		RoomIDs:    input.RoomIDs,
		GuestID:    userID,
		CheckIn:    mustDate(input.CheckIn),
		CheckOut:   mustDate(input.CheckOut),
		NumGuests:  input.NumGuests,
		CouponCode: input.CouponCode,
	})
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(reservation)
}

func GetReservation(ctx iris.Context) {
	id, ok := reservationIDParam(ctx)
	if !ok {
		return
	}

	reservation, err := engine.GetByID(ctx.Request().Context(), id)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	userID := ctx.Values().Get("userID").(uint)
	if reservation.GuestID != userID && (reservation.Unit == nil || reservation.Unit.HostID != userID) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	ctx.JSON(reservation)
}

func GetReservationByNumber(ctx iris.Context) {
	number := ctx.Params().Get("number")

	reservation, err := engine.GetByNumber(ctx.Request().Context(), number)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	userID := ctx.Values().Get("userID").(uint)
	if reservation.GuestID != userID && (reservation.Unit == nil || reservation.Unit.HostID != userID) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	ctx.JSON(reservation)
}

func GetMyReservations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	reservations, err := engine.ListByGuest(ctx.Request().Context(), userID)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(reservations)
}

func GetUnitReservations(ctx iris.Context) {
	unitID, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	reservations, err := engine.ListByUnit(ctx.Request().Context(), unitID)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(reservations)
}

func ConfirmReservation(ctx iris.Context) {
	id, ok := reservationIDParam(ctx)
	if !ok {
		return
	}
	userID := ctx.Values().Get("userID").(uint)

	reservation, err := engine.Confirm(ctx.Request().Context(), id, userID)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(reservation)
}

func CheckInReservation(ctx iris.Context) {
	id, ok := reservationIDParam(ctx)
	if !ok {
		return
	}

	reservation, err := engine.CheckIn(ctx.Request().Context(), id)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(reservation)
}

func CheckOutReservation(ctx iris.Context) {
	id, ok := reservationIDParam(ctx)
	if !ok {
		return
	}

	reservation, err := engine.CheckOut(ctx.Request().Context(), id)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(reservation)
}

func CancelReservation(ctx iris.Context) {
	id, ok := reservationIDParam(ctx)
	if !ok {
		return
	}
	userID := ctx.Values().Get("userID").(uint)

	var input CancelReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	existing, err := engine.GetByID(ctx.Request().Context(), id)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}
	if existing.GuestID != userID && (existing.Unit == nil || existing.Unit.HostID != userID) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	result, err := engine.Cancel(ctx.Request().Context(), id, input.Reason, userID)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(result)
}

func ModifyReservationDates(ctx iris.Context) {
	id, ok := reservationIDParam(ctx)
	if !ok {
		return
	}
	userID := ctx.Values().Get("userID").(uint)

	var input ModifyDatesInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	existing, err := engine.GetByID(ctx.Request().Context(), id)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}
	if existing.GuestID != userID && (existing.Unit == nil || existing.Unit.HostID != userID) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	reservation, err := engine.ModifyDates(ctx.Request().Context(), id, mustDate(input.CheckIn), mustDate(input.CheckOut))
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(reservation)
}

func ApplyReservationPayment(ctx iris.Context) {
	id, ok := reservationIDParam(ctx)
	if !ok {
		return
	}

	var input PaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "payment_failed", "amount must be a decimal string", ctx)
		return
	}

	reservation, err := engine.ApplyPayment(ctx.Request().Context(), id, amount, input.Method, input.Reference)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(reservation)
}

func QuoteReservation(ctx iris.Context) {
	var input QuoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	quote, err := engine.Quote(ctx.Request().Context(), input.UnitID, input.RoomIDs, mustDate(input.CheckIn), mustDate(input.CheckOut))
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	ctx.JSON(quote)
}

func reservationIDParam(ctx iris.Context) (uint, bool) {
	return uintParam(ctx, "id")
}

func uintParam(ctx iris.Context, name string) (uint, bool) {
	raw := ctx.Params().Get(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "not_found", "invalid "+name+" parameter", ctx)
		return 0, false
	}
	return uint(id), true
}
