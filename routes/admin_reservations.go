package routes

import (
	"net/http"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/storage"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

// GET /admin/reservations
func AdminListReservations(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	unitID := ctx.URLParamDefault("unit_id", "")
	hostID := ctx.URLParamDefault("host_id", "")
	guestID := ctx.URLParamDefault("guest_id", "")
	dateFrom := ctx.URLParamDefault("date_from", "")
	dateTo := ctx.URLParamDefault("date_to", "")

	q := storage.DB.Model(&models.Reservation{})
	if status != "" {
		q = q.Where("reservations.status = ?", status)
	}
	if unitID != "" {
		q = q.Where("unit_id = ?", unitID)
	}
	if hostID != "" {
		q = q.Joins("JOIN units ON units.id = reservations.unit_id").Where("units.host_id = ?", hostID)
	}
	if guestID != "" {
		q = q.Where("guest_id = ?", guestID)
	}
	if dateFrom != "" {
		if t, err := time.Parse("2006-01-02", dateFrom); err == nil {
			q = q.Where("check_in >= ?", t)
		}
	}
	if dateTo != "" {
		if t, err := time.Parse("2006-01-02", dateTo); err == nil {
			q = q.Where("check_out <= ?", t)
		}
	}

	var total int64
	q.Count(&total)

	var items []models.Reservation
	if err := q.Preload("Unit").Preload("Rooms").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// GET /admin/reservations/:id
func AdminGetReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var res models.Reservation
	if err := storage.DB.Preload("Unit").Preload("Rooms").First(&res, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "reservation not found")
		return
	}

	var events []models.PaymentEvent
	storage.DB.Where("reservation_id = ?", res.ID).Order("created_at ASC").Find(&events)

	ctx.JSON(iris.Map{"data": res, "meta": iris.Map{"payments": events}, "links": iris.Map{}})
}

// POST /admin/reservations/:id/cancel { reason }
//
// Goes through the engine so the refund, coupon return, and ledger
// release happen exactly as they would for a guest cancellation.
func AdminCancelReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Reason == "" {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "reason required")
		return
	}

	before, err := engine.GetByID(ctx.Request().Context(), id)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	adminID := ctx.Values().Get("userID").(uint)
	result, err := engine.Cancel(ctx.Request().Context(), id, body.Reason, adminID)
	if err != nil {
		handleEngineError(ctx, err)
		return
	}

	utils.Audit(ctx, "reservation.cancel", "reservation", result.Reservation.ID, before, result.Reservation)
	ctx.JSON(iris.Map{"data": result})
}

// POST /admin/reservations/:id/payments { amount, method, reference }
func AdminApplyPayment(ctx iris.Context) {
	ApplyReservationPayment(ctx)
}

// GET /admin/audit-logs
func AdminListAuditLogs(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.AuditLog{})
	if action := ctx.URLParamDefault("action", ""); action != "" {
		q = q.Where("action = ?", action)
	}
	if resourceType := ctx.URLParamDefault("resource_type", ""); resourceType != "" {
		q = q.Where("resource_type = ?", resourceType)
	}

	var total int64
	q.Count(&total)

	var items []models.AuditLog
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}
