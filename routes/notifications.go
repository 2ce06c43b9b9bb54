package routes

import (
	"github.com/kataras/iris/v12"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/storage"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

// GetMyNotifications lists the caller's notifications, newest first.
func GetMyNotifications(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	unreadOnly := ctx.URLParamBoolDefault("unread", false)

	q := storage.DB.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.JSON(notifications)
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}

	var notification models.Notification
	exists := storage.DB.Where("id = ? AND user_id = ?", id, userID).Find(&notification)
	if exists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	notification.IsRead = true
	if err := storage.DB.Save(&notification).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.JSON(notification)
}

// MarkAllNotificationsRead marks every unread notification of the
// caller as read.
func MarkAllNotificationsRead(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	if err := storage.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}
