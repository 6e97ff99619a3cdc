package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// NotificationController serves the current user's notifications
type NotificationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewNotificationController creates a new notification controller
func NewNotificationController(ctx *gin.Context, container *container.ServiceContainer) *NotificationController {
	return &NotificationController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleNotificationFunc returns a gin handler dispatching to the notification controller
func HandleNotificationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewNotificationController(ctx, container)

		switch method {
		case "getNotifications":
			controller.GetNotifications()
		case "markRead":
			controller.MarkRead()
		default:
			response.FailCode(ctx, code.ValidationError)
		}
	}
}

// GetNotifications lists the current user's notifications, newest first
// @Summary Thông báo của tôi
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Chỉ thông báo chưa đọc"
// @Param page query int false "Trang, mặc định 1"
// @Param page_size query int false "Số bản ghi mỗi trang, mặc định 10"
// @Success 200 {object} map[string]interface{}
// @Router /notifications [get]
func (c *NotificationController) GetNotifications() {
	user := middleware.CurrentUser(c.Ctx)
	if user == nil {
		response.FailCode(c.Ctx, code.Unauthorized)
		return
	}
	page, pageSize := pagination(c.Ctx)

	notificationService := c.Container.GetService("notification").(services.InterfaceNotificationService)
	notifications, total, err := notificationService.ListNotifications(
		user.ID, c.Ctx.Query("unread") == "true", page, pageSize)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, listEnvelope(notifications, total, page, pageSize))
}

// MarkRead marks one of the current user's notifications as read
// @Summary Đánh dấu đã đọc
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID thông báo"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [patch]
func (c *NotificationController) MarkRead() {
	user := middleware.CurrentUser(c.Ctx)
	if user == nil {
		response.FailCode(c.Ctx, code.Unauthorized)
		return
	}

	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID thông báo không hợp lệ")
		return
	}

	notificationService := c.Container.GetService("notification").(services.InterfaceNotificationService)
	notification, err := notificationService.MarkRead(user.ID, id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, notification)
}
