package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// InterfaceResidencyController defines the temporary residency controller interface
type InterfaceResidencyController interface {
	GetResidencies()
	GetResidency()
	ApproveResidency()
	UpdateResidencyStatus()
}

// ResidencyController handles tạm trú / tạm vắng record endpoints
type ResidencyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewResidencyController creates a new residency controller
func NewResidencyController(ctx *gin.Context, container *container.ServiceContainer) *ResidencyController {
	return &ResidencyController{
		Ctx:       ctx,
		Container: container,
	}
}

// ResidencyStatusRequest is the status transition body.
type ResidencyStatusRequest struct {
	Status string `json:"status" binding:"required" example:"completed"`
}

// HandleResidencyFunc returns a gin handler dispatching to the residency controller
func HandleResidencyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewResidencyController(ctx, container)

		switch method {
		case "getResidencies":
			controller.GetResidencies()
		case "getResidency":
			controller.GetResidency()
		case "approveResidency":
			controller.ApproveResidency()
		case "updateResidencyStatus":
			controller.UpdateResidencyStatus()
		default:
			response.FailCode(ctx, code.ValidationError)
		}
	}
}

// GetResidencies lists tạm trú / tạm vắng records
// @Summary Danh sách tạm trú / tạm vắng
// @Tags TamTruVang
// @Produce json
// @Security BearerAuth
// @Param type query string false "temporary_residence hoặc temporary_absence"
// @Param status query string false "Trạng thái hồ sơ"
// @Param person_id query int false "ID nhân khẩu"
// @Param active query bool false "Chỉ hồ sơ đang hiệu lực hôm nay"
// @Param page query int false "Trang, mặc định 1"
// @Param page_size query int false "Số bản ghi mỗi trang, mặc định 10"
// @Success 200 {object} map[string]interface{}
// @Router /tam-tru-vang [get]
func (c *ResidencyController) GetResidencies() {
	page, pageSize := pagination(c.Ctx)

	filter := services.ResidencyFilter{
		Type:       c.Ctx.Query("type"),
		Status:     c.Ctx.Query("status"),
		ActiveOnly: c.Ctx.Query("active") == "true",
		Page:       page,
		PageSize:   pageSize,
	}
	if raw := c.Ctx.Query("person_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			filter.PersonID = uint(id)
		}
	}

	residencyService := c.Container.GetService("residency").(services.InterfaceResidencyService)
	residencies, total, err := residencyService.ListResidencies(filter)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, listEnvelope(residencies, total, page, pageSize))
}

// GetResidency returns one record with person and attachments
// @Summary Chi tiết hồ sơ tạm trú / tạm vắng
// @Tags TamTruVang
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID hồ sơ"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /tam-tru-vang/{id} [get]
func (c *ResidencyController) GetResidency() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID hồ sơ không hợp lệ")
		return
	}

	residencyService := c.Container.GetService("residency").(services.InterfaceResidencyService)
	residency, err := residencyService.GetResidencyByID(id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, residency)
}

// ApproveResidency approves a pending-review record
// @Summary Duyệt hồ sơ tạm trú / tạm vắng
// @Description Chuyển hồ sơ sang approved và cập nhật trạng thái cư trú của nhân khẩu
// @Tags TamTruVang
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID hồ sơ"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /tam-tru-vang/{id}/approve [patch]
func (c *ResidencyController) ApproveResidency() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID hồ sơ không hợp lệ")
		return
	}

	residencyService := c.Container.GetService("residency").(services.InterfaceResidencyService)
	residency, err := residencyService.ApproveResidency(middleware.CurrentUser(c.Ctx), id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, residency)
}

// UpdateResidencyStatus moves a record along its status transitions
// @Summary Cập nhật trạng thái hồ sơ
// @Description Chuyển trạng thái theo luồng pending_review → approved → in_progress → completed
// @Tags TamTruVang
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID hồ sơ"
// @Param body body ResidencyStatusRequest true "Trạng thái mới"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /tam-tru-vang/{id}/status [patch]
func (c *ResidencyController) UpdateResidencyStatus() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID hồ sơ không hợp lệ")
		return
	}

	var body ResidencyStatusRequest
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Thiếu trạng thái mới")
		return
	}

	residencyService := c.Container.GetService("residency").(services.InterfaceResidencyService)
	residency, err := residencyService.UpdateResidencyStatus(middleware.CurrentUser(c.Ctx), id, body.Status)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, residency)
}
