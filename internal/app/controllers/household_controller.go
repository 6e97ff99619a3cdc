package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// InterfaceHouseholdController defines the household controller interface
type InterfaceHouseholdController interface {
	GetHouseholds()
	GetHousehold()
	CreateHousehold()
	UpdateHousehold()
	DeleteHousehold()
	GetHouseholdPersons()
}

// HouseholdController handles hộ khẩu endpoints
type HouseholdController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHouseholdController creates a new household controller
func NewHouseholdController(ctx *gin.Context, container *container.ServiceContainer) *HouseholdController {
	return &HouseholdController{
		Ctx:       ctx,
		Container: container,
	}
}

// HouseholdRequest is the create/update body.
type HouseholdRequest struct {
	Code     string `json:"soHoKhau" example:"HK-0123"`
	Address  string `json:"diaChi" example:"12 Ngõ 35 Kim Mã"`
	Ward     string `json:"phuong,omitempty" example:"Ngọc Khánh"`
	District string `json:"quan,omitempty" example:"Ba Đình"`
}

// HandleHouseholdFunc returns a gin handler dispatching to the household controller
func HandleHouseholdFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHouseholdController(ctx, container)

		switch method {
		case "getHouseholds":
			controller.GetHouseholds()
		case "getHousehold":
			controller.GetHousehold()
		case "createHousehold":
			controller.CreateHousehold()
		case "updateHousehold":
			controller.UpdateHousehold()
		case "deleteHousehold":
			controller.DeleteHousehold()
		case "getHouseholdPersons":
			controller.GetHouseholdPersons()
		default:
			response.FailCode(ctx, code.ValidationError)
		}
	}
}

// GetHouseholds lists hộ khẩu records
// @Summary Danh sách hộ khẩu
// @Tags HoKhau
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Số hộ khẩu hoặc địa chỉ"
// @Param page query int false "Trang, mặc định 1"
// @Param page_size query int false "Số bản ghi mỗi trang, mặc định 10"
// @Success 200 {object} map[string]interface{}
// @Router /ho-khau [get]
func (c *HouseholdController) GetHouseholds() {
	page, pageSize := pagination(c.Ctx)

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	households, total, err := householdService.GetAllHouseholds(page, pageSize, c.Ctx.Query("keyword"))
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, listEnvelope(households, total, page, pageSize))
}

// GetHousehold returns one hộ khẩu with its members
// @Summary Chi tiết hộ khẩu
// @Tags HoKhau
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID hộ khẩu"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /ho-khau/{id} [get]
func (c *HouseholdController) GetHousehold() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID hộ khẩu không hợp lệ")
		return
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	household, err := householdService.GetHouseholdByID(id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, household)
}

// CreateHousehold registers a hộ khẩu
// @Summary Tạo hộ khẩu
// @Tags HoKhau
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body HouseholdRequest true "Thông tin hộ khẩu"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /ho-khau [post]
func (c *HouseholdController) CreateHousehold() {
	var req HouseholdRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Dữ liệu hộ khẩu không hợp lệ")
		return
	}

	household := &models.Household{
		Code:     req.Code,
		Address:  req.Address,
		Ward:     req.Ward,
		District: req.District,
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	if err := householdService.CreateHousehold(middleware.CurrentUser(c.Ctx), household); err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Created(c.Ctx, household)
}

// UpdateHousehold edits a hộ khẩu
// @Summary Cập nhật hộ khẩu
// @Description Chỉ sửa được địa chỉ, phường, quận; số hộ khẩu là bất biến
// @Tags HoKhau
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID hộ khẩu"
// @Param body body HouseholdRequest true "Các trường cần cập nhật"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /ho-khau/{id} [patch]
func (c *HouseholdController) UpdateHousehold() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID hộ khẩu không hợp lệ")
		return
	}

	var req HouseholdRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Dữ liệu hộ khẩu không hợp lệ")
		return
	}

	updates := make(map[string]interface{})
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Ward != "" {
		updates["ward"] = req.Ward
	}
	if req.District != "" {
		updates["district"] = req.District
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	household, err := householdService.UpdateHousehold(middleware.CurrentUser(c.Ctx), id, updates)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, household)
}

// DeleteHousehold removes an empty hộ khẩu
// @Summary Xóa hộ khẩu
// @Description Chỉ xóa được hộ khẩu không còn nhân khẩu
// @Tags HoKhau
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID hộ khẩu"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /ho-khau/{id} [delete]
func (c *HouseholdController) DeleteHousehold() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID hộ khẩu không hợp lệ")
		return
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	if err := householdService.DeleteHousehold(middleware.CurrentUser(c.Ctx), id); err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, nil)
}

// GetHouseholdPersons lists the members of a hộ khẩu
// @Summary Nhân khẩu trong hộ
// @Tags HoKhau
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID hộ khẩu"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /ho-khau/{id}/nhan-khau [get]
func (c *HouseholdController) GetHouseholdPersons() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID hộ khẩu không hợp lệ")
		return
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	persons, err := householdService.GetHouseholdPersons(id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, persons)
}
