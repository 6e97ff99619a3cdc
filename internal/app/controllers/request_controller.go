package controllers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// InterfaceRequestController defines the change request controller interface
type InterfaceRequestController interface {
	CreateRequest()
	GetRequests()
	GetRequest()
	PrecheckRequest()
	ApproveRequest()
	RejectRequest()
}

// RequestController handles the change request lifecycle endpoints
type RequestController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewRequestController creates a new request controller
func NewRequestController(ctx *gin.Context, container *container.ServiceContainer) *RequestController {
	return &RequestController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateRequestBody is the JSON create body. The payload shape depends on
// the request type.
type CreateRequestBody struct {
	Type        string          `json:"type" binding:"required" example:"add_person"`
	HouseholdID uint            `json:"householdId" binding:"required" example:"1"`
	PersonID    *uint           `json:"personId,omitempty"`
	Payload     json.RawMessage `json:"payload" binding:"required"`
}

// RejectRequestBody carries the mandatory rejection reason.
type RejectRequestBody struct {
	Reason string `json:"reason" binding:"required" example:"Thiếu giấy tờ chứng minh chỗ ở"`
}

// HandleRequestFunc returns a gin handler dispatching to the request controller
func HandleRequestFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRequestController(ctx, container)

		switch method {
		case "createRequest":
			controller.CreateRequest()
		case "getRequests":
			controller.GetRequests()
		case "getRequest":
			controller.GetRequest()
		case "precheckRequest":
			controller.PrecheckRequest()
		case "approveRequest":
			controller.ApproveRequest()
		case "rejectRequest":
			controller.RejectRequest()
		default:
			response.FailCode(ctx, code.ValidationError)
		}
	}
}

// CreateRequest files a change request
// @Summary Gửi yêu cầu thay đổi
// @Description Công dân là chủ hộ gửi yêu cầu: tạm trú, tạm vắng, thêm/xóa nhân khẩu, tách hộ
// @Tags Request
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequestBody true "Yêu cầu"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /requests [post]
func (c *RequestController) CreateRequest() {
	var body CreateRequestBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Thiếu loại yêu cầu, hộ khẩu hoặc nội dung")
		return
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	request, err := requestService.CreateRequest(middleware.CurrentUser(c.Ctx), services.CreateRequestInput{
		Type:        body.Type,
		HouseholdID: body.HouseholdID,
		PersonID:    body.PersonID,
		Payload:     body.Payload,
	})
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Created(c.Ctx, request)
}

// GetRequests lists change requests
// @Summary Danh sách yêu cầu
// @Description Công dân chỉ thấy yêu cầu của mình; cán bộ thấy theo bộ lọc
// @Tags Request
// @Produce json
// @Security BearerAuth
// @Param type query string false "Loại yêu cầu"
// @Param status query string false "Trạng thái"
// @Param keyword query string false "Từ khóa trong nội dung"
// @Param page query int false "Trang, mặc định 1"
// @Param page_size query int false "Số bản ghi mỗi trang, mặc định 10"
// @Success 200 {object} map[string]interface{}
// @Router /requests [get]
func (c *RequestController) GetRequests() {
	user := middleware.CurrentUser(c.Ctx)
	page, pageSize := pagination(c.Ctx)

	filter := services.RequestFilter{
		Type:     c.Ctx.Query("type"),
		Status:   c.Ctx.Query("status"),
		Keyword:  c.Ctx.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	}
	if user != nil && user.Role == models.RoleCitizen {
		filter.RequesterID = user.ID
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	requests, total, err := requestService.ListRequests(filter)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, listEnvelope(requests, total, page, pageSize))
}

// GetRequest returns one change request
// @Summary Chi tiết yêu cầu
// @Tags Request
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID yêu cầu"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /requests/{id} [get]
func (c *RequestController) GetRequest() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID yêu cầu không hợp lệ")
		return
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	request, err := requestService.GetRequestByID(middleware.CurrentUser(c.Ctx), id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, request)
}

// PrecheckRequest returns the consistency warnings of a pending request
// @Summary Kiểm tra trước khi duyệt
// @Description Trả về các cảnh báo (CCCD trùng trong hộ, chủ hộ thứ hai); còn cảnh báo thì không duyệt được
// @Tags Request
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID yêu cầu"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /requests/{id}/precheck [get]
func (c *RequestController) PrecheckRequest() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID yêu cầu không hợp lệ")
		return
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	warnings, err := requestService.Precheck(id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"warnings":   warnings,
		"approvable": len(warnings) == 0,
	})
}

// ApproveRequest approves a pending request and applies its change
// @Summary Phê duyệt yêu cầu
// @Tags Request
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID yêu cầu"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /requests/{id}/approve [patch]
func (c *RequestController) ApproveRequest() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID yêu cầu không hợp lệ")
		return
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	request, err := requestService.ApproveRequest(middleware.CurrentUser(c.Ctx), id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, request)
}

// RejectRequest rejects a pending request with a reason
// @Summary Từ chối yêu cầu
// @Tags Request
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID yêu cầu"
// @Param body body RejectRequestBody true "Lý do từ chối"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /requests/{id}/reject [patch]
func (c *RequestController) RejectRequest() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID yêu cầu không hợp lệ")
		return
	}

	var body RejectRequestBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Thiếu lý do từ chối")
		return
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	request, err := requestService.RejectRequest(middleware.CurrentUser(c.Ctx), id, body.Reason)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, request)
}
