package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// InterfacePersonController defines the person controller interface
type InterfacePersonController interface {
	GetPersons()
	GetPerson()
	CreatePerson()
	UpdatePerson()
	GetPersonHistory()
	LinkPersonAccount()
}

// PersonController handles nhân khẩu endpoints
type PersonController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPersonController creates a new person controller
func NewPersonController(ctx *gin.Context, container *container.ServiceContainer) *PersonController {
	return &PersonController{
		Ctx:       ctx,
		Container: container,
	}
}

// PersonRequest is the create/update body.
type PersonRequest struct {
	HouseholdID        uint   `json:"householdId" example:"1"`
	FullName           string `json:"hoTen" example:"Nguyễn Văn An"`
	DateOfBirth        string `json:"ngaySinh" example:"1990-05-20"`
	Gender             string `json:"gioiTinh" example:"male"`
	CCCD               string `json:"cccd" example:"001204012345"`
	RelationshipToHead string `json:"quanHeVoiChuHo" example:"head"`
	Status             string `json:"trangThai" example:"permanent"`
	Occupation         string `json:"ngheNghiep,omitempty"`
	PlaceOfBirth       string `json:"noiSinh,omitempty"`
	Ethnicity          string `json:"danToc,omitempty"`
}

// LinkAccountRequest links a citizen account to a person record.
type LinkAccountRequest struct {
	UserID uint `json:"userId" binding:"required" example:"3"`
}

// HandlePersonFunc returns a gin handler dispatching to the person controller
func HandlePersonFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPersonController(ctx, container)

		switch method {
		case "getPersons":
			controller.GetPersons()
		case "getPerson":
			controller.GetPerson()
		case "createPerson":
			controller.CreatePerson()
		case "updatePerson":
			controller.UpdatePerson()
		case "getPersonHistory":
			controller.GetPersonHistory()
		case "linkPersonAccount":
			controller.LinkPersonAccount()
		default:
			response.FailCode(ctx, code.ValidationError)
		}
	}
}

// GetPersons searches nhân khẩu records
// @Summary Tra cứu nhân khẩu
// @Description Tra cứu theo họ tên (chứa) hoặc số CCCD (chính xác), lọc theo hộ khẩu, trạng thái, quan hệ
// @Tags NhanKhau
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Họ tên hoặc số CCCD"
// @Param household_id query int false "ID hộ khẩu"
// @Param status query string false "Trạng thái cư trú"
// @Param relation query string false "Quan hệ với chủ hộ"
// @Param page query int false "Trang, mặc định 1"
// @Param page_size query int false "Số bản ghi mỗi trang, mặc định 10"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /nhan-khau [get]
func (c *PersonController) GetPersons() {
	page, pageSize := pagination(c.Ctx)

	filter := services.PersonFilter{
		Keyword:  c.Ctx.Query("keyword"),
		CCCD:     c.Ctx.Query("cccd"),
		Status:   c.Ctx.Query("status"),
		Relation: c.Ctx.Query("relation"),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := c.Ctx.Query("household_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			filter.HouseholdID = uint(id)
		}
	}

	personService := c.Container.GetService("person").(services.InterfacePersonService)
	persons, total, err := personService.SearchPersons(filter)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, listEnvelope(persons, total, page, pageSize))
}

// GetPerson returns one nhân khẩu
// @Summary Chi tiết nhân khẩu
// @Tags NhanKhau
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID nhân khẩu"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /nhan-khau/{id} [get]
func (c *PersonController) GetPerson() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID nhân khẩu không hợp lệ")
		return
	}

	personService := c.Container.GetService("person").(services.InterfacePersonService)
	person, err := personService.GetPersonByID(id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, person)
}

// CreatePerson registers a nhân khẩu
// @Summary Thêm nhân khẩu
// @Description Thêm nhân khẩu vào hộ khẩu; mỗi hộ chỉ có một chủ hộ
// @Tags NhanKhau
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PersonRequest true "Thông tin nhân khẩu"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /nhan-khau [post]
func (c *PersonController) CreatePerson() {
	var req PersonRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Dữ liệu nhân khẩu không hợp lệ")
		return
	}

	person := &models.Person{
		HouseholdID:        req.HouseholdID,
		FullName:           req.FullName,
		Gender:             req.Gender,
		CCCD:               req.CCCD,
		RelationshipToHead: req.RelationshipToHead,
		Status:             req.Status,
		Occupation:         req.Occupation,
		PlaceOfBirth:       req.PlaceOfBirth,
		Ethnicity:          req.Ethnicity,
	}
	if req.DateOfBirth != "" {
		dob, err := services.ParseDate(req.DateOfBirth)
		if err != nil {
			response.FailMessage(c.Ctx, code.ValidationError, "Ngày sinh phải có dạng YYYY-MM-DD")
			return
		}
		person.DateOfBirth = &dob
	}

	personService := c.Container.GetService("person").(services.InterfacePersonService)
	if err := personService.CreatePerson(middleware.CurrentUser(c.Ctx), person); err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Created(c.Ctx, person)
}

// UpdatePerson edits a nhân khẩu
// @Summary Cập nhật nhân khẩu
// @Tags NhanKhau
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID nhân khẩu"
// @Param body body PersonRequest true "Các trường cần cập nhật"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /nhan-khau/{id} [patch]
func (c *PersonController) UpdatePerson() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID nhân khẩu không hợp lệ")
		return
	}

	var req PersonRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Dữ liệu nhân khẩu không hợp lệ")
		return
	}

	updates := make(map[string]interface{})
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.DateOfBirth != "" {
		dob, err := services.ParseDate(req.DateOfBirth)
		if err != nil {
			response.FailMessage(c.Ctx, code.ValidationError, "Ngày sinh phải có dạng YYYY-MM-DD")
			return
		}
		updates["date_of_birth"] = dob
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}
	if req.CCCD != "" {
		updates["cccd"] = req.CCCD
	}
	if req.RelationshipToHead != "" {
		updates["relationship_to_head"] = req.RelationshipToHead
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Occupation != "" {
		updates["occupation"] = req.Occupation
	}
	if req.PlaceOfBirth != "" {
		updates["place_of_birth"] = req.PlaceOfBirth
	}
	if req.Ethnicity != "" {
		updates["ethnicity"] = req.Ethnicity
	}

	personService := c.Container.GetService("person").(services.InterfacePersonService)
	person, err := personService.UpdatePerson(middleware.CurrentUser(c.Ctx), id, updates)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, person)
}

// GetPersonHistory returns the audit trail of a nhân khẩu
// @Summary Lịch sử thay đổi nhân khẩu
// @Tags NhanKhau
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID nhân khẩu"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /nhan-khau/{id}/history [get]
func (c *PersonController) GetPersonHistory() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID nhân khẩu không hợp lệ")
		return
	}

	personService := c.Container.GetService("person").(services.InterfacePersonService)
	history, err := personService.GetPersonHistory(id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, history)
}

// LinkPersonAccount links a citizen account to this nhân khẩu
// @Summary Liên kết tài khoản công dân với nhân khẩu
// @Description Liên kết thủ công do cán bộ thực hiện; số CCCD hai bên phải khớp nếu cùng có
// @Tags NhanKhau
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID nhân khẩu"
// @Param body body LinkAccountRequest true "Tài khoản cần liên kết"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /nhan-khau/{id}/link [post]
func (c *PersonController) LinkPersonAccount() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID nhân khẩu không hợp lệ")
		return
	}

	var req LinkAccountRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Thiếu tài khoản cần liên kết")
		return
	}

	identityService := c.Container.GetService("identity").(services.InterfaceIdentityService)
	user, err := identityService.LinkAccount(middleware.CurrentUser(c.Ctx), req.UserID, id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, user)
}
