package controllers

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/storage"
)

// InterfaceCitizenController defines the citizen self-service controller interface
type InterfaceCitizenController interface {
	GetMyHousehold()
	LookupHouseholds()
	CreateTempResidencyRequest()
}

// CitizenController handles citizen self-service endpoints
type CitizenController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCitizenController creates a new citizen controller
func NewCitizenController(ctx *gin.Context, container *container.ServiceContainer) *CitizenController {
	return &CitizenController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleCitizenFunc returns a gin handler dispatching to the citizen controller
func HandleCitizenFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCitizenController(ctx, container)

		switch method {
		case "getMyHousehold":
			controller.GetMyHousehold()
		case "lookupHouseholds":
			controller.LookupHouseholds()
		case "createTempResidencyRequest":
			controller.CreateTempResidencyRequest()
		default:
			response.FailCode(ctx, code.ValidationError)
		}
	}
}

// GetMyHousehold returns the household of the citizen's linked person
// @Summary Hộ khẩu của tôi
// @Description Trả về hộ khẩu gắn với nhân khẩu đã liên kết của công dân
// @Tags Citizen
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /citizen/household [get]
func (c *CitizenController) GetMyHousehold() {
	user := middleware.CurrentUser(c.Ctx)
	if user == nil {
		response.FailCode(c.Ctx, code.Unauthorized)
		return
	}

	identityService := c.Container.GetService("identity").(services.InterfaceIdentityService)
	link, err := identityService.ResolvePerson(user)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}
	if !link.Linked {
		response.FailMessage(c.Ctx, code.NotLinked, link.Guidance)
		return
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	household, err := householdService.GetHouseholdByID(link.Person.HouseholdID)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"household":  household,
		"personInfo": link.Person,
	})
}

// LookupHouseholds is a public household code/address lookup
// @Summary Tra cứu hộ khẩu
// @Description Tra cứu hộ khẩu theo số hộ khẩu hoặc địa chỉ
// @Tags Citizen
// @Produce json
// @Param keyword query string false "Số hộ khẩu hoặc địa chỉ"
// @Param page query int false "Trang, mặc định 1"
// @Param page_size query int false "Số bản ghi mỗi trang, mặc định 10"
// @Success 200 {object} map[string]interface{}
// @Router /citizen/households [get]
func (c *CitizenController) LookupHouseholds() {
	page, pageSize := pagination(c.Ctx)

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	households, total, err := householdService.GetAllHouseholds(page, pageSize, c.Ctx.Query("keyword"))
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, listEnvelope(households, total, page, pageSize))
}

// CreateTempResidencyRequest files a temp residence/absence request with
// attachments
// @Summary Gửi yêu cầu tạm trú / tạm vắng
// @Description Multipart: các trường của yêu cầu cùng tối đa 5 tệp đính kèm (ảnh hoặc tài liệu, mỗi tệp tối đa 10MB)
// @Tags Citizen
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param type formData string true "temp_residence hoặc temp_absence"
// @Param householdId formData int true "ID hộ khẩu"
// @Param personId formData int false "ID nhân khẩu (tạm vắng)"
// @Param tuNgay formData string true "Từ ngày (YYYY-MM-DD)"
// @Param denNgay formData string false "Đến ngày (YYYY-MM-DD)"
// @Param diaChi formData string true "Địa chỉ tạm trú / nơi đến"
// @Param lyDo formData string true "Lý do"
// @Param nhanKhauMoi formData string false "Nhân khẩu mới (JSON)"
// @Param files formData file false "Tệp đính kèm"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /citizen/tam-tru-vang [post]
func (c *CitizenController) CreateTempResidencyRequest() {
	user := middleware.CurrentUser(c.Ctx)
	if user == nil {
		response.FailCode(c.Ctx, code.Unauthorized)
		return
	}

	cfg := c.Container.GetService("config").(*config.Config)

	requestType := c.Ctx.PostForm("type")
	if requestType != models.RequestTypeTempResidence && requestType != models.RequestTypeTempAbsence {
		response.FailMessage(c.Ctx, code.ValidationError, "Loại yêu cầu phải là temp_residence hoặc temp_absence")
		return
	}

	householdID, err := strconv.Atoi(c.Ctx.PostForm("householdId"))
	if err != nil || householdID <= 0 {
		response.FailMessage(c.Ctx, code.ValidationError, "ID hộ khẩu không hợp lệ")
		return
	}

	var personID *uint
	if raw := c.Ctx.PostForm("personId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			response.FailMessage(c.Ctx, code.ValidationError, "ID nhân khẩu không hợp lệ")
			return
		}
		value := uint(id)
		personID = &value
	}

	payload := models.TempResidencyPayload{
		FromDate: c.Ctx.PostForm("tuNgay"),
		ToDate:   c.Ctx.PostForm("denNgay"),
		Address:  c.Ctx.PostForm("diaChi"),
		Reason:   c.Ctx.PostForm("lyDo"),
	}
	if raw := c.Ctx.PostForm("nhanKhauMoi"); raw != "" {
		var newPerson models.NewPersonPayload
		if err := json.Unmarshal([]byte(raw), &newPerson); err != nil {
			response.FailMessage(c.Ctx, code.ValidationError, "Thông tin nhân khẩu mới không hợp lệ")
			return
		}
		payload.NewPerson = &newPerson
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		response.FailCode(c.Ctx, code.InternalError)
		return
	}

	form, err := c.Ctx.MultipartForm()
	if err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Dữ liệu multipart không hợp lệ")
		return
	}
	files := form.File["files"]
	if len(files) > cfg.MaxUploadFiles {
		response.FailMessage(c.Ctx, code.ValidationError,
			fmt.Sprintf("Tối đa %d tệp đính kèm", cfg.MaxUploadFiles))
		return
	}
	for _, file := range files {
		if file.Size > cfg.MaxUploadSize {
			response.FailMessage(c.Ctx, code.ValidationError,
				fmt.Sprintf("Tệp %s vượt quá dung lượng cho phép", file.Filename))
			return
		}
		if !storage.IsAllowedContentType(file.Header.Get("Content-Type")) {
			response.FailMessage(c.Ctx, code.ValidationError,
				fmt.Sprintf("Tệp %s không thuộc định dạng cho phép", file.Filename))
			return
		}
	}

	store := c.Container.GetService("upload_store").(*storage.UploadStore)
	var attachments []models.Attachment
	var storedNames []string
	for _, file := range files {
		storedName, err := store.Save(file)
		if err != nil {
			store.Remove(storedNames...)
			response.FailCode(c.Ctx, code.InternalError)
			return
		}
		storedNames = append(storedNames, storedName)
		attachments = append(attachments, models.Attachment{
			FileName:    file.Filename,
			StoredName:  storedName,
			Size:        file.Size,
			ContentType: file.Header.Get("Content-Type"),
		})
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	request, err := requestService.CreateRequestWithAttachments(user, services.CreateRequestInput{
		Type:        requestType,
		HouseholdID: uint(householdID),
		PersonID:    personID,
		Payload:     encoded,
	}, attachments)
	if err != nil {
		// The DB transaction failed, so the stored files are orphans.
		store.Remove(storedNames...)
		response.Fail(c.Ctx, err)
		return
	}

	response.Created(c.Ctx, request)
}
