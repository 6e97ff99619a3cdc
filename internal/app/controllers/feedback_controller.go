package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// InterfaceFeedbackController defines the petition controller interface
type InterfaceFeedbackController interface {
	CreateFeedback()
	GetFeedbacks()
	GetFeedback()
	GetFeedbackStats()
	UpdateFeedbackStatus()
	RespondFeedback()
	MergeFeedbacks()
	NotifyReporters()
}

// FeedbackController handles petition endpoints
type FeedbackController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewFeedbackController creates a new feedback controller
func NewFeedbackController(ctx *gin.Context, container *container.ServiceContainer) *FeedbackController {
	return &FeedbackController{
		Ctx:       ctx,
		Container: container,
	}
}

// FeedbackRequest is the petition create body.
type FeedbackRequest struct {
	Title    string `json:"title" binding:"required" example:"Đèn đường hỏng"`
	Content  string `json:"content" binding:"required" example:"Đèn đường ngõ 35 đã hỏng hai tuần"`
	Category string `json:"category" example:"infrastructure"`
}

// FeedbackStatusRequest is the status transition body.
type FeedbackStatusRequest struct {
	Status string `json:"status" binding:"required" example:"in_progress"`
}

// FeedbackResponseRequest carries an official response.
type FeedbackResponseRequest struct {
	Unit    string `json:"unit" binding:"required" example:"UBND Phường Ngọc Khánh"`
	Content string `json:"content" binding:"required" example:"Đã thay bóng đèn ngày 15/08"`
}

// FeedbackMergeRequest lists the petitions to merge; the first ID is the
// primary.
type FeedbackMergeRequest struct {
	IDs []uint `json:"ids" binding:"required" example:"1,4,7"`
}

// FeedbackNotifyRequest carries an optional custom notification message.
type FeedbackNotifyRequest struct {
	Message string `json:"message,omitempty"`
}

// HandleFeedbackFunc returns a gin handler dispatching to the feedback controller
func HandleFeedbackFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewFeedbackController(ctx, container)

		switch method {
		case "createFeedback":
			controller.CreateFeedback()
		case "getFeedbacks":
			controller.GetFeedbacks()
		case "getFeedback":
			controller.GetFeedback()
		case "getFeedbackStats":
			controller.GetFeedbackStats()
		case "updateFeedbackStatus":
			controller.UpdateFeedbackStatus()
		case "respondFeedback":
			controller.RespondFeedback()
		case "mergeFeedbacks":
			controller.MergeFeedbacks()
		case "notifyReporters":
			controller.NotifyReporters()
		default:
			response.FailCode(ctx, code.ValidationError)
		}
	}
}

// CreateFeedback files a petition
// @Summary Gửi phản ánh
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FeedbackRequest true "Phản ánh"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /feedbacks [post]
func (c *FeedbackController) CreateFeedback() {
	var req FeedbackRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Phản ánh cần tiêu đề và nội dung")
		return
	}

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	feedback, err := feedbackService.CreateFeedback(middleware.CurrentUser(c.Ctx), req.Title, req.Content, req.Category)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Created(c.Ctx, feedback)
}

// GetFeedbacks lists petitions
// @Summary Danh sách phản ánh
// @Description Mặc định ẩn các phản ánh đã bị gộp; công dân chỉ thấy phản ánh của mình
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Param status query string false "Trạng thái"
// @Param category query string false "Phân loại"
// @Param keyword query string false "Từ khóa trong tiêu đề/nội dung"
// @Param include_merged query bool false "Hiện cả phản ánh đã gộp"
// @Param page query int false "Trang, mặc định 1"
// @Param page_size query int false "Số bản ghi mỗi trang, mặc định 10"
// @Success 200 {object} map[string]interface{}
// @Router /feedbacks [get]
func (c *FeedbackController) GetFeedbacks() {
	user := middleware.CurrentUser(c.Ctx)
	page, pageSize := pagination(c.Ctx)

	filter := services.FeedbackFilter{
		Status:        c.Ctx.Query("status"),
		Category:      c.Ctx.Query("category"),
		Keyword:       c.Ctx.Query("keyword"),
		IncludeMerged: c.Ctx.Query("include_merged") == "true",
		Page:          page,
		PageSize:      pageSize,
	}
	if user != nil && user.Role == models.RoleCitizen {
		filter.ReporterID = user.ID
	}

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	feedbacks, total, err := feedbackService.ListFeedbacks(filter)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, listEnvelope(feedbacks, total, page, pageSize))
}

// GetFeedback returns one petition with reporters; citizens only see
// petitions they reported
// @Summary Chi tiết phản ánh
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID phản ánh"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /feedback/{id} [get]
func (c *FeedbackController) GetFeedback() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID phản ánh không hợp lệ")
		return
	}

	user := middleware.CurrentUser(c.Ctx)
	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	feedback, err := feedbackService.GetFeedbackForActor(user, id)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, feedback)
}

// GetFeedbackStats returns per-status counts
// @Summary Thống kê phản ánh
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Param from query string false "Từ ngày (YYYY-MM-DD)"
// @Param to query string false "Đến ngày (YYYY-MM-DD)"
// @Param include_merged query bool false "Tính cả phản ánh đã gộp"
// @Success 200 {object} map[string]interface{}
// @Router /feedbacks/stats [get]
func (c *FeedbackController) GetFeedbackStats() {
	var from, to *time.Time
	if raw := c.Ctx.Query("from"); raw != "" {
		parsed, err := services.ParseDate(raw)
		if err != nil {
			response.FailMessage(c.Ctx, code.ValidationError, "Từ ngày phải có dạng YYYY-MM-DD")
			return
		}
		from = &parsed
	}
	if raw := c.Ctx.Query("to"); raw != "" {
		parsed, err := services.ParseDate(raw)
		if err != nil {
			response.FailMessage(c.Ctx, code.ValidationError, "Đến ngày phải có dạng YYYY-MM-DD")
			return
		}
		// Include the whole end day.
		end := parsed.Add(24*time.Hour - time.Second)
		to = &end
	}

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	stats, err := feedbackService.GetStats(from, to, c.Ctx.Query("include_merged") == "true")
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, stats)
}

// UpdateFeedbackStatus moves a petition between statuses
// @Summary Cập nhật trạng thái phản ánh
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID phản ánh"
// @Param body body FeedbackStatusRequest true "Trạng thái mới"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /feedback/{id}/status [patch]
func (c *FeedbackController) UpdateFeedbackStatus() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID phản ánh không hợp lệ")
		return
	}

	var body FeedbackStatusRequest
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Thiếu trạng thái mới")
		return
	}

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	feedback, err := feedbackService.UpdateStatus(middleware.CurrentUser(c.Ctx), id, body.Status)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, feedback)
}

// RespondFeedback records an official response and resolves the petition
// @Summary Phản hồi phản ánh
// @Description Ghi phản hồi chính thức, chuyển phản ánh và mọi phản ánh đã gộp vào nó sang đã giải quyết
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID phản ánh"
// @Param body body FeedbackResponseRequest true "Phản hồi"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /feedback/{id}/response [patch]
func (c *FeedbackController) RespondFeedback() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID phản ánh không hợp lệ")
		return
	}

	var body FeedbackResponseRequest
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Phản hồi cần đơn vị trả lời và nội dung")
		return
	}

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	feedback, err := feedbackService.RespondFeedback(middleware.CurrentUser(c.Ctx), id, body.Unit, body.Content)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, feedback)
}

// MergeFeedbacks merges duplicate petitions into the first listed one
// @Summary Gộp phản ánh trùng lặp
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FeedbackMergeRequest true "Danh sách ID, phần tử đầu là phản ánh chính"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /feedback/merge [post]
func (c *FeedbackController) MergeFeedbacks() {
	var body FeedbackMergeRequest
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Thiếu danh sách phản ánh cần gộp")
		return
	}

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	primary, err := feedbackService.MergeFeedbacks(middleware.CurrentUser(c.Ctx), body.IDs)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, primary)
}

// NotifyReporters notifies every reporter of a petition
// @Summary Thông báo người phản ánh
// @Description Tạo một thông báo chưa đọc cho từng người đã phản ánh
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID phản ánh"
// @Param body body FeedbackNotifyRequest false "Nội dung tùy chọn"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /feedback/{id}/notify [post]
func (c *FeedbackController) NotifyReporters() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		response.FailMessage(c.Ctx, code.ValidationError, "ID phản ánh không hợp lệ")
		return
	}

	var body FeedbackNotifyRequest
	_ = c.Ctx.ShouldBindJSON(&body)

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	notified, err := feedbackService.NotifyReporters(middleware.CurrentUser(c.Ctx), id, body.Message)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{"notified": notified})
}
