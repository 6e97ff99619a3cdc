package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// DashboardController serves the staff dashboard aggregate
type DashboardController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(ctx *gin.Context, container *container.ServiceContainer) *DashboardController {
	return &DashboardController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDashboardFunc returns a gin handler dispatching to the dashboard controller
func HandleDashboardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDashboardController(ctx, container)

		switch method {
		case "getDashboard":
			controller.GetDashboard()
		default:
			controller.GetDashboard()
		}
	}
}

// GetDashboard returns counts, deltas and the recent-activity feed
// @Summary Bảng điều khiển
// @Description Tổng số hộ khẩu/nhân khẩu, biến động theo tháng, tạm trú/tạm vắng đang hiệu lực, số hồ sơ chờ duyệt và dòng hoạt động gần đây
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard() {
	dashboardService := c.Container.GetService("dashboard").(services.InterfaceDashboardService)
	summary, err := dashboardService.GetSummary(c.Ctx.Request.Context())
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, summary)
}
